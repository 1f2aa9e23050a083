package msclust

import "testing"

func TestProject(t *testing.T) {
	m1 := Map{1, 0, 0}
	m2 := Map{0.6, 0.8, 0}

	testdata := []struct {
		pol      Polarity
		expected float64
	}{
		{Direct, 0.6},
		{Invert, -0.6},
		{Evaluate, 0.6},
	}

	for _, d := range testdata {
		got := Project(m1, m2, d.pol)
		if diff := got - d.expected; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Project(%v) = %v, want %v", d.pol, got, d.expected)
		}
	}
}

func TestIsOpposite(t *testing.T) {
	if IsOpposite(Map{1, 0}, Map{1, 0}) {
		t.Errorf("parallel maps should not be opposite")
	}
	if !IsOpposite(Map{1, 0}, Map{-1, 0}) {
		t.Errorf("antiparallel maps should be opposite")
	}
}

func TestCorrToSqDist(t *testing.T) {
	if got := CorrToSqDist(1); got != 0 {
		t.Errorf("identical maps should have zero squared distance, got %v", got)
	}
	if got := CorrToSqDist(0); got != 2 {
		t.Errorf("orthogonal unit maps should have squared distance 2, got %v", got)
	}
	if got := CorrToSqDist(-1); got != 4 {
		t.Errorf("opposite unit maps should have squared distance 4, got %v", got)
	}
}

func TestCentroidMean(t *testing.T) {
	data := &Data{
		Samples: []Map{
			{1, 0},
			{1, 0},
			{-1, 0}, // will be folded in with Invert, i.e. contributes (1,0)
		},
		NumRows: 2,
	}
	members := []memberRef{
		{t: 0, pol: Direct},
		{t: 1, pol: Direct},
		{t: 2, pol: Invert},
	}

	c, ok := Centroid(data, members, MeanCentroid)
	if !ok {
		t.Fatalf("expected a valid centroid")
	}
	if diff := c[0] - 1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected centroid (1,0), got %v", c)
	}
}

func TestCentroidEmptyIsNull(t *testing.T) {
	data := &Data{NumRows: 3}
	_, ok := Centroid(data, nil, MeanCentroid)
	if ok {
		t.Errorf("expected a null centroid for zero members")
	}
}
