package criteria

import (
	"math"
	"testing"
)

func unit(v []float64) []float64 {
	n := math.Sqrt(0)
	for _, x := range v {
		n += x * x
	}
	n = math.Sqrt(n)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

func TestComputeTwoWellSeparatedClusters(t *testing.T) {
	u := unit([]float64{1, 0, 0, 0})
	v := unit([]float64{0, 1, 0, 0})

	var samples [][]float64
	var labels []int
	for i := 0; i < 20; i++ {
		samples = append(samples, u)
		labels = append(labels, 0)
	}
	for i := 0; i < 20; i++ {
		samples = append(samples, v)
		labels = append(labels, 1)
	}

	templates := [][]float64{u, v}
	s := Compute(samples, labels, templates, false)

	if len(s.WCentroid) != 40 {
		t.Fatalf("expected 40 defined samples, got %d", len(s.WCentroid))
	}
	for _, d := range s.WCentroid {
		if d > 1e-9 {
			t.Errorf("expected zero within-centroid distance for exact samples, got %v", d)
		}
	}
	if len(s.BPooled) == 0 || len(s.WPooled) == 0 {
		t.Fatalf("expected both within and between pooled pairs, got W=%d B=%d", len(s.WPooled), len(s.BPooled))
	}
	for _, d := range s.WPooled {
		if d > 1e-9 {
			t.Errorf("expected zero within-pooled distance for identical samples, got %v", d)
		}
	}
	want := math.Sqrt(2)
	for _, d := range s.BPooled {
		if diff := d - want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("expected between-pooled distance sqrt(2), got %v", d)
		}
	}
}

func TestEvaluateAllPrefersSeparatedClusters(t *testing.T) {
	u := unit([]float64{1, 0, 0, 0})
	v := unit([]float64{0, 1, 0, 0})

	var samples [][]float64
	var labels []int
	for i := 0; i < 20; i++ {
		samples = append(samples, u)
		labels = append(labels, 0)
	}
	for i := 0; i < 20; i++ {
		samples = append(samples, v)
		labels = append(labels, 1)
	}
	templates := [][]float64{u, v}

	s := Compute(samples, labels, templates, false)
	m := NewMatrix()
	EvaluateAll(s, nil, nil, templates, 4, m)

	if _, ok := m.Get(Silhouette, 2); !ok {
		t.Fatalf("expected silhouette to be computed for well separated clusters")
	}
	sil, _ := m.Get(Silhouette, 2)
	if sil < 0.9 {
		t.Errorf("expected near-perfect silhouette for perfectly separated clusters, got %v", sil)
	}
}
