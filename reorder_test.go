package msclust

import "testing"

func TestTemporalOrderingSortsByMeanTimepoint(t *testing.T) {
	data := &Data{
		NumTimeFrames: 6,
		Files:         []FileInterval{{NumTF: 6, Offset: 0}},
		Norms:         make([]float64, 6),
	}
	labeling := NewLabeling(6)
	// cluster 1 occupies the early timepoints, cluster 0 the late ones.
	labels := []int{1, 1, 1, 0, 0, 0}
	for t, c := range labels {
		labeling.SetLabel(t, c, Direct)
	}

	ordering := TemporalOrdering(data, labeling, 2)
	if ordering[0] != 1 || ordering[1] != 0 {
		t.Errorf("TemporalOrdering = %v, want [1 0] (earlier cluster first)", ordering)
	}
}

func TestFromTemplatesOrderingMatchesBestProjection(t *testing.T) {
	templates := []Map{{0, 1}, {1, 0}}
	external := []Map{{1, 0}, {0, 1}}

	ordering := FromTemplatesOrdering(templates, external)
	// templates[0] matches external[1], templates[1] matches external[0];
	// ascending by matched external index puts templates[1] first.
	if ordering[0] != 1 || ordering[1] != 0 {
		t.Errorf("FromTemplatesOrdering = %v, want [1 0]", ordering)
	}
}

func TestTopographicalOrderingIsDeterministic(t *testing.T) {
	sensors := []Point2D{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	templates := []Map{{1, -1, 0, 0}, {0, 0, 1, -1}}

	a := TopographicalOrdering(templates, sensors)
	b := TopographicalOrdering(templates, sensors)
	if len(a) != 2 || a[0] != b[0] || a[1] != b[1] {
		t.Errorf("TopographicalOrdering not deterministic: %v vs %v", a, b)
	}
}

func TestAnatomicalOrderingSortsByZThenY(t *testing.T) {
	sources := []Point3D{{Z: 5, Y: 1}, {Z: 1, Y: 9}}
	templates := []Map{{1, 0}, {0, 1}}

	ordering := AnatomicalOrdering(templates, sources)
	if ordering[0] != 1 || ordering[1] != 0 {
		t.Errorf("AnatomicalOrdering = %v, want [1 0] (lower Z first)", ordering)
	}
}
