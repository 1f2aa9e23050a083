package msclust

import "testing"

func threeTemplateData() (*Data, *Labeling, []Map) {
	// Two templates (0,1) are near-duplicates of each other; template 2
	// is orthogonal to both.
	samples := []Map{
		{1, 0}, {0.99, 0.14}, {0.99, 0.14}, // cluster 0
		{0.98, 0.2}, {0.98, 0.2}, // cluster 1, correlated with cluster 0
		{0, 1}, {0, 1}, // cluster 2, orthogonal
	}
	for _, s := range samples {
		normalize(s)
	}
	norms := make([]float64, len(samples))
	for i := range norms {
		norms[i] = 1
	}
	data := &Data{
		Samples:       samples,
		NumRows:       2,
		NumElectrodes: 2,
		NumTimeFrames: len(samples),
		Files:         []FileInterval{{NumTF: len(samples), Offset: 0}},
		Norms:         norms,
	}

	l := NewLabeling(len(samples))
	for t := 0; t < 3; t++ {
		l.SetLabel(t, 0, Direct)
	}
	for t := 3; t < 5; t++ {
		l.SetLabel(t, 1, Direct)
	}
	for t := 5; t < 7; t++ {
		l.SetLabel(t, 2, Direct)
	}

	templates, ok := recomputeTemplates(data, l, 3, MeanCentroid)
	if !ok {
		panic("test fixture: unexpected empty cluster")
	}
	return data, l, templates
}

func TestMergeCorrelatedTemplatesCollapsesCorrelatedPair(t *testing.T) {
	data, l, templates := threeTemplateData()

	merged, k := MergeCorrelatedTemplates(data, l, templates, 0.9, MeanCentroid)
	if k != 2 {
		t.Fatalf("expected the two correlated templates to merge down to 2, got %d", k)
	}
	if len(merged) != 2 {
		t.Errorf("expected 2 surviving templates, got %d", len(merged))
	}
	if l.Labels[0] == l.Labels[5] {
		t.Errorf("the orthogonal cluster must not be merged into the correlated pair")
	}
}

func TestMergeCorrelatedTemplatesNoOpBelowThreshold(t *testing.T) {
	data, l, templates := threeTemplateData()

	_, k := MergeCorrelatedTemplates(data, l, templates, 0.999999, MeanCentroid)
	if k != 3 {
		t.Errorf("an unreachable threshold should leave all 3 clusters intact, got %d", k)
	}
}

func TestRejectLowCorrelationMarksUndefined(t *testing.T) {
	data, l, templates := threeTemplateData()
	_, k := RejectLowCorrelation(data, l, templates, 2.0) // unreachable threshold: everything rejected
	if k != 0 {
		t.Errorf("expected every cluster to be rejected, got %d surviving", k)
	}
	for _, lab := range l.Labels {
		if lab != Undefined {
			t.Errorf("expected every label Undefined, got %v", l.Labels)
			break
		}
	}
}

func TestRejectShortSegmentsRemovesIsolatedRun(t *testing.T) {
	samples := make([]Map, 10)
	for i := range samples {
		if i == 5 {
			samples[i] = Map{0, 1} // a single-sample intruder
		} else {
			samples[i] = Map{1, 0}
		}
	}
	norms := make([]float64, 10)
	for i := range norms {
		norms[i] = 1
	}
	data := &Data{
		Samples:       samples,
		NumRows:       2,
		NumElectrodes: 2,
		NumTimeFrames: 10,
		Files:         []FileInterval{{NumTF: 10, Offset: 0}},
		Norms:         norms,
	}

	l := NewLabeling(10)
	for t := 0; t < 10; t++ {
		if t == 5 {
			l.SetLabel(t, 1, Direct)
		} else {
			l.SetLabel(t, 0, Direct)
		}
	}
	templates := []Map{{1, 0}, {0, 1}}

	RejectShortSegments(data, l, templates, Direct, 1, 0.0)

	if l.Labels[5] != 0 {
		t.Errorf("the isolated single-sample run should have been absorbed by its neighbor, got label %v", l.Labels[5])
	}
}

func TestSequentializePromotesRepeatedRuns(t *testing.T) {
	samples := make([]Map, 6)
	for i := range samples {
		samples[i] = Map{1, 0}
	}
	norms := make([]float64, 6)
	for i := range norms {
		norms[i] = 1
	}
	data := &Data{
		Samples:       samples,
		NumRows:       2,
		NumElectrodes: 2,
		NumTimeFrames: 6,
		Files:         []FileInterval{{NumTF: 6, Offset: 0}},
		Norms:         norms,
	}

	// two separated runs of the same cluster 0: [0,1] and [4,5]; a run of
	// cluster 1 sits in between.
	l := NewLabeling(6)
	l.SetLabel(0, 0, Direct)
	l.SetLabel(1, 0, Direct)
	l.SetLabel(2, 1, Direct)
	l.SetLabel(3, 1, Direct)
	l.SetLabel(4, 0, Direct)
	l.SetLabel(5, 0, Direct)
	templates := []Map{{1, 0}, {1, 0}}

	Sequentialize(data, l, templates, MeanCentroid)

	if l.Labels[0] != 0 || l.Labels[1] != 0 {
		t.Errorf("the first occurrence of cluster 0 should keep its id, got %v", l.Labels[:2])
	}
	if l.Labels[4] == 0 {
		t.Errorf("the second, later occurrence of cluster 0 should be promoted to a new id, got %v", l.Labels[4:])
	}
	if l.Labels[4] != l.Labels[5] {
		t.Errorf("the promoted run should keep one shared new id, got %v", l.Labels[4:])
	}
}
