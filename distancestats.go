package msclust

import "github.com/eeg-microstates/msclust/criteria"

// computeStats bridges a Labeling/templates pair into the criteria
// package's raw representation and computes the within/between/all
// pairwise distance statistics for the current K.
func computeStats(data *Data, labeling *Labeling, templates []Map, pol Polarity) *criteria.Stats {
	samples := make([][]float64, len(data.Samples))
	for i, s := range data.Samples {
		samples[i] = []float64(s)
	}
	tpl := make([][]float64, len(templates))
	for i, t := range templates {
		tpl[i] = []float64(t)
	}
	return criteria.Compute(samples, labeling.Labels, tpl, pol == Evaluate)
}
