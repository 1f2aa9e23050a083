package synth

import (
	"math"
	"math/rand"

	"github.com/eeg-microstates/msclust"
)

// OrthogonalTemplates builds k mutually orthogonal unit maps of length r
// (r must be >= k) by normalizing the standard basis vectors, giving a
// clustering problem with a known, well-separated ground truth.
func OrthogonalTemplates(k, r int) []msclust.Map {
	templates := make([]msclust.Map, k)
	for c := 0; c < k; c++ {
		m := make(msclust.Map, r)
		m[c%r] = 1
		templates[c] = m
	}
	return templates
}

// GaussianBlobMaps draws perCluster noisy samples around each template
// (Gaussian perturbation of std-dev noise, renormalized to unit length),
// returning a ready-to-use single-file Data and the ground-truth label
// per timepoint.
func GaussianBlobMaps(templates []msclust.Map, perCluster int, noise float64, rng *rand.Rand) (*msclust.Data, []int) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	r := len(templates[0])
	n := len(templates) * perCluster

	samples := make([]msclust.Map, n)
	norms := make([]float64, n)
	truth := make([]int, n)

	t := 0
	for c, tpl := range templates {
		for i := 0; i < perCluster; i++ {
			m := make(msclust.Map, r)
			for d := 0; d < r; d++ {
				m[d] = tpl[d] + noise*rng.NormFloat64()
			}
			norm := l2Norm(m)
			if norm > 0 {
				for d := range m {
					m[d] /= norm
				}
			}
			samples[t] = m
			norms[t] = norm
			truth[t] = c
			t++
		}
	}

	return &msclust.Data{
		Samples:           samples,
		NumElectrodes:     r,
		NumRows:           r,
		NumTimeFrames:     n,
		Files:             []msclust.FileInterval{{NumTF: n, Offset: 0}},
		SamplingFrequency: 250,
		Norms:             norms,
	}, truth
}

// FlipPolarity negates every sample at the given absolute timepoint
// indices in place, a standard EEG microstate test fixture: templates
// are polarity-invariant, so a flipped sample should still cluster with
// its original template under Evaluate polarity.
func FlipPolarity(data *msclust.Data, indices []int) {
	for _, t := range indices {
		for i := range data.Samples[t] {
			data.Samples[t][i] = -data.Samples[t][i]
		}
	}
}

// Concat joins multiple single- or multi-file Data values into one,
// recomputing file offsets so each input's timepoints keep their own
// file interval.
func Concat(parts ...*msclust.Data) *msclust.Data {
	var samples []msclust.Map
	var norms []float64
	var files []msclust.FileInterval
	offset := 0
	r := parts[0].NumRows

	for _, p := range parts {
		for _, f := range p.Files {
			files = append(files, msclust.FileInterval{NumTF: f.NumTF, Offset: offset + f.Offset})
		}
		samples = append(samples, p.Samples...)
		norms = append(norms, p.Norms...)
		offset += p.NumTimeFrames
	}

	return &msclust.Data{
		Samples:           samples,
		NumElectrodes:     parts[0].NumElectrodes,
		NumRows:           r,
		NumTimeFrames:     len(samples),
		Files:             files,
		SamplingFrequency: parts[0].SamplingFrequency,
		Norms:             norms,
	}
}

func l2Norm(m msclust.Map) float64 {
	var sum float64
	for _, v := range m {
		sum += v * v
	}
	return math.Sqrt(sum)
}
