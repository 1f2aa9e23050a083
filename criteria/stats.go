package criteria

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DownsampleBudget is the target number of maps the pairwise statistics
// are downsampled to.
const DownsampleBudget = 4000

// tiny guards every division by a value that may legitimately be zero.
const tiny = 1e-12

// Stats bundles the within/between/all pairwise distance statistics for
// one candidate K. PairIdx is parallel to APooled and records
// the two absolute timepoint ids of each recorded all-pairs distance;
// PairSame records whether that pair shares a cluster and is what
// Point-Biserial reads.
type Stats struct {
	K      int
	Stride int // persisted downsampling stride, ceil(T/DownsampleBudget)

	WCentroid   []float64 // per-sample distance to its own template
	WCentroidSq []float64 // squared form
	BCentroidSq []float64 // per-sample distance to the nearest non-matching template, squared

	WPooled   []float64 // pairwise distances within the same cluster
	WPooledSq []float64 // squared form
	BPooled   []float64 // pairwise distances across different clusters
	APooled   []float64 // all pairwise distances
	PairIdx   [][2]int  // timepoint ids parallel to APooled
	PairSame  []bool    // whether the pair in APooled/PairIdx shares a cluster, parallel to APooled

	ClusterSize []int // member count per cluster, index 0..K-1

	WByCluster [][]float64 // per-cluster slice of within-centroid distances (unsquared)
}

// median returns the sample median, 0 for an empty input.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	buf := append([]float64(nil), xs...)
	sort.Float64s(buf)
	n := len(buf)
	if n%2 == 1 {
		return buf[n/2]
	}
	return 0.5 * (buf[n/2-1] + buf[n/2])
}

// project is the local, dependency-free equivalent of msclust.Project:
// evaluatePolarity true means sign-ignorant (|dot|), matching spec's
// Evaluate request used when resolving pair polarity.
func project(a, b []float64, evaluatePolarity bool) float64 {
	d := floats.Dot(a, b)
	if evaluatePolarity {
		return math.Abs(d)
	}
	return d
}

// Compute builds the Stats for one K from raw samples, a 0-based label
// per sample (negative meaning undefined/excluded), the current
// templates, and whether pairwise polarity should be resolved by
// Evaluate (sign-ignorant) or taken at face value. Labels/templates are
// index-parallel to samples/K respectively.
func Compute(samples [][]float64, labels []int, templates [][]float64, evaluatePolarity bool) *Stats {
	n := len(samples)
	stride := 1
	if n > DownsampleBudget {
		stride = (n + DownsampleBudget - 1) / DownsampleBudget
	}

	k := len(templates)
	s := &Stats{K: k, Stride: stride, ClusterSize: make([]int, k), WByCluster: make([][]float64, k)}

	var idx []int
	for t := 0; t < n; t += stride {
		if labels[t] >= 0 && labels[t] < k {
			idx = append(idx, t)
			s.ClusterSize[labels[t]]++
		}
	}

	for _, t := range idx {
		lbl := labels[t]
		d := project(samples[t], templates[lbl], false)
		wd2 := 2 * (1 - d)
		wd := math.Sqrt(math.Max(wd2, 0))
		s.WCentroid = append(s.WCentroid, wd)
		s.WCentroidSq = append(s.WCentroidSq, wd2)
		s.WByCluster[lbl] = append(s.WByCluster[lbl], wd)

		bestOther := math.Inf(-1)
		for c := 0; c < k; c++ {
			if c == lbl {
				continue
			}
			dc := project(samples[t], templates[c], true)
			if dc > bestOther {
				bestOther = dc
			}
		}
		if k > 1 {
			s.BCentroidSq = append(s.BCentroidSq, math.Max(2*(1-bestOther), 0))
		}
	}

	for i := 0; i < len(idx); i++ {
		for j := i + 1; j < len(idx); j++ {
			ti, tj := idx[i], idx[j]
			d := project(samples[ti], samples[tj], evaluatePolarity)
			d2 := math.Max(2*(1-d), 0)
			dist := math.Sqrt(d2)
			s.APooled = append(s.APooled, dist)
			s.PairIdx = append(s.PairIdx, [2]int{ti, tj})
			same := labels[ti] == labels[tj]
			s.PairSame = append(s.PairSame, same)
			if same {
				s.WPooled = append(s.WPooled, dist)
				s.WPooledSq = append(s.WPooledSq, d2)
			} else {
				s.BPooled = append(s.BPooled, dist)
			}
		}
	}

	return s
}

// Persist writes this Stats' stride, effective sample count, the sums of
// WCentroid, WCentroidSq and BCentroidSq, and the log variance of WPooled
// into m at this K. No median summary of any statistic is written.
func (s *Stats) Persist(m *Matrix) {
	m.Set(Stride, s.K, float64(s.Stride))
	m.Set(NEff, s.K, float64(len(s.WCentroid)))
	m.Set(SumW, s.K, sum(s.WCentroid))
	m.Set(SumWSq, s.K, sum(s.WCentroidSq))
	m.Set(SumBSq, s.K, sum(s.BCentroidSq))
	if len(s.WPooled) > 0 {
		m.Set(LogDetW, s.K, math.Log(math.Max(stat.Variance(s.WPooled, nil), tiny)))
	}
}

func sum(xs []float64) float64 {
	var total float64
	for _, v := range xs {
		total += v
	}
	return total
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return sum(xs) / float64(len(xs))
}
