package msclust

import (
	"math"
	"sort"

	"github.com/eeg-microstates/msclust/criteria"
)

// MetaCriterionFloor is the lower bound enforced on the chosen K in the
// default profile.
const MetaCriterionFloor = 4

// ArgmaxHistogramMargin and ArgmaxHistogramSubsample parameterize the
// argmax histogram built in step 4.
const (
	ArgmaxHistogramMargin    = 5
	ArgmaxHistogramSubsample = 10
)

// MetaCriterionSelection is the final output of the meta-criterion: the
// chosen K, the mean-rank curve, the argmax histogram, and the filled
// meta-criterion curve, all indexed by K over [kMin, kMax].
type MetaCriterionSelection struct {
	ChosenK         int
	MeanRankCurve   map[int]float64
	ArgmaxHistogram map[int]float64
	MetaCurve       map[int]float64
	MedianArgmax    int
}

// SelectMetaCriterion drops degenerate criteria, rank-transforms the
// survivors, builds the mean-rank curve from rankCriteria, the argmax
// histogram from maxCriteria, picks the median argmax (floored at
// floor, or MetaCriterionFloor if floor <= 0), and fills the
// meta-criterion curve so the chosen K stands out after renormalization.
func SelectMetaCriterion(m *criteria.Matrix, rankCriteria, maxCriteria []criteria.ID, kMin, kMax, floor int) (MetaCriterionSelection, error) {
	if floor <= 0 {
		floor = MetaCriterionFloor
	}

	rankSurvivors := dropDegenerate(m, rankCriteria, kMin, kMax)
	maxSurvivors := dropDegenerate(m, maxCriteria, kMin, kMax)
	if len(rankSurvivors) < 3 && len(maxSurvivors) < 3 {
		return MetaCriterionSelection{}, ErrTooFewCriteria
	}

	meanRank := meanRankCurve(m, rankSurvivors, kMin, kMax)

	var argmaxes []int
	for _, id := range maxSurvivors {
		if k, ok := argmax(m, id, kMin, kMax); ok {
			argmaxes = append(argmaxes, k)
		}
	}
	histCurve := histogram(argmaxes, kMin, kMax, ArgmaxHistogramMargin, ArgmaxHistogramSubsample)

	median := medianArgmax(argmaxes)
	chosen := median
	if chosen < floor {
		chosen = floor
	}
	if chosen > kMax {
		chosen = kMax
	}
	if chosen < kMin {
		chosen = kMin
	}

	metaCurve := fillMetaCurve(kMin, kMax, chosen, median, histCurve)

	return MetaCriterionSelection{
		ChosenK:         chosen,
		MeanRankCurve:   meanRank,
		ArgmaxHistogram: histCurve,
		MetaCurve:       metaCurve,
		MedianArgmax:    median,
	}, nil
}

// dropDegenerate keeps only the criteria whose non-null span over
// [kMin,kMax] is more than 1.
func dropDegenerate(m *criteria.Matrix, ids []criteria.ID, kMin, kMax int) []criteria.ID {
	var out []criteria.ID
	for _, id := range ids {
		if m.Span(id, kMin, kMax) > 1 {
			out = append(out, id)
		}
	}
	return out
}

// meanRankCurve computes, for each K, the geometric mean of the ranked
// values of every survivor criterion defined at that K.
func meanRankCurve(m *criteria.Matrix, ids []criteria.ID, kMin, kMax int) map[int]float64 {
	curve := make(map[int]float64)
	if len(ids) == 0 {
		return curve
	}

	ranked := make(map[criteria.ID]map[int]float64, len(ids))
	for _, id := range ids {
		ks, vals := m.Row(id, kMin, kMax)
		ranks := criteria.RankTransform(vals)
		row := make(map[int]float64, len(ks))
		for i, k := range ks {
			row[k] = ranks[i]
		}
		ranked[id] = row
	}

	for k := kMin; k <= kMax; k++ {
		var sumLog float64
		var n int
		for _, id := range ids {
			if r, ok := ranked[id][k]; ok && r > 0 {
				sumLog += math.Log(r)
				n++
			}
		}
		if n > 0 {
			curve[k] = math.Exp(sumLog / float64(n))
		}
	}
	return curve
}

// argmax finds the K in [kMin,kMax] maximizing id's value, breaking ties
// by the smallest K (stable, deterministic).
func argmax(m *criteria.Matrix, id criteria.ID, kMin, kMax int) (int, bool) {
	best := kMin
	bestV := math.Inf(-1)
	found := false
	for k := kMin; k <= kMax; k++ {
		v, ok := m.Get(id, k)
		if !ok {
			continue
		}
		if !found || v > bestV {
			bestV = v
			best = k
			found = true
		}
	}
	return best, found
}

// histogram buckets the collected argmax votes into windows of width
// subsample, extended by margin beyond [kMin,kMax] on each side, and
// returns each K's vote count read back off its containing bucket: a
// smoothed view where nearby K's sharing a bucket inherit the same
// count, so an isolated off-by-one vote doesn't get ignored entirely.
func histogram(argmaxes []int, kMin, kMax, margin, subsample int) map[int]float64 {
	if subsample < 1 {
		subsample = 1
	}
	lo := kMin - margin
	hi := kMax + margin
	nbins := (hi-lo)/subsample + 1
	bins := make([]int, nbins)
	bucketOf := func(k int) int {
		b := (k - lo) / subsample
		if b < 0 {
			b = 0
		}
		if b >= nbins {
			b = nbins - 1
		}
		return b
	}
	for _, a := range argmaxes {
		bins[bucketOf(a)]++
	}

	curve := make(map[int]float64, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		curve[k] = float64(bins[bucketOf(k)])
	}
	return curve
}

// medianArgmax returns the median of the collected argmaxes, rounded to
// the nearest integer; on an even count it breaks the tie toward
// whichever of the two middle values is closer to their mean.
func medianArgmax(argmaxes []int) int {
	if len(argmaxes) == 0 {
		return 0
	}
	sorted := append([]int(nil), argmaxes...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	lo, hi := sorted[n/2-1], sorted[n/2]
	mean := float64(lo+hi) / 2
	if mean-float64(lo) <= float64(hi)-mean {
		return lo
	}
	return hi
}

// fillMetaCurve builds the meta-criterion curve: every K starts at its
// smoothed argmax-histogram vote count, then gets +1 at the chosen K and
// +1 at the median argmax (which may coincide), then is renormalized to
// [0,1] so the chosen K stands out against the vote distribution it was
// drawn from.
func fillMetaCurve(kMin, kMax, chosen, median int, hist map[int]float64) map[int]float64 {
	curve := make(map[int]float64, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		curve[k] = hist[k]
	}
	if _, ok := curve[chosen]; ok {
		curve[chosen] += 1
	}
	if _, ok := curve[median]; ok {
		curve[median] += 1
	}

	maxV := 0.0
	for _, v := range curve {
		if v > maxV {
			maxV = v
		}
	}
	if maxV > 0 {
		for k := range curve {
			curve[k] /= maxV
		}
	}
	return curve
}
