package criteria

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EvaluateAll computes every value criterion for the current
// K's Stats and stores the results into m. prev/next are the Stats for
// K-1/K+1 when available (nil at the boundary of [K_min,K_max]); several
// criteria (Hartigan, FVG, the two Krzanowski-Lai flavors) need a
// neighboring K and are left unset when their neighbor is missing — the
// meta-criterion later drops rows with too short a span.
func EvaluateAll(curr, prev, next *Stats, templates [][]float64, numElectrodes int, m *Matrix) {
	curr.Persist(m)

	n := len(curr.WCentroid)
	k := curr.K

	if v, ok := calinskiHarabasz(curr, n, k); ok {
		m.Set(CH, k, v)
	}
	if v, ok := cIndex(curr); ok {
		m.Set(CIndex, k, v)
	}
	if v, ok := crossValidation(curr, numElectrodes, n); ok {
		m.Set(CV, k, v)
	}
	if v, ok := daviesBouldin(curr, templates); ok {
		m.Set(DB, k, v)
	}
	if v, ok := dunn(curr, false); ok {
		m.Set(Dunn, k, v)
	}
	if v, ok := dunn(curr, true); ok {
		m.Set(DunnRobust, k, v)
	}
	if v, ok := freyVanGroenewoud(curr, prev, next); ok {
		m.Set(FVG, k, v)
	}
	if gam, gplus, tau, ok := gammaGPlusTau(curr); ok {
		m.Set(Gamma, k, gam)
		m.Set(GPlus, k, gplus)
		m.Set(Tau, k, tau)
	}
	if v, ok := hartigan(curr, next); ok {
		m.Set(Hartigan, k, v)
	}
	if v, ok := krzanowskiLai(curr, prev, next, len(templates[0]), false); ok {
		m.Set(KLStandard, k, v)
	}
	if v, ok := krzanowskiLai(curr, prev, next, len(templates[0]), true); ok {
		m.Set(KLCartool, k, v)
	}
	if v, ok := mcClain(curr); ok {
		m.Set(McClain, k, v)
	}
	if v, ok := pointBiserial(curr); ok {
		m.Set(PB, k, v)
	}
	if v, ok := ratkowski(curr, templates); ok {
		m.Set(Ratkowski, k, v)
	}
	if v, ok := silhouette(curr); ok {
		m.Set(Silhouette, k, v)
	}
	m.Set(TraceW, k, sum(curr.WCentroid))
	if v, ok := ccc(curr, n); ok {
		m.Set(CCC, k, v)
	}
}

// guard divides a/b, substituting max(b, tiny) for b when b may
// legitimately be zero.
func guard(a, b float64) float64 {
	if b < 0 {
		b = -b
	}
	return a / math.Max(b, tiny)
}

func calinskiHarabasz(s *Stats, n, k int) (float64, bool) {
	if k <= 1 || n <= k {
		return 0, false
	}
	wSq := sum(s.WCentroidSq)
	return guard(float64(n*(n-k)), wSq*float64(k-1)), true
}

func cIndex(s *Stats) (float64, bool) {
	nw := len(s.WPooled)
	if nw == 0 || len(s.APooled) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), s.APooled...)
	sort.Float64s(sorted)
	if nw > len(sorted) {
		nw = len(sorted)
	}
	dmin := mean(sorted[:nw])
	dmax := mean(sorted[len(sorted)-nw:])
	return -guard(mean(s.WPooled)-dmin, dmax-dmin), true
}

func crossValidation(s *Stats, numElectrodes, n int) (float64, bool) {
	e := numElectrodes
	if e-1-s.K <= 0 || n == 0 {
		return 0, false
	}
	sigma2mu := mean(s.WCentroidSq)
	ratio := float64(e-1) / float64(e-1-s.K)
	return 1 - sigma2mu*ratio*ratio, true
}

func daviesBouldin(s *Stats, templates [][]float64) (float64, bool) {
	k := s.K
	if k <= 1 {
		return 0, false
	}
	within := make([]float64, k)
	for c := 0; c < k; c++ {
		within[c] = mean(s.WByCluster[c])
	}
	var total float64
	for c := 0; c < k; c++ {
		var worst float64
		for cp := 0; cp < k; cp++ {
			if cp == c {
				continue
			}
			d := math.Sqrt(math.Max(2*(1-project(templates[c], templates[cp], false)), 0))
			ratio := guard(within[c]+within[cp], d)
			if ratio > worst {
				worst = ratio
			}
		}
		total += worst
	}
	return -total / float64(k), true
}

func dunn(s *Stats, robust bool) (float64, bool) {
	if len(s.BPooled) == 0 || len(s.WPooled) == 0 {
		return 0, false
	}
	if !robust {
		return floats.Min(s.BPooled) - floats.Max(s.WPooled), true
	}
	return trimmedMean(s.BPooled, 0.05, true) - trimmedMean(s.WPooled, 0.05, false), true
}

// trimmedMean drops the bottom/top 5% tail and averages the rest; low
// selects whether the minimum-ward tail (true) or maximum-ward tail
// (false) is being approximated, matching Dunn-robust's "truncated means
// at 5% tails" on opposite ends of B_pooled vs W_pooled.
func trimmedMean(xs []float64, frac float64, low bool) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	trim := int(float64(len(sorted)) * frac)
	if low {
		return mean(sorted[trim:])
	}
	if len(sorted)-trim <= 0 {
		return mean(sorted)
	}
	return mean(sorted[:len(sorted)-trim])
}

func freyVanGroenewoud(curr, prev, next *Stats) (float64, bool) {
	if prev == nil || next == nil {
		return 0, false
	}
	deltaW := mean(curr.WCentroidSq) - mean(next.WCentroidSq)
	deltaB := mean(curr.BCentroidSq) - mean(prev.BCentroidSq)
	v := guard(deltaW, deltaB)
	if v > 1 {
		v = 0
	}
	return v, true
}

// gammaGPlusTau derives Gamma, G+ and Tau from a fixed 200-bin histogram
// of W and B pooled distances over [0,2].
func gammaGPlusTau(s *Stats) (gamma, gplus, tau float64, ok bool) {
	if len(s.WPooled) == 0 || len(s.BPooled) == 0 {
		return 0, 0, 0, false
	}
	const bins = 200
	const lo, hi = 0.0, 2.0
	hw := histogram(s.WPooled, bins, lo, hi)
	hb := histogram(s.BPooled, bins, lo, hi)

	var concordant, discordant float64
	var cumB float64
	totalB := sum(hb)
	for i := 0; i < bins; i++ {
		// within-distances in bin i are concordant with all strictly
		// larger between-distances, discordant with all strictly
		// smaller ones (W should be smaller than B).
		concordant += hw[i] * (totalB - cumB - hb[i])
		discordant += hw[i] * cumB
		cumB += hb[i]
	}
	nw, nb := float64(len(s.WPooled)), float64(len(s.BPooled))
	total := nw * nb
	gamma = guard(concordant-discordant, concordant+discordant)
	gplus = guard(discordant, total)
	tau = guard(concordant-discordant, total)
	return gamma, gplus, tau, true
}

func histogram(xs []float64, bins int, lo, hi float64) []float64 {
	h := make([]float64, bins)
	width := (hi - lo) / float64(bins)
	for _, x := range xs {
		b := int((x - lo) / width)
		if b < 0 {
			b = 0
		}
		if b >= bins {
			b = bins - 1
		}
		h[b]++
	}
	return h
}

func hartigan(curr, next *Stats) (float64, bool) {
	if next == nil {
		return 0, false
	}
	wk := sum(curr.WCentroid)
	wk1 := sum(next.WCentroid)
	n := len(curr.WCentroid)
	return guard(wk-wk1, wk1) * float64(n-curr.K+1), true
}

func krzanowskiLai(curr, prev, next *Stats, r int, cartoolVariant bool) (float64, bool) {
	if prev == nil || next == nil {
		return 0, false
	}
	scale := func(s *Stats) float64 {
		return sum(s.WCentroidSq) * math.Pow(float64(s.K), 2.0/float64(r))
	}
	w0, w1, w2 := scale(prev), scale(curr), scale(next)
	diffK := w0 - w1
	diffK1 := w1 - w2
	if cartoolVariant {
		m := math.Max(w0, math.Max(w1, w2))
		return guard(diffK-diffK1, m), true
	}
	return guard(diffK, diffK1), true
}

func mcClain(s *Stats) (float64, bool) {
	if len(s.WPooled) == 0 || len(s.BPooled) == 0 {
		return 0, false
	}
	return mean(s.WPooled) - mean(s.BPooled), true
}

func pointBiserial(s *Stats) (float64, bool) {
	if len(s.APooled) < 2 {
		return 0, false
	}
	indicator := make([]float64, len(s.APooled))
	for i, same := range s.PairSame {
		if !same {
			indicator[i] = 1
		}
	}
	return stat.Correlation(s.APooled, indicator, nil), true
}

func ratkowski(s *Stats, templates [][]float64) (float64, bool) {
	k := len(templates)
	if k <= 1 || len(templates[0]) == 0 {
		return 0, false
	}
	r := len(templates[0])
	ratios := make([]float64, r)
	for dim := 0; dim < r; dim++ {
		var b, w float64
		var grand float64
		for c := 0; c < k; c++ {
			grand += templates[c][dim]
		}
		grand /= float64(k)
		for c := 0; c < k; c++ {
			b += (templates[c][dim] - grand) * (templates[c][dim] - grand)
		}
		for c := 0; c < k; c++ {
			for _, v := range s.WByCluster[c] {
				w += v * v
			}
		}
		ratios[dim] = math.Sqrt(math.Max(guard(b, w), 0))
	}
	return median(ratios), true
}

func silhouette(s *Stats) (float64, bool) {
	k := s.K
	if k <= 1 {
		return 0, false
	}
	// a(i) approximated by the sample's distance to its own template, b(i)
	// by its distance to the nearest other template, both already
	// summarized per sample in WCentroid/BCentroidSq.
	n := len(s.WCentroid)
	if n == 0 || len(s.BCentroidSq) != n {
		return 0, false
	}
	var total float64
	for i := 0; i < n; i++ {
		a := s.WCentroid[i]
		b := math.Sqrt(s.BCentroidSq[i])
		total += guard(b-a, math.Max(a, b))
	}
	return total / float64(n), true
}

// cccScaling is the cubic clustering criterion's scaling factor,
// sqrt(n*nStar/2)/ER2^1.2, reproduced verbatim for compatibility with
// stored criteria values.
func cccScaling(n int, er2 float64) float64 {
	nStar := float64(n)
	return math.Sqrt(float64(n)*nStar/2) / math.Pow(math.Max(er2, tiny), 1.2)
}

func ccc(s *Stats, n int) (float64, bool) {
	if len(s.WPooled) == 0 {
		return 0, false
	}
	wBar := mean(s.WPooled)
	er2 := 1 - wBar/2 // expected R-squared proxy from the mean within distance on unit maps
	if er2 <= 0 {
		return 0, false
	}
	scale := cccScaling(n, er2)
	return scale * math.Log(math.Max(guard(1, wBar), tiny)), true
}
