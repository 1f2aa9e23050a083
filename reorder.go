package msclust

import (
	"math"
	"sort"
)

// TemporalOrdering sorts clusters by the mean file-relative timepoint of
// their members (rounded), ties broken by first appearance.
func TemporalOrdering(data *Data, labeling *Labeling, k int) []int {
	sums := make([]float64, k)
	counts := make([]int, k)
	firstSeen := make([]int, k)
	for i := range firstSeen {
		firstSeen[i] = -1
	}

	for t, c := range labeling.Labels {
		if c == Undefined {
			continue
		}
		f := data.FileOf(t)
		rel := t
		if f >= 0 {
			rel = t - data.Files[f].TFMin()
		}
		sums[c] += float64(rel)
		counts[c]++
		if firstSeen[c] == -1 {
			firstSeen[c] = t
		}
	}

	mean := make([]float64, k)
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			mean[c] = math.Round(sums[c] / float64(counts[c]))
		}
	}

	ordering := make([]int, k)
	for i := range ordering {
		ordering[i] = i
	}
	sort.SliceStable(ordering, func(a, b int) bool {
		ca, cb := ordering[a], ordering[b]
		if mean[ca] != mean[cb] {
			return mean[ca] < mean[cb]
		}
		return firstSeen[ca] < firstSeen[cb]
	})
	return ordering
}

// FromTemplatesOrdering assigns each output cluster the index of the
// external template with the highest projection, then orders ascending
// by that assignment.
func FromTemplatesOrdering(templates, external []Map) []int {
	assignment := make([]int, len(templates))
	for c, t := range templates {
		best := 0
		bestProj := negInf
		for e, ext := range external {
			proj := Project(t, ext, Evaluate)
			if proj > bestProj {
				bestProj = proj
				best = e
			}
		}
		assignment[c] = best
	}

	ordering := make([]int, len(templates))
	for i := range ordering {
		ordering[i] = i
	}
	sort.SliceStable(ordering, func(a, b int) bool {
		return assignment[ordering[a]] < assignment[ordering[b]]
	})
	return ordering
}

// TopographicalOrdering orders clusters by a deterministic blend of
// azimuth (the angle between the max- and min-valued sensors' 2D
// projected positions) and a "full vs half moon" score derived from the
// spread of positive vs negative electrode distances.
func TopographicalOrdering(templates []Map, sensors []Point2D) []int {
	azimuth := make([]float64, len(templates))
	moon := make([]float64, len(templates))

	for c, t := range templates {
		maxI, minI := argExtreme(t)
		if maxI >= len(sensors) || minI >= len(sensors) {
			continue
		}
		pmax, pmin := sensors[maxI], sensors[minI]
		azimuth[c] = math.Atan2(pmax.Y-pmin.Y, pmax.X-pmin.X)
		moon[c] = fullVsHalfMoon(t, sensors)
	}

	ordering := make([]int, len(templates))
	for i := range ordering {
		ordering[i] = i
	}
	sort.SliceStable(ordering, func(a, b int) bool {
		ca, cb := ordering[a], ordering[b]
		if azimuth[ca] != azimuth[cb] {
			return azimuth[ca] < azimuth[cb]
		}
		return moon[ca] < moon[cb]
	})
	return ordering
}

// argExtreme returns the indices of the maximum- and minimum-valued
// entries of m.
func argExtreme(m Map) (maxI, minI int) {
	for i, v := range m {
		if v > m[maxI] {
			maxI = i
		}
		if v < m[minI] {
			minI = i
		}
	}
	return maxI, minI
}

// fullVsHalfMoon scores how evenly a template's positive and negative
// electrodes spread across the sensor layout: a "full moon" pattern has
// both signs spread over comparable radii from the centroid, a "half
// moon" concentrates one sign near the centroid.
func fullVsHalfMoon(m Map, sensors []Point2D) float64 {
	var cx, cy float64
	n := 0
	for i := range sensors {
		if i >= len(m) {
			break
		}
		cx += sensors[i].X
		cy += sensors[i].Y
		n++
	}
	if n == 0 {
		return 0
	}
	cx /= float64(n)
	cy /= float64(n)

	var posSpread, negSpread float64
	var posN, negN int
	for i, p := range sensors {
		if i >= len(m) {
			break
		}
		d := math.Hypot(p.X-cx, p.Y-cy)
		if m[i] >= 0 {
			posSpread += d
			posN++
		} else {
			negSpread += d
			negN++
		}
	}
	if posN > 0 {
		posSpread /= float64(posN)
	}
	if negN > 0 {
		negSpread /= float64(negN)
	}
	return absf(posSpread - negSpread)
}

// AnatomicalOrdering orders clusters by the standardized RAS coordinates
// of each template's maximum-valued source point, sorted by Z then Y.
func AnatomicalOrdering(templates []Map, sources []Point3D) []int {
	z := make([]float64, len(templates))
	y := make([]float64, len(templates))

	for c, t := range templates {
		maxI := 0
		for i, v := range t {
			if v > t[maxI] {
				maxI = i
			}
		}
		if maxI < len(sources) {
			z[c] = sources[maxI].Z
			y[c] = sources[maxI].Y
		}
	}

	ordering := make([]int, len(templates))
	for i := range ordering {
		ordering[i] = i
	}
	sort.SliceStable(ordering, func(a, b int) bool {
		ca, cb := ordering[a], ordering[b]
		if z[ca] != z[cb] {
			return z[ca] < z[cb]
		}
		return y[ca] < y[cb]
	})
	return ordering
}
