package msclust

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Project returns the signed correlation between two unit maps under the
// requested polarity:
//
//   - Direct:   the plain scalar product m1·m2.
//   - Invert:   the negated scalar product.
//   - Evaluate: the absolute value of the scalar product (sign ignorant).
func Project(m1, m2 Map, pol Polarity) float64 {
	dot := floats.Dot(m1, m2)
	switch pol {
	case Invert:
		return -dot
	case Evaluate:
		return math.Abs(dot)
	default:
		return dot
	}
}

// IsOpposite reports whether two maps point in opposite directions, i.e.
// their scalar product is negative.
func IsOpposite(m1, m2 Map) bool {
	return floats.Dot(m1, m2) < 0
}

// CorrToSqDist converts a signed correlation between two unit maps into
// the squared Euclidean distance between them: d² = 2·(1 - proj).
func CorrToSqDist(proj float64) float64 {
	return 2 * (1 - proj)
}

// normalize scales m in place to unit norm. A zero-norm map is left
// untouched; the caller is expected to flag it null.
func normalize(m Map) bool {
	n := floats.Norm(m, 2)
	if n == 0 {
		return false
	}
	scale := 1 / n
	for i := range m {
		m[i] *= scale
	}
	return true
}

// signFor returns the sign convention used to fold polarity into a
// centroid accumulation: -1 for Invert, +1 otherwise.
func signFor(pol Polarity) float64 {
	if pol == Invert {
		return -1
	}
	return 1
}

// Centroid computes the representative map of a labeled subset of
// samples. members holds, for each contributing sample, its timepoint
// index and stored polarity. Returns the centroid and whether it is
// non-null.
func Centroid(data *Data, members []memberRef, kind CentroidKind) (Map, bool) {
	if len(members) == 0 || data.NumRows == 0 {
		return make(Map, data.NumRows), false
	}

	out := make(Map, data.NumRows)
	switch kind {
	case MedianCentroid:
		col := make([]float64, len(members))
		for r := 0; r < data.NumRows; r++ {
			for i, m := range members {
				col[i] = signFor(m.pol) * data.Samples[m.t][r]
			}
			out[r] = median(col)
		}
	default: // MeanCentroid
		for _, m := range members {
			s := signFor(m.pol)
			sample := data.Samples[m.t]
			for r := 0; r < data.NumRows; r++ {
				out[r] += s * sample[r]
			}
		}
		inv := 1 / float64(len(members))
		for r := range out {
			out[r] *= inv
		}
	}

	ok := normalize(out)
	return out, ok
}

// memberRef names a single sample contributing to a centroid: its
// timepoint and the polarity under which it should be folded in.
type memberRef struct {
	t   int
	pol Polarity
}

// median computes the coordinate median of a slice without mutating the
// caller's data (it copies and sorts a scratch buffer).
func median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	buf := make([]float64, n)
	copy(buf, xs)
	sort.Float64s(buf)
	if n%2 == 1 {
		return buf[n/2]
	}
	return 0.5 * (buf[n/2-1] + buf[n/2])
}
