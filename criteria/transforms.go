package criteria

import "sort"

// RankTransform applies a dense-rank linear transform to vals (parallel
// to ks): the highest value gets rank 1/N, the lowest gets rank 1, ties
// collapse to the same rank. Ties break by stable input order, never randomly.
func RankTransform(vals []float64) []float64 {
	n := len(vals)
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return vals[order[a]] > vals[order[b]] // descending: highest value -> rank 1
	})

	denseRank := make([]float64, n)
	rank := 0
	for i, idx := range order {
		if i > 0 && vals[order[i-1]] != vals[idx] {
			rank++
		}
		denseRank[idx] = float64(rank + 1)
	}

	// distinct rank count, for normalizing to [1/N_ranks, 1]
	maxRank := denseRank[order[0]]
	for _, r := range denseRank {
		if r > maxRank {
			maxRank = r
		}
	}

	out := make([]float64, n)
	for i, r := range denseRank {
		out[i] = r / maxRank
	}
	return out
}

// SecondDerivative computes the central-difference second derivative of
// vals with zero padding at the boundaries, optionally after a rank
// transform of the raw input.
func SecondDerivative(vals []float64, rank bool) []float64 {
	if rank {
		vals = RankTransform(vals)
	}
	n := len(vals)
	out := make([]float64, n)
	for i := 1; i < n-1; i++ {
		out[i] = vals[i-1] - 2*vals[i] + vals[i+1]
	}
	return out
}

// PersistSecondDerivatives computes the raw and rank-transformed
// second-derivative curve of every criterion in ids over [kMin,kMax] and
// stores each under DerivedID(id, false)/DerivedID(id, true). A
// criterion with fewer than three defined K's in range has no curvature
// to speak of and is left unset.
func PersistSecondDerivatives(m *Matrix, ids []ID, kMin, kMax int) {
	for _, id := range ids {
		ks, vals := m.Row(id, kMin, kMax)
		if len(ks) < 3 {
			continue
		}
		raw := SecondDerivative(vals, false)
		ranked := SecondDerivative(vals, true)
		for i, k := range ks {
			m.Set(DerivedID(id, false), k, raw[i])
			m.Set(DerivedID(id, true), k, ranked[i])
		}
	}
}
