package criteria

import "testing"

func TestRankTransform(t *testing.T) {
	testdata := []struct {
		vals     []float64
		expected []float64
	}{
		{[]float64{1, 2, 3}, []float64{1, 2.0 / 3, 1.0 / 3}},
		{[]float64{5, 5, 1}, []float64{0.5, 0.5, 1}},
		{[]float64{1}, []float64{1}},
	}

	for _, d := range testdata {
		out := RankTransform(d.vals)
		if len(out) != len(d.expected) {
			t.Fatalf("got %d ranks, expected %d, for %v", len(out), len(d.expected), d.vals)
		}
		for i := range out {
			if diff := out[i] - d.expected[i]; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("rank[%d] = %v, expected %v, for %v", i, out[i], d.expected[i], d.vals)
			}
		}
	}
}

func TestSecondDerivativeZeroPadded(t *testing.T) {
	vals := []float64{1, 2, 4, 7, 11}
	out := SecondDerivative(vals, false)
	if out[0] != 0 || out[len(out)-1] != 0 {
		t.Errorf("expected zero padding at boundaries, got %v", out)
	}
	// constant second difference for this quadratic-ish sequence
	want := 1.0
	for i := 1; i < len(out)-1; i++ {
		if diff := out[i] - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestPersistSecondDerivativesStoresRawAndRankedVariants(t *testing.T) {
	m := NewMatrix()
	for k := 2; k <= 6; k++ {
		m.Set(CH, k, float64(k*k))
	}

	PersistSecondDerivatives(m, []ID{CH}, 2, 6)

	if _, ok := m.Get(DerivedID(CH, false), 3); !ok {
		t.Errorf("expected a raw second-derivative value at K=3")
	}
	if _, ok := m.Get(DerivedID(CH, true), 3); !ok {
		t.Errorf("expected a ranked second-derivative value at K=3")
	}
	if v, _ := m.Get(DerivedID(CH, false), 2); v != 0 {
		t.Errorf("expected zero padding at the boundary K=2, got %v", v)
	}
}

func TestPersistSecondDerivativesSkipsShortSpans(t *testing.T) {
	m := NewMatrix()
	m.Set(CH, 2, 1.0)
	m.Set(CH, 3, 2.0)

	PersistSecondDerivatives(m, []ID{CH}, 2, 3)

	if _, ok := m.Get(DerivedID(CH, false), 2); ok {
		t.Errorf("a span of 2 should produce no derivative values")
	}
}
