package msclust

import (
	"math"
	"testing"

	"github.com/eeg-microstates/msclust/criteria"
)

func TestMedianArgmaxOddAndEven(t *testing.T) {
	if got := medianArgmax([]int{3, 5, 7}); got != 5 {
		t.Errorf("odd median = %d, want 5", got)
	}
	if got := medianArgmax([]int{4, 6}); got != 4 && got != 6 {
		t.Errorf("even median should break ties to one of the middle values, got %d", got)
	}
	if got := medianArgmax(nil); got != 0 {
		t.Errorf("empty argmax list should return 0, got %d", got)
	}
}

func TestDropDegenerateKeepsOnlySpanAboveOne(t *testing.T) {
	m := criteria.NewMatrix()
	m.Set(criteria.CH, 2, 1.0)
	m.Set(criteria.CH, 3, 1.0)
	m.Set(criteria.Dunn, 2, 1.0) // span 1, degenerate

	survivors := dropDegenerate(m, []criteria.ID{criteria.CH, criteria.Dunn}, 2, 4)
	if len(survivors) != 1 || survivors[0] != criteria.CH {
		t.Errorf("expected only CH to survive, got %v", survivors)
	}
}

func TestSelectMetaCriterionFloorsChosenK(t *testing.T) {
	m := criteria.NewMatrix()
	ids := []criteria.ID{criteria.CH, criteria.Dunn, criteria.Silhouette}
	for _, id := range ids {
		for k := 2; k <= 10; k++ {
			v := 1.0
			if k == 3 {
				v = 10.0 // every criterion peaks at K=3, below the default floor
			}
			m.Set(id, k, v)
		}
	}

	sel, err := SelectMetaCriterion(m, ids, ids, 2, 10, 0)
	if err != nil {
		t.Fatalf("SelectMetaCriterion: %v", err)
	}
	if sel.ChosenK < MetaCriterionFloor {
		t.Errorf("chosen K %d should never fall below the floor %d", sel.ChosenK, MetaCriterionFloor)
	}
	if sel.MedianArgmax != 3 {
		t.Errorf("median argmax should reflect the shared peak at K=3, got %d", sel.MedianArgmax)
	}
}

func TestSelectMetaCriterionHonorsFloorOverride(t *testing.T) {
	m := criteria.NewMatrix()
	ids := []criteria.ID{criteria.CH, criteria.Dunn, criteria.Silhouette}
	for _, id := range ids {
		for k := 2; k <= 10; k++ {
			v := 1.0
			if k == 2 {
				v = 10.0 // every criterion peaks at K=2
			}
			m.Set(id, k, v)
		}
	}

	sel, err := SelectMetaCriterion(m, ids, ids, 2, 10, 2)
	if err != nil {
		t.Fatalf("SelectMetaCriterion: %v", err)
	}
	if sel.ChosenK != 2 {
		t.Errorf("with floor overridden to 2, chosen K should reach 2, got %d", sel.ChosenK)
	}
}

func TestSelectMetaCriterionTooFewCriteria(t *testing.T) {
	m := criteria.NewMatrix()
	m.Set(criteria.CH, 2, 1.0) // span 1: dropped as degenerate

	_, err := SelectMetaCriterion(m, []criteria.ID{criteria.CH}, []criteria.ID{criteria.CH}, 2, 5, 0)
	if err != ErrTooFewCriteria {
		t.Errorf("expected ErrTooFewCriteria, got %v", err)
	}
}

func TestMeanRankCurveIsGeometricMean(t *testing.T) {
	m := criteria.NewMatrix()
	m.Set(criteria.CH, 2, 1.0)
	m.Set(criteria.CH, 3, 2.0)
	m.Set(criteria.Dunn, 2, 1.0)
	m.Set(criteria.Dunn, 3, 1.0) // tied: both K's rank 1

	curve := meanRankCurve(m, []criteria.ID{criteria.CH, criteria.Dunn}, 2, 3)
	if len(curve) != 2 {
		t.Fatalf("expected values at both K=2 and K=3, got %v", curve)
	}
	// CH ranks to {K=2: 1, K=3: 0.5}, Dunn to {1, 1}. The geometric mean
	// at K=3 is sqrt(0.5*1); an arithmetic mean would give 0.75.
	if diff := curve[2] - 1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("curve[2] = %v, want 1", curve[2])
	}
	if diff := curve[3] - math.Sqrt(0.5); diff > 1e-9 || diff < -1e-9 {
		t.Errorf("curve[3] = %v, want sqrt(0.5)", curve[3])
	}
}
