package msclust

import (
	"sort"

	"github.com/rs/zerolog"
)

// TAAHCCorrelationFloor is the minimum projection a redistributed sample
// must clear to join a surviving cluster during descent; below it the sample becomes Undefined.
const TAAHCCorrelationFloor = 0.5

// TAAHC drives the Topographical Atomize-Agglomerate Hierarchical
// Clustering algorithm. It owns at most one checkpoint, a
// value copy of the template/labeling pair at K_max captured during the
// first descent, so a later call for a smaller K can resume without
// recomputing the full pairwise merge.
type TAAHC struct {
	checkpoint *taahcCheckpoint
}

type taahcCheckpoint struct {
	templates []Map
	labeling  *Labeling
	k         int
}

// NewTAAHC returns a fresh driver with no checkpoint.
func NewTAAHC() *TAAHC {
	return &TAAHC{}
}

// Run produces a K-cluster labeling. The first call for a given TAAHC
// value performs the full pairwise-merge initialization and descends
// from there, saving a checkpoint at kMax along the way; subsequent
// calls restore that checkpoint (a copy, not an alias) and descend
// directly from kMax.
func (a *TAAHC) Run(data *Data, targetK, kMax int, pol Polarity, centroid CentroidKind, reporter Reporter, log zerolog.Logger) ([]Map, *Labeling, int, error) {
	if targetK <= 0 {
		return nil, nil, 0, ErrNegativeK
	}
	if data == nil || len(data.Samples) == 0 {
		return nil, nil, 0, ErrNoData
	}
	if reporter == nil {
		reporter = NopReporter{}
	}

	var templates []Map
	var labeling *Labeling
	var count int
	saveCheckpoint := a.checkpoint == nil

	if a.checkpoint != nil {
		templates, labeling = copyCheckpoint(a.checkpoint)
		count = a.checkpoint.k
	} else {
		var err error
		templates, labeling, count, err = initPairLevel(data, pol)
		if err != nil {
			return nil, nil, 0, err
		}
	}

	if saveCheckpoint && count <= kMax {
		a.checkpoint = &taahcCheckpoint{
			templates: copyTemplates(templates),
			labeling:  copyLabeling(labeling),
			k:         count,
		}
		saveCheckpoint = false
	}

	for count > targetK {
		reporter.Next()

		cStar, ok := leastValuableCluster(data, labeling, templates, pol, count)
		if !ok {
			// A missing cluster is a sentinel: exit gracefully with
			// whatever count we have reached.
			log.Debug().Int("count", count).Msg("taahc: no valuable cluster found, stopping descent early")
			break
		}

		redistribute(data, labeling, templates, pol, cStar, count)
		shiftLabelsDown(labeling, cStar)
		templates = append(templates[:cStar], templates[cStar+1:]...)
		count--

		var recomputeOK bool
		templates, recomputeOK = recomputeTemplates(data, labeling, count, centroid)
		if !recomputeOK {
			return nil, nil, 0, ErrEmptyCluster
		}

		if saveCheckpoint && count <= kMax {
			a.checkpoint = &taahcCheckpoint{
				templates: copyTemplates(templates),
				labeling:  copyLabeling(labeling),
				k:         count,
			}
			saveCheckpoint = false
		}
	}

	// Final full reassignment + pack.
	assignAll(data, labeling, templates, pol, 0, data.NumTimeFrames-1)
	var ok bool
	templates, ok = recomputeTemplates(data, labeling, count, centroid)
	if !ok {
		return nil, nil, 0, ErrEmptyCluster
	}
	packedTemplates, finalK := Pack(labeling, templates)
	return packedTemplates, labeling, finalK, nil
}

func copyCheckpoint(c *taahcCheckpoint) ([]Map, *Labeling) {
	return copyTemplates(c.templates), copyLabeling(c.labeling)
}

func copyTemplates(templates []Map) []Map {
	out := make([]Map, len(templates))
	for i, t := range templates {
		out[i] = append(Map(nil), t...)
	}
	return out
}

func copyLabeling(l *Labeling) *Labeling {
	return &Labeling{
		Labels:   append([]int(nil), l.Labels...),
		Polarity: append([]Polarity(nil), l.Polarity...),
	}
}

// initPairLevel builds the initial T-AAHC state: every timepoint is its
// own template, then the globally best remaining correlation among still
// "alive" singleton pairs is merged repeatedly until no pair remains.
func initPairLevel(data *Data, pol Polarity) ([]Map, *Labeling, int, error) {
	n := data.NumTimeFrames
	templates := make([]Map, n)
	labeling := NewLabeling(n)
	for t := 0; t < n; t++ {
		m := make(Map, len(data.Samples[t]))
		copy(m, data.Samples[t])
		templates[t] = m
		labeling.SetLabel(t, t, Direct)
	}

	type pair struct {
		i, j int
		corr float64
	}
	var pairs []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{i, j, Project(templates[i], templates[j], pol)})
		}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].corr < pairs[b].corr })

	alive := make([]bool, n)
	for i := range alive {
		alive[i] = true
	}
	count := n

	for idx := len(pairs) - 1; idx >= 0; idx-- {
		p := pairs[idx]
		if !alive[p.i] || !alive[p.j] {
			continue
		}
		// merge j into i; both original indices are retired from further
		// pairing at this level even though i survives as a cluster (the
		// C++ source invalidates every row referencing either index).
		alive[p.i] = false
		alive[p.j] = false
		for t := range labeling.Labels {
			if labeling.Labels[t] == p.j {
				labeling.Labels[t] = p.i
			} else if labeling.Labels[t] > p.j {
				labeling.Labels[t]--
			}
		}
		templates = append(templates[:p.j], templates[p.j+1:]...)
		count--

		// shift alive/index bookkeeping for every later pair referencing
		// indices above j.
		for k := range pairs {
			if pairs[k].i > p.j {
				pairs[k].i--
			}
			if pairs[k].j > p.j {
				pairs[k].j--
			}
		}
		shifted := make([]bool, count)
		copy(shifted, alive[:p.j])
		copy(shifted[p.j:], alive[p.j+1:count+1])
		alive = shifted
	}

	templates, ok := recomputeTemplates(data, labeling, count, MeanCentroid)
	if !ok {
		return nil, nil, 0, ErrEmptyCluster
	}
	return templates, labeling, count, nil
}

// leastValuableCluster finds the cluster minimizing the sum over its
// members of project(T[c], D[t], pol).
func leastValuableCluster(data *Data, labeling *Labeling, templates []Map, pol Polarity, count int) (int, bool) {
	best := -1
	bestSum := posInf
	for c := 0; c < count; c++ {
		sum := 0.0
		n := 0
		for t, k := range labeling.Labels {
			if k != c {
				continue
			}
			sum += Project(templates[c], data.Samples[t], pol)
			n++
		}
		if n == 0 {
			continue
		}
		if sum < bestSum {
			bestSum = sum
			best = c
		}
	}
	return best, best != -1
}

const posInf = 1e300

// redistribute reassigns every sample of cStar to the best remaining
// cluster clearing TAAHCCorrelationFloor, or Undefined otherwise, then
// updates polarities over every timepoint.
func redistribute(data *Data, labeling *Labeling, templates []Map, pol Polarity, cStar, count int) {
	for t, k := range labeling.Labels {
		if k != cStar {
			continue
		}
		labeling.ResetAt(t)

		bestC := -1
		bestProj := negInf
		for c := 0; c < count; c++ {
			if c == cStar {
				continue
			}
			proj := Project(templates[c], data.Samples[t], pol)
			if proj >= TAAHCCorrelationFloor && proj > bestProj {
				bestProj = proj
				bestC = c
			}
		}
		if bestC != -1 {
			storedPol := pol
			if pol == Evaluate {
				if IsOpposite(templates[bestC], data.Samples[t]) {
					storedPol = Invert
				} else {
					storedPol = Direct
				}
			}
			labeling.SetLabel(t, bestC, storedPol)
		}
	}
	labeling.UpdatePolarities(data, 0, data.NumTimeFrames-1, templates, pol)
}

// shiftLabelsDown decrements every label greater than cStar by one,
// closing the gap left by removing cluster cStar.
func shiftLabelsDown(labeling *Labeling, cStar int) {
	for t, k := range labeling.Labels {
		if k != Undefined && k > cStar {
			labeling.Labels[t] = k - 1
		}
	}
}
