package msclust

// MergeCorrelatedTemplates repeatedly merges the most correlated pair of
// templates until the best remaining absolute correlation falls below
// threshold. Returns the packed template set and its count.
func MergeCorrelatedTemplates(data *Data, labeling *Labeling, templates []Map, threshold float64, centroid CentroidKind) ([]Map, int) {
	for {
		i, j, proj, found := mostCorrelatedPair(templates)
		if !found || absf(proj) < threshold {
			break
		}

		sign := 1.0
		if proj < 0 {
			sign = -1
		}
		merged := make(Map, len(templates[i]))
		for r := range merged {
			merged[r] = templates[i][r] + sign*templates[j][r]
		}
		normalize(merged)

		for t, k := range labeling.Labels {
			switch {
			case k == i || k == j:
				pol := Direct
				if IsOpposite(merged, data.Samples[t]) {
					pol = Invert
				}
				labeling.SetLabel(t, i, pol)
			case k > j:
				labeling.Labels[t] = k - 1
			}
		}

		templates = append(templates[:j], templates[j+1:]...)
		newTemplates, ok := recomputeTemplates(data, labeling, len(templates), centroid)
		if !ok {
			break
		}
		templates = newTemplates
	}

	return Pack(labeling, templates)
}

// mostCorrelatedPair returns the indices (i<j) of the pair of templates
// with largest absolute projection, and that projection.
func mostCorrelatedPair(templates []Map) (i, j int, proj float64, found bool) {
	best := negInf
	for a := 0; a < len(templates); a++ {
		for b := a + 1; b < len(templates); b++ {
			p := Project(templates[a], templates[b], Evaluate)
			raw := Project(templates[a], templates[b], Direct)
			if p > best {
				best = p
				i, j, proj, found = a, b, raw, true
			}
		}
	}
	return i, j, proj, found
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// SmoothOptions configures SmoothLabeling.
type SmoothOptions struct {
	Window    int     // W: half-window of temporal neighbors
	Lambda    float64 // smoothing strength; 0 reduces to best-template assignment
	CorrFloor float64 // minimum |project| a candidate label must clear
}

// SmoothLabeling applies Besag-style spatial smoothing over each file
// interval independently, for up to 20 passes, stopping early on
// convergence, oscillation, or a degenerate GEV. Mutates
// labeling in place and leaves templates untouched; the caller
// recomputes them separately.
func SmoothLabeling(data *Data, labeling *Labeling, templates []Map, pol Polarity, opts SmoothOptions) float64 {
	const maxPasses = 20
	k := len(templates)
	gev := ComputeGEV(data, labeling, templates, 0, data.NumTimeFrames-1)

	for pass := 0; pass < maxPasses; pass++ {
		sigma2mu := globalSigma2Mu(data, labeling, templates)
		next := copyLabeling(labeling)

		for _, f := range data.Files {
			for t := f.TFMin(); t <= f.TFMax(); t++ {
				smoothOne(data, labeling, templates, pol, t, f, k, sigma2mu, opts, next)
			}
		}

		*labeling = *next
		newGEV := ComputeGEV(data, labeling, templates, 0, data.NumTimeFrames-1)
		if relativeDifference(newGEV, gev) < LabelingConvergence || newGEV < gev || newGEV == 0 {
			gev = newGEV
			break
		}
		gev = newGEV
	}
	return gev
}

// smoothOne relabels a single timepoint based on its neighbor histogram.
func smoothOne(data *Data, labeling *Labeling, templates []Map, pol Polarity, t int, f FileInterval, k int, sigma2mu float64, opts SmoothOptions, next *Labeling) {
	hist := make([]int, k+1) // hist[k] is the undefined bucket
	total := 0
	for n := t - opts.Window; n <= t+opts.Window; n++ {
		if n == t || n < f.TFMin() || n > f.TFMax() {
			continue
		}
		lk := labeling.Labels[n]
		if lk == Undefined {
			hist[k]++
		} else {
			hist[lk]++
		}
		total++
	}

	if labeling.Labels[t] == Undefined && total > 0 && hist[k]*2 > total {
		next.ResetAt(t)
		return
	}

	normSq := data.Norms[t] * data.Norms[t]
	bestK := Undefined
	bestScore := posInf
	bestPol := Direct
	for c := 0; c < k; c++ {
		proj := Project(templates[c], data.Samples[t], pol)
		if absf(proj) < opts.CorrFloor {
			continue
		}
		score := guard(normSq*(1-proj*proj), 2*sigma2mu*float64(data.NumElectrodes-1)) - opts.Lambda*float64(hist[c])
		if score < bestScore {
			bestScore = score
			bestK = c
			bestPol = Direct
			if pol == Evaluate && IsOpposite(templates[c], data.Samples[t]) {
				bestPol = Invert
			}
		}
	}

	if bestK == Undefined {
		next.ResetAt(t)
		return
	}
	next.SetLabel(t, bestK, bestPol)
}

// globalSigma2Mu sums ||D[t]||^2 * (1 - project^2) over every defined
// timepoint, the same unexplained-variance quantity ComputeGEV derives
// its ratio from.
func globalSigma2Mu(data *Data, labeling *Labeling, templates []Map) float64 {
	var sum float64
	for t, k := range labeling.Labels {
		if k == Undefined {
			continue
		}
		proj := Project(templates[k], data.Samples[t], labeling.Polarity[t])
		sum += data.Norms[t] * data.Norms[t] * (1 - proj*proj)
	}
	return sum
}

// RejectLowCorrelation marks every timepoint whose stored-polarity
// projection onto its assigned template falls below threshold as
// Undefined, then packs.
func RejectLowCorrelation(data *Data, labeling *Labeling, templates []Map, threshold float64) ([]Map, int) {
	for t, k := range labeling.Labels {
		if k == Undefined {
			continue
		}
		proj := Project(templates[k], data.Samples[t], labeling.Polarity[t])
		if proj < threshold {
			labeling.ResetAt(t)
		}
	}
	return Pack(labeling, templates)
}

// RejectShortSegments deletes every maximal run of a constant label
// whose length is at most rMin, then redistributes the deleted regions
// to their surviving neighbors. All short runs are found
// before any redistribution happens, so overlapping deletions never
// compound.
func RejectShortSegments(data *Data, labeling *Labeling, templates []Map, pol Polarity, rMin int, corrFloor float64) {
	toDelete := make([]bool, data.NumTimeFrames)
	for _, f := range data.Files {
		runStart := f.TFMin()
		for t := f.TFMin(); t <= f.TFMax(); t++ {
			atEnd := t == f.TFMax()
			changes := atEnd || labeling.Labels[t+1] != labeling.Labels[runStart]
			if changes {
				if t-runStart+1 <= rMin {
					for s := runStart; s <= t; s++ {
						toDelete[s] = true
					}
				}
				runStart = t + 1
			}
		}
	}

	for _, f := range data.Files {
		t := f.TFMin()
		for t <= f.TFMax() {
			if !toDelete[t] {
				t++
				continue
			}
			a := t
			b := t
			for b+1 <= f.TFMax() && toDelete[b+1] {
				b++
			}
			redistributeChunk(data, labeling, templates, pol, f, a, b, corrFloor)
			t = b + 1
		}
	}

	labeling.UpdatePolarities(data, 0, data.NumTimeFrames-1, templates, pol)
}

// redistributeChunk reassigns one deleted chunk [a,b] within file f to
// its surviving neighbors.
func redistributeChunk(data *Data, labeling *Labeling, templates []Map, pol Polarity, f FileInterval, a, b int, corrFloor float64) {
	hasLeft := a > f.TFMin()
	hasRight := b < f.TFMax()

	assignOrUndefined := func(t, neighborLabel int) {
		proj := Project(templates[neighborLabel], data.Samples[t], pol)
		if absf(proj) >= corrFloor {
			labeling.SetLabel(t, neighborLabel, Direct)
		} else {
			labeling.ResetAt(t)
		}
	}

	switch {
	case !hasLeft && hasRight:
		right := labeling.Labels[b+1]
		for t := a; t <= b; t++ {
			assignOrUndefined(t, right)
		}
	case hasLeft && !hasRight:
		left := labeling.Labels[a-1]
		for t := a; t <= b; t++ {
			assignOrUndefined(t, left)
		}
	case !hasLeft && !hasRight:
		for t := a; t <= b; t++ {
			labeling.ResetAt(t)
		}
	default:
		left := labeling.Labels[a-1]
		right := labeling.Labels[b+1]
		lo, hi := a, b
		for lo <= hi {
			projLeft := Project(templates[left], data.Samples[lo], pol)
			projRight := Project(templates[right], data.Samples[lo], pol)
			if projLeft < projRight {
				break
			}
			labeling.SetLabel(lo, left, Direct)
			lo++
		}
		for hi >= lo {
			projLeft := Project(templates[left], data.Samples[hi], pol)
			projRight := Project(templates[right], data.Samples[hi], pol)
			if projRight < projLeft {
				break
			}
			labeling.SetLabel(hi, right, Direct)
			hi--
		}
		if lo <= hi {
			mid := (lo + hi) / 2
			for t := lo; t <= mid; t++ {
				labeling.SetLabel(t, left, Direct)
			}
			for t := mid + 1; t <= hi; t++ {
				labeling.SetLabel(t, right, Direct)
			}
		}
	}
}

// Sequentialize promotes every run of a label after its first
// chronological occurrence (scanning files in order) to a brand-new
// cluster id, then recomputes templates.
func Sequentialize(data *Data, labeling *Labeling, templates []Map, centroid CentroidKind) []Map {
	seenFirst := make(map[int]bool)
	nextID := len(templates)

	for _, f := range data.Files {
		t := f.TFMin()
		for t <= f.TFMax() {
			k := labeling.Labels[t]
			if k == Undefined {
				t++
				continue
			}
			runEnd := t
			for runEnd+1 <= f.TFMax() && labeling.Labels[runEnd+1] == k {
				runEnd++
			}

			if seenFirst[k] {
				for s := t; s <= runEnd; s++ {
					labeling.Labels[s] = nextID
				}
				nextID++
			} else {
				seenFirst[k] = true
			}
			t = runEnd + 1
		}
	}

	newTemplates, ok := recomputeTemplates(data, labeling, nextID, centroid)
	if !ok {
		// A newly-minted singleton id always has at least one member by
		// construction, so this only trips if nextID somehow outgrew the
		// label range; fall back to the original templates unchanged.
		return templates
	}
	return newTemplates
}
