package msclust

import (
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
)

// KMeansMaxIter bounds the inner assignment/update loop.
const KMeansMaxIter = 100

// KMeansMaxRetries bounds how many times a single trial is re-seeded and
// re-run after hitting an empty cluster before it is given up on.
const KMeansMaxRetries = 5

// LabelingConvergence is the relative ΔGEV threshold that stops the
// inner loop.
const LabelingConvergence = 1e-6

// KMeansOptions configures SegmentKMeans.
type KMeansOptions struct {
	NTrials     int
	Centroid    CentroidKind
	Ranking     bool
	Parallelism int
	Rand        *rand.Rand // nil uses a new source seeded with 1
}

// kmeansResult is one trial's outcome, shaped so trials reduce
// deterministically regardless of goroutine completion order.
type kmeansResult struct {
	templates []Map
	labeling  *Labeling
	gev       float64
	ok        bool
}

// SegmentKMeans runs K-means multi-start clustering: N_trials
// random-seeded runs, keeping the trial with the largest final GEV, then
// packing the winning labeling. Returns the (possibly reduced) template
// set, the packed labeling, and the resulting cluster count.
func SegmentKMeans(data *Data, k int, pol Polarity, opts KMeansOptions, reporter Reporter, log zerolog.Logger) ([]Map, *Labeling, int, error) {
	if k <= 0 {
		return nil, nil, 0, ErrNegativeK
	}
	if data == nil || len(data.Samples) == 0 {
		return nil, nil, 0, ErrNoData
	}
	if reporter == nil {
		reporter = NopReporter{}
	}

	nTrials := opts.NTrials
	if nTrials < 1 {
		nTrials = 1
	}
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	results := make([]chan kmeansResult, nTrials)
	for i := range results {
		results[i] = make(chan kmeansResult, 1)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, parallelism)
	for trial := 0; trial < nTrials; trial++ {
		if k == 1 && trial > 0 {
			// Only one trial is meaningful for K=1; skip the work but
			// still advance the reporter.
			results[trial] <- kmeansResult{}
			reporter.Next()
			continue
		}

		wg.Add(1)
		go func(trial int, seed int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			trialRng := rand.New(rand.NewSource(seed))
			var templates []Map
			var labeling *Labeling
			var gev float64
			var ok bool
			for attempt := 0; attempt <= KMeansMaxRetries; attempt++ {
				templates, labeling, gev, ok = runKMeansTrial(data, k, pol, opts.Centroid, opts.Ranking, trialRng, log)
				if ok {
					break
				}
				log.Debug().Int("trial", trial).Int("attempt", attempt).Msg("kmeans: re-running trial after empty cluster")
			}
			results[trial] <- kmeansResult{templates: templates, labeling: labeling, gev: gev, ok: ok}
			reporter.Next()
		}(trial, rng.Int63())
	}
	wg.Wait()

	var best kmeansResult
	haveBest := false
	for i := 0; i < nTrials; i++ {
		r := <-results[i]
		if !r.ok {
			continue
		}
		if !haveBest || r.gev > best.gev {
			best = r
			haveBest = true
		}
	}
	if !haveBest {
		return nil, nil, 0, ErrEmptyCluster
	}

	packedTemplates, finalK := Pack(best.labeling, best.templates)
	return packedTemplates, best.labeling, finalK, nil
}

// runKMeansTrial runs a single K-means trial to convergence. Returns ok=false if a cluster ever became empty, signaling
// the caller should treat this trial as aborted.
func runKMeansTrial(data *Data, k int, pol Polarity, centroid CentroidKind, ranking bool, rng *rand.Rand, log zerolog.Logger) ([]Map, *Labeling, float64, bool) {
	templates := seedRandomMaps(data, k, rng)
	labeling := NewLabeling(data.NumTimeFrames)

	assignAll(data, labeling, templates, pol, 0, data.NumTimeFrames-1)

	var gev float64
	for iter := 0; iter < KMeansMaxIter; iter++ {
		newTemplates, ok := recomputeTemplates(data, labeling, k, MeanCentroid)
		if !ok {
			log.Debug().Int("k", k).Int("iter", iter).Msg("kmeans trial aborted: empty cluster")
			return nil, nil, 0, false
		}
		templates = newTemplates

		assignAll(data, labeling, templates, pol, 0, data.NumTimeFrames-1)

		gevBefore := gev
		gev = ComputeGEV(data, labeling, templates, 0, data.NumTimeFrames-1)

		if relativeDifference(gev, gevBefore) < LabelingConvergence || gev < gevBefore {
			break
		}
		if ranking {
			log.Debug().Int("k", k).Int("iter", iter).Float64("gev", gev).Msg("kmeans trial progress")
		}
	}

	if centroid != MeanCentroid {
		newTemplates, ok := recomputeTemplates(data, labeling, k, centroid)
		if !ok {
			return nil, nil, 0, false
		}
		templates = newTemplates
		assignAll(data, labeling, templates, pol, 0, data.NumTimeFrames-1)
		gev = ComputeGEV(data, labeling, templates, 0, data.NumTimeFrames-1)
	}

	return templates, labeling, gev, true
}

// seedRandomMaps picks k distinct random timepoints as initial templates.
func seedRandomMaps(data *Data, k int, rng *rand.Rand) []Map {
	picked := make(map[int]bool, k)
	templates := make([]Map, k)
	for nc := 0; nc < k; {
		t := rng.Intn(data.NumTimeFrames)
		if picked[t] {
			continue
		}
		picked[t] = true
		m := make(Map, len(data.Samples[t]))
		copy(m, data.Samples[t])
		templates[nc] = m
		nc++
	}
	return templates
}

// assignAll sets label[t] = argmax_k project(T[k], D[t], pol) for every
// t in [tmin,tmax], with no correlation threshold.
func assignAll(data *Data, labeling *Labeling, templates []Map, pol Polarity, tmin, tmax int) {
	for t := tmin; t <= tmax; t++ {
		bestK, bestProj, bestPol := argmaxTemplate(templates, data.Samples[t], pol)
		labeling.SetLabel(t, bestK, bestPol)
		_ = bestProj
	}
}

// argmaxTemplate finds the template maximizing project(T[k], sample, pol)
// and the polarity that should be stored for it: when pol is Evaluate the
// stored polarity resolves to whichever of Direct/Invert produced the
// larger signed projection.
func argmaxTemplate(templates []Map, sample Map, pol Polarity) (bestK int, bestProj float64, storedPol Polarity) {
	bestProj = negInf
	for k, tpl := range templates {
		proj := Project(tpl, sample, pol)
		if proj > bestProj {
			bestProj = proj
			bestK = k
			if pol == Evaluate {
				if IsOpposite(tpl, sample) {
					storedPol = Invert
				} else {
					storedPol = Direct
				}
			} else {
				storedPol = pol
			}
		}
	}
	return bestK, bestProj, storedPol
}

const negInf = -1e300

// recomputeTemplates rebuilds every cluster's centroid from the current
// labeling. Returns ok=false the moment any cluster is empty.
func recomputeTemplates(data *Data, labeling *Labeling, k int, kind CentroidKind) ([]Map, bool) {
	templates := make([]Map, k)
	for c := 0; c < k; c++ {
		members := labeling.members(c)
		if len(members) == 0 {
			return nil, false
		}
		centroid, ok := Centroid(data, members, kind)
		if !ok {
			return nil, false
		}
		templates[c] = centroid
	}
	return templates, true
}
