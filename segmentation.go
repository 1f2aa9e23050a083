package msclust

import (
	"fmt"
	"math/rand"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/eeg-microstates/msclust/criteria"
	"github.com/eeg-microstates/msclust/segio"
)

// Method is the closed tagged union over clustering algorithms:
// KMeansMethod or TAAHCMethod, each carrying its own per-method
// parameters instead of a bare tag.
type Method interface {
	isMethod()
}

type kmeansMethod struct{ nTrials int }

func (kmeansMethod) isMethod() {}

// KMeansMethod selects the K-means driver, run nTrials times per K.
func KMeansMethod(nTrials int) Method { return kmeansMethod{nTrials: nTrials} }

type taahcMethod struct{}

func (taahcMethod) isMethod() {}

// TAAHCMethod selects the T-AAHC driver.
func TAAHCMethod() Method { return taahcMethod{} }

// Ordering selects one of the four deterministic template re-orderings.
type Ordering int

const (
	NoOrdering Ordering = iota
	TemporalOrder
	FromTemplatesOrder
	TopographicalOrder
	AnatomicalOrder
)

// OutFlags selects which artifacts Segmentation persists to
// OutputBaseDir.
type OutFlags struct {
	WriteSeg         bool
	WriteTemplates   bool
	WriteErrorMarker bool
}

// ComputeOptions bundles every Segmentation parameter, including the
// concurrency (Parallelism) knob.
type ComputeOptions struct {
	KMin, KMax int
	Polarity   Polarity
	Method     Method
	Centroid   CentroidKind

	LimitCorr float64 // correlation floor shared by reject-low-correlation, smoothing, and short-segment redistribution

	DoMerge     bool
	MergeThresh float64

	DoSmooth     bool
	SmoothWindow int
	SmoothLambda float64

	DoReject   bool
	RejectSize int

	DoSequentialize bool

	Ordering          Ordering
	ExternalTemplates []Map
	Layout            Layout

	// RankCriteria/MaxCriteria select the meta-criterion's two
	// sub-selections; nil defaults to every value criterion
	// in criteria.AllValueCriteria for both.
	RankCriteria []criteria.ID
	MaxCriteria  []criteria.ID

	// KMetaFloor overrides the lower bound enforced on the chosen K;
	// 0 defaults to MetaCriterionFloor.
	KMetaFloor int

	OutputBaseDir string
	OutputBase    string
	OutFlags      OutFlags

	NTrialsDefault int // used only when Method is nil; otherwise ignored
	Parallelism    int
	Rand           *rand.Rand
}

// Result is what Segmentation returns: the chosen K, its templates and
// labeling, the meta-criterion selection that picked it, and the final
// GEV.
type Result struct {
	ChosenK   int
	Templates []Map
	Labeling  *Labeling
	Selection MetaCriterionSelection
	GEV       float64
}

// candidate bundles one K's clustering outcome, kept around so the
// meta-criterion can look at every K's neighbors after the whole sweep
// completes.
type candidate struct {
	k         int
	templates []Map
	labeling  *Labeling
	stats     *criteria.Stats
}

// Segmentation is the core entry point: sweep every K in
// [K_min,K_max], cluster, post-process, score, then let the
// meta-criterion pick the winner and persist its artifacts.
func Segmentation(data *Data, opts ComputeOptions, reporter Reporter, log zerolog.Logger) (Result, error) {
	if data == nil || len(data.Samples) == 0 {
		return Result{}, ErrNoData
	}
	if opts.KMin < 1 || opts.KMax < opts.KMin {
		return Result{}, ErrInvalidKRange
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = runtime.NumCPU()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	candidates, err := runAllK(data, opts, reporter, log, rng)
	if err != nil {
		return Result{}, err
	}

	matrix := criteria.NewMatrix()
	for i, c := range candidates {
		var prev, next *criteria.Stats
		if i > 0 {
			prev = candidates[i-1].stats
		}
		if i < len(candidates)-1 {
			next = candidates[i+1].stats
		}
		templatesRaw := toRawTemplates(c.templates)
		criteria.EvaluateAll(c.stats, prev, next, templatesRaw, data.NumElectrodes, matrix)
	}
	criteria.PersistSecondDerivatives(matrix, criteria.AllValueCriteria, opts.KMin, opts.KMax)

	rankIDs := opts.RankCriteria
	if rankIDs == nil {
		rankIDs = criteria.AllValueCriteria
	}
	maxIDs := opts.MaxCriteria
	if maxIDs == nil {
		maxIDs = criteria.AllValueCriteria
	}

	selection, err := SelectMetaCriterion(matrix, rankIDs, maxIDs, opts.KMin, opts.KMax, opts.KMetaFloor)
	if err != nil {
		log.Warn().Err(err).Msg("meta-criterion unavailable, falling back to K_max")
		selection = MetaCriterionSelection{ChosenK: opts.KMax}
	}

	winner := findCandidate(candidates, selection.ChosenK)
	if winner == nil {
		return Result{}, fmt.Errorf("msclust: no candidate computed for chosen K=%d", selection.ChosenK)
	}

	gev := ComputeGEV(data, winner.labeling, winner.templates, 0, data.NumTimeFrames-1)
	if err := writeArtifacts(data, winner, opts, selection.ChosenK); err != nil {
		return Result{}, err
	}

	return Result{
		ChosenK:   winner.k,
		Templates: winner.templates,
		Labeling:  winner.labeling,
		Selection: selection,
		GEV:       gev,
	}, nil
}

// runAllK clusters and post-processes every K in [K_min,K_max], in the
// order each method needs: ascending for K-means (independent per K),
// descending for T-AAHC so its checkpoint-at-K_max reuse actually saves work across the sweep.
func runAllK(data *Data, opts ComputeOptions, reporter Reporter, log zerolog.Logger, rng *rand.Rand) ([]*candidate, error) {
	results := make(map[int]*candidate, opts.KMax-opts.KMin+1)

	switch opts.Method.(type) {
	case taahcMethod:
		driver := NewTAAHC()
		for k := opts.KMax; k >= opts.KMin; k-- {
			templates, labeling, actualK, err := driver.Run(data, k, opts.KMax, opts.Polarity, opts.Centroid, reporter, log)
			if err != nil {
				log.Debug().Int("k", k).Err(err).Msg("taahc: descent stopped early")
				continue
			}
			results[k] = postProcessCandidate(data, opts, actualK, templates, labeling, log)
		}
	default: // kmeansMethod or nil defaults to K-means
		nTrials := opts.NTrialsDefault
		if m, ok := opts.Method.(kmeansMethod); ok {
			nTrials = m.nTrials
		}
		kmOpts := KMeansOptions{
			NTrials:     nTrials,
			Centroid:    opts.Centroid,
			Parallelism: opts.Parallelism,
			Rand:        rng,
		}
		for k := opts.KMin; k <= opts.KMax; k++ {
			templates, labeling, actualK, err := SegmentKMeans(data, k, opts.Polarity, kmOpts, reporter, log)
			if err != nil {
				log.Debug().Int("k", k).Err(err).Msg("kmeans: no viable trial")
				continue
			}
			results[k] = postProcessCandidate(data, opts, actualK, templates, labeling, log)
		}
	}

	var ordered []*candidate
	for k := opts.KMin; k <= opts.KMax; k++ {
		if c, ok := results[k]; ok {
			ordered = append(ordered, c)
		}
	}
	if len(ordered) == 0 {
		return nil, fmt.Errorf("msclust: no K in [%d,%d] produced a usable clustering", opts.KMin, opts.KMax)
	}
	return ordered, nil
}

// postProcessCandidate runs the segment post-processing pipeline: reject
// low correlation, merge correlated templates, smooth, reject short
// segments, sequentialize, reorder — then computes this K's distance
// stats.
func postProcessCandidate(data *Data, opts ComputeOptions, k int, templates []Map, labeling *Labeling, log zerolog.Logger) *candidate {
	if opts.LimitCorr > 0 {
		templates, k = RejectLowCorrelation(data, labeling, templates, opts.LimitCorr)
	}
	if opts.DoMerge {
		templates, k = MergeCorrelatedTemplates(data, labeling, templates, opts.MergeThresh, opts.Centroid)
	}
	if opts.DoSmooth {
		SmoothLabeling(data, labeling, templates, opts.Polarity, SmoothOptions{
			Window:    opts.SmoothWindow,
			Lambda:    opts.SmoothLambda,
			CorrFloor: opts.LimitCorr,
		})
		if newTemplates, ok := recomputeTemplates(data, labeling, k, opts.Centroid); ok {
			templates = newTemplates
		}
	}
	if opts.DoReject {
		RejectShortSegments(data, labeling, templates, opts.Polarity, opts.RejectSize, opts.LimitCorr)
		if newTemplates, ok := recomputeTemplates(data, labeling, k, opts.Centroid); ok {
			templates = newTemplates
		}
	}
	if opts.DoSequentialize {
		templates = Sequentialize(data, labeling, templates, opts.Centroid)
	}
	templates, labeling = applyOrdering(data, opts, templates, labeling)

	log.Debug().Int("k", len(templates)).Msg("segmentation: candidate post-processed")
	stats := computeStats(data, labeling, templates, opts.Polarity)
	return &candidate{k: len(templates), templates: templates, labeling: labeling, stats: stats}
}

func applyOrdering(data *Data, opts ComputeOptions, templates []Map, labeling *Labeling) ([]Map, *Labeling) {
	var ordering []int
	switch opts.Ordering {
	case TemporalOrder:
		ordering = TemporalOrdering(data, labeling, len(templates))
	case FromTemplatesOrder:
		if len(opts.ExternalTemplates) == 0 {
			return templates, labeling
		}
		ordering = FromTemplatesOrdering(templates, opts.ExternalTemplates)
	case TopographicalOrder:
		if len(opts.Layout.Sensors) == 0 {
			return templates, labeling
		}
		ordering = TopographicalOrdering(templates, opts.Layout.Sensors)
	case AnatomicalOrder:
		if len(opts.Layout.Sources) == 0 {
			return templates, labeling
		}
		ordering = AnatomicalOrdering(templates, opts.Layout.Sources)
	default:
		return templates, labeling
	}
	return Reorder(labeling, templates, ordering), labeling
}

func findCandidate(candidates []*candidate, k int) *candidate {
	for _, c := range candidates {
		if c.k == k {
			return c
		}
	}
	return nil
}

func toRawTemplates(templates []Map) [][]float64 {
	out := make([][]float64, len(templates))
	for i, t := range templates {
		out[i] = []float64(t)
	}
	return out
}

// writeArtifacts persists the winning candidate's .seg, templates, and
// error-marker files according to opts.OutFlags.
func writeArtifacts(data *Data, winner *candidate, opts ComputeOptions, chosenK int) error {
	if opts.OutputBaseDir == "" {
		return nil
	}

	if opts.OutFlags.WriteSeg {
		gev := make([]float64, data.NumTimeFrames)
		corr := make([]float64, data.NumTimeFrames)
		for t := 0; t < data.NumTimeFrames; t++ {
			k := winner.labeling.Labels[t]
			if k == Undefined {
				continue
			}
			proj := Project(winner.templates[k], data.Samples[t], winner.labeling.Polarity[t])
			corr[t] = proj
			gev[t] = guard(data.Norms[t]*data.Norms[t]*proj*proj, sumSq(data.Norms))
		}
		path := opts.OutputBaseDir + "/" + opts.OutputBase + ".seg"
		if err := winner.labeling.WriteFile(path, data, gev, corr); err != nil {
			return err
		}
	}

	if opts.OutFlags.WriteTemplates {
		path := segio.TemplatesPath(opts.OutputBaseDir, opts.OutputBase, winner.k)
		if err := segio.WriteTemplates(path, toRawTemplates(winner.templates)); err != nil {
			return err
		}
	}

	if opts.OutFlags.WriteErrorMarker {
		path := opts.OutputBaseDir + "/" + opts.OutputBase + ".error.data.mrk"
		if err := segio.WriteErrorMarker(path, chosenK); err != nil {
			return err
		}
	}

	return nil
}

func sumSq(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x * x
	}
	return s
}
