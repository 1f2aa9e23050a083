package msclust

import (
	"fmt"

	"github.com/eeg-microstates/msclust/segio"
)

// Labeling is the parallel pair of per-timepoint arrays: a template
// index (or Undefined) and a polarity flag. The invariant held after
// every public operation below is: whenever Labels[t] == Undefined,
// Polarity[t] == Direct.
type Labeling struct {
	Labels   []int
	Polarity []Polarity
}

// NewLabeling allocates a Labeling of length t, fully reset.
func NewLabeling(t int) *Labeling {
	l := &Labeling{
		Labels:   make([]int, t),
		Polarity: make([]Polarity, t),
	}
	l.Reset()
	return l
}

// allocated reports whether the store has been sized; it backs the
// "unreadable persisted label file" error kind: callers get a
// clean false rather than a panic.
func (l *Labeling) allocated() bool {
	return l != nil && l.Labels != nil
}

// Reset sets every label to Undefined and every polarity to Direct.
func (l *Labeling) Reset() {
	for t := range l.Labels {
		l.Labels[t] = Undefined
		l.Polarity[t] = Direct
	}
}

// ResetAt resets a single timepoint.
func (l *Labeling) ResetAt(t int) {
	l.Labels[t] = Undefined
	l.Polarity[t] = Direct
}

// ResetRange resets timepoints in [tmin, tmax] inclusive.
func (l *Labeling) ResetRange(tmin, tmax int) {
	for t := tmin; t <= tmax; t++ {
		l.Labels[t] = Undefined
		l.Polarity[t] = Direct
	}
}

// SetLabel stores a label and polarity for timepoint t. pol must be
// Direct or Invert; Evaluate is a request and is never stored.
func (l *Labeling) SetLabel(t, k int, pol Polarity) error {
	if pol == Evaluate {
		return fmt.Errorf("msclust: SetLabel cannot store Evaluate polarity")
	}
	l.Labels[t] = k
	if k == Undefined {
		l.Polarity[t] = Direct
	} else {
		l.Polarity[t] = pol
	}
	return nil
}

// UpdatePolarities recomputes Polarity[t] for t in [tmin,tmax] against
// the current templates. When req == Evaluate, a defined t gets Invert
// iff its template and sample are opposite-direction; otherwise it is forced to Direct. Undefined
// timepoints are left at Direct. Safe to run in parallel per-timepoint.
func (l *Labeling) UpdatePolarities(data *Data, tmin, tmax int, templates []Map, req Polarity) {
	for t := tmin; t <= tmax; t++ {
		k := l.Labels[t]
		if k == Undefined {
			l.Polarity[t] = Direct
			continue
		}
		if req == Evaluate {
			if IsOpposite(templates[k], data.Samples[t]) {
				l.Polarity[t] = Invert
			} else {
				l.Polarity[t] = Direct
			}
		} else {
			l.Polarity[t] = Direct
		}
	}
}

// CountLabels returns the number of distinct defined labels, early
// exiting once every value in [0,kMax) has been observed.
func (l *Labeling) CountLabels(kMax int) int {
	seen := make([]bool, kMax)
	count := 0
	for _, k := range l.Labels {
		if k == Undefined || k < 0 || k >= kMax {
			continue
		}
		if !seen[k] {
			seen[k] = true
			count++
			if count == kMax {
				break
			}
		}
	}
	return count
}

// MaxLabel returns the largest defined label, or Undefined if none.
func (l *Labeling) MaxLabel() int {
	max := Undefined
	for _, k := range l.Labels {
		if k > max {
			max = k
		}
	}
	return max
}

// ClusterSize counts timepoints assigned to cluster k.
func (l *Labeling) ClusterSize(k int) int {
	n := 0
	for _, v := range l.Labels {
		if v == k {
			n++
		}
	}
	return n
}

// ClusterSizeRange counts timepoints per cluster for k in [kLo,kHi],
// optionally downsampled by step (step<=1 means every timepoint).
func (l *Labeling) ClusterSizeRange(kLo, kHi, step int) []int {
	if step < 1 {
		step = 1
	}
	sizes := make([]int, kHi-kLo+1)
	for t := 0; t < len(l.Labels); t += step {
		k := l.Labels[t]
		if k >= kLo && k <= kHi {
			sizes[k-kLo]++
		}
	}
	return sizes
}

// members returns the memberRef list for cluster k, used by Centroid.
func (l *Labeling) members(k int) []memberRef {
	var out []memberRef
	for t, lk := range l.Labels {
		if lk == k {
			out = append(out, memberRef{t: t, pol: l.Polarity[t]})
		}
	}
	return out
}

// Pack removes empty clusters, compacting label ids and the parallel
// template rows downward so the surviving ids are exactly {0,...,K'-1}.
// Returns the final cluster count K'.
func Pack(labeling *Labeling, templates []Map) ([]Map, int) {
	maxK := labeling.MaxLabel()
	if maxK < 0 {
		return templates[:0], 0
	}

	mapping := make([]int, maxK+1)
	for i := range mapping {
		mapping[i] = -1
	}
	next := 0
	for _, k := range labeling.Labels {
		if k != Undefined && mapping[k] == -1 {
			mapping[k] = next
			next++
		}
	}

	for t, k := range labeling.Labels {
		if k != Undefined {
			labeling.Labels[t] = mapping[k]
		}
	}

	packed := make([]Map, next)
	for old, nw := range mapping {
		if nw != -1 {
			packed[nw] = templates[old]
		}
	}
	return packed, next
}

// Reorder applies a permutation to both label ids and template rows
// atomically: ordering[newIdx] = oldIdx. Must not run concurrently with
// per-timepoint label mutation.
func Reorder(labeling *Labeling, templates []Map, ordering []int) []Map {
	inverse := make([]int, len(ordering))
	for newIdx, oldIdx := range ordering {
		inverse[oldIdx] = newIdx
	}

	for t, k := range labeling.Labels {
		if k != Undefined {
			labeling.Labels[t] = inverse[k]
		}
	}

	out := make([]Map, len(templates))
	for newIdx, oldIdx := range ordering {
		out[newIdx] = templates[oldIdx]
	}
	return out
}

// WriteFile persists the labeling and its quality metrics to a .seg file.
// gev and corr are per-timepoint GEV share and correlation with the
// assigned template, typically produced by the caller from the same
// Data/templates used to build the labeling.
func (l *Labeling) WriteFile(path string, data *Data, gev, corr []float64) error {
	if !l.allocated() {
		return ErrNotAllocated
	}
	records := make([]segio.Record, len(l.Labels))
	for t := range l.Labels {
		pol := 1.0
		if l.Polarity[t] == Invert {
			pol = -1.0
		}
		seg := 0
		if l.Labels[t] != Undefined {
			seg = l.Labels[t] + 1
		}
		records[t] = segio.Record{
			GFP:      data.GFP(t),
			Polarity: pol,
			Segment:  seg,
			GEV:      gev[t],
			Corr:     corr[t],
		}
	}
	return segio.WriteSeg(path, records)
}

// ReadFile loads a .seg file back into a Labeling (and returns the
// per-timepoint GEV/Corr columns alongside it). Segment column 0 maps to
// Undefined, k maps to k-1; Polarity -1 maps to Invert, anything else to
// Direct. Legacy files with a Dis column instead of Polarity are
// accepted transparently by segio.ReadSeg.
func ReadFile(path string) (*Labeling, []float64, []float64, error) {
	records, err := segio.ReadSeg(path)
	if err != nil {
		return nil, nil, nil, err
	}
	l := &Labeling{
		Labels:   make([]int, len(records)),
		Polarity: make([]Polarity, len(records)),
	}
	gev := make([]float64, len(records))
	corr := make([]float64, len(records))
	for t, r := range records {
		if r.Segment == 0 {
			l.Labels[t] = Undefined
		} else {
			l.Labels[t] = r.Segment - 1
		}
		if r.Polarity == -1 {
			l.Polarity[t] = Invert
		} else {
			l.Polarity[t] = Direct
		}
		gev[t] = r.GEV
		corr[t] = r.Corr
	}
	return l, gev, corr, nil
}
