package msclust

import "math"

// Undefined is the distinguished label value meaning "no cluster assigned".
const Undefined = -1

// Map is a single R-length real vector: one spatial pattern at one
// timepoint, or one template. In the analysis phase every Map is centered
// and unit-norm.
type Map []float64

// Polarity indicates whether an assigned template matches a sample
// directly or with its sign flipped.
type Polarity int8

const (
	// Direct means the sample matches its template without sign flip.
	Direct Polarity = iota
	// Invert means the sample matches its template with the sign flipped.
	Invert
	// Evaluate is a request, never a stored value: "decide Direct vs
	// Invert from the data". Setters reject it; UpdatePolarities and the
	// assignment passes resolve it to Direct or Invert.
	Evaluate
)

func (p Polarity) String() string {
	switch p {
	case Direct:
		return "Direct"
	case Invert:
		return "Invert"
	case Evaluate:
		return "Evaluate"
	default:
		return "Unknown"
	}
}

// CentroidKind selects how a cluster's representative Map is computed from
// its member samples.
type CentroidKind int8

const (
	// MeanCentroid averages member samples (sign-adjusted by polarity).
	MeanCentroid CentroidKind = iota
	// MedianCentroid takes the coordinate-wise median of member samples.
	MedianCentroid
)

// FileInterval describes one concatenated recording's absolute timepoint
// range within the shared Data matrix. No pairwise relation (distance,
// smoothing neighborhood, merge) may cross from one file's interval into
// another's unless explicitly allowed.
type FileInterval struct {
	NumTF  int // number of timeframes in this file
	Offset int // absolute offset of this file's first timepoint
}

// TFMin is the absolute index of this file's first timepoint.
func (f FileInterval) TFMin() int { return f.Offset }

// TFMax is the absolute index of this file's last timepoint (inclusive).
func (f FileInterval) TFMax() int { return f.Offset + f.NumTF - 1 }

// Data is the input contract from the loader: a matrix of
// already-centered, already unit-norm samples, plus the bookkeeping
// needed to respect file boundaries and to recover GFP.
type Data struct {
	Samples           []Map          // Samples[t] is the t'th sample, length NumRows
	NumElectrodes     int            // E
	NumRows           int            // R: E for scalar data, 3*E for 3-vector data
	NumTimeFrames     int            // T == len(Samples)
	Files             []FileInterval // per-file absolute intervals, must tile [0,T)
	SamplingFrequency float64        // informational only
	Norms             []float64      // ||Samples[t]|| prior to normalization (GFP proxy)
}

// FileOf returns the index of the file interval containing absolute
// timepoint t, or -1 if t is out of range.
func (d *Data) FileOf(t int) int {
	for i, f := range d.Files {
		if t >= f.TFMin() && t <= f.TFMax() {
			return i
		}
	}
	return -1
}

// GFP returns the global field power (the norm before normalization) of
// timepoint t.
func (d *Data) GFP(t int) float64 {
	if t < 0 || t >= len(d.Norms) {
		return math.NaN()
	}
	return d.Norms[t]
}

// Point2D is a 2D sensor-layout position, used only by the topographical
// reordering.
type Point2D struct{ X, Y float64 }

// Point3D is a standardized RAS source-space coordinate, used only by the
// anatomical reordering.
type Point3D struct{ X, Y, Z float64 }

// Layout carries the caller-supplied geometry needed by template
// reorderings: a narrow read-only boundary onto externally maintained
// sensor/source geometry. Spatial reference and coregistration are not
// this package's concern.
type Layout struct {
	Sensors []Point2D // per-electrode 2D projected position, for Topographical
	Sources []Point3D // per-source-point RAS coordinate, for Anatomical
}
