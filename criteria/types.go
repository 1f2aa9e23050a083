package criteria

// ID names one row of the criteria Matrix: either an intermediate
// statistic or a final validity criterion.
type ID string

// Intermediate statistics, persisted so downstream criteria can reuse
// them without recomputation.
const (
	SumW    ID = "sum_w"     // sum of within-cluster centroid distances
	SumWSq  ID = "sum_w_sq"  // sum of squared within-cluster centroid distances
	SumBSq  ID = "sum_b_sq"  // sum of squared between-cluster centroid distances
	LogDetW ID = "logdet_w"  // log-determinant style summary of W_pooled
	Stride  ID = "stride"    // downsampling stride used to build this K's stats
	NEff    ID = "n_eff"     // effective (downsampled) sample count for this K
)

// Value criteria. Each one is a single scalar per K, oriented
// so higher is always better.
const (
	CH            ID = "calinski_harabasz"
	CIndex        ID = "c_index"
	CV            ID = "cross_validation"
	DB            ID = "davies_bouldin"
	Dunn          ID = "dunn"
	DunnRobust    ID = "dunn_robust"
	FVG           ID = "frey_van_groenewoud"
	Gamma         ID = "gamma"
	GPlus         ID = "g_plus"
	Hartigan      ID = "hartigan"
	KLStandard    ID = "krzanowski_lai"
	KLCartool     ID = "krzanowski_lai_cartool"
	McClain       ID = "mcclain"
	PB            ID = "point_biserial"
	Ratkowski     ID = "ratkowski"
	Silhouette    ID = "silhouette"
	TraceW        ID = "trace_w"
	Tau           ID = "tau"
	CCC           ID = "ccc"
)

// AllValueCriteria lists every value criterion in a stable order, used as
// the default selection bank for the meta-criterion.
var AllValueCriteria = []ID{
	CH, CIndex, CV, DB, Dunn, DunnRobust, FVG, Gamma, GPlus, Hartigan,
	KLStandard, KLCartool, McClain, PB, Ratkowski, Silhouette, TraceW, Tau, CCC,
}

// DerivedID names the second-derivative variant of a value criterion's
// row: the raw curve's curvature when ranked is false, the
// rank-transformed curve's curvature when ranked is true.
func DerivedID(id ID, ranked bool) ID {
	if ranked {
		return id + "_d2_rank"
	}
	return id + "_d2"
}

// Matrix holds one real value per (criterion ID, K). K values are
// absolute cluster counts, not zero-based indices.
type Matrix struct {
	values map[ID]map[int]float64
}

// NewMatrix returns an empty Matrix.
func NewMatrix() *Matrix {
	return &Matrix{values: make(map[ID]map[int]float64)}
}

// Set stores v for (id, k).
func (m *Matrix) Set(id ID, k int, v float64) {
	row, ok := m.values[id]
	if !ok {
		row = make(map[int]float64)
		m.values[id] = row
	}
	row[k] = v
}

// Get returns the value for (id, k) and whether it is present.
func (m *Matrix) Get(id ID, k int) (float64, bool) {
	row, ok := m.values[id]
	if !ok {
		return 0, false
	}
	v, ok := row[k]
	return v, ok
}

// Row returns the stored (K, value) pairs for id, in ascending K order.
// Ks not present for id are omitted: this is the representation of a
// "null" value at a given K.
func (m *Matrix) Row(id ID, kMin, kMax int) (ks []int, vals []float64) {
	row, ok := m.values[id]
	if !ok {
		return nil, nil
	}
	for k := kMin; k <= kMax; k++ {
		if v, ok := row[k]; ok {
			ks = append(ks, k)
			vals = append(vals, v)
		}
	}
	return ks, vals
}

// Span returns the number of non-null values id has over [kMin,kMax],
// the quantity the meta-criterion's "degenerate criterion" drop rule
// tests against the threshold of 1.
func (m *Matrix) Span(id ID, kMin, kMax int) int {
	ks, _ := m.Row(id, kMin, kMax)
	return len(ks)
}
