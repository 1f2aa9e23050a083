package msclust

import "errors"

// Sentinel errors for invariant violations. K-means reruns the trial
// that produced one of these; T-AAHC treats a missing cluster as a
// sentinel and exits its descent gracefully.
var (
	// ErrEmptyCluster is returned when a cluster loses every member
	// during centroid recomputation.
	ErrEmptyCluster = errors.New("msclust: cluster has zero members")

	// ErrDimensionMismatch names a disagreement between templates and
	// data on the number of rows R. No function in this package checks
	// for that case or returns this error.
	ErrDimensionMismatch = errors.New("msclust: template and data dimensions do not match")

	// ErrNegativeK is returned for a negative or zero cluster-count
	// request.
	ErrNegativeK = errors.New("msclust: cluster count must be positive")

	// ErrNotAllocated is returned by the labeling store when asked to
	// operate on an unallocated labeling.
	ErrNotAllocated = errors.New("msclust: labeling store is not allocated")

	// ErrNoData is returned when Segmentation is called with an empty
	// Data value.
	ErrNoData = errors.New("msclust: no data supplied")

	// ErrInvalidKRange is returned when K_min > K_max or K_min < 1.
	ErrInvalidKRange = errors.New("msclust: invalid K_min/K_max range")

	// ErrTooFewCriteria is the "no acceptable criterion" error kind:
	// fewer than three criteria survived for the meta-criterion.
	// Segmentation does not treat it as fatal: it logs a warning and
	// picks K_max. It does not retry with another criteria selection.
	ErrTooFewCriteria = errors.New("msclust: fewer than three criteria available for meta-criterion")
)
