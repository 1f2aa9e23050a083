// Package msclust computes EEG/ESI microstate segmentations: it discovers a
// small set of recurring spatial templates across a multichannel brain
// signal recording and assigns each timepoint to the best-matching
// template.
//
// Two clustering drivers are provided, K-means (kmeans.go) and
// Topographical Atomize-Agglomerate Hierarchical Clustering, T-AAHC
// (taahc.go). Both produce a Labeling (labeling.go) over a set of
// Templates. A battery of cluster-validity criteria (package criteria)
// scores each candidate cluster count K, and the meta-criterion
// (metacriterion.go) combines them into a single chosen K.
//
// Segmentation is the package's entry point; it orchestrates the outer
// loop over K, the clusterer, post-processing, and the meta-criterion
// selection.
package msclust
