// Package criteria implements the within/between/all pairwise distance
// statistics and the bank of 19 cluster-validity criteria
// that score a candidate cluster count K. Every criterion is
// transformed so that "higher is better": natural minima are
// sign-flipped, and ratios prone to near-zero denominators are expressed
// as differences instead.
//
// Criteria are addressed by ID and collected in a Matrix indexed by
// (criterion ID, K); package msclust's meta-criterion consumes a Matrix
// to pick the best K.
package criteria
