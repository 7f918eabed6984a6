// Package aggregator derives the reaction summary shown under a review. It is pure: the summary is
// recomputed from the raw reaction map on every snapshot and never stored.
package aggregator
