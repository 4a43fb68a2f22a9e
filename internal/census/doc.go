// Package census runs the fetch, deduplicate, classify and aggregate
// pipeline over all community sources of one run.
//
// A Run owns every piece of mutable state of one census: the set of node ids
// already counted and the per-community aggregates. It is created by
// Collector.Collect, shared by all workers, and read once the collection
// finished. Nothing survives between runs.
package census
