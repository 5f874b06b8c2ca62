// Package pool provides the fan-out machinery shared by batch ingestion.
//
// A batch is ingested in two phases. The pre-pass assigns every input
// element a dense partition id (a chunk or a shard) and Group orders the
// element positions by partition with a counting sort, preserving input
// order inside each partition. The apply phase then hands whole partitions
// to Run, so a partition is only ever touched by one goroutine.
//
// Scratch buffers for the pre-pass are recycled through a sync.Pool to keep
// steady-state batches allocation free.
package pool
