// Package batbit provides memory-dense, typed, in-process containers for
// very large sparse integer key spaces and tabular row data.
//
// # Containers
//
//   - BatCave: a chunked sparse bitset. Memory grows with the number of
//     occupied chunks, not with the largest value.
//   - BatVector: a growable vector of uint64.
//   - BatMap: a sparse uint64 → float64 map.
//   - BatStore: a columnar row store with string, int and float columns.
//
// # Quick Start
//
//	cave, _ := batbit.NewBatCave()
//	_ = cave.DeployBatch([]uint64{0, 1_000_000_000})
//	cave.Signal(1_000_000_000) // true
//
//	store, _ := batbit.NewBatStore()
//	_ = store.AddStrCol("username")
//	row := store.NewRow()
//	_ = store.SetStr("username", row, "User_0")
//
// # Batches
//
// Every container favors batch ingestion. A batch is validated and its
// memory is reserved before anything is modified, so a failed batch leaves
// the container unchanged. The work is then partitioned (by chunk, shard or
// stripe) and applied on several goroutines; each partition is owned by
// exactly one goroutine.
//
// # Concurrency
//
// Containers are single-writer. Reads may run concurrently with each other,
// and MemoryUsage may be called at any time, including while a batch is in
// flight.
//
// # Resource Control
//
// Containers created with WithResourceController (or WithMemoryLimit)
// reserve their memory from a shared resource.Controller. A refused
// reservation surfaces as ErrAllocationFailed. The controller also bounds the
// number of goroutines all batches together may use.
package batbit
