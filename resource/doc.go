// Package resource implements the Controller that governs memory and ingest
// parallelism for batbit containers.
//
// A Controller manages two resources:
//
//   - Memory: track and optionally cap the bytes containers reserve for
//     chunks, tables and backing arrays (non-blocking, fail-fast)
//   - Ingest workers: cap the number of extra goroutines that batch
//     operations fan out to, across every container sharing the controller
//
// # Architecture
//
//	┌──────────────────────────────────────────────┐
//	│                  Controller                  │
//	├───────────────────────┬──────────────────────┤
//	│  Memory Limit         │  Ingest Workers      │
//	│  (fail-fast)          │  (semaphore)         │
//	├───────────────────────┼──────────────────────┤
//	│  AcquireMemory        │  AcquireWorker       │
//	│  ReleaseMemory        │  TryAcquireWorker    │
//	│  MemoryUsage          │  ReleaseWorker       │
//	│  MemoryLimit          │  BorrowWorkers       │
//	└───────────────────────┴──────────────────────┘
//
// # Memory Management
//
// AcquireMemory never blocks. If a hard limit is configured and the
// reservation would exceed it, ErrMemoryLimitExceeded is returned and
// nothing is reserved:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(8192); err != nil {
//	    // ErrMemoryLimitExceeded - the caller surfaces it
//	}
//
// # Ingest Workers
//
// Batch ingestion always runs on the calling goroutine and borrows
// additional workers without blocking:
//
//	n, release := rc.BorrowWorkers(8)
//	defer release()
//	// fan out to n goroutines (n >= 1)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully: memory is untracked and
// every worker request is granted.
package resource
