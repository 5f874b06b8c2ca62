// Package arena provides an append-only, chunked byte arena for variable
// length values such as string column cells.
//
// Bytes are copied into fixed-size chunks (64 KiB default); a value larger
// than a chunk gets a dedicated chunk of its own. Values are addressed by a
// Ref that packs the chunk index and the offset inside the chunk. Chunks are
// never moved or reused, so a Ref and any string returned for it stay valid
// for the lifetime of the arena.
//
// # Concurrency
//
// An Arena has a single writer. Stats and MemoryUsage read atomic counters
// and may be called from any goroutine.
package arena
