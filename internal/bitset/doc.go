// Package bitset provides a chunked sparse bitset over a huge integer domain.
//
// Architecture:
//   - Chunked design: 2^chunkBits bits per chunk (default 65536 bits = 8KB)
//   - Sparse index: hash map chunk-id -> chunk, a key exists only once a bit
//     in its range was set
//   - Lazy allocation: chunks are allocated on first write and never freed,
//     removal only clears bits
//   - Atomic words: membership tests never take the chunk's write path
//
// Batch ingestion groups values by chunk before touching storage, so every
// chunk is looked up and materialized once per batch and owned by exactly
// one worker while its bits are set.
//
// Used internally for:
//   - BatCave membership sets
//   - Row presence tracking in columnar store columns
package bitset
