// Package hashmap implements a sharded open-addressing hash map keyed by
// uint64.
//
// Keys are hashed with xxhash. The top bits of the hash select one of
// 2^ShardBits shards, the low bits the home slot inside that shard's
// linear-probing table. Tables keep their load at or below 7/8, have
// power-of-two capacities and delete by backward shifting, so there are no
// tombstones.
//
// A Map has a single writer. PutBatch parallelizes internally: the batch is
// partitioned by shard and every shard is filled by exactly one goroutine,
// in input order, which makes the last write of a key win.
package hashmap
