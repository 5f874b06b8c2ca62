package hashmap

import (
	"github.com/hupe1980/batbit/internal/pool"
)

// PutBatch stores keys[i] => values[i] for every i.
//
// Mismatched lengths fail with a *SizeMismatchError before anything changes.
// Keys are hashed once in a pre-pass that also groups the pairs by shard.
// Shards that may overflow count their distinct new keys, every shard is
// grown to its final size in one step, and the pairs are then applied shard
// by shard, in input order, on up to workers goroutines. Duplicate keys
// inside the batch resolve to the last value and never cost a slot.
func (m *Map[V]) PutBatch(keys []uint64, values []V, workers int) error {
	if len(keys) != len(values) {
		return &SizeMismatchError{Keys: len(keys), Values: len(values)}
	}
	for lo := 0; lo < len(keys); lo += pool.MaxBatchLen {
		hi := min(lo+pool.MaxBatchLen, len(keys))
		if err := m.putWindow(keys[lo:hi], values[lo:hi], workers); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map[V]) putWindow(keys []uint64, values []V, workers int) error {
	scratch := pool.Get(len(keys))
	defer pool.Put(scratch)

	hashes := make([]uint64, len(keys))
	for i, k := range keys {
		h := hash(k)
		hashes[i] = h
		scratch.Parts[i] = uint32(m.shardOf(h))
	}
	scratch.Group(len(m.shards))

	newCaps := make([]int, len(m.shards))
	_ = pool.Run(workers, len(m.shards), func(s int) error {
		part := scratch.Partition(s)
		if len(part) == 0 {
			return nil
		}
		t := &m.shards[s].t
		if capacityFor(t.size+len(part)) <= t.capacity() {
			return nil
		}
		if c := capacityFor(t.size + freshKeys(t, part, keys, hashes)); c > t.capacity() {
			newCaps[s] = c
		}
		return nil
	})
	if err := m.growShards(newCaps, workers); err != nil {
		return err
	}

	return pool.Run(workers, len(m.shards), func(s int) error {
		part := scratch.Partition(s)
		if len(part) == 0 {
			return nil
		}
		t := &m.shards[s].t
		added := int64(0)
		for _, pos := range part {
			if t.insert(keys[pos], hashes[pos], values[pos]) {
				added++
			}
		}
		m.size.Add(added)
		return nil
	})
}

// freshKeys counts the distinct keys of part that t does not hold yet.
// The scratch set lives only for the call and is not accounted.
func freshKeys[V any](t *table[V], part []uint32, keys, hashes []uint64) int {
	var seen table[struct{}]
	seen.resize(capacityFor(len(part)))
	n := 0
	for _, pos := range part {
		k, h := keys[pos], hashes[pos]
		if _, ok := t.get(k, h); ok {
			continue
		}
		if seen.insert(k, h, struct{}{}) {
			n++
		}
	}
	return n
}
