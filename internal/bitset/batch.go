package bitset

import (
	"github.com/hupe1980/batbit/internal/pool"
)

// AddBatch sets every value of vs and returns how many were newly added.
//
// The whole batch is validated first: if any value is out of domain a
// *DomainError naming its index is returned and nothing is modified. Values
// are then grouped by chunk, all missing chunks are reserved and allocated in
// one step, and the groups are applied on up to workers goroutines. Each
// chunk belongs to exactly one group, so no two workers touch the same chunk.
func (s *Sparse) AddBatch(vs []uint64, workers int) (int, error) {
	for i, v := range vs {
		if err := s.checkDomain(v, i); err != nil {
			return 0, err
		}
	}

	added := 0
	for lo := 0; lo < len(vs); lo += pool.MaxBatchLen {
		hi := min(lo+pool.MaxBatchLen, len(vs))
		n, err := s.addWindow(vs[lo:hi], workers)
		added += n
		if err != nil {
			return added, err
		}
	}
	return added, nil
}

func (s *Sparse) addWindow(vs []uint64, workers int) (int, error) {
	if len(vs) == 0 {
		return 0, nil
	}

	scratch := pool.Get(len(vs))
	defer pool.Put(scratch)

	// Pre-pass: assign each value the dense id of its chunk. Consecutive
	// values usually share a chunk, so the last id is cached.
	dense := make(map[uint64]uint32)
	var ids []uint64
	lastID, lastGroup := ^uint64(0), uint32(0)
	for i, v := range vs {
		id := v >> s.chunkBits
		if id != lastID {
			g, ok := dense[id]
			if !ok {
				g = uint32(len(ids))
				dense[id] = g
				ids = append(ids, id)
			}
			lastID, lastGroup = id, g
		}
		scratch.Parts[i] = lastGroup
	}
	scratch.Group(len(ids))

	chunks, err := s.materializeAll(ids)
	if err != nil {
		return 0, err
	}

	added := make([]int64, len(ids))
	err = pool.Run(workers, len(ids), func(g int) error {
		c := chunks[g]
		n := int64(0)
		for _, pos := range scratch.Partition(g) {
			if set(c, vs[pos]&s.chunkMask) {
				n++
			}
		}
		if n > 0 {
			c.count.Add(n)
			s.count.Add(n)
		}
		added[g] = n
		return nil
	})

	total := 0
	for _, n := range added {
		total += int(n)
	}
	return total, err
}

// materializeAll resolves the chunk of every id, allocating the missing ones
// under a single write lock after reserving their memory in one request.
func (s *Sparse) materializeAll(ids []uint64) ([]*chunk, error) {
	out := make([]*chunk, len(ids))

	s.mu.Lock()
	defer s.mu.Unlock()

	missing := 0
	for g, id := range ids {
		if c := s.chunks[id]; c != nil {
			out[g] = c
			continue
		}
		missing++
	}
	if missing == 0 {
		return out, nil
	}

	if s.acquirer != nil {
		if err := s.acquirer.AcquireMemory(int64(missing) * s.chunkFootprint()); err != nil {
			return nil, err
		}
	}
	for g, id := range ids {
		if out[g] != nil {
			continue
		}
		c := s.newChunk()
		s.chunks[id] = c
		out[g] = c
	}
	s.numChunks.Add(int64(missing))
	return out, nil
}
