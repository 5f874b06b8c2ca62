package columnar

import (
	"github.com/hupe1980/batbit/internal/conv"
	"github.com/hupe1980/batbit/internal/hashmap"
)

const (
	// pageBits is log2 of the rows per value page.
	pageBits = 10
	pageRows = 1 << pageBits
	pageMask = pageRows - 1

	// pageShardBits keeps the page directory small; it holds one entry per
	// occupied page, not per row.
	pageShardBits = 2
)

// pageIndex maps page ids (row >> pageBits) to dense slots. Slot s owns
// elements [s*pageRows, (s+1)*pageRows) of every value vector of a column,
// so a column only pays for the pages it has written to.
type pageIndex struct {
	slots *hashmap.Map[uint32]
}

func newPageIndex(acq MemoryAcquirer) (*pageIndex, error) {
	slots, err := hashmap.New[uint32](hashmap.Config{ShardBits: pageShardBits, Acquirer: acq})
	if err != nil {
		return nil, err
	}
	return &pageIndex{slots: slots}, nil
}

// lookup returns the element index of row if its page exists.
func (p *pageIndex) lookup(row uint64) (int, bool) {
	slot, ok := p.slots.Lookup(row >> pageBits)
	if !ok {
		return 0, false
	}
	return int(slot)<<pageBits | int(row&pageMask), true
}

// ensure returns the element index of row, materializing its page.
//
// A new page takes the next slot. extend is called with the element count
// covering that slot before the page is registered, so a failure leaves the
// index unchanged and a retry reuses the slot.
func (p *pageIndex) ensure(row uint64, extend func(n int) error) (int, error) {
	if i, ok := p.lookup(row); ok {
		return i, nil
	}

	next := p.slots.Len()
	slot, err := conv.ToUint32(next)
	if err != nil {
		return 0, err
	}
	n, err := conv.MulInt(next+1, pageRows)
	if err != nil {
		return 0, err
	}
	if err := extend(n); err != nil {
		return 0, err
	}
	if err := p.slots.Put(row>>pageBits, slot); err != nil {
		return 0, err
	}
	return (n - pageRows) | int(row&pageMask), nil
}

// pages returns the number of materialized pages.
func (p *pageIndex) pages() int { return p.slots.Len() }

func (p *pageIndex) MemoryUsage() int64 { return p.slots.MemoryUsage() }
