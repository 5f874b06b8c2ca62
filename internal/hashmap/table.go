package hashmap

import (
	"math"
	"math/bits"
	"unsafe"
)

const (
	minTableCap = 8

	// Max load factor is loadNum/loadDen.
	loadNum = 7
	loadDen = 8

	ctrlEmpty = 0
	ctrlFull  = 0x80
)

// table is one linear-probing hash table.
type table[V any] struct {
	ctrl []uint8
	keys []uint64
	vals []V
	mask uint64
	size int
}

// capacityFor returns the smallest table capacity that holds n entries,
// or math.MaxInt when no addressable table can.
func capacityFor(n int) int {
	if n <= 0 {
		return 0
	}
	if n > math.MaxInt/(2*loadDen) {
		return math.MaxInt
	}
	c := max(minTableCap, (n*loadDen+loadNum-1)/loadNum)
	return 1 << bits.Len(uint(c-1))
}

// slotBytes is the cost of one slot: control byte, key and value.
func slotBytes[V any]() int64 {
	var zero V
	return 1 + 8 + int64(unsafe.Sizeof(zero))
}

func (t *table[V]) capacity() int { return len(t.ctrl) }

func (t *table[V]) full() bool {
	return t.size >= len(t.ctrl)*loadNum/loadDen
}

func tag(h uint64) uint8 {
	return ctrlFull | uint8(h>>32)&0x7f
}

// find returns the slot holding k, or the empty slot where k would go.
func (t *table[V]) find(k, h uint64) (uint64, bool) {
	want := tag(h)
	for i := h & t.mask; ; i = (i + 1) & t.mask {
		c := t.ctrl[i]
		if c == ctrlEmpty {
			return i, false
		}
		if c == want && t.keys[i] == k {
			return i, true
		}
	}
}

func (t *table[V]) get(k, h uint64) (V, bool) {
	if t.size == 0 {
		var zero V
		return zero, false
	}
	i, ok := t.find(k, h)
	if !ok {
		var zero V
		return zero, false
	}
	return t.vals[i], true
}

// insert stores k => v and reports whether k is new. The table must have room.
func (t *table[V]) insert(k, h uint64, v V) bool {
	i, ok := t.find(k, h)
	if ok {
		t.vals[i] = v
		return false
	}
	t.ctrl[i] = tag(h)
	t.keys[i] = k
	t.vals[i] = v
	t.size++
	return true
}

// resize rehashes every entry into a table of newCap slots.
func (t *table[V]) resize(newCap int) {
	old := *t
	t.ctrl = make([]uint8, newCap)
	t.keys = make([]uint64, newCap)
	t.vals = make([]V, newCap)
	t.mask = uint64(newCap - 1)
	t.size = 0

	for i, c := range old.ctrl {
		if c == ctrlEmpty {
			continue
		}
		k := old.keys[i]
		t.insert(k, hash(k), old.vals[i])
	}
}

// remove deletes k and back-shifts the rest of its cluster.
func (t *table[V]) remove(k, h uint64) bool {
	if t.size == 0 {
		return false
	}
	i, ok := t.find(k, h)
	if !ok {
		return false
	}

	for j := (i + 1) & t.mask; t.ctrl[j] != ctrlEmpty; j = (j + 1) & t.mask {
		home := hash(t.keys[j]) & t.mask
		// The entry at j may fill the hole only if the hole lies on its search path.
		if (j-home)&t.mask < (j-i)&t.mask {
			continue
		}
		t.ctrl[i] = t.ctrl[j]
		t.keys[i] = t.keys[j]
		t.vals[i] = t.vals[j]
		i = j
	}

	var zero V
	t.ctrl[i] = ctrlEmpty
	t.keys[i] = 0
	t.vals[i] = zero
	t.size--
	return true
}
