package forwarder

import "sort"

// slotPool allocates dispatch slot ids from a bounded range. Released ids
// go onto a free list sorted ascending so that acquire always hands out
// the lowest free id, and an id freed by unbind is immediately reusable.
type slotPool struct {
	limit int
	next  int   // lowest id never handed out
	free  []int // released ids, sorted ascending
}

func newSlotPool(limit int) *slotPool {
	return &slotPool{limit: limit}
}

// available reports whether another id can be acquired.
func (p *slotPool) available() bool {
	return len(p.free) > 0 || p.next < p.limit
}

// acquire returns the lowest free slot id. Released ids are always lower
// than next, so the free list takes priority.
func (p *slotPool) acquire() (int, bool) {
	if len(p.free) > 0 {
		id := p.free[0]
		p.free = p.free[1:]
		return id, true
	}
	if p.next < p.limit {
		id := p.next
		p.next++
		return id, true
	}
	return -1, false
}

// release returns an id to the pool. Ids outside the handed-out range are
// ignored.
func (p *slotPool) release(id int) {
	if id < 0 || id >= p.next {
		return
	}
	i := sort.SearchInts(p.free, id)
	if i < len(p.free) && p.free[i] == id {
		return // already free
	}
	p.free = append(p.free, 0)
	copy(p.free[i+1:], p.free[i:])
	p.free[i] = id
}

// inUse returns the number of currently allocated ids.
func (p *slotPool) inUse() int {
	return p.next - len(p.free)
}
