package xhttp

// connPool is a fixed-capacity array of connection slots with an
// index-based free list: slot indices, not pointers, move between the
// live array and freeList. The invariant live + len(freeList) == capacity
// holds for the lifetime of the pool.
type connPool struct {
	slots    []conn
	freeList []int32
	capacity int
}

func newConnPool(capacity int) *connPool {
	p := &connPool{
		slots:    make([]conn, capacity),
		freeList: make([]int32, capacity),
		capacity: capacity,
	}
	for i := 0; i < capacity; i++ {
		p.freeList[i] = int32(capacity - 1 - i)
	}
	return p
}

// live reports the number of slots currently in use.
func (p *connPool) live() int {
	return p.capacity - len(p.freeList)
}

// full reports whether admission control must refuse a new connection.
func (p *connPool) full() bool {
	return len(p.freeList) == 0
}

// acquire reserves a free slot and returns its index and pointer. It
// panics if called while full(); callers must always check full() first,
// since admission control is the caller's responsibility (the server
// accepts and immediately closes a connection when the pool is saturated).
func (p *connPool) acquire() (int32, *conn) {
	n := len(p.freeList)
	idx := p.freeList[n-1]
	p.freeList = p.freeList[:n-1]
	return idx, &p.slots[idx]
}

// release returns a slot to the free list. The caller must have already
// torn down the conn's resources (fd, buffers) before calling release.
func (p *connPool) release(idx int32) {
	p.freeList = append(p.freeList, idx)
}

func (p *connPool) get(idx int32) *conn {
	return &p.slots[idx]
}
