package memsim

// Pool is a pre-carved region of the free-list allocator, subdivided
// into blockSize slots for fast fixed-size allocation, per spec §3/§4.C.
type Pool struct {
	blockSize  uint64
	base       uint64 // address of the carved backing block
	totalSlots int
	usedSlots  int
	freeSlots  []uint64 // LIFO stack of available slot addresses
	marked     bool     // set by sweep when utilization < 0.2; see spec §9
}

// BlockSize returns the pool's fixed slot size.
func (p *Pool) BlockSize() uint64 { return p.blockSize }

// TotalSlots returns how many slots the pool was created with.
func (p *Pool) TotalSlots() int { return p.totalSlots }

// UsedSlots returns how many slots are currently checked out.
func (p *Pool) UsedSlots() int { return p.usedSlots }

func (p *Pool) utilization() float64 {
	if p.totalSlots == 0 {
		return 0
	}
	return float64(p.usedSlots) / float64(p.totalSlots)
}

func (p *Pool) contains(address uint64) bool {
	end := p.base + uint64(p.totalSlots)*p.blockSize
	return address >= p.base && address < end
}

// PoolManager owns the set of active pools and hands out fixed-size
// slots ahead of falling through to the free-list allocator. It is a
// sibling of FreeListAllocator, not a subclass — see spec §9.
type PoolManager struct {
	alloc *FreeListAllocator
	pools []*Pool
}

// NewPoolManager returns a manager with no pools, carving future pools
// from alloc.
func NewPoolManager(alloc *FreeListAllocator) *PoolManager {
	return &PoolManager{alloc: alloc}
}

// TryAllocate scans pools in insertion order for the first one whose
// blockSize >= size with a non-empty free list, popping the last free
// slot (LIFO). Returns ok=false on a miss.
func (pm *PoolManager) TryAllocate(size uint64) (address uint64, ok bool) {
	for _, p := range pm.pools {
		if p.blockSize >= size && len(p.freeSlots) > 0 {
			n := len(p.freeSlots) - 1
			address = p.freeSlots[n]
			p.freeSlots = p.freeSlots[:n]
			p.usedSlots++
			return address, true
		}
	}
	return 0, false
}

// CreatePool asks the underlying allocator for one block of
// blockSize*slotCount bytes and partitions it into slotCount equal
// slots. On allocator failure it does nothing and returns false, per
// spec §4.C/§7 — the caller may still choose to log the miss.
func (pm *PoolManager) CreatePool(blockSize uint64, slotCount int) bool {
	if blockSize == 0 || slotCount <= 0 {
		return false
	}
	base, err := pm.alloc.Allocate(blockSize * uint64(slotCount))
	if err != nil {
		return false
	}

	p := &Pool{
		blockSize:  blockSize,
		base:       base,
		totalSlots: slotCount,
		freeSlots:  make([]uint64, 0, slotCount),
	}
	for i := 0; i < slotCount; i++ {
		p.freeSlots = append(p.freeSlots, base+uint64(i)*blockSize)
	}
	pm.pools = append(pm.pools, p)
	return true
}

// HasPoolForSize reports whether a pool already exists with exactly
// blockSize, so the supervisor does not poolify the same size twice.
func (pm *PoolManager) HasPoolForSize(blockSize uint64) bool {
	for _, p := range pm.pools {
		if p.blockSize == blockSize && !p.marked {
			return true
		}
	}
	return false
}

// Deallocate pushes address onto its owning pool's free list if any
// pool's reserved range contains it. Returns owned=false if no pool
// claims the address.
func (pm *PoolManager) Deallocate(address uint64) (owned bool) {
	for _, p := range pm.pools {
		if p.contains(address) {
			p.freeSlots = append(p.freeSlots, address)
			p.usedSlots--
			return true
		}
	}
	return false
}

// MarkUnderutilized flags every pool whose utilization is below 0.2
// for removal on the next Sweep, per spec §4.C/§4.D.
func (pm *PoolManager) MarkUnderutilized() {
	for _, p := range pm.pools {
		if !p.marked && p.utilization() < 0.2 {
			p.marked = true
		}
	}
}

// Sweep marks underutilized pools, then drops every marked pool from
// the manager's set. The pool's reserved backing block is NOT
// returned to the allocator — see spec §9's open question, resolved
// in DESIGN.md.
func (pm *PoolManager) Sweep() {
	pm.MarkUnderutilized()
	kept := pm.pools[:0]
	for _, p := range pm.pools {
		if !p.marked {
			kept = append(kept, p)
		}
	}
	pm.pools = kept
}

// Pools returns the manager's active pools, for inspection/testing.
func (pm *PoolManager) Pools() []*Pool {
	return pm.pools
}
