package memsim

import (
	"fmt"

	"github.com/Gaurav-tech229/Memory-Allocator/backing"
	"github.com/Gaurav-tech229/Memory-Allocator/backing/anonstore"
	"github.com/Gaurav-tech229/Memory-Allocator/backing/heapstore"
)

// FreeListAllocator is the address-ordered doubly-linked block
// allocator described in spec §4.A. All allocation ultimately flows
// through it, mirroring the role the teacher codebase's allocator
// plays for its cache.
type FreeListAllocator struct {
	store    backing.Store
	blocks   *blockList
	strategy Strategy
}

// NewFreeListAllocator constructs an allocator covering [0, totalSize)
// as a single free block, reserving a backing.Store per cfg.Backing.
func NewFreeListAllocator(cfg *Config) (*FreeListAllocator, error) {
	if cfg.TotalSize == 0 {
		return nil, fmt.Errorf("memsim: totalSize must be > 0")
	}

	var store backing.Store
	switch cfg.Backing {
	case BackingAnonMmap:
		store = anonstore.New(cfg.TotalSize)
	default:
		store = heapstore.New(cfg.TotalSize)
	}
	if err := store.Reserve(); err != nil {
		return nil, fmt.Errorf("memsim: reserve backing store: %w: %v", ErrNoSpace, err)
	}

	return &FreeListAllocator{
		store:    store,
		blocks:   newBlockList(cfg.TotalSize),
		strategy: cfg.InitialStrategy,
	}, nil
}

// Close releases the allocator's backing store.
func (a *FreeListAllocator) Close() error {
	return a.store.Release()
}

// Allocate searches for a free block satisfying size under the
// allocator's current strategy, splits it if oversized, and returns
// the busy block's address.
func (a *FreeListAllocator) Allocate(size uint64) (uint64, error) {
	if size == 0 {
		return 0, ErrZeroSize
	}

	h, ok := a.findFreeBlock(size)
	if !ok {
		return 0, ErrNoSuitableBlock
	}

	n := a.blocks.at(h)
	addr := n.address
	if n.size > size {
		a.blocks.split(h, size)
	} else {
		n.free = false
	}
	return addr, nil
}

// findFreeBlock dispatches to the placement rule matching the
// allocator's current strategy. Each rule scans the full sequence in
// address order, per spec §4.A.
func (a *FreeListAllocator) findFreeBlock(size uint64) (handle, bool) {
	switch a.strategy {
	case BestFit:
		return a.bestFit(size)
	case WorstFit:
		return a.worstFit(size)
	default:
		return a.firstFit(size)
	}
}

func (a *FreeListAllocator) firstFit(size uint64) (handle, bool) {
	var found handle = nilHandle
	a.blocks.each(func(h handle, n *node) bool {
		if n.free && n.size >= size {
			found = h
			return false
		}
		return true
	})
	return found, found != nilHandle
}

func (a *FreeListAllocator) bestFit(size uint64) (handle, bool) {
	var best handle = nilHandle
	var bestWaste uint64
	a.blocks.each(func(h handle, n *node) bool {
		if n.free && n.size >= size {
			waste := n.size - size
			if best == nilHandle || waste < bestWaste {
				best = h
				bestWaste = waste
			}
		}
		return true
	})
	return best, best != nilHandle
}

func (a *FreeListAllocator) worstFit(size uint64) (handle, bool) {
	var worst handle = nilHandle
	var worstWaste uint64
	a.blocks.each(func(h handle, n *node) bool {
		if n.free && n.size >= size {
			waste := n.size - size
			if worst == nilHandle || waste > worstWaste {
				worst = h
				worstWaste = waste
			}
		}
		return true
	})
	return worst, worst != nilHandle
}

// Deallocate marks the block at address free and coalesces it with
// any free neighbors. An address that names no block, or names a
// block that is already free, yields ErrInvalidAddress.
func (a *FreeListAllocator) Deallocate(address uint64) error {
	h, ok := a.blocks.addrIndex[address]
	if !ok || a.blocks.at(h).free {
		return ErrInvalidAddress
	}
	a.blocks.at(h).free = true
	a.blocks.coalesceAll()
	return nil
}

// SetStrategy replaces the placement policy; it affects only
// subsequent allocations.
func (a *FreeListAllocator) SetStrategy(s Strategy) {
	a.strategy = s
}

// Strategy returns the allocator's current placement policy.
func (a *FreeListAllocator) Strategy() Strategy {
	return a.strategy
}

// FragmentationRatio is 1 - (largestFree/totalFree), or 0 when there
// is no free memory at all.
func (a *FreeListAllocator) FragmentationRatio() float64 {
	totalFree := a.blocks.totalFree()
	if totalFree == 0 {
		return 0
	}
	return 1 - float64(a.blocks.largestFree())/float64(totalFree)
}

// TotalFreeMemory returns the sum of every free block's size.
func (a *FreeListAllocator) TotalFreeMemory() uint64 {
	return a.blocks.totalFree()
}

// LargestFreeBlock returns the size of the largest free block.
func (a *FreeListAllocator) LargestFreeBlock() uint64 {
	return a.blocks.largestFree()
}

// TotalMemory returns the size of the simulated address range.
func (a *FreeListAllocator) TotalMemory() uint64 {
	return a.blocks.totalSize
}

// Blocks returns every block in address order, for inspection/testing.
func (a *FreeListAllocator) Blocks() []Block {
	return a.blocks.snapshot()
}
