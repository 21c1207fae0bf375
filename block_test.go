package memsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockList_InitialState(t *testing.T) {
	bl := newBlockList(1024)
	assert.Equal(t, []Block{{Address: 0, Size: 1024, Free: true}}, bl.snapshot())
	assert.Equal(t, uint64(1024), bl.totalFree())
	assert.Equal(t, uint64(1024), bl.largestFree())
}

func TestBlockList_SplitLeavesRemainderImmediatelyAfter(t *testing.T) {
	bl := newBlockList(1024)
	bl.split(bl.head, 100)

	blocks := bl.snapshot()
	assert.Equal(t, []Block{
		{Address: 0, Size: 100, Free: false},
		{Address: 100, Size: 924, Free: true},
	}, blocks)
}

func TestBlockList_CoalesceAllIsFixedPoint(t *testing.T) {
	bl := newBlockList(300)
	bl.split(bl.head, 100) // [0,100) busy, [100,300) free
	h2 := bl.addrIndex[100]
	bl.split(h2, 100) // [100,200) busy, [200,300) free

	// now free everything and confirm a single fixed-point pass merges
	// all three back into one block, not just adjacent pairs.
	bl.at(bl.addrIndex[0]).free = true
	bl.at(bl.addrIndex[100]).free = true
	bl.at(bl.addrIndex[200]).free = true
	bl.coalesceAll()

	assert.Equal(t, []Block{{Address: 0, Size: 300, Free: true}}, bl.snapshot())
}

func TestBlockList_AddressMapHasOneEntryPerLiveBlock(t *testing.T) {
	bl := newBlockList(500)
	bl.split(bl.head, 100)
	bl.split(bl.addrIndex[100], 100)
	assert.Equal(t, 3, len(bl.addrIndex))
	blocks := bl.snapshot()
	assert.Equal(t, len(blocks), len(bl.addrIndex))
}

func TestBlockList_ReleasedSlotsAreRecycled(t *testing.T) {
	bl := newBlockList(300)
	bl.split(bl.head, 100)
	h2 := bl.addrIndex[100]
	bl.split(h2, 100)

	arenaLenBefore := len(bl.arena)

	bl.at(bl.addrIndex[0]).free = true
	bl.at(bl.addrIndex[100]).free = true
	bl.at(bl.addrIndex[200]).free = true
	bl.coalesceAll()

	assert.Equal(t, 2, len(bl.freeSlots))

	// allocating new splits should reuse the tombstoned slots rather
	// than growing the arena unboundedly.
	bl.split(bl.head, 50)
	assert.Equal(t, arenaLenBefore, len(bl.arena))
}
