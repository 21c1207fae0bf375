package memsim

import "errors"

var (
	// ErrZeroSize is returned by Allocate when size == 0.
	ErrZeroSize = errors.New("memsim: allocation size must be > 0")
	// ErrNoSuitableBlock is returned when no free block satisfies a
	// request under the allocator's current placement strategy.
	ErrNoSuitableBlock = errors.New("memsim: no suitable free block")
	// ErrInvalidAddress is returned by Deallocate when the address is not
	// present in the allocator's address map or its block is already free.
	ErrInvalidAddress = errors.New("memsim: invalid address")
	// ErrNoSpace is wrapped into the error NewFreeListAllocator returns
	// when its backing store cannot reserve the requested number of bytes.
	ErrNoSpace = errors.New("memsim: backing store has no space")
)
