// Package memsim is a simulated memory allocator with adaptive
// strategy selection and pool management. It manages an abstract
// address space of fixed size, addresses are integer offsets into a
// conceptual region — there is no interaction with host virtual
// memory, no real pointers, and no thread safety.
//
// The package is built from three layers:
//
//   - FreeListAllocator: an address-ordered doubly-linked sequence of
//     free/busy blocks with first-fit/best-fit/worst-fit placement,
//     split-on-allocate and coalesce-on-free.
//   - Profiler: a bounded rolling history of allocation records used
//     to derive size-frequency distributions, lifetime statistics,
//     hot-region analysis, predictions, and strategy scoring.
//   - Supervisor: an adaptive layer that consults the Profiler at
//     fixed operation intervals to switch strategy, create size-class
//     pools via a PoolManager, and retire underused pools.
//
// A LeakObserver may be injected into a Supervisor to track
// outstanding allocations; it is optional and process-wide state is
// never assumed by the core types.
package memsim
