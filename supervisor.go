package memsim

import (
	"log/slog"
	"math"
)

// Supervisor is the adaptive layer of spec §4.D: it consults the
// profiler at fixed operation intervals to switch strategy, create
// size-class pools, and retire underused pools. It *contains* a
// FreeListAllocator and a PoolManager — composition, not inheritance,
// per spec §9.
type Supervisor struct {
	alloc    *FreeListAllocator
	pools    *PoolManager
	profiler *Profiler
	observer LeakObserver
	logger   *slog.Logger

	params          AdaptiveParameters
	adaptiveEnabled bool
}

// NewSupervisor constructs a Supervisor over a fresh FreeListAllocator
// sized and configured by cfg. observer may be nil, per spec §4.E.
func NewSupervisor(cfg *Config, observer LeakObserver) (*Supervisor, error) {
	alloc, err := NewFreeListAllocator(cfg)
	if err != nil {
		return nil, err
	}
	return &Supervisor{
		alloc:    alloc,
		pools:    NewPoolManager(alloc),
		profiler: NewProfiler(),
		observer: observer,
		logger:   slog.Default(),
		params:   cfg.AdaptiveParameters,
	}, nil
}

// Close releases the underlying allocator's backing store.
func (s *Supervisor) Close() error {
	return s.alloc.Close()
}

// SetLogger overrides the supervisor's diagnostic logger; nil resets
// to slog.Default().
func (s *Supervisor) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
}

// Allocate implements the state machine of spec §4.D: idle ->
// try-pool -> maybe-create-pool -> underlying-alloc -> counter-tick.
func (s *Supervisor) Allocate(size uint64) (uint64, error) {
	if !s.adaptiveEnabled {
		addr, err := s.alloc.Allocate(size)
		if err != nil {
			return 0, err
		}
		s.record(addr, size, 0, "allocate:direct")
		return addr, nil
	}

	if addr, ok := s.pools.TryAllocate(size); ok {
		s.record(addr, size, poolID(size), "allocate:pool")
		return addr, nil
	}

	if !s.pools.HasPoolForSize(size) && s.profiler.ShouldCreatePoolForSize(size, s.params.PoolCreationThreshold) {
		if created := s.pools.CreatePool(size, 10); created {
			if addr, ok := s.pools.TryAllocate(size); ok {
				s.record(addr, size, poolID(size), "allocate:pool-new")
				return addr, nil
			}
		} else {
			s.logger.Debug("pool creation failed, falling through to free-list allocator", "size", size)
		}
	}

	addr, err := s.alloc.Allocate(size)
	if err != nil {
		return 0, err
	}
	s.record(addr, size, 0, "allocate:fallthrough")
	s.tickAdaptation()
	return addr, nil
}

// Deallocate implements spec §4.D's deallocate: offer to the pool
// manager first; on a miss, delegate to the underlying allocator.
// updatePoolUtilization runs only after a direct (non-pool)
// deallocation, per spec §4.D.
func (s *Supervisor) Deallocate(address uint64) error {
	if s.pools.Deallocate(address) {
		s.profiler.RecordDeallocation(address)
		if s.observer != nil {
			s.observer.OnDeallocate(address)
		}
		return nil
	}

	if err := s.alloc.Deallocate(address); err != nil {
		return err
	}
	s.profiler.RecordDeallocation(address)
	if s.observer != nil {
		s.observer.OnDeallocate(address)
	}
	s.updatePoolUtilization()
	return nil
}

func (s *Supervisor) updatePoolUtilization() {
	s.pools.MarkUnderutilized()
}

func (s *Supervisor) record(address, size uint64, pID int, site string) {
	s.profiler.RecordAllocation(size, address, pID)
	if s.observer != nil {
		s.observer.OnAllocate(address, size, site)
	}
}

// poolID is a pool's identity for AllocationRecord.PoolID: nonzero for
// pool-backed allocations, per spec §3. A pool's fixed block size is a
// stable, naturally nonzero identifier. The supervisor's own pool
// creation checks HasPoolForSize first, but CreateMemoryPool does not,
// so two pools of one size created that way share an ID.
func poolID(blockSize uint64) int {
	return int(blockSize)
}

func (s *Supervisor) tickAdaptation() {
	s.params.operationsSinceLastAdaptation++
	if s.params.operationsSinceLastAdaptation >= s.params.AdaptationInterval {
		s.adapt()
	}
}

// adapt is the adaptation cycle of spec §4.D. It never fails; with
// zero observations it degrades to sweeping pools and resetting the
// counter, skipping the divide-sensitive parameter tuning.
func (s *Supervisor) adapt() {
	fragRatio := s.alloc.FragmentationRatio()
	metrics := s.profiler.GetPerformanceMetrics(fragRatio, s.alloc.Strategy())
	prediction := s.profiler.PredictNextAllocation()

	if metrics.FragmentationRatio > s.params.FragmentationThreshold {
		s.logger.Info("fragmentation above threshold, switching strategy",
			"from", s.alloc.Strategy(), "to", prediction.RecommendedStrategy,
			"fragmentationRatio", metrics.FragmentationRatio)
		s.alloc.SetStrategy(prediction.RecommendedStrategy)
	}

	s.optimizePools(prediction)
	s.adjustParameters(metrics)

	s.params.operationsSinceLastAdaptation = 0
}

// optimizePools sweeps underutilized pools, then creates one for
// every predicted recommended size with no existing pool, per spec
// §4.D.
func (s *Supervisor) optimizePools(prediction Prediction) {
	s.pools.Sweep()
	for _, size := range prediction.RecommendedPoolSizes {
		if s.pools.HasPoolForSize(size) {
			continue
		}
		slots := int(math.Round(prediction.Confidence * 20))
		if slots < 5 {
			slots = 5
		}
		s.pools.CreatePool(size, slots)
	}
}

// adjustParameters retunes AdaptiveParameters per spec §4.D, degrading
// to a no-op when the profiler has no observations at all (spec §7).
func (s *Supervisor) adjustParameters(metrics Metrics) {
	if s.profiler.HistoryLen() == 0 {
		return
	}

	switch {
	case metrics.HitRate < 0.80:
		s.params.FragmentationThreshold *= 1.1
	case metrics.HitRate > 0.95:
		s.params.FragmentationThreshold *= 0.9
	}

	if metrics.FailedAllocations > 100 {
		s.params.PoolCreationThreshold *= 0.9
	}

	if metrics.AverageAllocationTime > 1000 {
		s.params.AdaptationInterval = int(float64(s.params.AdaptationInterval) * 1.2)
	} else {
		s.params.AdaptationInterval = int(float64(s.params.AdaptationInterval) * 0.8)
	}
}

// EnableAdaptive flips adaptive mode; enabling resets the counter and
// immediately runs one adaptation cycle, per spec §4.D.
func (s *Supervisor) EnableAdaptive(flag bool) {
	s.adaptiveEnabled = flag
	if flag {
		s.params.operationsSinceLastAdaptation = 0
		s.adapt()
	}
}

// SetAllocationStrategy replaces the underlying allocator's placement
// policy.
func (s *Supervisor) SetAllocationStrategy(strategy Strategy) {
	s.alloc.SetStrategy(strategy)
}

// CreateMemoryPool exposes pool creation directly to callers, per
// spec §6.
func (s *Supervisor) CreateMemoryPool(blockSize uint64, slotCount int) {
	s.pools.CreatePool(blockSize, slotCount)
}

func (s *Supervisor) GetFragmentationRatio() float64 { return s.alloc.FragmentationRatio() }
func (s *Supervisor) GetTotalFreeMemory() uint64     { return s.alloc.TotalFreeMemory() }
func (s *Supervisor) GetLargestFreeBlock() uint64    { return s.alloc.LargestFreeBlock() }
func (s *Supervisor) GetTotalMemory() uint64         { return s.alloc.TotalMemory() }

// GetPerformanceMetrics returns the profiler's current metrics
// snapshot against the allocator's live fragmentation ratio and
// strategy, per spec §4.B/§6.
func (s *Supervisor) GetPerformanceMetrics() Metrics {
	return s.profiler.GetPerformanceMetrics(s.alloc.FragmentationRatio(), s.alloc.Strategy())
}

// Profiler exposes the supervisor's Profiler for read-only inspection
// (analyzePatterns, predictNextAllocation) by callers that need more
// than GetPerformanceMetrics.
func (s *Supervisor) Profiler() *Profiler { return s.profiler }

// Pools exposes the supervisor's PoolManager for read-only inspection.
func (s *Supervisor) Pools() *PoolManager { return s.pools }
