package memsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfiler_RecordAllocationAndDeallocation(t *testing.T) {
	p := NewProfiler()
	p.RecordAllocation(64, 0, 0)
	p.RecordAllocation(64, 64, 0)
	assert.Equal(t, 2, p.HistoryLen())

	p.RecordDeallocation(0)
	rec := p.history[0]
	assert.False(t, rec.Active)
	assert.False(t, rec.TDealloc.IsZero())
}

func TestProfiler_HistoryBoundedAtCap(t *testing.T) {
	p := NewProfiler()
	for i := 0; i < historyCap+10; i++ {
		p.RecordAllocation(64, uint64(i), 0)
	}
	assert.Equal(t, historyCap, p.HistoryLen())
	// oldest 10 addresses should have been evicted
	for _, rec := range p.history {
		assert.True(t, rec.Address >= 10)
	}
}

func TestProfiler_AnalyzePatterns_CommonSizesAndDistribution(t *testing.T) {
	p := NewProfiler()
	for i := 0; i < 7; i++ {
		p.RecordAllocation(64, uint64(i*100), 0)
	}
	for i := 0; i < 3; i++ {
		p.RecordAllocation(128, uint64(1000+i*100), 0)
	}

	pattern := p.AnalyzePatterns()
	assert.Equal(t, []uint64{64, 128}, pattern.CommonSizes)
	assert.InDelta(t, 0.7, pattern.SizeDistribution[64], 1e-9)
	assert.InDelta(t, 0.3, pattern.SizeDistribution[128], 1e-9)
}

func TestProfiler_AnalyzePatterns_HotSpots(t *testing.T) {
	p := NewProfiler()
	// three allocations in region 0, one in region 1
	p.RecordAllocation(8, 0, 0)
	p.RecordAllocation(8, 10, 0)
	p.RecordAllocation(8, 20, 0)
	p.RecordAllocation(8, hotSpotRegionSize, 0)

	pattern := p.AnalyzePatterns()
	assert.Equal(t, HotSpot{Region: 0, Count: 3}, pattern.HotSpots[0])
}

func TestProfiler_AnalyzePatterns_AverageLifetime(t *testing.T) {
	p := NewProfiler()
	p.RecordAllocation(64, 0, 0)
	p.history[0].TAlloc = time.Now().Add(-500 * time.Millisecond)
	p.RecordDeallocation(0)

	pattern := p.AnalyzePatterns()
	assert.InDelta(t, 500, pattern.AverageLifetime, 50)
}

func TestProfiler_ShouldCreatePoolForSize(t *testing.T) {
	p := NewProfiler()
	for i := 0; i < 150; i++ {
		p.RecordAllocation(64, uint64(i), 0)
	}
	assert.True(t, p.ShouldCreatePoolForSize(64, 100))
	assert.False(t, p.ShouldCreatePoolForSize(128, 100))
}

func TestProfiler_ShouldCreatePoolForSize_EmptyHistory(t *testing.T) {
	p := NewProfiler()
	assert.False(t, p.ShouldCreatePoolForSize(64, 100))
}

func TestProfiler_PredictNextAllocation_EmptyHistory(t *testing.T) {
	p := NewProfiler()
	pred := p.PredictNextAllocation()
	assert.Equal(t, uint64(0), pred.NextLikelySize)
	assert.Equal(t, float64(0), pred.Confidence)
	assert.Empty(t, pred.RecommendedPoolSizes)
}

func TestProfiler_PredictNextAllocation_RecommendedPoolSizes(t *testing.T) {
	p := NewProfiler()
	for i := 0; i < 80; i++ {
		p.RecordAllocation(64, uint64(i), 0)
	}
	// keeps the 128-byte fraction under the 10% pool-recommendation cutoff
	for i := 0; i < 5; i++ {
		p.RecordAllocation(128, uint64(1000+i), 0)
	}
	pred := p.PredictNextAllocation()
	assert.Contains(t, pred.RecommendedPoolSizes, uint64(64))
	assert.NotContains(t, pred.RecommendedPoolSizes, uint64(128))
}

func TestProfiler_RecommendStrategy_EmptyHistoryFavorsFirstFit(t *testing.T) {
	p := NewProfiler()
	pred := p.PredictNextAllocation()
	// zero history: no common sizes and no hot spots, and the zero
	// average lifetime adds 0.4 to first-fit, so first-fit scores highest.
	assert.Equal(t, FirstFit, pred.RecommendedStrategy)
}

func TestProfiler_RecommendStrategy_ManyHotSpotsFavorsWorstFit(t *testing.T) {
	p := NewProfiler()
	// eight distinct hot regions of the common size, clearing the
	// >5-hot-spots threshold that adds the worst-fit score.
	for region := 0; region < 8; region++ {
		for i := 0; i < 3; i++ {
			p.RecordAllocation(64, uint64(region)*hotSpotRegionSize+uint64(i), 0)
		}
	}
	// a minority far-apart size pushes size variance above the
	// best-fit cutoff, so that branch falls to first-fit instead.
	p.RecordAllocation(5000, 999000, 0)
	p.RecordAllocation(5000, 999001, 0)

	// one long-lived allocation pulls the average lifetime above the
	// first-fit cutoff, so that branch falls to best-fit instead.
	p.history[0].TAlloc = time.Now().Add(-2 * time.Second)
	p.RecordDeallocation(0)

	pattern := p.AnalyzePatterns()
	assert.Greater(t, len(pattern.HotSpots), 5)
	assert.GreaterOrEqual(t, pattern.AverageLifetime, 1000.0)

	pred := p.PredictNextAllocation()
	assert.Equal(t, WorstFit, pred.RecommendedStrategy)
}

func TestProfiler_GetPerformanceMetrics_StrategyEfficiencyLedger(t *testing.T) {
	p := NewProfiler()
	p.RecordAllocation(64, 0, 0)
	p.RecordDeallocation(0)

	m1 := p.GetPerformanceMetrics(0.1, FirstFit)
	assert.Contains(t, m1.StrategyEfficiency, FirstFit)

	m2 := p.GetPerformanceMetrics(0.2, BestFit)
	assert.Contains(t, m2.StrategyEfficiency, FirstFit)
	assert.Contains(t, m2.StrategyEfficiency, BestFit)
}

func TestProfiler_PatternSignatureStable(t *testing.T) {
	p := NewProfiler()
	p.RecordAllocation(64, 0, 0)
	p.RecordAllocation(128, 1, 0)

	sig1 := p.AnalyzePatterns().Signature()
	sig2 := p.AnalyzePatterns().Signature()
	assert.Equal(t, sig1, sig2)

	p.RecordAllocation(256, 2, 0)
	sig3 := p.AnalyzePatterns().Signature()
	assert.NotEqual(t, sig1, sig3)
}
