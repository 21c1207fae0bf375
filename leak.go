package memsim

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LeakObserver is the process-wide collaborator described in spec
// §4.E/§9: an external ledger of outstanding allocations, injected at
// supervisor construction rather than reached for through a global.
type LeakObserver interface {
	OnAllocate(address, size uint64, site string)
	OnDeallocate(address uint64)
	HasLeaks() bool
	LeakReport() string
	Reset()
}

// leakEntry is the ledger's live-allocation record: spec §4.E's
// (size, tAlloc, originSite) triple.
type leakEntry struct {
	size     uint64
	tAlloc   time.Time
	site     string
	siteHash uint64
}

// observation is one append-only row of the ledger's history,
// recorded regardless of whether the allocation later leaks.
type observation struct {
	address    uint64
	size       uint64
	site       string
	tAlloc     time.Time
	deallocked bool
}

// Ledger is the default LeakObserver: a mapping from live address to
// leakEntry plus an append-only observation history, matching spec
// §4.E/§5's "lazy-init on first use, reset on explicit request"
// lifecycle. The address key is scoped to whichever supervisor(s)
// share this Ledger; spec §5 notes collisions are possible if two
// supervisors reuse the same addresses against one shared Ledger.
type Ledger struct {
	live    map[uint64]*leakEntry
	history []observation
	logger  *slog.Logger
}

// NewLedger returns an empty Ledger. logger may be nil, in which case
// slog.Default() is used for the diagnostic channel (spec §4.E: warn,
// never fail, on an unknown-address deallocation).
func NewLedger(logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		live:   make(map[uint64]*leakEntry),
		logger: logger,
	}
}

var defaultLedger *Ledger

// DefaultLedger returns a process-wide Ledger, created on first use.
// Nothing in the package falls back to it: a Supervisor built with a
// nil observer tracks no leaks at all.
func DefaultLedger() *Ledger {
	if defaultLedger == nil {
		defaultLedger = NewLedger(nil)
	}
	return defaultLedger
}

func (l *Ledger) OnAllocate(address, size uint64, site string) {
	l.live[address] = &leakEntry{
		size:     size,
		tAlloc:   time.Now(),
		site:     site,
		siteHash: hashString(site),
	}
	l.history = append(l.history, observation{
		address: address,
		size:    size,
		site:    site,
		tAlloc:  time.Now(),
	})
}

func (l *Ledger) OnDeallocate(address uint64) {
	if _, ok := l.live[address]; !ok {
		l.logger.Warn("deallocate of address unknown to leak observer", "address", address)
		return
	}
	delete(l.live, address)
	for i := len(l.history) - 1; i >= 0; i-- {
		if l.history[i].address == address && !l.history[i].deallocked {
			l.history[i].deallocked = true
			break
		}
	}
}

func (l *Ledger) HasLeaks() bool {
	return len(l.live) > 0
}

// LeakReport lists every unfreed address with its size, in increasing
// address order, human-readable with no wire-compatibility
// requirement (spec §6).
func (l *Ledger) LeakReport() string {
	if len(l.live) == 0 {
		return "no leaks detected"
	}

	addrs := make([]uint64, 0, len(l.live))
	for addr := range l.live {
		addrs = append(addrs, addr)
	}
	// simple insertion sort: leak reports are small by construction
	for i := 1; i < len(addrs); i++ {
		for j := i; j > 0 && addrs[j-1] > addrs[j]; j-- {
			addrs[j-1], addrs[j] = addrs[j], addrs[j-1]
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d leak(s):\n", len(addrs))
	for _, addr := range addrs {
		e := l.live[addr]
		fmt.Fprintf(&b, "  address=%d size=%d site=%q (%016x) allocatedAt=%s\n", addr, e.size, e.site, e.siteHash, e.tAlloc.Format(time.RFC3339Nano))
	}
	return b.String()
}

func (l *Ledger) Reset() {
	l.live = make(map[uint64]*leakEntry)
	l.history = nil
}
