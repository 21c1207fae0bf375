// Package anonstore backs a simulated address range with a real
// anonymous memory mapping, using github.com/edsrzf/mmap-go — a
// dependency the teacher codebase declares but never imports from its
// own raw-syscall mmap package. Here it gets a genuine home.
package anonstore

import (
	"fmt"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"
)

// Store is a backing.Store reserved as an anonymous mmap mapping.
// Unlike heapstore, Reserve can fail (e.g. the host denies mmap), so
// callers that need guaranteed construction should prefer heapstore.
type Store struct {
	bytes  uint64
	mapped mmap.MMap
}

// New returns an unreserved Store sized to at least bytes, rounded up
// to the host's page size.
func New(bytes uint64) *Store {
	return &Store{bytes: roundToPage(bytes)}
}

func roundToPage(bytes uint64) uint64 {
	page := uint64(unix.Getpagesize())
	if page == 0 {
		return bytes
	}
	if rem := bytes % page; rem != 0 {
		bytes += page - rem
	}
	return bytes
}

func (s *Store) Reserve() error {
	if s.mapped != nil {
		return nil
	}
	m, err := mmap.MapRegion(nil, int(s.bytes), mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return fmt.Errorf("anonstore: reserve %d bytes: %w", s.bytes, err)
	}
	s.mapped = m
	return nil
}

func (s *Store) Release() error {
	if s.mapped == nil {
		return nil
	}
	if err := s.mapped.Unmap(); err != nil {
		return fmt.Errorf("anonstore: release: %w", err)
	}
	s.mapped = nil
	return nil
}

func (s *Store) Size() uint64 {
	return s.bytes
}
