package memsim

import (
	"github.com/cespare/xxhash/v2"
)

var hashBytes = func(b []byte) uint64 {
	return xxhash.Sum64(b)
}

var hashString = func(s string) uint64 {
	return xxhash.Sum64String(s)
}
