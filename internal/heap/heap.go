// Package heap stores values behind addresses and reclaims the ones no
// program state can reach any more.
//
// Addresses come from a cursor that starts at 1 and only grows, so a
// freed address is never handed out again and a stale reference always
// fails with ErrInvalidAddress instead of aliasing a newer value.
package heap

import (
	"errors"
	"fmt"

	"forkvm/internal/types"
)

// ErrInvalidAddress is returned for address 0 and for addresses that are
// not (or no longer) allocated.
var ErrInvalidAddress = errors.New("invalid heap address")

// Heap is the shared value store. Implementations returned by
// NewConcurrent are safe for use by many goroutines.
type Heap interface {
	Allocate(v types.Value) types.Address
	Read(addr types.Address) (types.Value, error)
	Write(addr types.Address, v types.Value) error
	Free(addr types.Address) error
	Contains(addr types.Address) bool
	Len() int
	// Snapshot returns every cell sorted by address.
	Snapshot() []Entry
}

// Entry is one heap cell.
type Entry struct {
	Addr  types.Address
	Value types.Value
}

func (e Entry) String() string {
	return fmt.Sprintf("%d -> %s", e.Addr, e.Value)
}

func invalid(addr types.Address) error {
	return fmt.Errorf("%w %d", ErrInvalidAddress, addr)
}
