package nmea2000

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/navbus/navbus/core/model"
)

// AddressTable maps bus addresses to the 64-bit NAME of the device that
// claimed them with PGN 60928.
type AddressTable struct {
	mu    sync.RWMutex
	names map[uint8]uint64
}

// NewAddressTable returns an empty table.
func NewAddressTable() *AddressTable {
	return &AddressTable{names: make(map[uint8]uint64)}
}

// Claim records an address claim payload sent from addr. A device moving to
// a new address releases the old one.
func (t *AddressTable) Claim(addr uint8, data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("address claim from %d: %w", addr, ErrShortPayload)
	}
	name := binary.LittleEndian.Uint64(data)
	t.mu.Lock()
	defer t.mu.Unlock()
	for a, n := range t.names {
		if n == name && a != addr {
			delete(t.names, a)
		}
	}
	t.names[addr] = name
	return nil
}

// Name returns the NAME claimed for addr.
func (t *AddressTable) Name(addr uint8) (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.names[addr]
	return n, ok
}

// Source returns the source name of the device at addr. Until the device
// has claimed its address the name is derived from the address alone.
func (t *AddressTable) Source(addr uint8) string {
	if name, ok := t.Name(addr); ok {
		return model.NMEA2000Source(name)
	}
	return fmt.Sprintf("%s/addr%d", model.SourceNMEA2000, addr)
}

// Len returns the number of claimed addresses.
func (t *AddressTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}
