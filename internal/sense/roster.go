package sense

import (
	"sync"
	"time"
)

// Roster is the live set of currently visible devices, keyed by hardware
// address. Entries are replaced in place on re-sight and never evicted by
// age; only Clear removes them. Safe for concurrent use: writers come from
// the pipeline consumer, readers from UI/export collaborators.
type Roster struct {
	mu      sync.RWMutex
	order   []string
	devices map[string]*DiscoveredDevice
}

func NewRoster() *Roster {
	return &Roster{devices: make(map[string]*DiscoveredDevice)}
}

// Upsert inserts a device on first sight, preserving arrival order, or
// replaces its name, signal strength and reading in place. A nil reading is
// valid: the device stays visible with no decoded value.
func (r *Roster) Upsert(address, name string, rssi int16, t DeviceType, reading Reading, seen time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[address]
	if !ok {
		d = &DiscoveredDevice{Address: address}
		r.devices[address] = d
		r.order = append(r.order, address)
	}
	d.Name = name
	d.RSSI = rssi
	d.Type = t
	d.TypeName = t.String()
	d.Reading = reading
	d.LastSeen = seen
}

// Get returns a copy of the entry for the address, if present.
func (r *Roster) Get(address string) (DiscoveredDevice, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[address]
	if !ok {
		return DiscoveredDevice{}, false
	}
	return *d, true
}

// Devices returns a snapshot of all entries in arrival order. The snapshot
// is a copy; later upserts do not mutate it.
func (r *Roster) Devices() []DiscoveredDevice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DiscoveredDevice, 0, len(r.order))
	for _, addr := range r.order {
		out = append(out, *r.devices[addr])
	}
	return out
}

// Len returns the number of distinct addresses seen since the last Clear.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear empties the roster unconditionally.
func (r *Roster) Clear() {
	r.mu.Lock()
	r.order = nil
	r.devices = make(map[string]*DiscoveredDevice)
	r.mu.Unlock()
}
