package sense

import "sync"

// HistoryCap is the per-address bound on retained entries. Once a device's
// buffer is full the oldest entry is dropped for each new append.
const HistoryCap = 1000

// ringBuffer is a fixed-capacity FIFO. Eviction is structural: once size
// reaches capacity, appends overwrite the head slot.
type ringBuffer struct {
	buf  []HistoryEntry
	head int
}

func (rb *ringBuffer) append(e HistoryEntry) {
	if len(rb.buf) < HistoryCap {
		rb.buf = append(rb.buf, e)
		return
	}
	rb.buf[rb.head] = e
	rb.head = (rb.head + 1) % HistoryCap
}

func (rb *ringBuffer) snapshot() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(rb.buf))
	out = append(out, rb.buf[rb.head:]...)
	out = append(out, rb.buf[:rb.head]...)
	return out
}

// HistoryStore keeps an independent bounded time series per hardware
// address. It outlives roster clears and is only emptied by an explicit
// Clear. Appends come from the pipeline consumer; reads (export, UI) get
// snapshot copies.
type HistoryStore struct {
	mu      sync.RWMutex
	perAddr map[string]*ringBuffer
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{perAddr: make(map[string]*ringBuffer)}
}

// Append records an entry for the address, evicting the oldest entry first
// when the device is at capacity.
func (h *HistoryStore) Append(address string, e HistoryEntry) {
	h.mu.Lock()
	rb, ok := h.perAddr[address]
	if !ok {
		rb = &ringBuffer{}
		h.perAddr[address] = rb
	}
	rb.append(e)
	h.mu.Unlock()
}

// History returns the entries for the address, oldest first. The returned
// slice is a snapshot; concurrent appends do not mutate it.
func (h *HistoryStore) History(address string) []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rb, ok := h.perAddr[address]
	if !ok {
		return nil
	}
	return rb.snapshot()
}

// Addresses returns every address with at least one recorded entry.
func (h *HistoryStore) Addresses() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.perAddr))
	for addr := range h.perAddr {
		out = append(out, addr)
	}
	return out
}

// Clear drops all history for all addresses.
func (h *HistoryStore) Clear() {
	h.mu.Lock()
	h.perAddr = make(map[string]*ringBuffer)
	h.mu.Unlock()
}
