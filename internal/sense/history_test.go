package sense

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func entryWithTemp(temp float64, at time.Time) HistoryEntry {
	return HistoryEntry{At: at, Reading: SHT40Reading{ID: "1", Temperature: temp}}
}

func TestHistoryStore_AppendAndSnapshot(t *testing.T) {
	is := is.New(t)

	h := NewHistoryStore()
	base := time.Now()
	h.Append("A", entryWithTemp(1, base))
	h.Append("A", entryWithTemp(2, base.Add(time.Second)))
	h.Append("B", entryWithTemp(3, base))

	got := h.History("A")
	is.Equal(len(got), 2)
	// Oldest first.
	is.Equal(got[0].Reading.(SHT40Reading).Temperature, 1.0)
	is.Equal(got[1].Reading.(SHT40Reading).Temperature, 2.0)

	is.Equal(len(h.History("B")), 1)
	is.Equal(len(h.History("C")), 0)
}

func TestHistoryStore_CapEvictsOldestFirst(t *testing.T) {
	is := is.New(t)

	h := NewHistoryStore()
	base := time.Now()
	for i := 0; i <= HistoryCap; i++ {
		h.Append("A", entryWithTemp(float64(i), base.Add(time.Duration(i)*time.Millisecond)))
	}

	got := h.History("A")
	is.Equal(len(got), HistoryCap)
	// Entry 0 was evicted; 1..1000 remain in order.
	is.Equal(got[0].Reading.(SHT40Reading).Temperature, 1.0)
	is.Equal(got[HistoryCap-1].Reading.(SHT40Reading).Temperature, float64(HistoryCap))
}

func TestHistoryStore_WrapsRepeatedly(t *testing.T) {
	is := is.New(t)

	h := NewHistoryStore()
	total := HistoryCap*2 + 5
	for i := 0; i < total; i++ {
		h.Append("A", entryWithTemp(float64(i), time.Now()))
	}

	got := h.History("A")
	is.Equal(len(got), HistoryCap)
	is.Equal(got[0].Reading.(SHT40Reading).Temperature, float64(total-HistoryCap))
	is.Equal(got[HistoryCap-1].Reading.(SHT40Reading).Temperature, float64(total-1))
}

func TestHistoryStore_BuffersAreIndependent(t *testing.T) {
	is := is.New(t)

	h := NewHistoryStore()
	for i := 0; i < HistoryCap; i++ {
		h.Append("A", entryWithTemp(float64(i), time.Now()))
	}
	h.Append("B", entryWithTemp(99, time.Now()))

	is.Equal(len(h.History("A")), HistoryCap)
	is.Equal(len(h.History("B")), 1)
}

func TestHistoryStore_SnapshotIsDetached(t *testing.T) {
	is := is.New(t)

	h := NewHistoryStore()
	h.Append("A", entryWithTemp(1, time.Now()))
	snap := h.History("A")
	h.Append("A", entryWithTemp(2, time.Now()))

	is.Equal(len(snap), 1)
}

func TestHistoryStore_Clear(t *testing.T) {
	is := is.New(t)

	h := NewHistoryStore()
	h.Append("A", entryWithTemp(1, time.Now()))
	h.Clear()

	is.Equal(len(h.History("A")), 0)
	is.Equal(len(h.Addresses()), 0)
}
