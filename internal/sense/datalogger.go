package sense

import (
	"sync"

	"github.com/sksuman14/blesense/internal/utils"
)

const (
	// dataLoggerFrameLen is the fixed frame size every data-logger payload is
	// normalized to before field extraction.
	dataLoggerFrameLen = 234

	// dataLoggerPacketIDOffset is the frame offset of the 8-bit rolling
	// packet id.
	dataLoggerPacketIDOffset = 231

	// dataLoggerSampleBytes is the length of the sample region: bytes
	// 0..230, partitioned into consecutive 3-byte (x,y,z) triplets.
	dataLoggerSampleBytes = 231

	// DataLoggerSamplesPerFrame is how many triplets a full frame carries.
	DataLoggerSamplesPerFrame = dataLoggerSampleBytes / 3
)

// decodeDataLogger reconstructs a data-logger frame. Oversized payloads are
// truncated to the frame length, short ones zero-padded, so extraction never
// fails. The pre-normalization payload is kept verbatim as hex for audit.
func decodeDataLogger(payload []byte) *DataLoggerReading {
	raw := utils.HexDump(payload)

	frame := make([]byte, dataLoggerFrameLen)
	copy(frame, payload)

	samples := make([]Sample, 0, DataLoggerSamplesPerFrame)
	for i := 0; i+3 <= dataLoggerSampleBytes; i += 3 {
		samples = append(samples, Sample{X: frame[i], Y: frame[i+1], Z: frame[i+2]})
	}

	return &DataLoggerReading{
		ID:       sensorID(frame[0]),
		PacketID: int(frame[dataLoggerPacketIDOffset]),
		Samples:  samples,
		Raw:      raw,
	}
}

// Valid reports whether the frame reconstruction is usable. With the fixed
// normalization this always holds; the check guards the accumulator against
// hand-built readings.
func (r *DataLoggerReading) Valid() bool {
	return r.PacketID >= 0 && r.PacketID <= 255 && len(r.Samples) > 0
}

// Accumulator collects every valid data-logger reconstruction seen in the
// session. It is a single shared log across all data-logger devices.
// Entries are not deduplicated by packet id: re-broadcasts of the same
// physical packet produce repeated entries.
type Accumulator struct {
	mu             sync.RWMutex
	latestPacketID int
	entries        []*DataLoggerReading
}

// NewAccumulator returns an empty accumulator. LatestPacketID is -1 until
// the first frame is recorded.
func NewAccumulator() *Accumulator {
	return &Accumulator{latestPacketID: -1}
}

// Record appends a reconstruction and publishes its packet id as latest.
// Invalid readings are ignored.
func (a *Accumulator) Record(r *DataLoggerReading) {
	if r == nil || !r.Valid() {
		return
	}
	a.mu.Lock()
	a.latestPacketID = r.PacketID
	a.entries = append(a.entries, r)
	a.mu.Unlock()
}

// LatestPacketID returns the packet id of the most recently recorded frame,
// or -1 when nothing has been recorded yet.
func (a *Accumulator) LatestPacketID() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latestPacketID
}

// History returns a snapshot of all recorded frames, oldest first.
func (a *Accumulator) History() []*DataLoggerReading {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*DataLoggerReading, len(a.entries))
	copy(out, a.entries)
	return out
}

// Reset drops all recorded frames and the latest packet id.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	a.latestPacketID = -1
	a.entries = nil
	a.mu.Unlock()
}
