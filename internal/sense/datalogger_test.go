package sense

import (
	"testing"

	"github.com/matryer/is"
)

func TestDecode_DataLogger_FullFrame(t *testing.T) {
	is := is.New(t)

	payload := make([]byte, 234)
	payload[231] = 5

	reading, err := Decode(DataLogger, payload)
	is.NoErr(err)

	r, ok := reading.(*DataLoggerReading)
	is.True(ok)
	is.Equal(r.PacketID, 5)
	is.Equal(len(r.Samples), 77)
	for _, s := range r.Samples {
		is.Equal(s, Sample{})
	}
	is.True(r.Valid())
}

func TestDecode_DataLogger_TruncatesOversizedPayload(t *testing.T) {
	is := is.New(t)

	payload := make([]byte, 300)
	payload[231] = 9
	// Anything past the frame boundary must be ignored.
	payload[234] = 0xFF
	payload[299] = 0xFF

	r := decodeLoggerFrame(t, payload)
	is.Equal(r.PacketID, 9)
	is.Equal(len(r.Samples), 77)
}

func TestDecode_DataLogger_PadsShortPayload(t *testing.T) {
	is := is.New(t)

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}

	r := decodeLoggerFrame(t, payload)
	// Packet id offset lies in the zero-padded region.
	is.Equal(r.PacketID, 0)
	is.Equal(len(r.Samples), 77)
	is.Equal(r.Samples[0], Sample{X: 0, Y: 1, Z: 2})
	is.Equal(r.Samples[33], Sample{X: 99, Y: 0, Z: 0})
	is.Equal(r.Samples[76], Sample{})
}

func TestDecode_DataLogger_SampleOrderAndRawHex(t *testing.T) {
	is := is.New(t)

	payload := make([]byte, 234)
	payload[0], payload[1], payload[2] = 1, 2, 3
	payload[228], payload[229], payload[230] = 7, 8, 9
	payload[231] = 255

	r := decodeLoggerFrame(t, payload)
	is.Equal(r.ID, "1")
	is.Equal(r.PacketID, 255)
	is.Equal(r.Samples[0], Sample{X: 1, Y: 2, Z: 3})
	is.Equal(r.Samples[76], Sample{X: 7, Y: 8, Z: 9})
	is.Equal(len(r.Raw), 234*3-1)
}

func decodeLoggerFrame(t *testing.T, payload []byte) *DataLoggerReading {
	t.Helper()
	reading, err := Decode(DataLogger, payload)
	if err != nil {
		t.Fatalf("Decode(DataLogger) error = %v, want nil", err)
	}
	r, ok := reading.(*DataLoggerReading)
	if !ok {
		t.Fatalf("Decode(DataLogger) returned %T, want *DataLoggerReading", reading)
	}
	return r
}

func TestAccumulator_RecordAndSnapshot(t *testing.T) {
	is := is.New(t)

	acc := NewAccumulator()
	is.Equal(acc.LatestPacketID(), -1)
	is.Equal(len(acc.History()), 0)

	first := decodeLoggerFrame(t, frameWithPacketID(3))
	second := decodeLoggerFrame(t, frameWithPacketID(4))
	acc.Record(first)
	acc.Record(second)

	is.Equal(acc.LatestPacketID(), 4)
	is.Equal(len(acc.History()), 2)
	is.Equal(acc.History()[0].PacketID, 3)
}

func TestAccumulator_DoesNotDeduplicate(t *testing.T) {
	is := is.New(t)

	acc := NewAccumulator()
	for i := 0; i < 3; i++ {
		acc.Record(decodeLoggerFrame(t, frameWithPacketID(42)))
	}

	// Re-broadcasts of the same physical packet are all retained.
	is.Equal(len(acc.History()), 3)
	is.Equal(acc.LatestPacketID(), 42)
}

func TestAccumulator_IgnoresInvalid(t *testing.T) {
	is := is.New(t)

	acc := NewAccumulator()
	acc.Record(nil)
	acc.Record(&DataLoggerReading{PacketID: 300})
	acc.Record(&DataLoggerReading{PacketID: 1})

	is.Equal(len(acc.History()), 0)
	is.Equal(acc.LatestPacketID(), -1)
}

func TestAccumulator_Reset(t *testing.T) {
	is := is.New(t)

	acc := NewAccumulator()
	acc.Record(decodeLoggerFrame(t, frameWithPacketID(7)))
	acc.Reset()

	is.Equal(acc.LatestPacketID(), -1)
	is.Equal(len(acc.History()), 0)
}

func frameWithPacketID(id byte) []byte {
	frame := make([]byte, 234)
	frame[231] = id
	return frame
}
