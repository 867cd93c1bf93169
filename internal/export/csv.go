package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sksuman14/blesense/internal/sense"
)

// ErrNoHistory is returned when the address has nothing to export.
var ErrNoHistory = errors.New("no history for device")

// HistorySource is the slice of the pipeline the exporter needs.
type HistorySource interface {
	HistoryFor(address string) []sense.HistoryEntry
}

// Exporter serializes a device's bounded history as CSV with per-sensor-type
// columns. It writes to a caller-supplied writer; file handling (and the
// share/save UX around it) stays with the caller.
type Exporter struct {
	source HistorySource
}

func NewExporter(source HistorySource) *Exporter {
	return &Exporter{source: source}
}

// WriteDeviceCSV writes the full history for one address, oldest first. The
// column set follows the device type of the first entry; entries of other
// types (possible if a physical device was renamed mid-session) are skipped.
func (e *Exporter) WriteDeviceCSV(w io.Writer, address string) error {
	entries := e.source.HistoryFor(address)
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s", ErrNoHistory, address)
	}

	deviceType := entries[0].Reading.Type()

	cw := csv.NewWriter(w)
	if err := cw.Write(header(deviceType)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, entry := range entries {
		if entry.Reading == nil || entry.Reading.Type() != deviceType {
			continue
		}
		if err := cw.Write(record(entry.At, entry.Reading)); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func header(t sense.DeviceType) []string {
	switch t {
	case sense.SHT40:
		return []string{"timestamp", "sensor_id", "temperature_c", "humidity_pct"}
	case sense.LIS2DH:
		return []string{"timestamp", "sensor_id", "x", "y", "z"}
	case sense.SoilSensor:
		return []string{"timestamp", "sensor_id", "nitrogen", "phosphorus", "potassium", "moisture", "temperature", "ec", "ph"}
	case sense.SpeedDistance:
		return []string{"timestamp", "sensor_id", "speed", "distance"}
	case sense.AmmoniaSensor:
		return []string{"timestamp", "sensor_id", "ammonia_ppm", "raw"}
	case sense.LuxSensor:
		return []string{"timestamp", "sensor_id", "lux", "raw"}
	case sense.DataLogger:
		return []string{"timestamp", "sensor_id", "packet_id", "samples", "raw"}
	default:
		return []string{"timestamp", "sensor_id"}
	}
}

func record(at time.Time, r sense.Reading) []string {
	ts := at.UTC().Format(time.RFC3339)
	switch v := r.(type) {
	case sense.SHT40Reading:
		return []string{ts, v.ID, fmt.Sprintf("%.2f", v.Temperature), fmt.Sprintf("%.2f", v.Humidity)}
	case sense.LIS2DHReading:
		return []string{ts, v.ID, v.X, v.Y, v.Z}
	case sense.SoilReading:
		return []string{ts, v.ID,
			strconv.Itoa(v.Nitrogen), strconv.Itoa(v.Phosphorus), strconv.Itoa(v.Potassium),
			strconv.Itoa(v.Moisture), v.Temperature, v.EC, v.PH,
		}
	case sense.SpeedDistanceReading:
		return []string{ts, v.ID, v.Speed, v.Distance}
	case sense.AmmoniaReading:
		return []string{ts, v.ID, v.Ammonia, v.Raw}
	case sense.LuxReading:
		return []string{ts, v.ID, strconv.Itoa(v.Lux), v.Raw}
	case *sense.DataLoggerReading:
		return []string{ts, v.ID, strconv.Itoa(v.PacketID), joinSamples(v.Samples), v.Raw}
	default:
		return []string{ts, r.SensorID()}
	}
}

// joinSamples flattens triplets as "x:y:z" joined by ';'.
func joinSamples(samples []sense.Sample) string {
	var b strings.Builder
	for i, s := range samples {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(int(s.X)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(s.Y)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(s.Z)))
	}
	return b.String()
}
