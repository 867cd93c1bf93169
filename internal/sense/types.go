package sense

import (
	"time"
)

// DeviceType identifies which sensor family an advertisement came from.
// It is derived from the advertised local name, never from the payload.
type DeviceType int

const (
	Unknown DeviceType = iota
	SHT40
	LIS2DH
	SoilSensor
	SpeedDistance
	AmmoniaSensor
	LuxSensor
	DataLogger
)

func (t DeviceType) String() string {
	switch t {
	case SHT40:
		return "sht40"
	case LIS2DH:
		return "lis2dh"
	case SoilSensor:
		return "soil"
	case SpeedDistance:
		return "speed-distance"
	case AmmoniaSensor:
		return "ammonia"
	case LuxSensor:
		return "lux"
	case DataLogger:
		return "data-logger"
	default:
		return "unknown"
	}
}

// Advertisement is a single observation delivered by the scanner. It is
// consumed synchronously by the pipeline and never retained.
type Advertisement struct {
	Name             string
	Address          string
	RSSI             int16
	ManufacturerData map[uint16][]byte
	SeenAt           time.Time
}

// Payload returns the manufacturer data to decode and its company ID: the
// non-empty entry with the lowest company ID, so the choice is stable across
// map iteration order.
func (a Advertisement) Payload() ([]byte, uint16, bool) {
	var (
		best   []byte
		bestID uint16
		found  bool
	)
	for id, data := range a.ManufacturerData {
		if len(data) == 0 {
			continue
		}
		if !found || id < bestID {
			best, bestID, found = data, id, true
		}
	}
	return best, bestID, found
}

// Reading is the closed union of decoded sensor values. Each variant carries
// the sensor unit's self-reported id byte, which is distinct from the
// hardware address the roster is keyed by.
type Reading interface {
	Type() DeviceType
	SensorID() string

	isReading()
}

// SHT40Reading holds a temperature/humidity sample. Values reconstruct as
// signed integer part plus unsigned fractional part over 10000.
type SHT40Reading struct {
	ID          string  `json:"sensor_id"`
	Temperature float64 `json:"temperature_c"`
	Humidity    float64 `json:"humidity_pct"`
}

func (r SHT40Reading) Type() DeviceType { return SHT40 }
func (r SHT40Reading) SensorID() string { return r.ID }
func (r SHT40Reading) isReading()       {}

// LIS2DHReading holds accelerometer axes. The axis values are literal
// "<integer>.<fraction>" byte joins as transmitted, not arithmetic results,
// so they stay strings end to end.
type LIS2DHReading struct {
	ID string `json:"sensor_id"`
	X  string `json:"x"`
	Y  string `json:"y"`
	Z  string `json:"z"`
}

func (r LIS2DHReading) Type() DeviceType { return LIS2DH }
func (r LIS2DHReading) SensorID() string { return r.ID }
func (r LIS2DHReading) isReading()       {}

// SoilReading holds an NPK soil probe sample.
type SoilReading struct {
	ID          string `json:"sensor_id"`
	Nitrogen    int    `json:"nitrogen"`
	Phosphorus  int    `json:"phosphorus"`
	Potassium   int    `json:"potassium"`
	Moisture    int    `json:"moisture"`
	Temperature string `json:"temperature"`
	EC          string `json:"ec"`
	PH          string `json:"ph"`
}

func (r SoilReading) Type() DeviceType { return SoilSensor }
func (r SoilReading) SensorID() string { return r.ID }
func (r SoilReading) isReading()       {}

// SpeedDistanceReading holds a speed/odometer sample.
type SpeedDistanceReading struct {
	ID       string `json:"sensor_id"`
	Speed    string `json:"speed"`
	Distance string `json:"distance"`
}

func (r SpeedDistanceReading) Type() DeviceType { return SpeedDistance }
func (r SpeedDistanceReading) SensorID() string { return r.ID }
func (r SpeedDistanceReading) isReading()       {}

// AmmoniaReading holds an NH3 concentration sample plus the raw payload for
// audit.
type AmmoniaReading struct {
	ID      string `json:"sensor_id"`
	Ammonia string `json:"ammonia_ppm"`
	Raw     string `json:"raw"`
}

func (r AmmoniaReading) Type() DeviceType { return AmmoniaSensor }
func (r AmmoniaReading) SensorID() string { return r.ID }
func (r AmmoniaReading) isReading()       {}

// LuxReading holds an illuminance sample plus the raw payload for audit.
type LuxReading struct {
	ID  string `json:"sensor_id"`
	Lux int    `json:"lux"`
	Raw string `json:"raw"`
}

func (r LuxReading) Type() DeviceType { return LuxSensor }
func (r LuxReading) SensorID() string { return r.ID }
func (r LuxReading) isReading()       {}

// Sample is one (x,y,z) triplet from a data-logger frame.
type Sample struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
	Z uint8 `json:"z"`
}

// DataLoggerReading is one reconstructed data-logger frame: the 8-bit
// rolling packet id, the 77 buffered samples and the pre-normalization
// payload as hex for audit/export.
type DataLoggerReading struct {
	ID       string   `json:"sensor_id"`
	PacketID int      `json:"packet_id"`
	Samples  []Sample `json:"samples"`
	Raw      string   `json:"raw"`
}

func (r *DataLoggerReading) Type() DeviceType { return DataLogger }
func (r *DataLoggerReading) SensorID() string { return r.ID }
func (r *DataLoggerReading) isReading()       {}

// DiscoveredDevice is a roster entry: the latest state observed for one
// hardware address. Reading is nil when the last payload failed to decode.
type DiscoveredDevice struct {
	Address  string     `json:"address"`
	Name     string     `json:"name"`
	RSSI     int16      `json:"rssi"`
	Type     DeviceType `json:"-"`
	TypeName string     `json:"device_type"`
	Reading  Reading    `json:"reading,omitempty"`
	LastSeen time.Time  `json:"last_seen"`
}

// HistoryEntry is an immutable timestamped snapshot of a decoded reading.
type HistoryEntry struct {
	At      time.Time `json:"at"`
	Reading Reading   `json:"reading"`
}
