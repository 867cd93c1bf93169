package sense

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sksuman14/blesense/internal/utils"
)

// ErrPayloadTooShort reports a manufacturer payload below the minimum length
// for its device type. The device still shows up in the roster, just without
// a reading.
var ErrPayloadTooShort = errors.New("payload too short")

// ErrUnknownDeviceType reports that no decoder exists for the device type.
var ErrUnknownDeviceType = errors.New("unknown device type")

// minPayloadLen is the per-type minimum manufacturer payload length.
// DataLogger is absent: its decoder normalizes any input to a full frame.
var minPayloadLen = map[DeviceType]int{
	SHT40:         5,
	LIS2DH:        7,
	SoilSensor:    11,
	SpeedDistance: 6,
	AmmoniaSensor: 6,
	LuxSensor:     5,
}

// Decode converts a manufacturer payload into a typed reading. It is pure:
// all state updates (roster, history, data-logger accumulation) happen in
// the pipeline. Byte values are interpreted unsigned unless noted per field.
func Decode(t DeviceType, payload []byte) (Reading, error) {
	if t == Unknown {
		return nil, ErrUnknownDeviceType
	}
	if min, ok := minPayloadLen[t]; ok && len(payload) < min {
		return nil, fmt.Errorf("%s: %w (have %d, want %d)", t, ErrPayloadTooShort, len(payload), min)
	}

	switch t {
	case SHT40:
		return decodeSHT40(payload), nil
	case LIS2DH:
		return decodeLIS2DH(payload), nil
	case SoilSensor:
		return decodeSoil(payload), nil
	case SpeedDistance:
		return decodeSpeedDistance(payload), nil
	case AmmoniaSensor:
		return decodeAmmonia(payload), nil
	case LuxSensor:
		return decodeLux(payload), nil
	case DataLogger:
		return decodeDataLogger(payload), nil
	default:
		return nil, ErrUnknownDeviceType
	}
}

func decodeSHT40(p []byte) SHT40Reading {
	return SHT40Reading{
		ID:          sensorID(p[0]),
		Temperature: fixedPoint(p[1], p[2]),
		Humidity:    fixedPoint(p[3], p[4]),
	}
}

func decodeLIS2DH(p []byte) LIS2DHReading {
	return LIS2DHReading{
		ID: sensorID(p[0]),
		X:  dotJoinSigned(p[1], p[2]),
		Y:  dotJoinSigned(p[3], p[4]),
		Z:  dotJoinSigned(p[5], p[6]),
	}
}

func decodeSoil(p []byte) SoilReading {
	return SoilReading{
		ID:          sensorID(p[0]),
		Nitrogen:    int(p[1]),
		Phosphorus:  int(p[2]),
		Potassium:   int(p[3]),
		Moisture:    int(p[4]),
		Temperature: dotJoin(p[5], p[6]),
		EC:          dotJoin(p[7], p[8]),
		PH:          dotJoin(p[9], p[10]),
	}
}

func decodeSpeedDistance(p []byte) SpeedDistanceReading {
	// Byte 3 is reserved on the wire and skipped.
	return SpeedDistanceReading{
		ID:       sensorID(p[0]),
		Speed:    dotJoin(p[1], p[2]),
		Distance: dotJoin(p[4], p[5]),
	}
}

func decodeAmmonia(p []byte) AmmoniaReading {
	return AmmoniaReading{
		ID:      sensorID(p[0]),
		Ammonia: fmt.Sprintf("%.1f ppm", float64(p[5])),
		Raw:     utils.HexDump(p),
	}
}

func decodeLux(p []byte) LuxReading {
	return LuxReading{
		ID:  sensorID(p[0]),
		Lux: int(p[1])*256 + int(p[2]),
		Raw: utils.HexDump(p),
	}
}

func sensorID(b byte) string {
	return strconv.Itoa(int(b))
}

// fixedPoint reconstructs signed integer part + unsigned fraction / 10000.
func fixedPoint(intPart, fracPart byte) float64 {
	return float64(int8(intPart)) + float64(fracPart)/10000.0
}

// dotJoin builds the literal "<int>.<frac>" decimal string the sensors
// transmit. This is string concatenation, not division: dotJoin(3, 7) is
// "3.7" and dotJoin(3, 70) is "3.70".
func dotJoin(intPart, fracPart byte) string {
	return strconv.Itoa(int(intPart)) + "." + strconv.Itoa(int(fracPart))
}

// dotJoinSigned is dotJoin with a two's-complement integer part.
func dotJoinSigned(intPart, fracPart byte) string {
	return strconv.Itoa(int(int8(intPart))) + "." + strconv.Itoa(int(fracPart))
}
