package sense

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestDecode_ShortPayloads(t *testing.T) {
	tests := []struct {
		t   DeviceType
		min int
	}{
		{SHT40, 5},
		{LIS2DH, 7},
		{SoilSensor, 11},
		{SpeedDistance, 6},
		{AmmoniaSensor, 6},
		{LuxSensor, 5},
	}

	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			is := is.New(t)
			for n := 0; n < tt.min; n++ {
				reading, err := Decode(tt.t, make([]byte, n))
				is.True(errors.Is(err, ErrPayloadTooShort))
				is.Equal(reading, nil)
			}
		})
	}
}

func TestDecode_Unknown(t *testing.T) {
	is := is.New(t)
	reading, err := Decode(Unknown, []byte{0x01, 0x02, 0x03, 0x04, 0x05})
	is.True(errors.Is(err, ErrUnknownDeviceType))
	is.Equal(reading, nil)
}

func TestDecode_SHT40(t *testing.T) {
	is := is.New(t)

	reading, err := Decode(SHT40, []byte{0x01, 0x19, 0x64, 0x32, 0x19})
	is.NoErr(err)

	r, ok := reading.(SHT40Reading)
	is.True(ok)
	is.Equal(r.ID, "1")
	is.True(math.Abs(r.Temperature-25.01) < 1e-9)
	is.True(math.Abs(r.Humidity-50.0025) < 1e-9)
	is.Equal(fmt.Sprintf("%.2f", r.Temperature), "25.01")
}

func TestDecode_SHT40_NegativeTemperature(t *testing.T) {
	is := is.New(t)

	// 0xF6 = -10 as int8.
	reading, err := Decode(SHT40, []byte{0x07, 0xF6, 0x00, 0x28, 0x00})
	is.NoErr(err)

	r := reading.(SHT40Reading)
	is.True(math.Abs(r.Temperature-(-10.0)) < 1e-9)
	is.True(math.Abs(r.Humidity-40.0) < 1e-9)
}

func TestDecode_SHT40_RoundTrip(t *testing.T) {
	is := is.New(t)

	// Build a payload from known values and verify decode recovers them
	// within the fixed-point resolution.
	wantTemp := 21.0042
	wantHum := 63.0199
	payload := []byte{
		0x05,
		byte(int8(21)), byte(42),
		byte(int8(63)), byte(199),
	}

	reading, err := Decode(SHT40, payload)
	is.NoErr(err)

	r := reading.(SHT40Reading)
	is.True(math.Abs(r.Temperature-wantTemp) < 1e-4)
	is.True(math.Abs(r.Humidity-wantHum) < 1e-4)
}

func TestDecode_LIS2DH(t *testing.T) {
	is := is.New(t)

	reading, err := Decode(LIS2DH, []byte{0x02, 0x01, 0x05, 0xFF, 0x0A, 0x00, 0x63})
	is.NoErr(err)

	r, ok := reading.(LIS2DHReading)
	is.True(ok)
	is.Equal(r.ID, "2")
	is.Equal(r.X, "1.5")
	// 0xFF is -1 as int8; the fraction byte stays unsigned.
	is.Equal(r.Y, "-1.10")
	is.Equal(r.Z, "0.99")
}

func TestDecode_Soil(t *testing.T) {
	is := is.New(t)

	payload := []byte{0x03, 12, 34, 56, 78, 21, 4, 1, 25, 6, 8}
	reading, err := Decode(SoilSensor, payload)
	is.NoErr(err)

	r, ok := reading.(SoilReading)
	is.True(ok)
	is.Equal(r.ID, "3")
	is.Equal(r.Nitrogen, 12)
	is.Equal(r.Phosphorus, 34)
	is.Equal(r.Potassium, 56)
	is.Equal(r.Moisture, 78)
	is.Equal(r.Temperature, "21.4")
	is.Equal(r.EC, "1.25")
	is.Equal(r.PH, "6.8")
}

func TestDecode_SpeedDistance(t *testing.T) {
	is := is.New(t)

	// Byte 3 is reserved and must not leak into either field.
	reading, err := Decode(SpeedDistance, []byte{0x04, 12, 5, 0xEE, 120, 25})
	is.NoErr(err)

	r, ok := reading.(SpeedDistanceReading)
	is.True(ok)
	is.Equal(r.ID, "4")
	is.Equal(r.Speed, "12.5")
	is.Equal(r.Distance, "120.25")
}

func TestDecode_Ammonia(t *testing.T) {
	is := is.New(t)

	reading, err := Decode(AmmoniaSensor, []byte{0x06, 0x00, 0x00, 0x00, 0x00, 17})
	is.NoErr(err)

	r, ok := reading.(AmmoniaReading)
	is.True(ok)
	is.Equal(r.ID, "6")
	is.Equal(r.Ammonia, "17.0 ppm")
	is.Equal(r.Raw, "06 00 00 00 00 11")
}

func TestDecode_Lux(t *testing.T) {
	is := is.New(t)

	reading, err := Decode(LuxSensor, []byte{0x09, 0x03, 0xE8, 0x00, 0x00})
	is.NoErr(err)

	r, ok := reading.(LuxReading)
	is.True(ok)
	is.Equal(r.ID, "9")
	is.Equal(r.Lux, 3*256+0xE8)
	is.Equal(r.Raw, "09 03 E8 00 00")
}
