package sense

import (
	"testing"

	"github.com/matryer/is"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want DeviceType
	}{
		{name: "sht40 prefix", in: "SHT40-A1", want: SHT40},
		{name: "sht lowercase", in: "sht_node_3", want: SHT40},
		{name: "lux data", in: "Lux_Data_7", want: LuxSensor},
		{name: "soil sensor", in: "SOIL_Sensor_42", want: SoilSensor},
		{name: "soil lowercase", in: "soil-probe", want: SoilSensor},
		{name: "activity tracker", in: "Activity_Tag", want: LIS2DH},
		{name: "speed node", in: "Speed_Node", want: SpeedDistance},
		{name: "ammonia", in: "NH3-Barn-2", want: AmmoniaSensor},
		{name: "datalogger one word", in: "DataLogger_01", want: DataLogger},
		{name: "data logger two words", in: "Data Logger 01", want: DataLogger},
		{name: "dlog short form", in: "DLOG-4", want: DataLogger},
		{name: "no recognized substring", in: "iPhone", want: Unknown},
		{name: "empty name", in: "", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(Classify(tt.in), tt.want)
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	is := is.New(t)

	// "SHT" outranks "Speed" in the rule order.
	is.Equal(Classify("SHT_Speed"), SHT40)

	// "NH" appears inside many names; rules ahead of it must win.
	is.Equal(Classify("SOIL_NH_combo"), SoilSensor)
}
