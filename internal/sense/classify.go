package sense

import "strings"

// classifierRules are evaluated in order; the first matching substring wins.
// Order matters: a name like "SHT_Speed" must classify as SHT40.
var classifierRules = []struct {
	substr string
	t      DeviceType
}{
	{"SHT", SHT40},
	{"LUX_DATA", LuxSensor},
	{"SOIL", SoilSensor},
	{"ACTIVITY", LIS2DH},
	{"SPEED", SpeedDistance},
	{"NH", AmmoniaSensor},
	{"DATALOGGER", DataLogger},
	{"DATA LOGGER", DataLogger},
	{"DLOG", DataLogger},
}

// Classify maps an advertised local name to a device type. Matching is
// case-insensitive; an empty or unrecognized name yields Unknown.
func Classify(name string) DeviceType {
	if name == "" {
		return Unknown
	}
	upper := strings.ToUpper(name)
	for _, rule := range classifierRules {
		if strings.Contains(upper, rule.substr) {
			return rule.t
		}
	}
	return Unknown
}
