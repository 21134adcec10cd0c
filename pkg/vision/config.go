package vision

import "time"

const (
	SourceNone       = "none"
	SourceLimelight  = "limelight"
	SourceTapeFinder = "tapefinder"
)

type Config struct {
	// Source picks the detector: none, limelight or tapefinder.
	Source string `yaml:"source"`
	// Readings older than StaleAfter are reported as no target.
	StaleAfter time.Duration    `yaml:"staleAfter"`
	Limelight  LimelightConfig  `yaml:"limelight"`
	TapeFinder TapeFinderConfig `yaml:"tapeFinder"`
}

func DefaultConfig() Config {
	return Config{
		Source:     SourceLimelight,
		StaleAfter: 500 * time.Millisecond,
		Limelight: LimelightConfig{
			Endpoint: "tcp://127.0.0.1:5801",
			Topic:    "limelight",
		},
		TapeFinder: DefaultTapeFinderConfig(),
	}
}

type LimelightConfig struct {
	Endpoint string `yaml:"endpoint"`
	Topic    string `yaml:"topic"`
}

type HSVRange struct {
	HueMin, HueMax byte
	SatMin, SatMax byte
	ValMin, ValMax byte
}

// Retroreflective tape lit by a green ring light.
var DefaultTapeHSV = HSVRange{
	HueMin: 55, HueMax: 95,
	SatMin: 120, SatMax: 255,
	ValMin: 90, ValMax: 255,
}

type TapeFinderConfig struct {
	DeviceID     int      `yaml:"deviceID"`
	ProcessWidth int      `yaml:"processWidth"`
	HFOVDegrees  float64  `yaml:"hfovDegrees"`
	VFOVDegrees  float64  `yaml:"vfovDegrees"`
	MinAreaPx    float64  `yaml:"minAreaPx"`
	HSV          HSVRange `yaml:"hsv"`
}

func DefaultTapeFinderConfig() TapeFinderConfig {
	return TapeFinderConfig{
		ProcessWidth: 320,
		HFOVDegrees:  59.6,
		VFOVDegrees:  49.7,
		MinAreaPx:    40,
		HSV:          DefaultTapeHSV,
	}
}
