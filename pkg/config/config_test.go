package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"
)

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Drive.Deadband != 0.06 || cfg.Drive.SlewRate != 3.53 || cfg.Auto.DistanceMeters != 5 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}

func TestOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivetrain.yaml")
	err := ioutil.WriteFile(path, []byte(`
drive:
  gearboxRatio: 10.71
  cyclePeriod: 10ms
  balance:
    bands:
      - below: 8
        gain: 0.008
      - below: 3
        gain: 0.004
vision:
  source: tapefinder
log:
  level: debug
`), 0666)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Drive.GearboxRatio != 10.71 {
		t.Errorf("Gearbox ratio not overridden: %v", cfg.Drive.GearboxRatio)
	}
	if cfg.Drive.CyclePeriod != 10*time.Millisecond {
		t.Errorf("Cycle period not overridden: %v", cfg.Drive.CyclePeriod)
	}
	if len(cfg.Drive.Balance.Bands) != 2 || cfg.Drive.Balance.Bands[1].Gain != 0.004 {
		t.Errorf("Bands not replaced: %v", cfg.Drive.Balance.Bands)
	}
	// Untouched settings keep their defaults.
	if cfg.Drive.WheelCircumference != 0.4788 || cfg.Drive.Balance.KD != 0.00125 {
		t.Errorf("Defaults lost: %+v", cfg.Drive)
	}
	if cfg.Vision.Source != "tapefinder" || cfg.Log.Level != "debug" {
		t.Errorf("Unexpected vision/log config %+v %+v", cfg.Vision, cfg.Log)
	}
}

func TestUnknownKeyIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivetrain.yaml")
	if err := ioutil.WriteFile(path, []byte("drive:\n  wheelSize: 3\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected an error for an unknown key")
	}
}

func TestWriteInUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivetrain.yaml")
	cfg := Default()
	cfg.Drive.Alignment.ExpectedPitch = 7.5
	if err := cfg.WriteInUse(path); err != nil {
		t.Fatal(err)
	}
	inUse := InUsePath(path)
	if filepath.Base(inUse) != "drivetrain-in-use.yaml" {
		t.Fatalf("Unexpected in-use path %v", inUse)
	}

	reloaded, err := Load(inUse)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Drive.Alignment.ExpectedPitch != 7.5 {
		t.Errorf("Expected pitch not round-tripped: %v", reloaded.Drive.Alignment.ExpectedPitch)
	}
	if reloaded.Drive.CyclePeriod != 20*time.Millisecond || reloaded.Vision.StaleAfter != 500*time.Millisecond {
		t.Errorf("Durations not round-tripped: %v %v", reloaded.Drive.CyclePeriod, reloaded.Vision.StaleAfter)
	}
}
