// Package config loads the drivetrain's YAML configuration.  Every setting has
// a compiled-in default; the file only needs to mention what it overrides.
package config

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/automode"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/teleopmode"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision"
)

const DefaultPath = "/cfg/drivetrain.yaml"

type Config struct {
	Drive    drive.Config      `yaml:"drive"`
	Auto     automode.Config   `yaml:"auto"`
	Teleop   teleopmode.Config `yaml:"teleop"`
	Hardware hardware.Config   `yaml:"hardware"`
	Vision   vision.Config     `yaml:"vision"`
	Log      LogConfig         `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Dir, if set, gets a copy of the log.
	Dir string `yaml:"dir"`
}

func Default() Config {
	return Config{
		Drive:    drive.DefaultConfig(),
		Auto:     automode.DefaultConfig(),
		Teleop:   teleopmode.DefaultConfig(),
		Hardware: hardware.DefaultConfig(),
		Vision:   vision.DefaultConfig(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load overlays the file at path onto the defaults.  A missing file is not an
// error.  Lists in the file, such as the balance gain bands, replace the
// default list rather than merging with it.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, nil
}

// InUsePath is where WriteInUse records the config loaded from path.
func InUsePath(path string) string {
	return strings.TrimSuffix(path, ".yaml") + "-in-use.yaml"
}

// WriteInUse writes the full effective config next to the file it came from.
func (c Config) WriteInUse(path string) error {
	data, err := yaml.Marshal(&c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := ioutil.WriteFile(InUsePath(path), data, 0666); err != nil {
		return errors.Wrap(err, "failed to write in-use config")
	}
	return nil
}
