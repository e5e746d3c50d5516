// Package config loads the settings of the ds3231ctl host tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tinyrtc/drivers/ds3231"
)

// Config is the on-disk configuration. Every field has a usable default; an empty LogLevel defers to LOG_LEVEL
// and then to info.
type Config struct {
	Bus                  string        `yaml:"bus"`
	Address              uint8         `yaml:"address"`
	BaseCentury          uint8         `yaml:"base_century"`
	HourMode             string        `yaml:"hour_mode"`
	IgnoreOscillatorStop bool          `yaml:"ignore_oscillator_stop"`
	NTPServer            string        `yaml:"ntp_server"`
	NTPTimeout           time.Duration `yaml:"ntp_timeout"`
	LogLevel             string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Bus:         "/dev/i2c-1",
		Address:     ds3231.Address,
		BaseCentury: 20,
		HourMode:    "24h",
		NTPServer:   "pool.ntp.org",
		NTPTimeout:  5 * time.Second,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving fields absent from data untouched. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

func (c Config) Validate() error {
	if c.Bus == "" {
		return errors.New("bus must be set")
	}
	if c.Address == 0 || c.Address > 0x7F {
		return fmt.Errorf("address %#x is not a 7-bit i2c address", c.Address)
	}
	if c.BaseCentury < 19 || c.BaseCentury > 21 {
		return fmt.Errorf("base_century %d: %w", c.BaseCentury, ds3231.ErrInvalidBaseCentury)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if c.NTPTimeout <= 0 {
		return fmt.Errorf("ntp_timeout %v must be positive", c.NTPTimeout)
	}
	return nil
}

// Mode returns the hour mode as understood by the driver.
func (c Config) Mode() (ds3231.HourMode, error) {
	switch c.HourMode {
	case "", "24h":
		return ds3231.Hour24, nil
	case "12h":
		return ds3231.Hour12, nil
	}
	return 0, fmt.Errorf("hour_mode %q must be 12h or 24h", c.HourMode)
}

// Driver returns the driver configuration.
func (c Config) Driver() (ds3231.Config, error) {
	mode, err := c.Mode()
	if err != nil {
		return ds3231.Config{}, err
	}
	return ds3231.Config{
		Address:              c.Address,
		BaseCentury:          c.BaseCentury,
		HourMode:             mode,
		IgnoreOscillatorStop: c.IgnoreOscillatorStop,
	}, nil
}
