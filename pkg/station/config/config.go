package config

import (
	"fmt"
	"os"
	"time"

	"github.com/norasector/foxcast/pkg/sis"
	"github.com/norasector/foxcast/pkg/util"
	"gopkg.in/yaml.v2"
)

const DefaultStartALFN uint32 = 800000000

type Config struct {
	StationName        string              `yaml:"station_name"`
	StartALFN          *uint32             `yaml:"start_alfn"`
	ALFNFromClock      bool                `yaml:"alfn_from_clock"`
	StrictAlphabet     bool                `yaml:"strict_alphabet"`
	FrameInterval      time.Duration       `yaml:"frame_interval"`
	Loopback           bool                `yaml:"loopback"`
	LogLevel           string              `yaml:"log_level"`
	OutputDestinations []OutputDestination `yaml:"output_destinations"`
	FileOutput         struct {
		Path   string `yaml:"path"`
		Packed bool   `yaml:"packed"`
	} `yaml:"file_output"`
	StatusServer struct {
		Port           int           `yaml:"port"`
		UpdateInterval time.Duration `yaml:"update_interval_ms"`
	} `yaml:"status_server"`
	InfluxDB struct {
		Host         string `yaml:"host"`
		Organization string `yaml:"organization"`
		Bucket       string `yaml:"bucket"`
	} `yaml:"influxdb"`
}

type OutputDestination struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(contents)
}

func Parse(contents []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling yaml: %w", err)
	}
	if err := c.applyDefaults(time.Now()); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults(now time.Time) error {
	if c.StationName == "" {
		return fmt.Errorf("station_name is required")
	}
	if len(c.StationName) > sis.NameLength {
		return fmt.Errorf("station_name %q longer than %d characters", c.StationName, sis.NameLength)
	}
	c.StationName = sis.PadStationName(c.StationName)

	// start_alfn: 0 is a valid counter value, only an absent key takes the default.
	switch {
	case c.ALFNFromClock:
		alfn := util.ALFNForTime(now)
		c.StartALFN = &alfn
	case c.StartALFN == nil:
		alfn := DefaultStartALFN
		c.StartALFN = &alfn
	}

	if c.FrameInterval <= 0 {
		c.FrameInterval = util.FramePeriod
	}
	if c.StatusServer.UpdateInterval <= 0 {
		c.StatusServer.UpdateInterval = time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	for _, dest := range c.OutputDestinations {
		if dest.Host == "" || dest.Port <= 0 {
			return fmt.Errorf("invalid output destination %s:%d", dest.Host, dest.Port)
		}
	}
	return nil
}
