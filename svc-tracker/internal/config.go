package internal

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration parameters of the tracker
type Config struct {
	VideoSource string `yaml:"videoSource"`
	Device      int    `yaml:"device"`
	Tracker     string `yaml:"tracker"`
	ImageWidth  int    `yaml:"imageWidth"`
	KeyDelayMs  int    `yaml:"keyDelayMs"`
	WarmUpMs    int    `yaml:"warmUpMs"`
	WindowName  string `yaml:"windowName"`
	ShowLabels  bool   `yaml:"showLabels"`
	SourceId    string `yaml:"sourceId"`
	MetricAddr  string `yaml:"metricAddr"`
	SinkAddr    string `yaml:"sinkAddr"`
	SinkTimeout int    `yaml:"sinkTimeoutMs"`

	ProcTimeBuckets []float64 `yaml:"procTimeBuckets"`
	RttTimeBuckets  []float64 `yaml:"rttTimeBuckets"`
}

func DefaultConfig() *Config {
	return &Config{
		Tracker:     DefaultAlgorithm,
		ImageWidth:  600,
		KeyDelayMs:  1,
		WarmUpMs:    1000,
		WindowName:  "Frame",
		SourceId:    "default",
		SinkTimeout: 200,
	}
}

// LoadConfig reads a YAML file on top of the defaults. An empty path returns
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}

// Validate reports configuration errors that must stop startup
func (c *Config) Validate() error {
	if _, err := NewTrackerFactory(c.Tracker); err != nil {
		return err
	}
	if c.ImageWidth <= 0 {
		return errors.Errorf("image width must be positive, got %d", c.ImageWidth)
	}
	if c.KeyDelayMs <= 0 {
		return errors.Errorf("key delay must be positive, got %d", c.KeyDelayMs)
	}
	if c.Device < 0 {
		return errors.Errorf("invalid camera device %d", c.Device)
	}
	return nil
}
