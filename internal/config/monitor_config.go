package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// MonitorConfig describes the kernel process the monitor supervises.
type MonitorConfig struct {
	Command      string            `yaml:"command"`
	Args         []string          `yaml:"args,omitempty"`
	Directory    string            `yaml:"directory,omitempty"`
	Environment  map[string]string `yaml:"environment,omitempty"`
	StopSignal   string            `yaml:"stopsignal,omitempty"`
	StopTimeout  int               `yaml:"stoptimeout,omitempty"`
	ResetOnStart bool              `yaml:"resetonstart"`
}

func LoadMonitorConfig(path string) (*MonitorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg MonitorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultMonitorConfig supervises the bundled kernel binary from the
// working directory. Used when no config file is present.
func DefaultMonitorConfig() *MonitorConfig {
	cfg := &MonitorConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *MonitorConfig) applyDefaults() {
	if c.Command == "" {
		c.Command = "./multikernel"
	}
	if c.StopSignal == "" {
		c.StopSignal = "SIGTERM"
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = 5
	}
}
