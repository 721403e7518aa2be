package model

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	ConfigDirName  = ".virgo"
	ConfigFileName = "config.yml"
	ConfigEnvVar   = "VIRGO_CONFIG"

	DefaultRegion   = "us-east-2"
	DefaultProvider = "ec2"
	DefaultSubject  = "virgo.games"
)

type VirgoConfig struct {
	Provider     string        `yaml:"provider"`
	Region       string        `yaml:"region"`
	Profile      string        `yaml:"profile"`
	Endpoint     string        `yaml:"endpoint"`
	OwnershipTag string        `yaml:"ownership_tag"`
	SandboxModes []string      `yaml:"sandbox_modes"`
	Metrics      MetricsConfig `yaml:"metrics"`
	Events       EventsConfig  `yaml:"events"`
}

type MetricsConfig struct {
	Listen string       `yaml:"listen"`
	Influx InfluxConfig `yaml:"influx"`
}

type InfluxConfig struct {
	Url    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

func (c InfluxConfig) Enabled() bool {
	return c.Url != ""
}

type EventsConfig struct {
	NatsUrl string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

func (c EventsConfig) Enabled() bool {
	return c.NatsUrl != ""
}

func DefaultConfig() *VirgoConfig {
	return &VirgoConfig{
		Provider:     DefaultProvider,
		Region:       DefaultRegion,
		OwnershipTag: DefaultOwnershipTag,
		Events:       EventsConfig{Subject: DefaultSubject},
	}
}

func (c *VirgoConfig) Ownership() Ownership {
	return NewOwnership(c.OwnershipTag)
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "unable to locate home directory")
	}
	return filepath.Join(home, ConfigDirName), nil
}

// ConfigPath honors VIRGO_CONFIG before falling back to ~/.virgo/config.yml.
func ConfigPath() (string, error) {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}
