package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options are the caller-configurable generation knobs. They travel through
// the pipeline as an explicit value, never as ambient state.
type Options struct {
	TemplateName string `yaml:"name"`
	Group        string `yaml:"group"`
	EnableItems  bool   `yaml:"enable-items"`
	CheckDelay   int    `yaml:"check-delay"` // seconds
	DiscDelay    int    `yaml:"disc-delay"`  // seconds
	History      int    `yaml:"history"`     // days
	Trends       int    `yaml:"trends"`      // days
}

// Default returns the stock generation options.
func Default() Options {
	return Options{
		Group:      "Templates",
		CheckDelay: 60,
		DiscDelay:  3600,
		History:    7,
		Trends:     365,
	}
}

type MIB struct {
	Directory []string `yaml:"directory"`
}

// Target describes the device to walk and how to authenticate against it.
type Target struct {
	Host      string `yaml:"host"`
	Port      uint16 `yaml:"port"`
	Version   string `yaml:"version"` // 1, 2c or 3
	Community string `yaml:"community"`

	SecLevel  string `yaml:"sec-level"` // noAuthNoPriv, authNoPriv, authPriv
	Context   string `yaml:"context"`
	Username  string `yaml:"username"`
	AuthProto string `yaml:"auth-protocol"` // MD5, SHA
	AuthPass  string `yaml:"auth-passphrase"`
	PrivProto string `yaml:"priv-protocol"` // DES, AES
	PrivPass  string `yaml:"priv-passphrase"`
}

type Config struct {
	MIB      MIB     `yaml:"mib"`
	Module   string  `yaml:"module"`
	Oid      string  `yaml:"oid"`
	Target   Target  `yaml:"target"`
	Output   string  `yaml:"output"`
	Template Options `yaml:"template"`
}

// New returns a Config carrying the default generation options.
func New() *Config {
	return &Config{Template: Default()}
}

// Load reads a YAML config file over the defaults.
func Load(filename string) (*Config, error) {
	f, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	conf := New()
	if err := yaml.Unmarshal(f, conf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return conf, nil
}
