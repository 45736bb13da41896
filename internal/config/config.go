// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package config holds the settings shared by the commands.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfig indicates an invalid configuration.
var ErrConfig = errors.New("config: invalid configuration")

// Config is read from a YAML file and overridden by command line flags.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	Dev         bool   `yaml:"dev"`
	Color       string `yaml:"color"` // auto, always or never
	Budget      int    `yaml:"budget"`
	MetricsAddr string `yaml:"metrics_addr"`
	Jobs        int    `yaml:"jobs"`
	NodeSize    int    `yaml:"node_size"`
	CacheSize   int    `yaml:"cache_size"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:  "info",
		Color:     "auto",
		Jobs:      1,
		NodeSize:  1 << 16,
		CacheSize: 1 << 14}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("%w: %s: %s", ErrConfig, path, err)
	}
	return c, c.Validate()
}

// Validate checks the values of c.
func (c Config) Validate() error {
	var errs []error
	switch c.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("%w: color %q", ErrConfig, c.Color))
	}
	if c.Budget < 0 {
		errs = append(errs, fmt.Errorf("%w: negative budget %d", ErrConfig, c.Budget))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("%w: jobs %d", ErrConfig, c.Jobs))
	}
	if c.NodeSize < 1 || c.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("%w: bdd sizes %d/%d", ErrConfig, c.NodeSize, c.CacheSize))
	}
	return errors.Join(errs...)
}
