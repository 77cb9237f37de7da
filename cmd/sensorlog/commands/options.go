// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/sensorlog/lib/config"
)

// configOptions adds --config to commands that need the full
// configuration.
type configOptions struct {
	ConfigPath string `json:"-" flag:"config,c" desc:"config file (default: $SENSORLOG_CONFIG)"`
}

func (o configOptions) load() (config.Config, error) {
	if o.ConfigPath != "" {
		return config.LoadFile(o.ConfigPath)
	}
	return config.Load()
}

// sourceOptions locates the log directory for read-only commands:
// --log-dir directly, or log_dir from the config file.
type sourceOptions struct {
	configOptions
	LogDirectory string `json:"-" flag:"log-dir" desc:"log directory to read (overrides log_dir from the config file)"`
}

func (o sourceOptions) logDirectory() (string, error) {
	if o.LogDirectory != "" {
		return o.LogDirectory, nil
	}
	cfg, err := o.load()
	if err != nil {
		return "", fmt.Errorf("locating log directory: %w", err)
	}
	return cfg.LogDirectory, nil
}
