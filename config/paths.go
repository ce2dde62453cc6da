// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for texelcat configuration.

package config

import (
	"os"
	"path/filepath"
)

const configName = "config.toml"

// PathEnv overrides the configuration file location.
const PathEnv = "TEXELCAT_CONFIG_PATH"

func configRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "texelcat"), nil
}

// Path returns the configuration file location: $TEXELCAT_CONFIG_PATH, else
// config.toml under the user configuration directory.
func Path() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, configName), nil
}
