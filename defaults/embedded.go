// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Embedded theme preview sample and default configuration file.

package defaults

import (
	"embed"
)

//go:embed preview.go.txt texelcat.toml
var fs embed.FS

// PreviewName is the file name the theme preview sample is highlighted as.
const PreviewName = "preview.go"

// ThemePreview returns the sample program shown when previewing themes.
func ThemePreview() []byte {
	data, err := fs.ReadFile("preview.go.txt")
	if err != nil {
		panic("defaults: theme preview missing from embed: " + err.Error())
	}
	return data
}

// ConfigFile returns the commented default configuration file.
func ConfigFile() ([]byte, error) {
	return fs.ReadFile("texelcat.toml")
}
