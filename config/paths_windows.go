//go:build windows

package config

import (
	"os"
	"path/filepath"
)

// Platform-specific path defaults for Windows

func programData() string {
	if v := os.Getenv("PROGRAMDATA"); v != "" {
		return v
	}
	return "C:\\ProgramData"
}

// GetDefaultConfigLocation returns the default configuration file path for Windows.
func GetDefaultConfigLocation() string {
	return filepath.Join(programData(), "Pathway", "config.yml")
}

// GetDefaultDatabasePath returns the default location of the sqlite database for Windows.
func GetDefaultDatabasePath() string {
	return filepath.Join(programData(), "Pathway", "pathway.db")
}
