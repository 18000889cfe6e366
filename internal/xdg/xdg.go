// Package xdg provides XDG Base Directory paths for neatauth.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "neatauth"

// ConfigDir returns the XDG config directory for neatauth.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DataDir returns the XDG data directory for neatauth.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}
	return filepath.Join(base, appName)
}

// ConfigFile is the config file read when no --config path is given.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// GenomeDir is the default root of the file genome store.
func GenomeDir() string {
	return filepath.Join(DataDir(), "genomes")
}

// GenomeDB is the default sqlite genome database.
func GenomeDB() string {
	return filepath.Join(DataDir(), "genomes.db")
}
