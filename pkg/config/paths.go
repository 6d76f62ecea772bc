package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the path to the smart gateway config directory (~/.smartgw).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".smartgw"), nil
}

// DefaultPath returns the path of a file inside the config directory.
// Absolute paths are returned unchanged.
func DefaultPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
