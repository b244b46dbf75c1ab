// Package paths decides where the garden CLI keeps its config file and its
// store data.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDir = "gardens"

// DefaultDataDirName is the data directory created under the working
// directory when nothing else names one.
const DefaultDataDirName = ".gardens-db"

// Directory overrides read from the environment.
const (
	EnvConfigDir = "GARDENS_CONFIG_DIR"
	EnvDataDir   = "GARDENS_DATA_DIR"
)

// DefaultConfigDir is $XDG_CONFIG_HOME/gardens on Linux, falling back to
// ~/.config/gardens, and the os.UserConfigDir location elsewhere.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDir), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDir), nil
}

// ResolveConfigDir picks the --config-dir flag, then GARDENS_CONFIG_DIR, then
// DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok, err := firstAbs(flag, os.Getenv(EnvConfigDir)); ok || err != nil {
		return dir, err
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the --data-dir flag, then the data_dir config value,
// then GARDENS_DATA_DIR, then .gardens-db under the working directory.
func ResolveDataDir(flag, configured string) (string, error) {
	if dir, ok, err := firstAbs(flag, configured, os.Getenv(EnvDataDir)); ok || err != nil {
		return dir, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// firstAbs returns the first non-empty candidate made absolute. ok is false
// when every candidate is empty.
func firstAbs(candidates ...string) (dir string, ok bool, err error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		dir, err = filepath.Abs(c)
		return dir, true, err
	}
	return "", false, nil
}
