// Package config holds the settings every command is built from.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/dentalwings/folderstyle/iconpath"
)

// EnvFile names the environment variable that points at the config file.
const EnvFile = "FOLDERSTYLE_CONFIG"

const (
	DefaultMaxDepth    = 6
	DefaultPreviewSize = 48
)

type Config struct {
	LogLevel string `toml:"log_level"`
	// Loader selects the icon resource backend: auto, pe or native.
	Loader string `toml:"loader"`

	WindowsDir   string `toml:"windows_dir"`
	SystemDir    string `toml:"system_dir"`
	CacheDirName string `toml:"cache_dir_name"`

	ScanMaxDepth int `toml:"scan_max_depth"`
	ScanWorkers  int `toml:"scan_workers"`
	PreviewSize  int `toml:"preview_size"`
}

// Default returns the settings used when no file overrides them. The
// Windows directory comes from %SystemRoot% or %WINDIR%.
func Default() Config {
	win := os.Getenv("SystemRoot")
	if win == "" {
		win = os.Getenv("WINDIR")
	}
	if win == "" {
		win = `C:\Windows`
	}
	return Config{
		LogLevel:     "info",
		Loader:       "auto",
		WindowsDir:   win,
		CacheDirName: iconpath.DefaultCacheDir,
		ScanMaxDepth: DefaultMaxDepth,
		ScanWorkers:  runtime.NumCPU(),
		PreviewSize:  DefaultPreviewSize,
	}
}

// Load decodes the TOML file at path over the defaults. An empty path
// falls back to $FOLDERSTYLE_CONFIG; a missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		path = os.Getenv(EnvFile)
	}
	if path == "" {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Loader {
	case "auto", "pe", "native":
	default:
		return fmt.Errorf("config: unknown loader %q", c.Loader)
	}
	if c.ScanMaxDepth < 0 {
		return fmt.Errorf("config: scan_max_depth must not be negative")
	}
	if c.CacheDirName == "" || filepath.Base(c.CacheDirName) != c.CacheDirName {
		return fmt.Errorf("config: cache_dir_name must be a plain directory name, got %q", c.CacheDirName)
	}
	return nil
}

// Resolver builds the path resolver options.
func (c Config) Resolver() iconpath.Options {
	return iconpath.Options{
		WindowsDir:   c.WindowsDir,
		SystemDir:    c.SystemDir,
		CacheDirName: c.CacheDirName,
	}
}
