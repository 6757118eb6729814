// Package config loads the installer settings file.
package config

import "path/filepath"

// DefaultPath is where the settings file is read from when --config is not given.
const DefaultPath = "/etc/icicle/config.toml"

// HelperName is the file name of the privileged helper under LibexecDir.
const HelperName = "icicle-helper"

// Config is the installer settings file.
type Config struct {
	Paths     PathsConfig     `toml:"paths"`
	Elevation ElevationConfig `toml:"elevation"`
	Packages  PackagesConfig  `toml:"packages"`
	Log       LogConfig       `toml:"log"`
}

// PathsConfig locates installed data and the install workspace.
type PathsConfig struct {
	// SysconfDir holds icicle/<template-set> directories.
	SysconfDir  string `toml:"sysconfdir"`
	LibexecDir  string `toml:"libexecdir"`
	ScratchRoot string `toml:"scratch_root"`
}

// ElevationConfig names the command privileged steps run through.
type ElevationConfig struct {
	Command string `toml:"command"`
}

// PackagesConfig lists packages every installed system gets.
type PackagesConfig struct {
	Baseline []string `toml:"baseline"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level   string `toml:"level"`
	Format  string `toml:"format"`
	Journal bool   `toml:"journal"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			SysconfDir:  "/etc",
			LibexecDir:  "/usr/libexec",
			ScratchRoot: "/tmp/icicle",
		},
		Elevation: ElevationConfig{Command: "pkexec"},
		Packages:  PackagesConfig{Baseline: []string{"firefox"}},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// TemplatesDir is the directory holding one directory per template set.
func (c *Config) TemplatesDir() string {
	return filepath.Join(c.Paths.SysconfDir, "icicle")
}

// HelperPath is the absolute path of icicle-helper.
func (c *Config) HelperPath() string {
	return filepath.Join(c.Paths.LibexecDir, HelperName)
}
