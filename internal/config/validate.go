package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/snowfallorg/icicle/internal/messages"
)

var validLogLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var validLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

// Validate ensures the settings are complete and consistent.
func (c *Config) Validate(source string) error {
	paths := []struct {
		key   string
		value string
	}{
		{"paths.sysconfdir", c.Paths.SysconfDir},
		{"paths.libexecdir", c.Paths.LibexecDir},
		{"paths.scratch_root", c.Paths.ScratchRoot},
	}
	for _, p := range paths {
		if strings.TrimSpace(p.value) == "" {
			return fmt.Errorf(messages.ConfigPathRequiredFmt, source, p.key)
		}
		if !filepath.IsAbs(p.value) {
			return fmt.Errorf(messages.ConfigPathNotAbsFmt, source, p.key, p.value)
		}
	}

	if strings.TrimSpace(c.Elevation.Command) == "" {
		return fmt.Errorf(messages.ConfigElevationRequiredFmt, source)
	}

	if len(c.Packages.Baseline) == 0 {
		return fmt.Errorf(messages.ConfigBaselineRequiredFmt, source)
	}
	for i, pkg := range c.Packages.Baseline {
		if strings.TrimSpace(pkg) == "" {
			return fmt.Errorf(messages.ConfigBaselineEmptyFmt, source, i)
		}
	}

	if _, ok := validLogLevels[c.Log.Level]; !ok {
		return fmt.Errorf(messages.ConfigLogLevelInvalidFmt, source, c.Log.Level)
	}
	if _, ok := validLogFormats[c.Log.Format]; !ok {
		return fmt.Errorf(messages.ConfigLogFormatInvalidFmt, source, c.Log.Format)
	}
	return nil
}
