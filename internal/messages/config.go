package messages

// Config messages for installer settings loading and validation.
const (
	// ConfigMissingFileFmt formats missing settings file errors.
	ConfigMissingFileFmt       = "missing config file %s: %w"
	ConfigInvalidConfigFmt     = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt  = "%s: unrecognized config keys: %w"
	ConfigExpandPathFmt        = "expand config path %s: %w"
	ConfigPathRequiredFmt      = "%s: %s is required"
	ConfigPathNotAbsFmt        = "%s: %s must be an absolute path (got %q)"
	ConfigElevationRequiredFmt = "%s: elevation.command is required"
	ConfigBaselineRequiredFmt  = "%s: packages.baseline must list at least one package"
	ConfigBaselineEmptyFmt     = "%s: packages.baseline[%d] is empty"
	ConfigLogLevelInvalidFmt   = "%s: log.level %q is invalid (allowed: trace, debug, info, warn, error)"
	ConfigLogFormatInvalidFmt  = "%s: log.format %q is invalid (allowed: text, json)"
)
