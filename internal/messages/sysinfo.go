package messages

// Environment detection messages.
const (
	// SysinfoArchFmt formats architecture detection failures.
	SysinfoArchFmt         = "detect architecture: %w"
	SysinfoArchEmpty       = "detect architecture: uname printed nothing"
	SysinfoVersionFmt      = "detect state version: %w"
	SysinfoShortVersion    = "nixos-version output is shorter than a release number"
	SysinfoShortVersionFmt = "%w: %q"
)
