package messages

// CLI messages for user-facing commands.
const (
	// RootUse is the CLI command name.
	RootUse = "icicle"
	// RootShort is the short description for the root command.
	RootShort       = "NixOS installer"
	RootVersionFlag = "Print version and exit"
	RootConfigFlag  = "Path to the installer settings file (default /etc/icicle/config.toml)"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"
	VersionUse       = "version"
	VersionShort     = "Print the icicle version"

	InstallUse             = "install"
	InstallShort           = "Install NixOS from a request file"
	InstallLong            = "Partition the target disk, generate and render the configuration, run nixos-install and set the account passwords, as described by the request file."
	InstallFlagRequest     = "Path to the install request TOML file"
	InstallRequestRequired = "--request is required"
	InstallResultFinished  = "Installation finished."
	InstallResultFailed    = "Installation failed; see the log above for the failing step."
	InstallInterruptedFmt  = "installation interrupted: %w"

	RenderUse           = "render"
	RenderShort         = "Preview the configuration a request would produce"
	RenderFlagRequest   = "Path to the install request TOML file"
	RenderFlagDiff      = "Show unified diffs against the current configuration"
	RenderFlagDiffLines = "Maximum diff lines per file"
	RenderFlagRoot      = "Root of the system to compare against"
	RenderFileHeaderFmt = "==> %s"
	RenderNewFileFmt    = "==> %s (new file)"
	RenderUnchangedFmt  = "==> %s (unchanged)"
	RenderDetectFmt     = "detect system facts: %w"

	WizardUse         = "wizard"
	WizardShort       = "Build an install request interactively"
	WizardFlagOut     = "Write the request to this file instead of stdout"
	WizardFlagInstall = "Install right away instead of writing the request"
	WizardWroteFmt    = "Wrote install request to %s"
	WizardOpenOutFmt  = "open %s: %w"

	HelperUse            = "icicle-helper"
	HelperShort          = "Privileged helper for the icicle installer"
	HelperPartitionUse   = "partition"
	HelperPartitionShort = "Partition, format and mount the target from a JSON scheme on stdin"
	HelperFlagRoot       = "Mount point of the target system"
	HelperFlagLock       = "Lock file held while partitioning"
	HelperWriteFileUse   = "write-file"
	HelperWriteFileShort = "Atomically write a file, creating parent directories"
	HelperFlagPath       = "Absolute path of the file to write"
	HelperFlagContents   = "File contents"
	HelperPathRequired   = "--path is required"
)
