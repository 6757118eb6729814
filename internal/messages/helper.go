package messages

// Privileged helper messages.
const (
	// HelperDecodeSchemeFmt formats scheme decoding errors.
	HelperDecodeSchemeFmt    = "decode partition scheme: %w"
	HelperRootNotAbsFmt      = "root %q must be an absolute path"
	HelperCommandFailedFmt   = "%s: %w: %s"
	HelperProbeFilesystemFmt = "probe filesystem of %s: %w"
	HelperMountFmt           = "mount %s at %s: %w"
	HelperMkdirFmt           = "create %s: %w"
	HelperWriteFileFmt       = "write %s: %w"
	HelperPathNotAbsFmt      = "path %q must be an absolute path"
	HelperUnknownKindFmt     = "unsupported partition scheme %s"
)

// Progress lines printed by icicle-helper partition.
const (
	// HelperProgressTableFmt announces a new partition table.
	HelperProgressTableFmt  = "Creating %s partition table on %s"
	HelperProgressFormatFmt = "Formatting %s as %s"
	HelperProgressMountFmt  = "Mounting %s at %s"
	HelperProgressDone      = "Partitions ready"
)

// Helper lock messages.
const (
	// HelperOpenLockFmt formats lock file open errors.
	HelperOpenLockFmt    = "open lock %s: %w"
	HelperLockFmt        = "lock %s: %w"
	HelperLockTimeoutFmt = "another icicle-helper is partitioning; gave up after %s"
)
