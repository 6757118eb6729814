package messages

// Gateway messages for external command execution.
const (
	// GatewayEmptyCommand is returned for a Command without arguments.
	GatewayEmptyCommand  = "command has no arguments"
	GatewayExitFmt       = "%s: exit status %d"
	GatewayExitStderrFmt = "%s: exit status %d: %s"
	GatewaySpawnFmt      = "%s: %v"
	GatewayReadOutputFmt = "read output of %s: %w"
	GatewayWriteFileFmt  = "write %s: %w"
)
