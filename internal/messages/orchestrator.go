package messages

// Install orchestrator messages.
const (
	// InstallNoUser is the error text when the request has no user.
	InstallNoUser               = "no user configured"
	InstallNoHostname           = "no hostname configured"
	InstallBusy                 = "an install is already waiting for the installer to finish"
	InstallUnexpectedCompletion = "installer completion received while no installer was running"
	InstallStepErrorFmt         = "%s: %w"
	InstallEncodeSchemeFmt      = "encode partition scheme: %w"
	InstallBootDeviceFmt        = "resolve boot device: %w"
	InstallDispatchFmt          = "start installer: %w"
	InstallInstallerFailedFmt   = "installer failed: %w"
	InstallUnknownMessageFmt    = "unknown message %T"
	InstallNoRequest            = "install message without a request"

	// InstallStepDetect is logged when the run starts.
	InstallStepDetect      = "Detecting architecture"
	InstallStepClearFmt    = "Step 0: Clear %s"
	InstallStepPartition   = "Step 1: Setup and mount partitions"
	InstallStepBaseConfig  = "Step 2: Generate base config"
	InstallStepRelocate    = "Step 2a: Move hardware config into the structured layout"
	InstallStepRender      = "Step 3: Make configuration"
	InstallStepInstall     = "Step 4: Install NixOS"
	InstallStepCredentials = "Step 5: Set user passwords"
	InstallUmountTolerated = "nothing to unmount"
	InstallPartitionOutput = "partition"
	InstallFailed          = "install failed"
	InstallFinished        = "install finished"
	InstallBusyRejected    = "rejected install request"
	InstallStaleCompletion = "ignoring installer completion for a run that already ended"
)
