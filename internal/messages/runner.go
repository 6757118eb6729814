package messages

// Installer runner messages.
const (
	// RunnerEmptyCommand is returned when Dispatch gets no arguments.
	RunnerEmptyCommand = "installer command is empty"
	RunnerStartFmt     = "start %s: %w"
	RunnerExitFmt      = "%s: %w"
	RunnerStarted      = "installer started"
	RunnerExited       = "installer exited"
	RunnerReadOutput   = "reading installer output failed; discarding the rest"
)
