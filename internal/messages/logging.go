package messages

// Logging setup messages.
const (
	// LoggingInvalidLevelFmt formats unknown log level errors.
	LoggingInvalidLevelFmt  = "invalid log level %q: %w"
	LoggingInvalidFormatFmt = "invalid log format %q; expected text or json"
	LoggingJournalMissing   = "journald is not available; logging to stderr only"
)
