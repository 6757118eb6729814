package messages

// Config template rendering messages.
const (
	// RenderNoBootDevice is the error text when a legacy bootloader has no target disk.
	RenderNoBootDevice    = "no boot device for the legacy bootloader"
	RenderReadDirFmt      = "read template directory %s: %w"
	RenderReadFileFmt     = "read template %s: %w"
	RenderWriteFileFmt    = "write rendered %s: %w"
	RenderTemplateSetFmt  = "template set %q: %w"
	RenderStateVersionFmt = "%w: %q"

	// RenderDiffTruncatedFmt is appended to previews cut at the line cap.
	RenderDiffTruncatedFmt = "... (truncated to %d lines; rerun with --diff-lines <n> to see more)"
	RenderPreviewReadFmt   = "read current %s: %w"
)
