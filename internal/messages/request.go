package messages

// Install request and feature catalog messages.
const (
	// RequestReadFailedFmt formats request file read errors.
	RequestReadFailedFmt          = "failed to read %s: %w"
	RequestInvalidFmt             = "invalid request %s: %w"
	RequestEncodeFailedFmt        = "encode request: %w"
	RequestUnknownConfigTypeFmt   = "unknown config type %q; expected standard or structured"
	RequestTemplateSetRequiredFmt = "%s: template_set is required"
	RequestTemplateSetInvalidFmt  = "%s: template_set %q must be a single directory name"
	RequestPartitionsInvalidFmt   = "%s: partitions: %w"
	RequestUsernameRequiredFmt    = "%s: user.username is required"
	RequestUsernameInvalidFmt     = "%s: user.username %q must not contain ':' or newlines"
	RequestPasswordRequiredFmt    = "%s: user.password is required"
	RequestPasswordInvalidFmt     = "%s: user passwords must not contain newlines"
	RequestKeyboardInvalidFmt     = "%s: keyboard %q must be <layout> or <layout>+<variant>"
	RequestFeatureIDRequiredFmt   = "%s: features[%d].id is required"
	RequestFeatureIDDuplicateFmt  = "%s: features[%d].id %q duplicates features[%d]"
	RequestOptionIDRequiredFmt    = "%s: features %q options[%d].id is required"
	RequestListTemplateSetsFmt    = "list template sets: %w"

	// CatalogGroupIDRequiredFmt formats catalog validation errors.
	CatalogGroupIDRequiredFmt  = "%s: every group needs an id"
	CatalogGroupDuplicateFmt   = "%s: duplicate group %q"
	CatalogOptionIDRequiredFmt = "%s: group %q has an option without an id"
	CatalogOptionDuplicateFmt  = "%s: group %q has duplicate option %q"
	CatalogUnknownGroupFmt     = "unknown feature group %q"
	CatalogUnknownOptionFmt    = "feature group %q has no option %q"
	CatalogSingleChoiceFmt     = "feature group %q allows one option, got %d"
)
