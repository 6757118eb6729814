package messages

// Wizard prompt titles and errors.
const (
	// WizardRequiresTerminal is returned when the wizard runs without a TTY.
	WizardRequiresTerminal = "the wizard requires an interactive terminal"
	WizardCancelled        = "wizard cancelled"
	WizardNoTemplateSets   = "no template sets found"
	WizardLoadCatalogFmt   = "load feature catalog: %w"
	WizardListSetsFmt      = "list template sets: %w"
	WizardUnknownLabelFmt  = "unknown selection %q"
	WizardRequestFmt       = "assembled request is invalid: %w"

	WizardTemplateSetTitle      = "Template set"
	WizardLanguageTitle         = "System language (locale)"
	WizardTimezoneTitle         = "Time zone"
	WizardKeyboardTitle         = "Keyboard layout (layout or layout+variant)"
	WizardDiskTitle             = "Target disk (the whole disk is erased)"
	WizardEraseDiskPromptFmt    = "Erase every partition on %s?"
	WizardUsernameTitle         = "Username"
	WizardFullNameTitle         = "Full name"
	WizardHostnameTitle         = "Hostname"
	WizardPasswordTitle         = "Password"
	WizardPasswordRepeatTitle   = "Repeat password"
	WizardPasswordMismatchTitle = "Passwords do not match"
	WizardPasswordMismatchBody  = "Enter the same password twice."
	WizardRootPasswordTitle     = "Root password (leave empty to keep root locked)"
	WizardAutologinPrompt       = "Log in automatically?"
	WizardConfigTypeTitle       = "Configuration layout"
	WizardSummaryTitle          = "Summary"
	WizardConfirmPrompt         = "Use these settings?"
	WizardFirstStepExitPrompt   = "Leave the wizard?"
	WizardRequiredFmt           = "%s is required"
)

// Wizard summary lines.
const (
	// WizardSummaryTemplateFmt formats the template set line.
	WizardSummaryTemplateFmt = "Template set: %s"
	WizardSummaryLocaleFmt   = "Locale: %s, time zone %s, keyboard %s"
	WizardSummaryDiskFmt     = "Disk: %s (erased)"
	WizardSummaryUserFmt     = "User: %s (%s) on %s"
	WizardSummaryAutologin   = "Automatic login: enabled"
	WizardSummaryFeatureFmt  = "%s: %s"
	WizardSummaryLayoutFmt   = "Layout: %s"
)
