// Package wizard builds an install request by asking the user in the
// terminal.
package wizard

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/partition"
	"github.com/snowfallorg/icicle/internal/request"
)

// Prompt defaults.
const (
	DefaultLanguage = "en_US.UTF-8"
	DefaultTimezone = "UTC"
	DefaultKeyboard = "us"
)

var (
	// ErrCancelled is returned when the user leaves the wizard.
	ErrCancelled = errors.New(messages.WizardCancelled)

	errWizardBack      = errors.New("wizard back requested")
	errWizardCancelled = errors.New("wizard cancelled by user")
)

// answers collects the values of all steps. Each step edits a copy so that
// going back discards what the abandoned step changed.
type answers struct {
	templateSet string
	language    string
	timezone    string
	keyboard    string
	disk        string
	user        request.UserConfig
	features    map[string][]string
	configType  request.ConfigType
}

func (a *answers) clone() *answers {
	c := *a
	c.features = make(map[string][]string, len(a.features))
	for k, v := range a.features {
		c.features[k] = append([]string(nil), v...)
	}
	return &c
}

type step int

const (
	stepTemplateSet step = iota
	stepLocale
	stepDisk
	stepUser
	stepFeatures
	stepConfigType
	stepConfirm
)

// Run asks for every field of an install request. templates holds one
// directory per template set. Leaving the wizard returns ErrCancelled.
func Run(ui UI, templates fs.FS) (*request.InstallRequest, error) {
	sets, err := request.ListTemplateSets(templates)
	if err != nil {
		return nil, fmt.Errorf(messages.WizardListSetsFmt, err)
	}
	if len(sets) == 0 {
		return nil, errors.New(messages.WizardNoTemplateSets)
	}

	a := &answers{
		templateSet: sets[0],
		language:    DefaultLanguage,
		timezone:    DefaultTimezone,
		keyboard:    DefaultKeyboard,
		user:        request.UserConfig{Hostname: request.DefaultHostname},
		features:    map[string][]string{},
		configType:  request.Standard,
	}
	var catalog *request.Catalog

	current := stepTemplateSet
	for current <= stepConfirm {
		next := a.clone()
		switch current {
		case stepTemplateSet:
			err = promptTemplateSet(ui, sets, next)
			if err == nil {
				catalog, err = loadCatalog(templates, next)
			}
		case stepLocale:
			err = promptLocale(ui, next)
		case stepDisk:
			err = promptDisk(ui, next)
		case stepUser:
			err = promptUser(ui, next)
		case stepFeatures:
			err = promptFeatures(ui, catalog, next)
		case stepConfigType:
			err = promptConfigType(ui, next)
		case stepConfirm:
			err = confirm(ui, catalog, next)
		}

		switch {
		case err == nil:
			a = next
			current++
		case errors.Is(err, errWizardCancelled):
			return nil, ErrCancelled
		case !errors.Is(err, errWizardBack):
			return nil, err
		case current == stepTemplateSet:
			leave, confirmErr := confirmLeave(ui)
			if confirmErr != nil {
				return nil, confirmErr
			}
			if leave {
				return nil, ErrCancelled
			}
		default:
			current--
		}
	}

	req, err := a.request(catalog)
	if err != nil {
		return nil, err
	}
	if err := req.Validate("wizard"); err != nil {
		return nil, fmt.Errorf(messages.WizardRequestFmt, err)
	}
	return req, nil
}

func loadCatalog(templates fs.FS, a *answers) (*request.Catalog, error) {
	catalog, err := request.LoadCatalog(templates, a.templateSet)
	if err != nil {
		return nil, fmt.Errorf(messages.WizardLoadCatalogFmt, err)
	}
	for id := range a.features {
		if _, ok := catalog.Group(id); !ok {
			delete(a.features, id)
		}
	}
	for _, g := range catalog.Groups {
		if _, ok := a.features[g.ID]; !ok {
			a.features[g.ID] = g.Defaults()
		}
	}
	return catalog, nil
}

func promptTemplateSet(ui UI, sets []string, a *answers) error {
	return ui.Select(messages.WizardTemplateSetTitle, sets, &a.templateSet)
}

func promptLocale(ui UI, a *answers) error {
	if err := required(ui.Input, messages.WizardLanguageTitle, &a.language); err != nil {
		return err
	}
	if err := required(ui.Input, messages.WizardTimezoneTitle, &a.timezone); err != nil {
		return err
	}
	return required(ui.Input, messages.WizardKeyboardTitle, &a.keyboard)
}

func promptDisk(ui UI, a *answers) error {
	if err := required(ui.Input, messages.WizardDiskTitle, &a.disk); err != nil {
		return err
	}
	erase := false
	if err := ui.Confirm(fmt.Sprintf(messages.WizardEraseDiskPromptFmt, a.disk), &erase); err != nil {
		return err
	}
	if !erase {
		return errWizardBack
	}
	return nil
}

func promptUser(ui UI, a *answers) error {
	u := &a.user
	if err := required(ui.Input, messages.WizardUsernameTitle, &u.Username); err != nil {
		return err
	}
	if err := ui.Input(messages.WizardFullNameTitle, &u.FullName); err != nil {
		return err
	}
	if err := required(ui.Input, messages.WizardHostnameTitle, &u.Hostname); err != nil {
		return err
	}
	for {
		var password, repeat string
		if err := required(ui.SecretInput, messages.WizardPasswordTitle, &password); err != nil {
			return err
		}
		if err := ui.SecretInput(messages.WizardPasswordRepeatTitle, &repeat); err != nil {
			return err
		}
		if password == repeat {
			u.Password = password
			break
		}
		if err := ui.Note(messages.WizardPasswordMismatchTitle, messages.WizardPasswordMismatchBody); err != nil {
			return err
		}
	}
	u.RootPassword = ""
	if err := ui.SecretInput(messages.WizardRootPasswordTitle, &u.RootPassword); err != nil {
		return err
	}
	return ui.Confirm(messages.WizardAutologinPrompt, &u.Autologin)
}

// promptFeatures asks one question per catalog group. Options are shown by
// title and stored by id.
func promptFeatures(ui UI, catalog *request.Catalog, a *answers) error {
	for _, g := range catalog.Groups {
		labels, toID, toLabel := optionLabels(g)
		title := g.Title
		if title == "" {
			title = g.ID
		}
		if g.Multiple {
			selected := mapAll(a.features[g.ID], toLabel)
			if err := ui.MultiSelect(title, labels, &selected); err != nil {
				return err
			}
			ids, err := mapLabels(selected, toID)
			if err != nil {
				return err
			}
			a.features[g.ID] = ids
			continue
		}
		var current string
		if ids := a.features[g.ID]; len(ids) > 0 {
			current = toLabel[ids[0]]
		} else if len(labels) > 0 {
			current = labels[0]
		}
		if err := ui.Select(title, labels, &current); err != nil {
			return err
		}
		ids, err := mapLabels([]string{current}, toID)
		if err != nil {
			return err
		}
		a.features[g.ID] = ids
	}
	return nil
}

func promptConfigType(ui UI, a *answers) error {
	current := a.configType.String()
	options := []string{request.Standard.String(), request.Structured.String()}
	if err := ui.Select(messages.WizardConfigTypeTitle, options, &current); err != nil {
		return err
	}
	return a.configType.UnmarshalText([]byte(current))
}

func confirm(ui UI, catalog *request.Catalog, a *answers) error {
	if err := ui.Note(messages.WizardSummaryTitle, buildSummary(catalog, a)); err != nil {
		return err
	}
	ok := true
	if err := ui.Confirm(messages.WizardConfirmPrompt, &ok); err != nil {
		return err
	}
	if !ok {
		return errWizardBack
	}
	return nil
}

func confirmLeave(ui UI) (bool, error) {
	leave := true
	if err := ui.Confirm(messages.WizardFirstStepExitPrompt, &leave); err != nil {
		if errors.Is(err, errWizardBack) {
			return false, nil
		}
		return false, err
	}
	return leave, nil
}

// required repeats the question until the answer is not blank.
func required(ask func(string, *string) error, title string, value *string) error {
	for {
		if err := ask(title, value); err != nil {
			return err
		}
		*value = strings.TrimSpace(*value)
		if *value != "" {
			return nil
		}
		title = fmt.Sprintf(messages.WizardRequiredFmt, strings.SplitN(title, " (", 2)[0])
	}
}

func optionLabels(g request.CatalogGroup) ([]string, map[string]string, map[string]string) {
	labels := make([]string, 0, len(g.Options))
	toID := make(map[string]string, len(g.Options))
	toLabel := make(map[string]string, len(g.Options))
	for _, o := range g.Options {
		label := o.Title
		if label == "" {
			label = o.ID
		}
		labels = append(labels, label)
		toID[label] = o.ID
		toLabel[o.ID] = label
	}
	return labels, toID, toLabel
}

func mapAll(values []string, m map[string]string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if mapped, ok := m[v]; ok {
			out = append(out, mapped)
		}
	}
	return out
}

func mapLabels(labels []string, toID map[string]string) ([]string, error) {
	ids := make([]string, 0, len(labels))
	for _, l := range labels {
		id, ok := toID[l]
		if !ok {
			return nil, fmt.Errorf(messages.WizardUnknownLabelFmt, l)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// request assembles the install request. Feature groups follow catalog order.
func (a *answers) request(catalog *request.Catalog) (*request.InstallRequest, error) {
	user := a.user
	req := &request.InstallRequest{
		TemplateSet: a.templateSet,
		Language:    a.language,
		Timezone:    a.timezone,
		Keyboard:    a.keyboard,
		Partitions:  partition.FullDisk(a.disk),
		User:        &user,
		ConfigType:  a.configType,
	}
	for _, g := range catalog.Groups {
		ids := a.features[g.ID]
		if len(ids) == 0 {
			continue
		}
		group, err := catalog.Select(g.ID, ids)
		if err != nil {
			return nil, err
		}
		req.Features = append(req.Features, group)
	}
	return req, nil
}

func buildSummary(catalog *request.Catalog, a *answers) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		_, _ = fmt.Fprintf(&b, format+"\n", args...)
	}
	line(messages.WizardSummaryTemplateFmt, a.templateSet)
	line(messages.WizardSummaryLocaleFmt, a.language, a.timezone, a.keyboard)
	line(messages.WizardSummaryDiskFmt, a.disk)
	name := a.user.FullName
	if name == "" {
		name = a.user.Username
	}
	line(messages.WizardSummaryUserFmt, a.user.Username, name, a.user.Hostname)
	if a.user.Autologin {
		line(messages.WizardSummaryAutologin)
	}
	for _, g := range catalog.Groups {
		ids := a.features[g.ID]
		if len(ids) == 0 {
			continue
		}
		_, _, toLabel := optionLabels(g)
		title := g.Title
		if title == "" {
			title = g.ID
		}
		line(messages.WizardSummaryFeatureFmt, title, strings.Join(mapAll(ids, toLabel), ", "))
	}
	line(messages.WizardSummaryLayoutFmt, a.configType)
	return strings.TrimSuffix(b.String(), "\n")
}
