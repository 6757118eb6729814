package wizard

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/terminal"
)

// UI is what the wizard asks the user through.
type UI interface {
	Select(title string, options []string, current *string) error
	MultiSelect(title string, options []string, selected *[]string) error
	Confirm(title string, value *bool) error
	Input(title string, value *string) error
	SecretInput(title string, value *string) error
	Note(title string, body string) error
}

// HuhUI asks through charmbracelet/huh forms, one field per screen.
type HuhUI struct {
	isTerminal func() bool
	// ctrlCAbort is set by the key filter while a form runs.
	ctrlCAbort bool
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhUI returns a HuhUI that requires stdin and stdout to be a terminal.
func NewHuhUI() *HuhUI {
	return &HuhUI{isTerminal: terminal.IsInteractive}
}

func (ui *HuhUI) ensureInteractive() error {
	checker := ui.isTerminal
	if checker == nil {
		checker = terminal.IsInteractive
	}
	if checker() {
		return nil
	}
	return errors.New(messages.WizardRequiresTerminal)
}

// wizardKeyMap makes Esc go back a step and Ctrl+C leave the wizard. Both
// abort the form; runForm tells them apart. Prev and Next only label the keys
// in the help bar.
func wizardKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"))

	back := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	exit := key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "exit"))
	km.Select.Prev, km.Select.Next = back, exit
	km.MultiSelect.Prev, km.MultiSelect.Next = back, exit
	km.Confirm.Prev, km.Confirm.Next = back, exit
	km.Input.Prev, km.Input.Next = back, exit
	km.Note.Prev, km.Note.Next = back, exit

	// Filtering would swallow Esc.
	km.Select.Filter.SetEnabled(false)
	km.Select.SetFilter.SetEnabled(false)
	km.Select.ClearFilter.SetEnabled(false)
	return km
}

// hintField keeps the back/exit hints visible. huh disables Prev on the first
// field and Next on the last through WithPosition, and every wizard form has
// exactly one field.
type hintField struct {
	huh.Field
	km *huh.KeyMap
}

func newHintField(field huh.Field) huh.Field {
	return &hintField{Field: field, km: wizardKeyMap()}
}

// Update keeps the wrapper in the group's field list.
func (f *hintField) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := f.Field.Update(msg)
	if field, ok := model.(huh.Field); ok {
		f.Field = field
	}
	return f, cmd
}

// WithPosition restores the hint bindings after huh sets the position.
func (f *hintField) WithPosition(p huh.FieldPosition) huh.Field {
	f.Field.WithPosition(p)
	f.WithKeyMap(f.km)
	return f
}

// formFilter records Ctrl+C key presses and turns the interrupt huh sends on
// abort into a quit, so bubbletea clears the form before returning.
func (ui *HuhUI) formFilter() func(tea.Model, tea.Msg) tea.Msg {
	return func(_ tea.Model, msg tea.Msg) tea.Msg {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyCtrlC {
			ui.ctrlCAbort = true
		}
		if _, ok := msg.(tea.InterruptMsg); ok {
			return tea.QuitMsg{}
		}
		return msg
	}
}

// ask runs a single-field form. Esc yields errWizardBack and Ctrl+C
// errWizardCancelled.
func (ui *HuhUI) ask(field huh.Field) error {
	if err := ui.ensureInteractive(); err != nil {
		return err
	}
	form := huh.NewForm(huh.NewGroup(newHintField(field)))
	ui.ctrlCAbort = false
	form.WithKeyMap(wizardKeyMap())
	form.WithProgramOptions(
		tea.WithOutput(os.Stderr),
		tea.WithReportFocus(),
		tea.WithFilter(ui.formFilter()),
	)

	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		if ui.ctrlCAbort {
			return errWizardCancelled
		}
		return errWizardBack
	}
	return err
}

func stringOptions(values []string) []huh.Option[string] {
	opts := make([]huh.Option[string], len(values))
	for i, v := range values {
		opts[i] = huh.NewOption(v, v)
	}
	return opts
}

// Select asks for one of options.
func (ui *HuhUI) Select(title string, options []string, current *string) error {
	return ui.ask(huh.NewSelect[string]().Title(title).Options(stringOptions(options)...).Value(current))
}

// MultiSelect asks for any number of options.
func (ui *HuhUI) MultiSelect(title string, options []string, selected *[]string) error {
	return ui.ask(huh.NewMultiSelect[string]().Title(title).Filterable(false).Options(stringOptions(options)...).Value(selected))
}

// Confirm asks a yes/no question.
func (ui *HuhUI) Confirm(title string, value *bool) error {
	return ui.ask(huh.NewConfirm().Title(title).Value(value))
}

// Input asks for a line of text.
func (ui *HuhUI) Input(title string, value *string) error {
	return ui.ask(huh.NewInput().Title(title).Value(value))
}

// SecretInput asks for a line of text without echoing it.
func (ui *HuhUI) SecretInput(title string, value *string) error {
	return ui.ask(huh.NewInput().Title(title).Value(value).EchoMode(huh.EchoModePassword))
}

// Note shows body until the user continues.
func (ui *HuhUI) Note(title string, body string) error {
	return ui.ask(huh.NewNote().Title(title).Description(body))
}
