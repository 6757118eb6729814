package wizard

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHuhUI(t *testing.T) {
	ui := NewHuhUI()
	assert.NotNil(t, ui.isTerminal)
}

func TestHuhUIRequiresTerminal(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return false }}
	var s string
	var b bool
	var many []string

	for name, err := range map[string]error{
		"select":      ui.Select("Title", []string{"a"}, &s),
		"multiselect": ui.MultiSelect("Title", []string{"a"}, &many),
		"confirm":     ui.Confirm("Title", &b),
		"input":       ui.Input("Title", &s),
		"secret":      ui.SecretInput("Title", &s),
		"note":        ui.Note("Title", "body"),
	} {
		require.EqualError(t, err, "the wizard requires an interactive terminal", name)
	}
}

func withRunForm(t *testing.T, fn func(*huh.Form) error) {
	t.Helper()
	orig := runFormFunc
	runFormFunc = fn
	t.Cleanup(func() { runFormFunc = orig })
}

func TestAskClassifiesAbort(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return true }}

	withRunForm(t, func(*huh.Form) error { return huh.ErrUserAborted })
	var s string
	require.ErrorIs(t, ui.Input("Title", &s), errWizardBack)

	withRunForm(t, func(*huh.Form) error {
		ui.formFilter()(nil, tea.KeyMsg{Type: tea.KeyCtrlC})
		return huh.ErrUserAborted
	})
	require.ErrorIs(t, ui.Input("Title", &s), errWizardCancelled)

	boom := errors.New("boom")
	withRunForm(t, func(*huh.Form) error { return boom })
	require.ErrorIs(t, ui.Confirm("Title", new(bool)), boom)

	withRunForm(t, func(*huh.Form) error { return nil })
	require.NoError(t, ui.Select("Title", []string{"a", "b"}, &s))
}

func TestFormFilterConvertsInterrupt(t *testing.T) {
	ui := &HuhUI{}
	filter := ui.formFilter()

	require.Equal(t, tea.QuitMsg{}, filter(nil, tea.InterruptMsg{}))
	require.False(t, ui.ctrlCAbort)
	msg := tea.KeyMsg{Type: tea.KeyEsc}
	require.Equal(t, msg, filter(nil, msg))
	require.False(t, ui.ctrlCAbort)
	filter(nil, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.True(t, ui.ctrlCAbort)
}

func TestWizardKeyMap(t *testing.T) {
	km := wizardKeyMap()
	assert.Equal(t, []string{"ctrl+c", "esc"}, km.Quit.Keys())
	assert.Equal(t, "back", km.Input.Prev.Help().Desc)
	assert.Equal(t, "exit", km.Select.Next.Help().Desc)
	assert.False(t, km.Select.Filter.Enabled())
}

func TestHintFieldRestoresBindings(t *testing.T) {
	var v string
	field := newHintField(huh.NewInput().Title("x").Value(&v))
	require.Same(t, field, field.WithPosition(huh.FieldPosition{}))
}
