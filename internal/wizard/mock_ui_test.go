package wizard

// MockUI answers prompts through optional callbacks; a nil callback keeps
// the current value.
type MockUI struct {
	SelectFunc      func(title string, options []string, current *string) error
	MultiSelectFunc func(title string, options []string, selected *[]string) error
	ConfirmFunc     func(title string, value *bool) error
	InputFunc       func(title string, value *string) error
	SecretInputFunc func(title string, value *string) error
	NoteFunc        func(title string, body string) error
}

func (m *MockUI) Select(title string, options []string, current *string) error {
	if m.SelectFunc == nil {
		return nil
	}
	return m.SelectFunc(title, options, current)
}

func (m *MockUI) MultiSelect(title string, options []string, selected *[]string) error {
	if m.MultiSelectFunc == nil {
		return nil
	}
	return m.MultiSelectFunc(title, options, selected)
}

func (m *MockUI) Confirm(title string, value *bool) error {
	if m.ConfirmFunc == nil {
		return nil
	}
	return m.ConfirmFunc(title, value)
}

func (m *MockUI) Input(title string, value *string) error {
	if m.InputFunc == nil {
		return nil
	}
	return m.InputFunc(title, value)
}

func (m *MockUI) SecretInput(title string, value *string) error {
	if m.SecretInputFunc == nil {
		return nil
	}
	return m.SecretInputFunc(title, value)
}

func (m *MockUI) Note(title string, body string) error {
	if m.NoteFunc == nil {
		return nil
	}
	return m.NoteFunc(title, body)
}
