package install

import (
	"fmt"

	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/request"
)

// State is a step of the install pipeline.
type State int

const (
	Idle State = iota
	ClearWorkspace
	ApplyPartitions
	GenerateBaseConfig
	RelocateForStructuredLayout
	RenderConfig
	InvokeInstaller
	AwaitInstallerCompletion
	ProvisionCredentials
	Finished
	// Failed is absorbing for the current run; a new InstallMsg starts over.
	Failed
)

var stateNames = [...]string{
	Idle:                        "idle",
	ClearWorkspace:              "clear-workspace",
	ApplyPartitions:             "apply-partitions",
	GenerateBaseConfig:          "generate-base-config",
	RelocateForStructuredLayout: "relocate-for-structured-layout",
	RenderConfig:                "render-config",
	InvokeInstaller:             "invoke-installer",
	AwaitInstallerCompletion:    "await-installer-completion",
	ProvisionCredentials:        "provision-credentials",
	Finished:                    "finished",
	Failed:                      "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Msg is a message for the orchestrator's inbox.
type Msg interface {
	isMsg()
}

// InstallMsg starts a run for Request.
type InstallMsg struct {
	Request *request.InstallRequest
}

// InstallerFinishedMsg reports that the dispatched installer exited successfully.
type InstallerFinishedMsg struct{}

// InstallerFailedMsg reports that the dispatched installer could not finish.
type InstallerFailedMsg struct {
	Err error
}

func (InstallMsg) isMsg()           {}
func (InstallerFinishedMsg) isMsg() {}
func (InstallerFailedMsg) isMsg()   {}

// Outcome is what the presentation layer learns about a run. Each run emits
// exactly one. An OutcomeError can also answer an InstallMsg rejected with
// ErrBusy, in which case the run in progress still emits its own outcome
// later.
type Outcome int

const (
	OutcomeError Outcome = iota + 1
	OutcomeFinished
)

func (o Outcome) String() string {
	switch o {
	case OutcomeError:
		return "error"
	case OutcomeFinished:
		return "finished"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// StepError names the step a run failed in.
type StepError struct {
	Step State
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf(messages.InstallStepErrorFmt, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
