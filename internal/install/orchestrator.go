// Package install drives an install request through partitioning,
// configuration generation, the installer and credential provisioning.
package install

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/snowfallorg/icicle/internal/credentials"
	"github.com/snowfallorg/icicle/internal/gateway"
	"github.com/snowfallorg/icicle/internal/logging"
	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/partition"
	"github.com/snowfallorg/icicle/internal/request"
	"github.com/snowfallorg/icicle/internal/sysinfo"
)

// DefaultScratchRoot is where the target system is assembled.
const DefaultScratchRoot = "/tmp/icicle"

var (
	// ErrNoUser is returned when the installer is reached without a user.
	ErrNoUser = errors.New(messages.InstallNoUser)
	// ErrNoHostname is returned when the user has no hostname.
	ErrNoHostname = errors.New(messages.InstallNoHostname)
	// ErrBusy rejects an install request while another waits for its installer.
	ErrBusy = errors.New(messages.InstallBusy)
	// ErrUnexpectedCompletion is returned for a completion nobody waits for.
	ErrUnexpectedCompletion = errors.New(messages.InstallUnexpectedCompletion)
)

// Detector reports facts about the live system.
type Detector interface {
	Arch(ctx context.Context) (string, error)
	StateVersion(ctx context.Context) (string, error)
	UEFI() bool
}

// Renderer writes the configuration tree for a request.
type Renderer interface {
	Render(ctx context.Context, req *request.InstallRequest, facts sysinfo.Facts, bootDevice string) error
}

// Provisioner sets passwords inside the installed system.
type Provisioner interface {
	Provision(ctx context.Context, creds credentials.Credentials) error
}

// Dispatcher starts the installer and reports its completion later, as an
// InstallerFinishedMsg or InstallerFailedMsg in the orchestrator's inbox.
type Dispatcher interface {
	Dispatch(args []string) error
}

// Options wires an Orchestrator.
type Options struct {
	Gateway     gateway.Gateway
	Detector    Detector
	Renderer    Renderer
	Provisioner Provisioner
	Dispatcher  Dispatcher
	// ScratchRoot defaults to DefaultScratchRoot.
	ScratchRoot string
	// Helper is the path of the privileged helper.
	Helper string
	// Elevate prefixes the installer command.
	Elevate string
	// Progress receives the partition helper's output lines.
	Progress func(string)
	Logger   logrus.FieldLogger
	// NewRunID defaults to uuid.NewString.
	NewRunID func() string
}

// Orchestrator is a single-request state machine. It is not safe for
// concurrent use; Run serializes all messages through one goroutine.
type Orchestrator struct {
	opts  Options
	state State
	err   error
	log   logrus.FieldLogger
	creds *credentials.Credentials
}

// New returns an idle Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.ScratchRoot == "" {
		opts.ScratchRoot = DefaultScratchRoot
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}
	return &Orchestrator{opts: opts, log: opts.Logger}
}

// State returns the current step.
func (o *Orchestrator) State() State {
	return o.state
}

// Err returns the error of the last failed run, or nil.
func (o *Orchestrator) Err() error {
	return o.err
}

// Run handles messages from inbox until it is closed or ctx is done, sending
// each outcome to outbox.
func (o *Orchestrator) Run(ctx context.Context, inbox <-chan Msg, outbox chan<- Outcome) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-inbox:
			if !ok {
				return nil
			}
			outcome, emit := o.Handle(ctx, msg)
			if !emit {
				continue
			}
			select {
			case outbox <- outcome:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Handle processes one message and reports the outcome to emit, if any. An
// InstallMsg runs every step up to the installer hand-off before returning.
// An InstallMsg that arrives while a run awaits its installer is rejected
// with OutcomeError and does not touch that run.
func (o *Orchestrator) Handle(ctx context.Context, msg Msg) (Outcome, bool) {
	switch m := msg.(type) {
	case InstallMsg:
		if o.state == AwaitInstallerCompletion {
			o.log.WithError(ErrBusy).Error(messages.InstallBusyRejected)
			return OutcomeError, true
		}
		return o.start(ctx, m.Request)
	case InstallerFinishedMsg:
		if o.state != AwaitInstallerCompletion {
			return o.unexpectedCompletion()
		}
		return o.provision(ctx)
	case InstallerFailedMsg:
		if o.state != AwaitInstallerCompletion {
			return o.unexpectedCompletion()
		}
		return o.fail(AwaitInstallerCompletion, fmt.Errorf(messages.InstallInstallerFailedFmt, m.Err)), true
	}
	return o.fail(o.state, fmt.Errorf(messages.InstallUnknownMessageFmt, msg)), true
}

// unexpectedCompletion handles a completion no run waits for. A run that
// already ended keeps its state and its single outcome.
func (o *Orchestrator) unexpectedCompletion() (Outcome, bool) {
	if o.state == Finished || o.state == Failed {
		o.log.WithField("state", o.state.String()).Warn(messages.InstallStaleCompletion)
		return 0, false
	}
	return o.fail(o.state, ErrUnexpectedCompletion), true
}

// enter moves to s and returns a context carrying the step logger, so
// collaborators log with the run and step fields.
func (o *Orchestrator) enter(ctx context.Context, s State) (context.Context, logrus.FieldLogger) {
	o.state = s
	log := o.log.WithField("step", s.String())
	return logging.WithLogger(ctx, log), log
}

func (o *Orchestrator) fail(step State, err error) Outcome {
	o.creds = nil
	o.state = Failed
	o.err = &StepError{Step: step, Err: err}
	o.log.WithField("step", step.String()).WithError(err).Error(messages.InstallFailed)
	return OutcomeError
}

func (o *Orchestrator) start(ctx context.Context, req *request.InstallRequest) (Outcome, bool) {
	o.err = nil
	o.creds = nil
	o.log = o.opts.Logger.WithField("run", o.opts.NewRunID())
	o.state = Idle
	if req == nil {
		return o.fail(Idle, errors.New(messages.InstallNoRequest)), true
	}

	o.log.WithField("step", Idle.String()).Info(messages.InstallStepDetect)
	arch, err := o.opts.Detector.Arch(ctx)
	if err != nil {
		return o.fail(Idle, err), true
	}
	if err := o.clearWorkspace(ctx); err != nil {
		return o.fail(ClearWorkspace, err), true
	}
	if err := o.applyPartitions(ctx, req.Partitions); err != nil {
		return o.fail(ApplyPartitions, err), true
	}
	if err := o.generateBaseConfig(ctx); err != nil {
		return o.fail(GenerateBaseConfig, err), true
	}
	if req.ConfigType == request.Structured {
		if err := o.relocate(ctx, arch, req.Hostname()); err != nil {
			return o.fail(RelocateForStructuredLayout, err), true
		}
	}
	if err := o.renderConfig(ctx, req, arch); err != nil {
		return o.fail(RenderConfig, err), true
	}
	if err := o.invokeInstaller(ctx, req.User); err != nil {
		return o.fail(InvokeInstaller, err), true
	}
	o.enter(ctx, AwaitInstallerCompletion)
	return 0, false
}

// clearWorkspace unmounts and removes the scratch root of an earlier run.
// umount exiting non-zero usually means nothing was mounted and is only
// logged; failing to start it is fatal.
func (o *Orchestrator) clearWorkspace(ctx context.Context) error {
	root := o.opts.ScratchRoot
	ctx, log := o.enter(ctx, ClearWorkspace)
	log.Infof(messages.InstallStepClearFmt, root)

	if _, err := o.opts.Gateway.Output(ctx, gateway.Privileged("umount", "-R", root)); err != nil {
		var cmdErr *gateway.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.ExitCode < 0 {
			return err
		}
		log.WithError(err).Warn(messages.InstallUmountTolerated)
	}
	_, err := o.opts.Gateway.Output(ctx, gateway.Privileged("rm", "-rf", root))
	return err
}

func (o *Orchestrator) applyPartitions(ctx context.Context, scheme *partition.Scheme) error {
	ctx, log := o.enter(ctx, ApplyPartitions)
	log.Info(messages.InstallStepPartition)
	if scheme == nil {
		return partition.ErrNoScheme
	}
	payload, err := json.Marshal(scheme)
	if err != nil {
		return fmt.Errorf(messages.InstallEncodeSchemeFmt, err)
	}
	log.WithField("scheme", string(payload)).Debug(messages.InstallPartitionOutput)
	return o.opts.Gateway.Stream(ctx, gateway.HelperCommand(o.opts.Helper, "partition", "--root", o.opts.ScratchRoot), payload, func(line string) {
		log.Info(line)
		if o.opts.Progress != nil {
			o.opts.Progress(line)
		}
	})
}

func (o *Orchestrator) generateBaseConfig(ctx context.Context) error {
	ctx, log := o.enter(ctx, GenerateBaseConfig)
	log.Info(messages.InstallStepBaseConfig)
	_, err := o.opts.Gateway.Output(ctx, gateway.Privileged("nixos-generate-config", "--root", o.opts.ScratchRoot))
	return err
}

// relocate moves the generated hardware configuration under
// systems/<arch>-linux/<hostname> and drops the flat configuration.nix.
func (o *Orchestrator) relocate(ctx context.Context, arch string, hostname string) error {
	ctx, log := o.enter(ctx, RelocateForStructuredLayout)
	log.Info(messages.InstallStepRelocate)
	nixos := ConfigDir(o.opts.ScratchRoot)
	dir := path.Join(nixos, "systems", arch+"-linux", hostname)
	steps := []gateway.Command{
		gateway.Privileged("mkdir", "-p", dir),
		gateway.Privileged("mv", path.Join(nixos, "hardware-configuration.nix"), path.Join(dir, "hardware.nix")),
		gateway.Privileged("rm", path.Join(nixos, "configuration.nix")),
	}
	for _, c := range steps {
		if _, err := o.opts.Gateway.Output(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) renderConfig(ctx context.Context, req *request.InstallRequest, arch string) error {
	ctx, log := o.enter(ctx, RenderConfig)
	log.Info(messages.InstallStepRender)
	bootDevice, _, err := partition.BootDevice(req.Partitions)
	if err != nil {
		return fmt.Errorf(messages.InstallBootDeviceFmt, err)
	}
	version, err := o.opts.Detector.StateVersion(ctx)
	if err != nil {
		return err
	}
	facts := sysinfo.Facts{Arch: arch, StateVersion: version, UEFI: o.opts.Detector.UEFI()}
	return o.opts.Renderer.Render(ctx, req, facts, bootDevice)
}

func (o *Orchestrator) invokeInstaller(ctx context.Context, user *request.UserConfig) error {
	_, log := o.enter(ctx, InvokeInstaller)
	log.Info(messages.InstallStepInstall)
	if user == nil {
		return ErrNoUser
	}
	if user.Hostname == "" {
		return ErrNoHostname
	}
	if user.Username == "" || user.Password == "" {
		return credentials.ErrMissingCredentials
	}
	o.creds = &credentials.Credentials{
		Username:     user.Username,
		Password:     user.Password,
		RootPassword: user.RootPassword,
	}
	if err := o.opts.Dispatcher.Dispatch(InstallerArgs(o.opts.Elevate, o.opts.ScratchRoot, user.Hostname)); err != nil {
		return fmt.Errorf(messages.InstallDispatchFmt, err)
	}
	return nil
}

func (o *Orchestrator) provision(ctx context.Context) (Outcome, bool) {
	ctx, log := o.enter(ctx, ProvisionCredentials)
	log.Info(messages.InstallStepCredentials)
	creds := o.creds
	o.creds = nil
	if creds == nil {
		return o.fail(ProvisionCredentials, credentials.ErrMissingCredentials), true
	}
	if err := o.opts.Provisioner.Provision(ctx, *creds); err != nil {
		return o.fail(ProvisionCredentials, err), true
	}
	_, log = o.enter(ctx, Finished)
	log.Info(messages.InstallFinished)
	return OutcomeFinished, true
}

// ConfigDir returns the configuration directory of the system assembled at
// scratchRoot.
func ConfigDir(scratchRoot string) string {
	return path.Join(scratchRoot, "etc", "nixos")
}

// InstallerArgs is the installer command for the system assembled at
// scratchRoot, building the flake output named after hostname.
func InstallerArgs(elevate string, scratchRoot string, hostname string) []string {
	args := []string{"/usr/bin/env"}
	if elevate != "" {
		args = append(args, elevate)
	}
	return append(args,
		"nixos-install",
		"--root", scratchRoot,
		"--no-root-passwd",
		"--no-channel-copy",
		"--flake", ConfigDir(scratchRoot)+"#"+hostname,
	)
}
