package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/snowfallorg/icicle/internal/config"
	"github.com/snowfallorg/icicle/internal/credentials"
	"github.com/snowfallorg/icicle/internal/gateway"
	"github.com/snowfallorg/icicle/internal/install"
	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/render"
	"github.com/snowfallorg/icicle/internal/request"
	"github.com/snowfallorg/icicle/internal/runner"
	"github.com/snowfallorg/icicle/internal/sysinfo"
)

func newInstallCmd(flags *globalFlags) *cobra.Command {
	var requestPath string
	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		Long:  messages.InstallLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if requestPath == "" {
				return errors.New(messages.InstallRequestRequired)
			}
			cfg, logger, err := loadSettings(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			req, err := request.Load(requestPath)
			if err != nil {
				return err
			}
			return runInstall(cmd.Context(), cfg, logger, req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&requestPath, "request", "", messages.InstallFlagRequest)
	return cmd
}

// runInstall wires the orchestrator to real processes and waits for the one
// outcome of req. The installer's completion reaches the orchestrator
// through the same inbox as the request.
func runInstall(ctx context.Context, cfg *config.Config, logger *logrus.Logger, req *request.InstallRequest, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	inbox := make(chan install.Msg, 1)
	outbox := make(chan install.Outcome, 1)

	scratch := cfg.Paths.ScratchRoot
	gw := &gateway.Exec{Elevate: cfg.Elevation.Command, Helper: cfg.HelperPath(), Logger: logger}
	installer := &runner.Runner{
		Output: out,
		Logger: logger,
		OnDone: func(err error) {
			if err != nil {
				inbox <- install.InstallerFailedMsg{Err: err}
				return
			}
			inbox <- install.InstallerFinishedMsg{}
		},
	}
	orch := install.New(install.Options{
		Gateway:  gw,
		Detector: &sysinfo.Detector{Gateway: gw},
		Renderer: &render.Renderer{
			Templates: os.DirFS(cfg.TemplatesDir()),
			Writer:    gw,
			DestRoot:  install.ConfigDir(scratch),
			Baseline:  cfg.Packages.Baseline,
			Logger:    logger,
		},
		Provisioner: &credentials.Provisioner{Gateway: gw, Root: scratch, Logger: logger},
		Dispatcher:  installer,
		ScratchRoot: scratch,
		Helper:      cfg.HelperPath(),
		Elevate:     cfg.Elevation.Command,
		Progress:    func(line string) { _, _ = fmt.Fprintln(out, line) },
		Logger:      logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orch.Run(gctx, inbox, outbox) })

	inbox <- install.InstallMsg{Request: req}
	var outcome install.Outcome
	select {
	case outcome = <-outbox:
	case <-gctx.Done():
		cancel()
		return fmt.Errorf(messages.InstallInterruptedFmt, g.Wait())
	}
	cancel()
	installer.Wait()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if outcome != install.OutcomeFinished {
		_, _ = fmt.Fprintln(out, color.RedString(messages.InstallResultFailed))
		return &SilentExitError{Code: 1}
	}
	_, _ = fmt.Fprintln(out, color.GreenString(messages.InstallResultFinished))
	return nil
}
