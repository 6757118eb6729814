package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/request"
	"github.com/snowfallorg/icicle/internal/wizard"
)

var newWizardUI = func() wizard.UI { return wizard.NewHuhUI() }

func newWizardCmd(flags *globalFlags) *cobra.Command {
	var outPath string
	var installNow bool
	cmd := &cobra.Command{
		Use:   messages.WizardUse,
		Short: messages.WizardShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadSettings(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			req, err := wizard.Run(newWizardUI(), os.DirFS(cfg.TemplatesDir()))
			if errors.Is(err, wizard.ErrCancelled) {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), messages.WizardCancelled)
				return nil
			}
			if err != nil {
				return err
			}
			if installNow {
				return runInstall(cmd.Context(), cfg, logger, req, cmd.OutOrStdout())
			}
			if outPath == "" {
				return request.Save(cmd.OutOrStdout(), req)
			}
			return writeRequest(outPath, req, cmd)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", messages.WizardFlagOut)
	cmd.Flags().BoolVar(&installNow, "install", false, messages.WizardFlagInstall)
	return cmd
}

// writeRequest saves req readable only by its owner; it holds passwords.
func writeRequest(path string, req *request.InstallRequest, cmd *cobra.Command) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf(messages.WizardOpenOutFmt, path, err)
	}
	if err := request.Save(f, req); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), messages.WizardWroteFmt+"\n", path)
	return nil
}
