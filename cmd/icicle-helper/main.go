// Command icicle-helper performs the privileged steps of an icicle install.
// It is started through the elevation command and never prompts.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/snowfallorg/icicle/internal/helper"
	"github.com/snowfallorg/icicle/internal/install"
	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/sysinfo"
)

// newPartitioner is replaced in tests.
var newPartitioner = func(root string, progress io.Writer) *helper.Partitioner {
	return &helper.Partitioner{
		Runner:   helper.ExecRunner{},
		Mounter:  helper.UnixMounter{},
		Root:     root,
		UEFI:     (&sysinfo.Detector{}).UEFI(),
		Progress: progress,
	}
}

func main() {
	runMain(os.Args, os.Stdin, os.Stdout, os.Stderr, os.Exit)
}

func runMain(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer, exit func(int)) {
	cmd := newRootCmd()
	cmd.SetArgs(args[1:])
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.HelperUse,
		Short:         messages.HelperShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newPartitionCmd(), newWriteFileCmd())
	return cmd
}

func newPartitionCmd() *cobra.Command {
	var root, lockPath string
	cmd := &cobra.Command{
		Use:   messages.HelperPartitionUse,
		Short: messages.HelperPartitionShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scheme, err := helper.DecodeScheme(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return helper.WithLock(lockPath, func() error {
				return newPartitioner(root, cmd.OutOrStdout()).Apply(cmd.Context(), scheme)
			})
		},
	}
	cmd.Flags().StringVar(&root, "root", install.DefaultScratchRoot, messages.HelperFlagRoot)
	cmd.Flags().StringVar(&lockPath, "lock", helper.DefaultLockPath, messages.HelperFlagLock)
	return cmd
}

func newWriteFileCmd() *cobra.Command {
	var path, contents string
	cmd := &cobra.Command{
		Use:   messages.HelperWriteFileUse,
		Short: messages.HelperWriteFileShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				return errors.New(messages.HelperPathRequired)
			}
			return helper.WriteFile(path, []byte(contents))
		},
	}
	cmd.Flags().StringVar(&path, "path", "", messages.HelperFlagPath)
	cmd.Flags().StringVar(&contents, "contents", "", messages.HelperFlagContents)
	return cmd
}
