package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snowfallorg/icicle/internal/gateway"
	"github.com/snowfallorg/icicle/internal/install"
	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/partition"
	"github.com/snowfallorg/icicle/internal/render"
	"github.com/snowfallorg/icicle/internal/request"
	"github.com/snowfallorg/icicle/internal/sysinfo"
)

type renderFlags struct {
	requestPath string
	diff        bool
	diffLines   int
	root        string
}

func newRenderCmd(flags *globalFlags) *cobra.Command {
	rf := &renderFlags{}
	cmd := &cobra.Command{
		Use:   messages.RenderUse,
		Short: messages.RenderShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rf.requestPath == "" {
				return errors.New(messages.InstallRequestRequired)
			}
			cfg, logger, err := loadSettings(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			req, err := request.Load(rf.requestPath)
			if err != nil {
				return err
			}

			// Facts come from the live system; nothing is run privileged.
			detector := &sysinfo.Detector{Gateway: &gateway.Exec{Logger: logger}}
			facts, err := detector.Facts(cmd.Context())
			if err != nil {
				return fmt.Errorf(messages.RenderDetectFmt, err)
			}
			bootDevice, _, err := partition.BootDevice(req.Partitions)
			if err != nil && !errors.Is(err, partition.ErrNoScheme) {
				return err
			}

			sink := &render.MemorySink{}
			r := &render.Renderer{
				Templates: os.DirFS(cfg.TemplatesDir()),
				Writer:    sink,
				DestRoot:  install.ConfigDir("/"),
				Baseline:  cfg.Packages.Baseline,
				Logger:    logger,
			}
			if err := r.Render(cmd.Context(), req, facts, bootDevice); err != nil {
				return err
			}
			if !rf.diff {
				return printFiles(cmd.OutOrStdout(), sink.Files())
			}
			previews, err := render.Preview(sink.Files(), os.DirFS(rf.root), rf.diffLines)
			if err != nil {
				return err
			}
			return printPreviews(cmd.OutOrStdout(), previews)
		},
	}
	cmd.Flags().StringVar(&rf.requestPath, "request", "", messages.RenderFlagRequest)
	cmd.Flags().BoolVar(&rf.diff, "diff", false, messages.RenderFlagDiff)
	cmd.Flags().IntVar(&rf.diffLines, "diff-lines", render.DefaultDiffMaxLines, messages.RenderFlagDiffLines)
	cmd.Flags().StringVar(&rf.root, "root", "/", messages.RenderFlagRoot)
	return cmd
}

func printFiles(out io.Writer, files []render.File) error {
	for _, f := range files {
		if _, err := fmt.Fprintln(out, color.CyanString(messages.RenderFileHeaderFmt, f.Path)); err != nil {
			return err
		}
		if _, err := out.Write(f.Contents); err != nil {
			return err
		}
		if len(f.Contents) > 0 && f.Contents[len(f.Contents)-1] != '\n' {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
	}
	return nil
}

func printPreviews(out io.Writer, previews []render.DiffPreview) error {
	for _, p := range previews {
		var header string
		switch {
		case p.New:
			header = color.GreenString(messages.RenderNewFileFmt, p.Path)
		case p.UnifiedDiff == "":
			header = color.New(color.Faint).Sprintf(messages.RenderUnchangedFmt, p.Path)
		default:
			header = color.YellowString(messages.RenderFileHeaderFmt, p.Path)
		}
		if _, err := fmt.Fprintln(out, header); err != nil {
			return err
		}
		if _, err := io.WriteString(out, p.UnifiedDiff); err != nil {
			return err
		}
	}
	return nil
}
