// Package render turns a template set into the configuration tree of the
// installed system by literal placeholder substitution.
package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snowfallorg/icicle/internal/logging"
	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/request"
	"github.com/snowfallorg/icicle/internal/sysinfo"
)

// TemplateExt marks the template files that are rendered; everything else in
// a template set is ignored.
const TemplateExt = ".nix"

// ErrNoBootDevice is returned for a legacy-boot render without a boot device.
var ErrNoBootDevice = errors.New(messages.RenderNoBootDevice)

// DefaultBaseline is the package every generated package list starts with.
var DefaultBaseline = []string{"firefox"}

// FileWriter receives rendered files. gateway.Gateway satisfies it.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, contents []byte) error
}

// Substitution replaces the first occurrence of Token with Value.
type Substitution struct {
	Token string
	Value string
}

// RenderString applies subs in order, each to its first occurrence only.
func RenderString(content string, subs []Substitution) string {
	for _, s := range subs {
		content = strings.Replace(content, s.Token, s.Value, 1)
	}
	return content
}

// Substitutions builds the ordered substitution list for req. Optional
// stanzas whose input is missing are left out, so their tokens stay in the
// output. All failures are reported here, before anything is written.
func Substitutions(req *request.InstallRequest, facts sysinfo.Facts, bootDevice string, baseline []string) ([]Substitution, error) {
	bootloader, err := bootloaderStanza(facts.UEFI, bootDevice)
	if err != nil {
		return nil, err
	}
	if len(facts.StateVersion) < 5 {
		return nil, fmt.Errorf(messages.RenderStateVersionFmt, sysinfo.ErrShortVersion, facts.StateVersion)
	}

	subs := []Substitution{
		{TokenNvidiaOffload, ""},
		{TokenArch, facts.Arch + "-linux"},
		{TokenBootloader, bootloader},
		{TokenNetwork, fmt.Sprintf(networkFmt, req.Hostname())},
	}
	if req.Timezone != "" {
		subs = append(subs, Substitution{TokenTimezone, fmt.Sprintf(timezoneFmt, req.Timezone)})
	}
	if req.Language != "" {
		subs = append(subs, Substitution{TokenLocale, fmt.Sprintf(localeFmt, req.Language)})
	}
	if req.Keyboard != "" {
		subs = append(subs, Substitution{TokenKeyboard, keyboardStanza(req.Keyboard)})
	}
	subs = append(subs, Substitution{TokenDesktop, desktop})
	if u := req.User; u != nil {
		subs = append(subs,
			Substitution{TokenUsername, u.Username},
			Substitution{TokenFullName, u.FullName},
			Substitution{TokenHostname, u.Hostname},
		)
	}
	subs = append(subs, Substitution{TokenAutologin, autologinStanza(req.User)})

	var extra []string
	for _, group := range req.Features {
		stanza, packages := featureStanza(group)
		extra = append(extra, packages...)
		subs = append(subs, Substitution{"@" + group.ID + "@", stanza})
	}
	subs = append(subs,
		Substitution{TokenPackages, packagesStanza(baseline, extra)},
		Substitution{TokenStateVersion, fmt.Sprintf(stateVersionFmt, facts.StateVersion[:5])},
	)
	return subs, nil
}

// DestPath maps a template file to its place under destRoot. ARCH and
// HOSTNAME in the template directory path are replaced.
func DestPath(destRoot string, relDir string, name string, arch string, hostname string) string {
	relDir = strings.ReplaceAll(relDir, pathArch, arch+"-linux")
	relDir = strings.ReplaceAll(relDir, pathHostname, hostname)
	return path.Join(destRoot, relDir, name)
}

// Renderer walks a template set and writes every rendered template.
type Renderer struct {
	// Templates holds one directory per template set.
	Templates fs.FS
	Writer    FileWriter
	// DestRoot is the configuration directory of the installed system.
	DestRoot string
	Baseline []string
	Logger   logrus.FieldLogger
}

func (r *Renderer) logger(ctx context.Context) logrus.FieldLogger {
	return logging.FromContext(ctx, r.Logger)
}

// Render writes req.TemplateSet rendered for req, facts and bootDevice.
// Directories are visited depth-first in name order, the files of a
// directory before its subdirectories. The first error stops the walk; files
// already written stay written.
func (r *Renderer) Render(ctx context.Context, req *request.InstallRequest, facts sysinfo.Facts, bootDevice string) error {
	baseline := r.Baseline
	if len(baseline) == 0 {
		baseline = DefaultBaseline
	}
	subs, err := Substitutions(req, facts, bootDevice, baseline)
	if err != nil {
		return err
	}
	hostname := req.Hostname()

	stack := []string{"."}
	for len(stack) > 0 {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dir := path.Join(req.TemplateSet, rel)
		entries, err := fs.ReadDir(r.Templates, dir)
		if err != nil {
			return fmt.Errorf(messages.RenderReadDirFmt, dir, err)
		}
		var subdirs []string
		for _, entry := range entries {
			if entry.IsDir() {
				subdirs = append(subdirs, path.Join(rel, entry.Name()))
				continue
			}
			if !strings.HasSuffix(entry.Name(), TemplateExt) {
				continue
			}
			if err := r.renderFile(ctx, path.Join(dir, entry.Name()), rel, entry.Name(), subs, facts.Arch, hostname); err != nil {
				return err
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return nil
}

func (r *Renderer) renderFile(ctx context.Context, src string, rel string, name string, subs []Substitution, arch string, hostname string) error {
	data, err := fs.ReadFile(r.Templates, src)
	if err != nil {
		return fmt.Errorf(messages.RenderReadFileFmt, src, err)
	}
	dest := DestPath(r.DestRoot, rel, name, arch, hostname)
	if err := r.Writer.WriteFile(ctx, dest, []byte(RenderString(string(data), subs))); err != nil {
		return fmt.Errorf(messages.RenderWriteFileFmt, dest, err)
	}
	r.logger(ctx).WithField("path", dest).Debug("rendered template")
	return nil
}
