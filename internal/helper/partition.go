// Package helper implements the icicle-helper subcommands, which run with
// elevated privileges on behalf of the installer.
package helper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/partition"
)

// ESPMountpoint is where the EFI system partition is mounted in the target.
const ESPMountpoint = "/boot/efi"

// Partitioner lays out and mounts target storage under Root.
type Partitioner struct {
	Runner  CommandRunner
	Mounter Mounter
	// Root is where the target system's "/" is mounted.
	Root string
	// UEFI selects a GPT layout with an EFI system partition.
	UEFI bool
	// Progress receives one line per action.
	Progress io.Writer
	// MkdirAll defaults to os.MkdirAll.
	MkdirAll func(path string, perm os.FileMode) error

	mu sync.Mutex
}

// DecodeScheme reads the JSON scheme sent by the installer.
func DecodeScheme(r io.Reader) (*partition.Scheme, error) {
	var s partition.Scheme
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf(messages.HelperDecodeSchemeFmt, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Apply partitions, formats and mounts according to s.
func (p *Partitioner) Apply(ctx context.Context, s *partition.Scheme) error {
	if s == nil {
		return partition.ErrNoScheme
	}
	if !filepath.IsAbs(p.Root) {
		return fmt.Errorf(messages.HelperRootNotAbsFmt, p.Root)
	}
	var err error
	switch s.Kind {
	case partition.KindFullDisk:
		err = p.fullDisk(ctx, s.Disk)
	case partition.KindCustom:
		err = p.custom(ctx, s)
	default:
		err = fmt.Errorf(messages.HelperUnknownKindFmt, s.Kind)
	}
	if err != nil {
		return err
	}
	p.progress(messages.HelperProgressDone)
	return nil
}

func (p *Partitioner) fullDisk(ctx context.Context, disk string) error {
	label := "msdos"
	if p.UEFI {
		label = "gpt"
	}
	p.progress(messages.HelperProgressTableFmt, label, disk)
	parted := []string{"-s", "-a", "optimal", disk, "--", "mklabel", label}
	if p.UEFI {
		parted = append(parted,
			"mkpart", "ESP", "fat32", "1MiB", "512MiB",
			"set", "1", "esp", "on",
			"mkpart", "root", "ext4", "512MiB", "100%",
		)
	} else {
		parted = append(parted,
			"mkpart", "primary", "ext4", "1MiB", "100%",
			"set", "1", "boot", "on",
		)
	}
	if _, err := p.Runner.Run(ctx, "parted", parted...); err != nil {
		return err
	}
	if _, err := p.Runner.Run(ctx, "udevadm", "settle"); err != nil {
		return err
	}

	if !p.UEFI {
		root := PartitionDevice(disk, 1)
		if err := p.format(ctx, root, "ext4"); err != nil {
			return err
		}
		return p.mount(root, partition.RootMountpoint, "ext4")
	}

	esp, root := PartitionDevice(disk, 1), PartitionDevice(disk, 2)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.format(gctx, esp, "vfat") })
	g.Go(func() error { return p.format(gctx, root, "ext4") })
	if err := g.Wait(); err != nil {
		return err
	}
	if err := p.mount(root, partition.RootMountpoint, "ext4"); err != nil {
		return err
	}
	return p.mount(esp, ESPMountpoint, "vfat")
}

func (p *Partitioner) custom(ctx context.Context, s *partition.Scheme) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range sortedIDs(s.Partitions) {
		spec := s.Partitions[id]
		if !spec.Format {
			continue
		}
		g.Go(func() error { return p.format(gctx, spec.Device, spec.Filesystem) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, entry := range s.MountOrder() {
		fstype := mountType(entry.Filesystem)
		if fstype == "" {
			probed, err := p.probe(ctx, entry.Device)
			if err != nil {
				return err
			}
			fstype = probed
		}
		if err := p.mount(entry.Device, entry.Mountpoint, fstype); err != nil {
			return err
		}
	}
	return nil
}

func (p *Partitioner) format(ctx context.Context, device string, filesystem string) error {
	name, args := MkfsCommand(device, filesystem)
	p.progress(messages.HelperProgressFormatFmt, device, filesystem)
	_, err := p.Runner.Run(ctx, name, args...)
	return err
}

func (p *Partitioner) probe(ctx context.Context, device string) (string, error) {
	out, err := p.Runner.Run(ctx, "blkid", "-o", "value", "-s", "TYPE", device)
	if err != nil {
		return "", fmt.Errorf(messages.HelperProbeFilesystemFmt, device, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (p *Partitioner) mount(device string, mountpoint string, fstype string) error {
	target := filepath.Join(p.Root, mountpoint)
	mkdirAll := p.MkdirAll
	if mkdirAll == nil {
		mkdirAll = os.MkdirAll
	}
	if err := mkdirAll(target, 0o755); err != nil {
		return fmt.Errorf(messages.HelperMkdirFmt, target, err)
	}
	p.progress(messages.HelperProgressMountFmt, device, target)
	if err := p.Mounter.Mount(device, target, fstype); err != nil {
		return fmt.Errorf(messages.HelperMountFmt, device, target, err)
	}
	return nil
}

func (p *Partitioner) progress(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Progress != nil {
		_, _ = fmt.Fprintf(p.Progress, format+"\n", args...)
	}
}

// PartitionDevice names partition n of disk: sda -> sda1, nvme0n1 -> nvme0n1p1.
func PartitionDevice(disk string, n int) string {
	if disk != "" && disk[len(disk)-1] >= '0' && disk[len(disk)-1] <= '9' {
		return fmt.Sprintf("%sp%d", disk, n)
	}
	return fmt.Sprintf("%s%d", disk, n)
}

// MkfsCommand returns the tool invocation that creates filesystem on device.
func MkfsCommand(device string, filesystem string) (string, []string) {
	switch strings.ToLower(filesystem) {
	case "vfat", "fat32", "fat":
		return "mkfs.fat", []string{"-F", "32", device}
	case "ext4", "ext3", "ext2":
		return "mkfs." + strings.ToLower(filesystem), []string{"-F", device}
	case "btrfs", "xfs", "f2fs":
		return "mkfs." + strings.ToLower(filesystem), []string{"-f", device}
	case "swap":
		return "mkswap", []string{device}
	}
	return "mkfs." + filesystem, []string{device}
}

// mountType maps a filesystem name to its mount(2) type.
func mountType(filesystem string) string {
	switch strings.ToLower(filesystem) {
	case "fat32", "fat":
		return "vfat"
	}
	return strings.ToLower(filesystem)
}

func sortedIDs(m map[string]partition.Spec) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
