// Package partition describes how target storage is laid out and resolves the
// device a legacy bootloader is installed onto.
package partition

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/snowfallorg/icicle/internal/messages"
)

// RootMountpoint is the mountpoint that identifies the boot device in a custom scheme.
const RootMountpoint = "/"

// ErrNoScheme is returned when a pipeline step needs a scheme and none was supplied.
var ErrNoScheme = errors.New(messages.PartitionNoScheme)

// ErrMultipleRoots is returned when a custom scheme mounts more than one partition at "/".
var ErrMultipleRoots = errors.New(messages.PartitionMultipleRoots)

// Kind selects the variant of a Scheme.
type Kind int

const (
	// KindFullDisk wipes a whole disk and lays it out from scratch.
	KindFullDisk Kind = iota
	// KindCustom uses existing partitions picked by the user.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindFullDisk:
		return "FullDisk"
	case KindCustom:
		return "Custom"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Spec describes one partition of a custom scheme.
type Spec struct {
	Device     string `json:"device" toml:"device"`
	Mountpoint string `json:"mountpoint,omitempty" toml:"mountpoint,omitempty"`
	Filesystem string `json:"filesystem,omitempty" toml:"filesystem,omitempty"`
	// Format asks the helper to create a fresh filesystem of type Filesystem.
	Format bool `json:"format,omitempty" toml:"format,omitempty"`
}

// Scheme is either FullDisk(Disk) or Custom(Partitions), selected by Kind.
type Scheme struct {
	Kind       Kind
	Disk       string
	Partitions map[string]Spec
}

// FullDisk returns a scheme that erases and uses the whole of disk.
func FullDisk(disk string) *Scheme {
	return &Scheme{Kind: KindFullDisk, Disk: disk}
}

// Custom returns a scheme built from user-selected partitions keyed by partition id.
func Custom(partitions map[string]Spec) *Scheme {
	return &Scheme{Kind: KindCustom, Partitions: partitions}
}

// Validate checks the scheme invariants.
func (s *Scheme) Validate() error {
	if s == nil {
		return ErrNoScheme
	}
	switch s.Kind {
	case KindFullDisk:
		if strings.TrimSpace(s.Disk) == "" {
			return fmt.Errorf(messages.PartitionDiskRequired)
		}
		return nil
	case KindCustom:
		roots := 0
		for _, id := range s.ids() {
			spec := s.Partitions[id]
			if strings.TrimSpace(spec.Device) == "" {
				return fmt.Errorf(messages.PartitionDeviceRequiredFmt, id)
			}
			if spec.Format && spec.Filesystem == "" {
				return fmt.Errorf(messages.PartitionFilesystemRequiredFmt, id)
			}
			if spec.Mountpoint != "" && !filepath.IsAbs(spec.Mountpoint) {
				return fmt.Errorf(messages.PartitionMountpointNotAbsFmt, id, spec.Mountpoint)
			}
			if spec.Mountpoint == RootMountpoint {
				roots++
			}
		}
		if roots > 1 {
			return ErrMultipleRoots
		}
		return nil
	}
	return fmt.Errorf(messages.PartitionUnknownKindFmt, s.Kind)
}

// BootDevice resolves the device a legacy bootloader is installed onto.
// The boolean is false when a custom scheme has no "/" partition.
func BootDevice(s *Scheme) (string, bool, error) {
	if s == nil {
		return "", false, ErrNoScheme
	}
	switch s.Kind {
	case KindFullDisk:
		return s.Disk, true, nil
	case KindCustom:
		for _, id := range s.ids() {
			if spec := s.Partitions[id]; spec.Mountpoint == RootMountpoint {
				return spec.Device, true, nil
			}
		}
		return "", false, nil
	}
	return "", false, fmt.Errorf(messages.PartitionUnknownKindFmt, s.Kind)
}

// MountEntry pairs a partition id with its spec for ordered mounting.
type MountEntry struct {
	ID string
	Spec
}

// MountOrder returns the custom partitions that have a mountpoint, ordered so
// that every parent directory is mounted before anything beneath it.
func (s *Scheme) MountOrder() []MountEntry {
	if s == nil || s.Kind != KindCustom {
		return nil
	}
	var entries []MountEntry
	for _, id := range s.ids() {
		if spec := s.Partitions[id]; spec.Mountpoint != "" {
			entries = append(entries, MountEntry{ID: id, Spec: spec})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := mountDepth(entries[i].Mountpoint), mountDepth(entries[j].Mountpoint)
		if di != dj {
			return di < dj
		}
		return entries[i].Mountpoint < entries[j].Mountpoint
	})
	return entries
}

func mountDepth(mountpoint string) int {
	clean := filepath.Clean(mountpoint)
	if clean == RootMountpoint {
		return 0
	}
	return strings.Count(clean, "/")
}

// ids returns the custom partition ids in sorted order.
func (s *Scheme) ids() []string {
	ids := make([]string, 0, len(s.Partitions))
	for id := range s.Partitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheme) String() string {
	if s == nil {
		return "<none>"
	}
	switch s.Kind {
	case KindFullDisk:
		return fmt.Sprintf("FullDisk(%s)", s.Disk)
	case KindCustom:
		parts := make([]string, 0, len(s.Partitions))
		for _, id := range s.ids() {
			spec := s.Partitions[id]
			mp := spec.Mountpoint
			if mp == "" {
				mp = "-"
			}
			parts = append(parts, fmt.Sprintf("%s=%s:%s", id, spec.Device, mp))
		}
		return fmt.Sprintf("Custom(%s)", strings.Join(parts, ","))
	}
	return s.Kind.String()
}
