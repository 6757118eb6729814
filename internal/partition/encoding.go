package partition

import (
	"encoding/json"
	"fmt"

	"github.com/snowfallorg/icicle/internal/messages"
)

// wireScheme is the externally tagged JSON form understood by icicle-helper:
// {"FullDisk":"/dev/sda"} or {"Custom":{"<id>":{...}}}.
type wireScheme struct {
	FullDisk *string         `json:"FullDisk,omitempty"`
	Custom   map[string]Spec `json:"Custom,omitempty"`
}

// MarshalJSON encodes the scheme in its tagged wire form.
func (s Scheme) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindFullDisk:
		disk := s.Disk
		return json.Marshal(wireScheme{FullDisk: &disk})
	case KindCustom:
		custom := s.Partitions
		if custom == nil {
			custom = map[string]Spec{}
		}
		return json.Marshal(map[string]map[string]Spec{"Custom": custom})
	}
	return nil, fmt.Errorf(messages.PartitionUnknownKindFmt, s.Kind)
}

// UnmarshalJSON decodes the tagged wire form.
func (s *Scheme) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf(messages.PartitionWireVariantCountFmt, len(raw))
	}
	if msg, ok := raw["FullDisk"]; ok {
		var disk string
		if err := json.Unmarshal(msg, &disk); err != nil {
			return fmt.Errorf(messages.PartitionWireDecodeFmt, "FullDisk", err)
		}
		*s = Scheme{Kind: KindFullDisk, Disk: disk}
		return nil
	}
	if msg, ok := raw["Custom"]; ok {
		var custom map[string]Spec
		if err := json.Unmarshal(msg, &custom); err != nil {
			return fmt.Errorf(messages.PartitionWireDecodeFmt, "Custom", err)
		}
		*s = Scheme{Kind: KindCustom, Partitions: custom}
		return nil
	}
	for key := range raw {
		return fmt.Errorf(messages.PartitionWireUnknownVariantFmt, key)
	}
	return nil
}

// File is the TOML shape of a scheme inside a request file:
//
//	[partitions]
//	full_disk = "/dev/sda"
//
// or one [partitions.custom.<id>] table per partition.
type File struct {
	FullDisk string          `toml:"full_disk,omitempty"`
	Custom   map[string]Spec `toml:"custom,omitempty"`
}

// Scheme converts the file form, rejecting files that set both or neither variant.
func (f *File) Scheme() (*Scheme, error) {
	if f == nil {
		return nil, nil
	}
	switch {
	case f.FullDisk != "" && len(f.Custom) > 0:
		return nil, fmt.Errorf(messages.PartitionFileBothVariants)
	case f.FullDisk != "":
		return FullDisk(f.FullDisk), nil
	case len(f.Custom) > 0:
		return Custom(f.Custom), nil
	}
	return nil, fmt.Errorf(messages.PartitionFileNoVariant)
}

// ToFile converts a scheme into its TOML file form.
func ToFile(s *Scheme) *File {
	if s == nil {
		return nil
	}
	if s.Kind == KindFullDisk {
		return &File{FullDisk: s.Disk}
	}
	return &File{Custom: s.Partitions}
}
