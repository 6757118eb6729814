package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/partition"
)

// ErrRequestValidation wraps request validation failures, as opposed to
// filesystem or TOML syntax errors.
var ErrRequestValidation = errors.New("request validation failed")

// file is the on-disk TOML layout of an InstallRequest.
type file struct {
	TemplateSet string          `toml:"template_set"`
	Language    string          `toml:"language,omitempty"`
	Timezone    string          `toml:"timezone,omitempty"`
	Keyboard    string          `toml:"keyboard,omitempty"`
	ConfigType  ConfigType      `toml:"config_type,omitempty"`
	Partitions  *partition.File `toml:"partitions,omitempty"`
	User        *UserConfig     `toml:"user,omitempty"`
	Features    []FeatureGroup  `toml:"features,omitempty"`
}

// Load reads and validates a request file.
func Load(path string) (*InstallRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.RequestReadFailedFmt, path, err)
	}
	return Parse(data, path)
}

// Parse decodes request TOML strictly and validates it. source is used in
// error messages.
func Parse(data []byte, source string) (*InstallRequest, error) {
	var f file
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf(messages.RequestInvalidFmt, source, err)
	}
	scheme, err := f.Partitions.Scheme()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestValidation, source, err)
	}
	req := &InstallRequest{
		TemplateSet: f.TemplateSet,
		Language:    f.Language,
		Timezone:    f.Timezone,
		Keyboard:    f.Keyboard,
		Partitions:  scheme,
		User:        f.User,
		Features:    f.Features,
		ConfigType:  f.ConfigType,
	}
	if err := req.Validate(source); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestValidation, err)
	}
	return req, nil
}

// Save writes req as request TOML.
func Save(w io.Writer, req *InstallRequest) error {
	f := file{
		TemplateSet: req.TemplateSet,
		Language:    req.Language,
		Timezone:    req.Timezone,
		Keyboard:    req.Keyboard,
		ConfigType:  req.ConfigType,
		Partitions:  partition.ToFile(req.Partitions),
		User:        req.User,
		Features:    req.Features,
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf(messages.RequestEncodeFailedFmt, err)
	}
	return nil
}
