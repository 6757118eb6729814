// Package request holds the user's install choices as handed from the
// front-end to the install orchestrator.
package request

import (
	"fmt"
	"strings"

	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/partition"
)

// DefaultHostname is used when no user has been configured.
const DefaultHostname = "nixos"

// ConfigType selects the layout of the generated configuration tree.
type ConfigType int

const (
	// Standard keeps configuration.nix and hardware-configuration.nix flat in /etc/nixos.
	Standard ConfigType = iota
	// Structured scopes hardware facts under systems/<arch>-linux/<hostname>.
	Structured
)

func (c ConfigType) String() string {
	switch c {
	case Standard:
		return "standard"
	case Structured:
		return "structured"
	}
	return fmt.Sprintf("ConfigType(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c ConfigType) MarshalText() ([]byte, error) {
	switch c {
	case Standard, Structured:
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf(messages.RequestUnknownConfigTypeFmt, c.String())
}

// UnmarshalText implements encoding.TextUnmarshaler. "snowfall" is accepted
// as an alias for the structured layout.
func (c *ConfigType) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "standard":
		*c = Standard
	case "structured", "snowfall":
		*c = Structured
	default:
		return fmt.Errorf(messages.RequestUnknownConfigTypeFmt, string(text))
	}
	return nil
}

// UserConfig is the account created on the installed system.
type UserConfig struct {
	Username     string `toml:"username"`
	FullName     string `toml:"full_name"`
	Hostname     string `toml:"hostname"`
	Password     string `toml:"password"`
	RootPassword string `toml:"root_password,omitempty"`
	Autologin    bool   `toml:"autologin"`
}

// String omits both passwords so a UserConfig is safe to log.
func (u UserConfig) String() string {
	root := "unset"
	if u.RootPassword != "" {
		root = "set"
	}
	return fmt.Sprintf("user=%s fullname=%q hostname=%s autologin=%t rootpassword=%s",
		u.Username, u.FullName, u.Hostname, u.Autologin, root)
}

// Choice is what one selected feature option contributes.
type Choice struct {
	Packages []string `toml:"packages,omitempty"`
	Config   string   `toml:"config,omitempty"`
}

// Option is a selected option within a feature group.
type Option struct {
	ID string `toml:"id"`
	Choice
}

// FeatureGroup lists the selected options of one group in selection order.
type FeatureGroup struct {
	ID      string   `toml:"id"`
	Options []Option `toml:"options"`
}

// InstallRequest is the complete input of one install run.
type InstallRequest struct {
	TemplateSet string
	Language    string
	Timezone    string
	Keyboard    string
	Partitions  *partition.Scheme
	User        *UserConfig
	Features    []FeatureGroup
	ConfigType  ConfigType
}

// Hostname returns the configured hostname or DefaultHostname.
func (r *InstallRequest) Hostname() string {
	if r.User != nil && r.User.Hostname != "" {
		return r.User.Hostname
	}
	return DefaultHostname
}

// Validate checks the request for problems that can be detected before any
// privileged step runs. A configured user needs a username and a password.
// A missing partition scheme, user or hostname is not an error here; the
// orchestrator reports those at the step that needs them.
func (r *InstallRequest) Validate(source string) error {
	if strings.TrimSpace(r.TemplateSet) == "" {
		return fmt.Errorf(messages.RequestTemplateSetRequiredFmt, source)
	}
	if strings.ContainsAny(r.TemplateSet, `/\`) || r.TemplateSet == "." || r.TemplateSet == ".." {
		return fmt.Errorf(messages.RequestTemplateSetInvalidFmt, source, r.TemplateSet)
	}
	if r.Partitions != nil {
		if err := r.Partitions.Validate(); err != nil {
			return fmt.Errorf(messages.RequestPartitionsInvalidFmt, source, err)
		}
	}
	if u := r.User; u != nil {
		if strings.TrimSpace(u.Username) == "" {
			return fmt.Errorf(messages.RequestUsernameRequiredFmt, source)
		}
		if strings.ContainsAny(u.Username, ":\n") {
			return fmt.Errorf(messages.RequestUsernameInvalidFmt, source, u.Username)
		}
		if u.Password == "" {
			return fmt.Errorf(messages.RequestPasswordRequiredFmt, source)
		}
		if strings.Contains(u.Password, "\n") || strings.Contains(u.RootPassword, "\n") {
			return fmt.Errorf(messages.RequestPasswordInvalidFmt, source)
		}
	}
	if strings.Count(r.Keyboard, "+") > 1 {
		return fmt.Errorf(messages.RequestKeyboardInvalidFmt, source, r.Keyboard)
	}
	seen := make(map[string]int, len(r.Features))
	for i, group := range r.Features {
		if group.ID == "" {
			return fmt.Errorf(messages.RequestFeatureIDRequiredFmt, source, i)
		}
		if first, ok := seen[group.ID]; ok {
			return fmt.Errorf(messages.RequestFeatureIDDuplicateFmt, source, i, group.ID, first)
		}
		seen[group.ID] = i
		for j, opt := range group.Options {
			if opt.ID == "" {
				return fmt.Errorf(messages.RequestOptionIDRequiredFmt, source, group.ID, j)
			}
		}
	}
	return nil
}
