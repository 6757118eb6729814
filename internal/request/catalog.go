package request

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/snowfallorg/icicle/internal/messages"
)

// CatalogFile is the name of the feature catalog inside a template set.
const CatalogFile = "catalog.toml"

// CatalogOption is one selectable option of a feature group.
type CatalogOption struct {
	ID       string   `toml:"id"`
	Title    string   `toml:"title"`
	Packages []string `toml:"packages,omitempty"`
	Config   string   `toml:"config,omitempty"`
	Default  bool     `toml:"default,omitempty"`
}

// CatalogGroup is a feature group offered by a template set. The group id is
// also the @<id>@ marker the renderer substitutes.
type CatalogGroup struct {
	ID       string          `toml:"id"`
	Title    string          `toml:"title"`
	Multiple bool            `toml:"multiple,omitempty"`
	Options  []CatalogOption `toml:"options"`
}

// Catalog lists the feature groups of a template set.
type Catalog struct {
	Groups []CatalogGroup `toml:"groups"`
}

// LoadCatalog reads <set>/catalog.toml from fsys. A template set without a
// catalog has no feature groups.
func LoadCatalog(fsys fs.FS, set string) (*Catalog, error) {
	name := path.Join(set, CatalogFile)
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return &Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf(messages.RequestReadFailedFmt, name, err)
	}
	var cat Catalog
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cat); err != nil {
		return nil, fmt.Errorf(messages.RequestInvalidFmt, name, err)
	}
	if err := cat.validate(name); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) validate(source string) error {
	groups := make(map[string]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		if g.ID == "" {
			return fmt.Errorf(messages.CatalogGroupIDRequiredFmt, source)
		}
		if _, dup := groups[g.ID]; dup {
			return fmt.Errorf(messages.CatalogGroupDuplicateFmt, source, g.ID)
		}
		groups[g.ID] = struct{}{}
		options := make(map[string]struct{}, len(g.Options))
		for _, o := range g.Options {
			if o.ID == "" {
				return fmt.Errorf(messages.CatalogOptionIDRequiredFmt, source, g.ID)
			}
			if _, dup := options[o.ID]; dup {
				return fmt.Errorf(messages.CatalogOptionDuplicateFmt, source, g.ID, o.ID)
			}
			options[o.ID] = struct{}{}
		}
	}
	return nil
}

// Group looks up a group by id.
func (c *Catalog) Group(id string) (CatalogGroup, bool) {
	for _, g := range c.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return CatalogGroup{}, false
}

// Select builds the FeatureGroup for the chosen options of a group, in the
// order the ids were chosen.
func (c *Catalog) Select(groupID string, optionIDs []string) (FeatureGroup, error) {
	g, ok := c.Group(groupID)
	if !ok {
		return FeatureGroup{}, fmt.Errorf(messages.CatalogUnknownGroupFmt, groupID)
	}
	if !g.Multiple && len(optionIDs) > 1 {
		return FeatureGroup{}, fmt.Errorf(messages.CatalogSingleChoiceFmt, groupID, len(optionIDs))
	}
	out := FeatureGroup{ID: groupID, Options: make([]Option, 0, len(optionIDs))}
	for _, id := range optionIDs {
		opt, ok := g.option(id)
		if !ok {
			return FeatureGroup{}, fmt.Errorf(messages.CatalogUnknownOptionFmt, groupID, id)
		}
		out.Options = append(out.Options, Option{
			ID:     opt.ID,
			Choice: Choice{Packages: append([]string(nil), opt.Packages...), Config: opt.Config},
		})
	}
	return out, nil
}

// Defaults returns the ids of the options marked default.
func (g CatalogGroup) Defaults() []string {
	var ids []string
	for _, o := range g.Options {
		if o.Default {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func (g CatalogGroup) option(id string) (CatalogOption, bool) {
	for _, o := range g.Options {
		if o.ID == id {
			return o, true
		}
	}
	return CatalogOption{}, false
}

// ListTemplateSets returns the template-set directories at the root of fsys.
func ListTemplateSets(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf(messages.RequestListTemplateSetsFmt, err)
	}
	var sets []string
	for _, e := range entries {
		if e.IsDir() {
			sets = append(sets, e.Name())
		}
	}
	sort.Strings(sets)
	return sets, nil
}
