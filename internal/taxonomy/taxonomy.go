// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomy holds the education-benchmark taxonomy: framework
// categories, tool types, and concern themes, each with a keyword set used
// by heuristic matching. A Taxonomy is immutable once built and is shared
// by reference across pipeline stages.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// Category is one leaf of the framework taxonomy.
type Category struct {
	ID          string   `yaml:"id" validate:"required"`
	Area        string   `yaml:"area" validate:"required"`
	Name        string   `yaml:"name" validate:"required"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// ToolType is an education-tool archetype.
type ToolType struct {
	ID          string   `yaml:"id" validate:"required"`
	Name        string   `yaml:"name" validate:"required"`
	Description string   `yaml:"description"`
	KeyNeeds    []string `yaml:"key_needs"`
	Keywords    []string `yaml:"keywords"`
}

// Concern is a learning-science risk theme used for concern grouping.
type Concern struct {
	ID          string   `yaml:"id" validate:"required"`
	Name        string   `yaml:"name" validate:"required"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords" validate:"min=1"`
}

// GroupInfo is the display information for a synthesis group.
type GroupInfo struct {
	Name        string
	Area        string
	Description string
}

// Taxonomy is an immutable lookup over categories, tool types, and concerns.
type Taxonomy struct {
	categories []Category
	toolTypes  []ToolType
	concerns   []Concern

	categoryIdx map[string]int
	toolTypeIdx map[string]int
	concernIdx  map[string]int
}

// file is the YAML layout accepted by Load.
type file struct {
	Categories []Category `yaml:"categories" validate:"min=1,dive"`
	ToolTypes  []ToolType `yaml:"tool_types" validate:"min=1,dive"`
	Concerns   []Concern  `yaml:"concerns" validate:"dive"`
}

var validate = validator.New()

// New builds a Taxonomy. IDs must be unique within each kind.
func New(categories []Category, toolTypes []ToolType, concerns []Concern) (*Taxonomy, error) {
	t := &Taxonomy{
		categories:  append([]Category(nil), categories...),
		toolTypes:   append([]ToolType(nil), toolTypes...),
		concerns:    append([]Concern(nil), concerns...),
		categoryIdx: make(map[string]int, len(categories)),
		toolTypeIdx: make(map[string]int, len(toolTypes)),
		concernIdx:  make(map[string]int, len(concerns)),
	}
	for i, c := range t.categories {
		if _, dup := t.categoryIdx[c.ID]; dup {
			return nil, eris.Errorf("duplicate category id %q", c.ID)
		}
		t.categoryIdx[c.ID] = i
	}
	for i, tt := range t.toolTypes {
		if _, dup := t.toolTypeIdx[tt.ID]; dup {
			return nil, eris.Errorf("duplicate tool type id %q", tt.ID)
		}
		t.toolTypeIdx[tt.ID] = i
	}
	for i, c := range t.concerns {
		if _, dup := t.concernIdx[c.ID]; dup {
			return nil, eris.Errorf("duplicate concern id %q", c.ID)
		}
		t.concernIdx[c.ID] = i
	}
	return t, nil
}

// Load reads a YAML taxonomy file. Concerns fall back to the built-in set
// when the file defines none.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading taxonomy %s", path)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "parsing taxonomy %s", path)
	}
	if err := validate.Struct(f); err != nil {
		return nil, eris.Wrapf(err, "validating taxonomy %s", path)
	}
	if len(f.Concerns) == 0 {
		f.Concerns = defaultConcerns
	}
	return New(f.Categories, f.ToolTypes, f.Concerns)
}

// Categories returns the categories in definition order.
func (t *Taxonomy) Categories() []Category { return t.categories }

// ToolTypes returns the tool types in definition order.
func (t *Taxonomy) ToolTypes() []ToolType { return t.toolTypes }

// Concerns returns the concern themes in definition order.
func (t *Taxonomy) Concerns() []Concern { return t.concerns }

// HasCategory reports whether id is a known category.
func (t *Taxonomy) HasCategory(id string) bool {
	_, ok := t.categoryIdx[id]
	return ok
}

// HasToolType reports whether id is a known tool type.
func (t *Taxonomy) HasToolType(id string) bool {
	_, ok := t.toolTypeIdx[id]
	return ok
}

// HasConcern reports whether id is a known concern.
func (t *Taxonomy) HasConcern(id string) bool {
	_, ok := t.concernIdx[id]
	return ok
}

// Category looks up a category by ID.
func (t *Taxonomy) Category(id string) (Category, bool) {
	i, ok := t.categoryIdx[id]
	if !ok {
		return Category{}, false
	}
	return t.categories[i], true
}

// ToolType looks up a tool type by ID.
func (t *Taxonomy) ToolType(id string) (ToolType, bool) {
	i, ok := t.toolTypeIdx[id]
	if !ok {
		return ToolType{}, false
	}
	return t.toolTypes[i], true
}

// Concern looks up a concern by ID.
func (t *Taxonomy) Concern(id string) (Concern, bool) {
	i, ok := t.concernIdx[id]
	if !ok {
		return Concern{}, false
	}
	return t.concerns[i], true
}

// FilterCategories drops unknown and repeated IDs, preserving order.
// The result is never nil.
func (t *Taxonomy) FilterCategories(ids []string) []string {
	return filter(ids, t.HasCategory)
}

// FilterToolTypes drops unknown and repeated IDs, preserving order.
// The result is never nil.
func (t *Taxonomy) FilterToolTypes(ids []string) []string {
	return filter(ids, t.HasToolType)
}

func filter(ids []string, known func(string) bool) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if !known(id) || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// DescribeCategories renders one "id -- name: description" line per category.
func (t *Taxonomy) DescribeCategories() string {
	lines := make([]string, len(t.categories))
	for i, c := range t.categories {
		lines[i] = fmt.Sprintf("  %s -- %s: %s", c.ID, c.Name, c.Description)
	}
	return strings.Join(lines, "\n")
}

// DescribeToolTypes renders one "id -- name: description" line per tool type.
func (t *Taxonomy) DescribeToolTypes() string {
	lines := make([]string, len(t.toolTypes))
	for i, tt := range t.toolTypes {
		lines[i] = fmt.Sprintf("  %s -- %s: %s", tt.ID, tt.Name, tt.Description)
	}
	return strings.Join(lines, "\n")
}

// Describe renders the full taxonomy for inclusion in LLM prompts.
func (t *Taxonomy) Describe() string {
	return "## Education Framework Categories\n" + t.DescribeCategories() +
		"\n\n## Education Tool Types\n" + t.DescribeToolTypes()
}

// Resolve returns display information for a synthesis group. Unknown IDs
// resolve to placeholder information rather than an error.
func (t *Taxonomy) Resolve(mode types.GroupMode, id string) GroupInfo {
	switch mode {
	case types.GroupConcern:
		if c, ok := t.Concern(id); ok {
			return GroupInfo{Name: c.Name, Area: "Concern / Risk Theme", Description: c.Description}
		}
		return GroupInfo{Name: id, Area: "Concern / Risk Theme", Description: fmt.Sprintf("Papers related to concern '%s'.", id)}
	case types.GroupToolType:
		if tt, ok := t.ToolType(id); ok {
			return GroupInfo{Name: tt.Name, Area: "Tool Type", Description: tt.Description}
		}
		return GroupInfo{Name: id, Area: "Tool Type", Description: fmt.Sprintf("Papers classified under tool type '%s'.", id)}
	default:
		if c, ok := t.Category(id); ok {
			return GroupInfo{Name: c.Name, Area: c.Area, Description: c.Description}
		}
		return GroupInfo{Name: id, Area: "Unknown", Description: "Uncategorized papers"}
	}
}
