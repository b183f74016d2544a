// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

func TestDefault(t *testing.T) {
	tax := Default()
	assert.Len(t, tax.Categories(), 11)
	assert.Len(t, tax.ToolTypes(), 3)
	assert.Len(t, tax.Concerns(), 5)

	for _, id := range []string{"1", "2.1", "2.2", "2.3", "3.1", "3.2", "4.1", "4.2", "5", "6.1", "6.2"} {
		assert.True(t, tax.HasCategory(id), id)
	}
	assert.True(t, tax.HasToolType("pal"))
	assert.True(t, tax.HasConcern("metacognition"))
	assert.False(t, tax.HasCategory("7"))
}

func TestDefaultKeywordsAreLowercase(t *testing.T) {
	tax := Default()
	check := func(owner string, kws []string) {
		for _, kw := range kws {
			assert.Equal(t, strings.ToLower(kw), kw, "%s keyword %q", owner, kw)
		}
	}
	for _, c := range tax.Categories() {
		check(c.ID, c.Keywords)
	}
	for _, tt := range tax.ToolTypes() {
		check(tt.ID, tt.Keywords)
	}
	for _, c := range tax.Concerns() {
		check(c.ID, c.Keywords)
	}
}

func TestFilter(t *testing.T) {
	tax := Default()
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"all known", []string{"2.3", "1"}, []string{"2.3", "1"}},
		{"unknown dropped", []string{"9.9", "3.1", "bogus"}, []string{"3.1"}},
		{"duplicates dropped", []string{"5", "5", " 5 "}, []string{"5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tax.FilterCategories(tt.in))
		})
	}
	assert.Equal(t, []string{"ai_tutor"}, tax.FilterToolTypes([]string{"robot", "ai_tutor"}))
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Category{{ID: "1", Area: "a", Name: "n"}, {ID: "1", Area: "b", Name: "m"}}, nil, nil)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	tax := Default()
	tests := []struct {
		mode     types.GroupMode
		id       string
		wantName string
		wantArea string
	}{
		{types.GroupFramework, "2.3", "Pedagogical interactions", "Pedagogy"},
		{types.GroupFramework, "uncategorized", "uncategorized", "Unknown"},
		{types.GroupToolType, "pal", "Personalised Adaptive Learning", "Tool Type"},
		{types.GroupToolType, "robot", "robot", "Tool Type"},
		{types.GroupConcern, "equity_access", "Equity & Access", "Concern / Risk Theme"},
	}
	for _, tt := range tests {
		info := tax.Resolve(tt.mode, tt.id)
		assert.Equal(t, tt.wantName, info.Name)
		assert.Equal(t, tt.wantArea, info.Area)
	}
	assert.Equal(t, "Uncategorized papers", tax.Resolve(types.GroupFramework, "zz").Description)
}

func TestDescribe(t *testing.T) {
	d := Default().Describe()
	assert.Contains(t, d, "## Education Framework Categories")
	assert.Contains(t, d, "  2.3 -- Pedagogical interactions: ")
	assert.Contains(t, d, "  teacher_support -- Teacher Support Tools: ")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	content := `categories:
  - id: "A"
    area: Area A
    name: Alpha
    keywords: [alpha, "alpha beta"]
tool_types:
  - id: bot
    name: Bot
    keywords: [bot]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tax, err := Load(path)
	require.NoError(t, err)
	assert.True(t, tax.HasCategory("A"))
	assert.False(t, tax.HasCategory("1"))
	assert.True(t, tax.HasToolType("bot"))
	assert.Len(t, tax.Concerns(), len(defaultConcerns), "concerns fall back to the built-in set")
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - id: A\ntool_types: []\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
