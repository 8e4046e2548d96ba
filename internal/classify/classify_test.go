package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantcity/greenspace-cli/internal/model"
)

func TestClassify_Defaults(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		name     string
		layer    string
		fclass   string
		expected model.Category
		ok       bool
	}{
		{name: "park is green space", layer: "landuse", fclass: "park", expected: model.CategoryGreenSpace, ok: true},
		{name: "recreation ground is green space", layer: "landuse", fclass: "recreation_ground", expected: model.CategoryGreenSpace, ok: true},
		{name: "forest is green space", layer: "natural", fclass: "forest", expected: model.CategoryGreenSpace, ok: true},
		{name: "grass is green space", layer: "natural", fclass: "grass", expected: model.CategoryGreenSpace, ok: true},
		{name: "meadow is green space", layer: "natural", fclass: "meadow", expected: model.CategoryGreenSpace, ok: true},
		{name: "residential landuse", layer: "landuse", fclass: "residential", expected: model.CategoryResidential, ok: true},
		{name: "industrial is discarded", layer: "landuse", fclass: "industrial", ok: false},
		{name: "water is discarded", layer: "natural", fclass: "water", ok: false},
		{name: "unknown layer is discarded", layer: "buildings", fclass: "park", ok: false},
		{name: "matching is case-insensitive", layer: "LANDUSE", fclass: "Park", expected: model.CategoryGreenSpace, ok: true},
		{name: "padded values match", layer: " landuse ", fclass: " park ", expected: model.CategoryGreenSpace, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, ok := c.Classify(tt.layer, tt.fclass)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, cat)
			}
		})
	}
}

func TestClassifier_Layers(t *testing.T) {
	c := NewClassifier(DefaultRules())
	assert.ElementsMatch(t, []string{"landuse", "natural"}, c.Layers())
}

func TestLoadRules_EmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
green_space:
  landuse: [park, cemetery]
residential:
  landuse: [residential, retirement]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	c := NewClassifier(rules)

	cat, ok := c.Classify("landuse", "cemetery")
	require.True(t, ok)
	assert.Equal(t, model.CategoryGreenSpace, cat)

	cat, ok = c.Classify("landuse", "retirement")
	require.True(t, ok)
	assert.Equal(t, model.CategoryResidential, cat)

	// Defaults no longer apply once custom rules are loaded.
	_, ok = c.Classify("natural", "forest")
	assert.False(t, ok)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRules_EmptyRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}
