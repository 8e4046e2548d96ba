// Package classify maps shapefile attribute values to analysis categories.
package classify

import (
	"strings"

	"github.com/verdantcity/greenspace-cli/internal/model"
)

// Classifier resolves (layer, fclass) pairs to a category.
type Classifier struct {
	lookup map[string]map[string]model.Category
}

// NewClassifier builds a Classifier from rules. Layer and fclass matching is
// case-insensitive.
func NewClassifier(rules Rules) *Classifier {
	c := &Classifier{lookup: make(map[string]map[string]model.Category)}
	c.add(rules.GreenSpace, model.CategoryGreenSpace)
	c.add(rules.Residential, model.CategoryResidential)
	return c
}

func (c *Classifier) add(byLayer map[string][]string, cat model.Category) {
	for layer, fclasses := range byLayer {
		layer = strings.ToLower(strings.TrimSpace(layer))
		m, ok := c.lookup[layer]
		if !ok {
			m = make(map[string]model.Category)
			c.lookup[layer] = m
		}
		for _, fc := range fclasses {
			m[strings.ToLower(strings.TrimSpace(fc))] = cat
		}
	}
}

// Classify returns the category for a feature, or false when the feature
// belongs to neither category and should be discarded.
func (c *Classifier) Classify(layer, fclass string) (model.Category, bool) {
	m, ok := c.lookup[strings.ToLower(strings.TrimSpace(layer))]
	if !ok {
		return "", false
	}
	cat, ok := m[strings.ToLower(strings.TrimSpace(fclass))]
	return cat, ok
}

// Layers returns the distinct source layers the rules reference.
func (c *Classifier) Layers() []string {
	layers := make([]string, 0, len(c.lookup))
	for layer := range c.lookup {
		layers = append(layers, layer)
	}
	return layers
}
