package classify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules maps source layers to the fclass values belonging to each category.
// The zero value classifies nothing; use DefaultRules or LoadRules.
type Rules struct {
	GreenSpace  map[string][]string `yaml:"green_space"`
	Residential map[string][]string `yaml:"residential"`
}

// DefaultRules returns the standard OSM classification: parks and recreation
// grounds plus forest, grass, and meadow count as green space; landuse
// residential counts as residential.
func DefaultRules() Rules {
	return Rules{
		GreenSpace: map[string][]string{
			"landuse": {"park", "recreation_ground"},
			"natural": {"forest", "grass", "meadow"},
		},
		Residential: map[string][]string{
			"landuse": {"residential"},
		},
	}
}

// LoadRules reads classification rules from a YAML file. An empty path
// returns DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "classify: read rules %s", path)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, eris.Wrapf(err, "classify: parse rules %s", path)
	}

	if len(rules.GreenSpace) == 0 && len(rules.Residential) == 0 {
		return Rules{}, eris.Errorf("classify: rules file %s defines no categories", path)
	}

	return rules, nil
}
