package fuels

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// yamlProfile mirrors Profile for catalog override files. Seasonal
// multipliers are keyed by English month name.
type yamlProfile struct {
	Name           string             `yaml:"name"`
	CalorificValue float64            `yaml:"calorific_value_mj_kg"`
	Ash            float64            `yaml:"ash"`
	Moisture       float64            `yaml:"moisture"`
	CostPerGJ      float64            `yaml:"cost_per_gj"`
	CO2PerGJ       float64            `yaml:"co2_per_gj"`
	Handling       string             `yaml:"handling"`
	Availability   string             `yaml:"availability"`
	Seasonal       map[string]float64 `yaml:"seasonal,omitempty"`
}

type yamlCatalog struct {
	Fuels []yamlProfile `yaml:"fuels"`
}

// LoadYAML reads a catalog override file and builds a validated catalog
// from it. The file must define every fuel the plant burns, including
// the unlimited baseline.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fuels: read catalog file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML builds a catalog from raw YAML.
func ParseYAML(data []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fuels: parse catalog: %w", err)
	}

	profiles := make([]Profile, 0, len(doc.Fuels))
	for _, yp := range doc.Fuels {
		p := Profile{
			Name:           yp.Name,
			CalorificValue: yp.CalorificValue,
			Ash:            yp.Ash,
			Moisture:       yp.Moisture,
			CostPerGJ:      decimal.NewFromFloat(yp.CostPerGJ),
			CO2PerGJ:       yp.CO2PerGJ,
			Handling:       Handling(yp.Handling),
			Availability:   Availability(yp.Availability),
		}
		if len(yp.Seasonal) > 0 {
			p.Seasonal = make(map[time.Month]float64, len(yp.Seasonal))
			for name, f := range yp.Seasonal {
				m, err := parseMonth(name)
				if err != nil {
					return nil, fmt.Errorf("fuels: %s: %w", yp.Name, err)
				}
				p.Seasonal[m] = f
			}
		}
		profiles = append(profiles, p)
	}

	return New(profiles)
}

func parseMonth(name string) (time.Month, error) {
	t, err := time.Parse("January", name)
	if err != nil {
		return 0, fmt.Errorf("unknown month %q", name)
	}
	return t.Month(), nil
}
