package terminology

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Concept describes how a submitted measurement is coded downstream.
type Concept struct {
	Display string `yaml:"display" json:"display"`
	LOINC   string `yaml:"loinc" json:"loinc"`
	Unit    string `yaml:"unit" json:"unit"`
}

type Catalog struct {
	Concepts map[string]Concept `yaml:"concepts" json:"concepts"`
}

// Observation is a measurement annotated with its catalog coding.
type Observation struct {
	Field   string  `json:"field"`
	Display string  `json:"display"`
	LOINC   string  `json:"loinc,omitempty"`
	Unit    string  `json:"unit,omitempty"`
	Value   float64 `json:"value"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Concepts) == 0 {
		return Catalog{}, fmt.Errorf("terminology catalog empty")
	}
	normalized := make(map[string]Concept, len(cat.Concepts))
	for k, v := range cat.Concepts {
		normalized[strings.ToLower(k)] = v
	}
	cat.Concepts = normalized
	return cat, nil
}

func (c Catalog) Lookup(key string) (Concept, bool) {
	if c.Concepts == nil {
		return Concept{}, false
	}
	concept, ok := c.Concepts[strings.ToLower(key)]
	return concept, ok
}

// Annotate codes each present measurement in field order. Fields without a
// catalog entry keep their field name as display.
func (c Catalog) Annotate(fields []string, values map[string]*float64) []Observation {
	out := make([]Observation, 0, len(fields))
	for _, field := range fields {
		v := values[field]
		if v == nil {
			continue
		}
		obs := Observation{Field: field, Display: field, Value: *v}
		if concept, ok := c.Lookup(field); ok {
			obs.Display = concept.Display
			obs.LOINC = concept.LOINC
			obs.Unit = concept.Unit
		}
		out = append(out, obs)
	}
	return out
}

func DefaultCatalog() Catalog {
	return Catalog{Concepts: map[string]Concept{
		"serum_creatinine": {Display: "Creatinine [Mass/volume] in Serum or Plasma", LOINC: "2160-0", Unit: "mg/dL"},
		"gfr":              {Display: "Glomerular filtration rate/1.73 sq M.predicted", LOINC: "33914-3", Unit: "mL/min/1.73m2"},
		"bun":              {Display: "Urea nitrogen [Mass/volume] in Serum or Plasma", LOINC: "3094-0", Unit: "mg/dL"},
		"serum_calcium":    {Display: "Calcium [Mass/volume] in Serum or Plasma", LOINC: "17861-6", Unit: "mg/dL"},
		"blood_pressure":   {Display: "Systolic blood pressure", LOINC: "8480-6", Unit: "mm[Hg]"},
		"water_intake":     {Display: "Fluid intake oral", LOINC: "9000-1", Unit: "L/d"},
	}}
}
