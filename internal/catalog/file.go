package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// fileDefinition is the YAML shape of a catalog extension file.
type fileDefinition struct {
	// Materials maps extra keywords to material names, e.g. BAMBOO: Bamboo.
	Materials map[string]string `yaml:"materials"`
	// Overrides pin exact line-item names to a classification.
	Overrides []overrideDefinition `yaml:"overrides"`
}

type overrideDefinition struct {
	Item     string `yaml:"item"`
	Material string `yaml:"material"`
	Size     string `yaml:"size"`
	Bundle   bool   `yaml:"bundle"`
}

func (d overrideDefinition) validate() error {
	if strings.TrimSpace(d.Item) == "" {
		return fmt.Errorf("catalog: override with empty item name")
	}
	if d.Size != "" && !validBand(model.SizeBand(d.Size)) {
		return fmt.Errorf("catalog: override %q: unknown size band %q", d.Item, d.Size)
	}
	return nil
}

func validBand(b model.SizeBand) bool {
	for _, band := range model.AllSizeBands() {
		if b == band {
			return true
		}
	}
	return false
}

// ParseFile decodes and validates a catalog extension payload.
func ParseFile(data []byte) (*fileDefinition, error) {
	var def fileDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("catalog: decode extension file: %w", err)
	}
	for _, o := range def.Overrides {
		if err := o.validate(); err != nil {
			return nil, err
		}
	}
	return &def, nil
}

// LoadFile merges a YAML extension file into the catalog. A missing path is
// an error; callers skip the call when no file is configured.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", path, err)
	}

	def, err := ParseFile(data)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", path, err)
	}

	for keyword, material := range def.Materials {
		c.AddMaterialKeyword(keyword, model.Material(material))
	}
	for _, o := range def.Overrides {
		product := model.Product{
			Material: model.Material(o.Material),
			Size:     model.SizeBand(o.Size),
			Bundle:   o.Bundle,
		}
		if o.Material == "" {
			product.Material = model.MaterialUnknown
		}
		if o.Size == "" {
			product.Size = model.SizeUnknown
		}
		c.AddOverride(o.Item, product)
	}

	return nil
}
