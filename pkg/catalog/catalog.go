// Package catalog holds the pricing tiers and supported signup countries,
// loaded from an embedded YAML file. Price ids must reference Paddle prices
// with a trial period configured, otherwise the billed transaction charges
// immediately instead of starting a trial.
package catalog

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed tiers.yaml
var defaultYAML []byte

// Tier is a purchasable plan shown on the pricing page.
type Tier struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	PriceID     string   `yaml:"price_id"`
	Features    []string `yaml:"features"`
	Featured    bool     `yaml:"featured"`
}

// Country is a selectable country in the signup form.
type Country struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Catalog is the full pricing configuration.
type Catalog struct {
	Tiers     []Tier    `yaml:"tiers"`
	Countries []Country `yaml:"countries"`
}

// Load parses a catalog from YAML.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Parse parses a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

func (c *Catalog) validate() error {
	if len(c.Tiers) == 0 {
		return fmt.Errorf("%w: no tiers defined", ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(c.Tiers))
	for _, tier := range c.Tiers {
		if tier.ID == "" || tier.PriceID == "" {
			return fmt.Errorf("%w: tier %q is missing an id or price id", ErrInvalidCatalog, tier.Name)
		}
		if _, ok := seen[tier.PriceID]; ok {
			return fmt.Errorf("%w: duplicate price id %s", ErrInvalidCatalog, tier.PriceID)
		}
		seen[tier.PriceID] = struct{}{}
	}
	if len(c.Countries) == 0 {
		return fmt.Errorf("%w: no countries defined", ErrInvalidCatalog)
	}
	return nil
}

// PriceIDs returns the price ids of all tiers, in catalog order.
func (c *Catalog) PriceIDs() []string {
	ids := make([]string, 0, len(c.Tiers))
	for _, tier := range c.Tiers {
		ids = append(ids, tier.PriceID)
	}
	return ids
}

// TierByPriceID finds the tier selling the given price.
func (c *Catalog) TierByPriceID(priceID string) (Tier, bool) {
	for _, tier := range c.Tiers {
		if tier.PriceID == priceID {
			return tier, true
		}
	}
	return Tier{}, false
}

// SupportsCountry reports whether signups from the country are accepted.
func (c *Catalog) SupportsCountry(code string) bool {
	for _, country := range c.Countries {
		if country.Code == code {
			return true
		}
	}
	return false
}

// CountryCodes returns the supported country codes, in catalog order.
func (c *Catalog) CountryCodes() []string {
	codes := make([]string, 0, len(c.Countries))
	for _, country := range c.Countries {
		codes = append(codes, country.Code)
	}
	return codes
}
