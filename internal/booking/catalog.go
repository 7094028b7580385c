package booking

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Package describes a sellable travel package.
type Package struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Destination   string   `json:"destination"`
	Duration      string   `json:"duration"`
	Price         string   `json:"price,omitempty"`
	Highlights    []string `json:"highlights,omitempty"`
	Accommodation string   `json:"accommodation,omitempty"`
	Meals         string   `json:"meals,omitempty"`
	Attractions   []string `json:"attractions,omitempty"`
}

// Label is the display form stored in BookingState, e.g. "Bali Explorer (P001)".
func (p Package) Label() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}

// LivePackage is the only package the extractors recognise.
var LivePackage = Package{
	ID:            "P001",
	Name:          "Bali Explorer",
	Destination:   "Bali, Indonesia",
	Duration:      "6 days / 5 nights",
	Highlights:    []string{"Ubud rice terraces", "Uluwatu temple sunset", "Nusa Penida day trip", "Balinese cooking class"},
	Accommodation: "4-star resorts in Ubud and Seminyak with daily breakfast",
	Meals:         "Daily breakfast, one traditional Balinese dinner and a cooking class lunch",
	Attractions:   []string{"Tegallalang Rice Terrace", "Tanah Lot", "Sacred Monkey Forest", "Mount Batur sunrise trek"},
}

// Catalog is the set of packages described to customers.
type Catalog struct {
	Packages []Package `json:"packages"`
}

// DefaultCatalog contains only LivePackage.
func DefaultCatalog() Catalog {
	return Catalog{Packages: []Package{LivePackage}}
}

// LoadCatalog reads a JSON catalog from path. An empty path yields the default catalog.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("booking: read catalog: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("booking: decode catalog: %w", err)
	}
	if len(catalog.Packages) == 0 {
		return Catalog{}, fmt.Errorf("booking: catalog %s has no packages", path)
	}
	return catalog, nil
}

// Find looks a package up by id, case-insensitively.
func (c Catalog) Find(id string) (Package, bool) {
	for _, p := range c.Packages {
		if strings.EqualFold(p.ID, id) {
			return p, true
		}
	}
	return Package{}, false
}

// Describe renders the catalog for prompt context.
func (c Catalog) Describe() string {
	var b strings.Builder
	for _, p := range c.Packages {
		fmt.Fprintf(&b, "- %s: %s, %s", p.Label(), p.Destination, p.Duration)
		if p.Price != "" {
			fmt.Fprintf(&b, ", from %s", p.Price)
		}
		if len(p.Highlights) > 0 {
			fmt.Fprintf(&b, ". Highlights: %s", strings.Join(p.Highlights, ", "))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
