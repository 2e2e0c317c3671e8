package stats

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brokera/leadmatch/internal/core/domain"
)

// Store answers market-average rent lookups per property type and region.
// An unknown or empty region falls back to the per-type country-wide row,
// so budget realism never silently depends on region detection succeeding.
type Store struct {
	averages map[marketKey]float64
	defaults map[domain.PropertyType]float64
}

type marketKey struct {
	propertyType domain.PropertyType
	region       domain.Region
}

type marketFile struct {
	Averages []struct {
		PropertyType string  `yaml:"property_type"`
		Region       string  `yaml:"region"`
		PricePerSqm  float64 `yaml:"price_per_sqm"`
	} `yaml:"averages"`
	Defaults map[string]float64 `yaml:"defaults"`
}

// Default returns the compiled-in table of monthly CZK/m² averages.
func Default() *Store {
	return &Store{
		averages: map[marketKey]float64{
			{domain.PropertyWarehouse, domain.RegionPraha}:         110,
			{domain.PropertyWarehouse, domain.RegionStredniCechy}:  95,
			{domain.PropertyWarehouse, domain.RegionJizniCechy}:    80,
			{domain.PropertyWarehouse, domain.RegionSeverniCechy}:  75,
			{domain.PropertyWarehouse, domain.RegionVychodniCechy}: 80,
			{domain.PropertyWarehouse, domain.RegionJizniMorava}:   95,
			{domain.PropertyWarehouse, domain.RegionSeverniMorava}: 85,
			{domain.PropertyWarehouse, domain.RegionSlovensko}:     70,

			{domain.PropertyOffice, domain.RegionPraha}:         320,
			{domain.PropertyOffice, domain.RegionStredniCechy}:  220,
			{domain.PropertyOffice, domain.RegionJizniCechy}:    180,
			{domain.PropertyOffice, domain.RegionSeverniCechy}:  160,
			{domain.PropertyOffice, domain.RegionVychodniCechy}: 180,
			{domain.PropertyOffice, domain.RegionJizniMorava}:   250,
			{domain.PropertyOffice, domain.RegionSeverniMorava}: 200,
			{domain.PropertyOffice, domain.RegionSlovensko}:     170,
		},
		defaults: map[domain.PropertyType]float64{
			domain.PropertyWarehouse: 85,
			domain.PropertyOffice:    200,
		},
	}
}

// LoadFile reads a YAML market table. Brokers refresh these figures
// quarterly, so the file overrides the compiled defaults completely.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read market averages: %w", err)
	}

	var file marketFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse market averages: %w", err)
	}

	store := &Store{
		averages: make(map[marketKey]float64, len(file.Averages)),
		defaults: make(map[domain.PropertyType]float64, len(file.Defaults)),
	}
	for i, row := range file.Averages {
		propertyType := domain.PropertyType(row.PropertyType)
		if propertyType != domain.PropertyWarehouse && propertyType != domain.PropertyOffice {
			return nil, fmt.Errorf("market averages row %d: unknown property type %q", i, row.PropertyType)
		}
		if row.PricePerSqm <= 0 {
			return nil, fmt.Errorf("market averages row %d: non-positive price %v", i, row.PricePerSqm)
		}
		region := domain.Region(row.Region)
		if region != domain.RegionUnknown && !region.IsKnown() {
			return nil, fmt.Errorf("market averages row %d: unknown region %q", i, row.Region)
		}
		store.averages[marketKey{propertyType, region}] = row.PricePerSqm
	}
	for name, price := range file.Defaults {
		propertyType := domain.PropertyType(name)
		if propertyType != domain.PropertyWarehouse && propertyType != domain.PropertyOffice {
			return nil, fmt.Errorf("market defaults: unknown property type %q", name)
		}
		store.defaults[propertyType] = price
	}
	return store, nil
}

func (s *Store) MarketAverage(propertyType domain.PropertyType, region domain.Region) (float64, bool) {
	if avg, ok := s.averages[marketKey{propertyType, region}]; ok {
		return avg, true
	}
	if avg, ok := s.defaults[propertyType]; ok {
		return avg, true
	}
	return 0, false
}
