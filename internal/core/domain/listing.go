package domain

import (
	"fmt"
	"strings"
)

type PropertyType string

const (
	PropertyWarehouse PropertyType = "warehouse"
	PropertyOffice    PropertyType = "office"
)

func (t PropertyType) IsValid() bool {
	return t == PropertyWarehouse || t == PropertyOffice
}

// CzechName returns the Czech term used in listing texts and queries.
func (t PropertyType) CzechName() string {
	if t == PropertyWarehouse {
		return "sklad"
	}
	return "kancelář"
}

// AvailabilityImmediate marks a listing that can be occupied right away.
// Any other availability value is an ISO date (YYYY-MM-DD).
const AvailabilityImmediate = "immediate"

// Listing is an immutable catalog record for one commercial property.
type Listing struct {
	ID            int64        `json:"id"`
	PropertyType  PropertyType `json:"property_type"`
	Location      string       `json:"location"`
	Region        Region       `json:"region"`
	AreaSqm       int          `json:"area_sqm"`
	PricePerSqm   int          `json:"price_per_sqm"`
	Availability  string       `json:"availability"`
	IsFeatured    bool         `json:"is_featured"`
	IsHot         bool         `json:"is_hot"`
	PriorityScore int          `json:"priority_score"`
	Amenities     []string     `json:"amenities"`
	Description   string       `json:"description,omitempty"`
}

// MonthlyRent is derived on read, never stored.
func (l Listing) MonthlyRent() int {
	return l.AreaSqm * l.PricePerSqm
}

func (l Listing) IsAvailableNow() bool {
	return strings.EqualFold(strings.TrimSpace(l.Availability), AvailabilityImmediate)
}

// SearchText renders the listing into the Czech-aware text that is embedded
// and lexically indexed. Czech type synonyms and availability terms are
// appended so colloquial queries hit without expansion.
func (l Listing) SearchText() string {
	parts := []string{
		string(l.PropertyType),
		l.PropertyType.CzechName(),
		l.Location,
		l.Region.DisplayName(),
		l.Description,
		fmt.Sprintf("%d m² metrů čtverečních", l.AreaSqm),
		fmt.Sprintf("%d korun kč cena", l.PricePerSqm),
	}
	parts = append(parts, l.Amenities...)
	if l.IsAvailableNow() {
		parts = append(parts, "ihned dostupné volné")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.ToLower(strings.Join(out, " "))
}
