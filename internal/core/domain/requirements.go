package domain

import (
	"errors"
	"fmt"
)

type Urgency string

const (
	UrgencyUnspecified Urgency = ""
	UrgencyImmediate   Urgency = "immediate"
	Urgency1To3Months  Urgency = "1-3months"
	Urgency3To6Months  Urgency = "3-6months"
	UrgencyFlexible    Urgency = "flexible"
)

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyUnspecified, UrgencyImmediate, Urgency1To3Months, Urgency3To6Months, UrgencyFlexible:
		return true
	default:
		return false
	}
}

// Requirements is the structured lead intent consumed by the pipeline and
// the lead scorer. Zero values mean "unset" for the optional fields.
type Requirements struct {
	PropertyType       PropertyType `json:"property_type,omitempty"`
	MinAreaSqm         int          `json:"min_area_sqm,omitempty"`
	MaxAreaSqm         int          `json:"max_area_sqm,omitempty"`
	PreferredLocations []string     `json:"preferred_locations,omitempty"`
	PreferredRegions   []Region     `json:"preferred_regions,omitempty"`
	MaxPricePerSqm     int          `json:"max_price_per_sqm,omitempty"`
	Urgency            Urgency      `json:"urgency,omitempty"`

	// Contact presence flags, consumed only by the lead scorer.
	HasEmail   bool `json:"has_email,omitempty"`
	HasPhone   bool `json:"has_phone,omitempty"`
	HasCompany bool `json:"has_company,omitempty"`
	HasName    bool `json:"has_name,omitempty"`
}

func (r Requirements) HasAreaRange() bool {
	return r.MinAreaSqm > 0 || r.MaxAreaSqm > 0
}

func (r Requirements) HasLocationPreference() bool {
	return len(r.PreferredLocations) > 0 || len(r.PreferredRegions) > 0
}

// Validate checks the structural preconditions the core assumes. The
// pipeline itself never re-validates; boundaries call this once.
func (r Requirements) Validate() error {
	if r.PropertyType != "" && !r.PropertyType.IsValid() {
		return WrapError(ErrInvalidInput, "validate requirements",
			fmt.Errorf("unknown property type %q", r.PropertyType))
	}
	if r.MinAreaSqm < 0 || r.MaxAreaSqm < 0 {
		return WrapError(ErrInvalidInput, "validate requirements",
			errors.New("area bounds must not be negative"))
	}
	if r.MinAreaSqm > 0 && r.MaxAreaSqm > 0 && r.MinAreaSqm > r.MaxAreaSqm {
		return WrapError(ErrInvalidInput, "validate requirements",
			fmt.Errorf("min area %d exceeds max area %d", r.MinAreaSqm, r.MaxAreaSqm))
	}
	if r.MaxPricePerSqm < 0 {
		return WrapError(ErrInvalidInput, "validate requirements",
			errors.New("max price must not be negative"))
	}
	if !r.Urgency.IsValid() {
		return WrapError(ErrInvalidInput, "validate requirements",
			fmt.Errorf("unknown urgency %q", r.Urgency))
	}
	for _, region := range r.PreferredRegions {
		if !region.IsKnown() {
			return WrapError(ErrInvalidInput, "validate requirements",
				fmt.Errorf("unknown region %q", region))
		}
	}
	return nil
}
