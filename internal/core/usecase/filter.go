package usecase

import (
	"strings"

	"github.com/brokera/leadmatch/internal/core/domain"
)

// filterCandidates applies the hard structural constraints. Availability is
// deliberately not filtered here; it only enters the reranker's
// availability factor. Zero survivors is a valid outcome.
func filterCandidates(candidates []domain.FusedResult, req domain.Requirements) []domain.FusedResult {
	out := make([]domain.FusedResult, 0, len(candidates))
	for _, candidate := range candidates {
		if matchesRequirements(candidate.Listing, req) {
			out = append(out, candidate)
		}
	}
	return out
}

func matchesRequirements(listing domain.Listing, req domain.Requirements) bool {
	if req.PropertyType != "" && listing.PropertyType != req.PropertyType {
		return false
	}
	if req.HasLocationPreference() && !matchesLocation(listing, req) {
		return false
	}
	if req.MinAreaSqm > 0 && listing.AreaSqm < req.MinAreaSqm {
		return false
	}
	if req.MaxAreaSqm > 0 && listing.AreaSqm > req.MaxAreaSqm {
		return false
	}
	if req.MaxPricePerSqm > 0 && listing.PricePerSqm > req.MaxPricePerSqm {
		return false
	}
	return true
}

// matchesLocation passes when the listing region is one of the preferred
// regions, or any preferred location is a substring of the listing
// location.
func matchesLocation(listing domain.Listing, req domain.Requirements) bool {
	for _, preferred := range req.PreferredRegions {
		if listing.Region == preferred {
			return true
		}
	}
	location := strings.ToLower(listing.Location)
	for _, preferred := range req.PreferredLocations {
		needle := strings.ToLower(strings.TrimSpace(preferred))
		if needle != "" && strings.Contains(location, needle) {
			return true
		}
	}
	return false
}
