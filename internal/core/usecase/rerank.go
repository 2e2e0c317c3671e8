package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/brokera/leadmatch/internal/core/domain"
	"github.com/brokera/leadmatch/internal/core/ports"
	"github.com/brokera/leadmatch/internal/core/region"
)

// Relevance factor weights. They sum to 1, keeping base relevance in [0,1].
const (
	weightTypeMatch    = 0.25
	weightLocationFit  = 0.25
	weightSizeAdequacy = 0.20
	weightPriceFit     = 0.20
	weightAvailability = 0.10
)

// Business bonuses, additive after weighting. Final scores are unbounded
// above; a bonus only moves a listing up, never caps another.
const (
	bonusHot        = 0.5
	bonusFeatured   = 0.5
	bonusExactMatch = 1.0
)

// An external judge may nudge base relevance by at most this much in
// either direction; the deterministic factor path always dominates.
const maxJudgeAdjustment = 0.1

const locationFamilyCredit = 0.5

const availabilityLaterCredit = 0.3

// rerankCandidates computes the weighted relevance and business bonuses
// for each filtered candidate and returns the final ordering: score
// descending, ties by priority score descending, then listing id
// ascending.
func rerankCandidates(
	ctx context.Context,
	query string,
	candidates []domain.FusedResult,
	req domain.Requirements,
	judge ports.RelevanceJudge,
) []domain.RankedResult {
	out := make([]domain.RankedResult, 0, len(candidates))
	for _, candidate := range candidates {
		factors := relevanceFactors(candidate.Listing, req)
		base := baseRelevance(factors)
		base = clip01(base + judgeAdjustment(ctx, query, candidate.Listing, req, judge))
		bonus := businessBonus(candidate.Listing, req)

		out = append(out, domain.RankedResult{
			Listing:       candidate.Listing,
			FusedScore:    candidate.FusedScore,
			Factors:       factors,
			BaseRelevance: base,
			Bonus:         bonus,
			FinalScore:    base + bonus,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		if out[i].Listing.PriorityScore != out[j].Listing.PriorityScore {
			return out[i].Listing.PriorityScore > out[j].Listing.PriorityScore
		}
		return out[i].Listing.ID < out[j].Listing.ID
	})

	return out
}

// relevanceFactors scores each factor in [0,1]. An unset requirement is
// vacuously satisfied and earns full credit, mirroring the filter's skip
// semantics.
func relevanceFactors(listing domain.Listing, req domain.Requirements) domain.RelevanceFactors {
	return domain.RelevanceFactors{
		TypeMatch:    typeMatchFactor(listing, req),
		LocationFit:  locationFitFactor(listing, req),
		SizeAdequacy: sizeAdequacyFactor(listing, req),
		PriceFit:     priceFitFactor(listing, req),
		Availability: availabilityFactor(listing),
	}
}

func baseRelevance(f domain.RelevanceFactors) float64 {
	return weightTypeMatch*f.TypeMatch +
		weightLocationFit*f.LocationFit +
		weightSizeAdequacy*f.SizeAdequacy +
		weightPriceFit*f.PriceFit +
		weightAvailability*f.Availability
}

func typeMatchFactor(listing domain.Listing, req domain.Requirements) float64 {
	if req.PropertyType == "" {
		return 1
	}
	if listing.PropertyType == req.PropertyType {
		return 1
	}
	return 0
}

func locationFitFactor(listing domain.Listing, req domain.Requirements) float64 {
	if !req.HasLocationPreference() {
		return 1
	}
	if matchesLocation(listing, req) {
		return 1
	}
	family := listing.Region.Family()
	if family == domain.FamilyUnknown {
		return 0
	}
	for _, preferred := range preferredFamilies(req) {
		if family == preferred {
			return locationFamilyCredit
		}
	}
	return 0
}

func preferredFamilies(req domain.Requirements) []domain.AreaFamily {
	var out []domain.AreaFamily
	add := func(f domain.AreaFamily) {
		if f == domain.FamilyUnknown {
			return
		}
		for _, existing := range out {
			if existing == f {
				return
			}
		}
		out = append(out, f)
	}
	for _, r := range req.PreferredRegions {
		add(r.Family())
	}
	for _, location := range req.PreferredLocations {
		add(region.Detect(location).Family())
	}
	return out
}

// sizeAdequacyFactor is 1 inside the requested range and decays linearly
// to 0 at 50% outside it.
func sizeAdequacyFactor(listing domain.Listing, req domain.Requirements) float64 {
	if !req.HasAreaRange() {
		return 1
	}
	area := float64(listing.AreaSqm)
	if req.MinAreaSqm > 0 && listing.AreaSqm < req.MinAreaSqm {
		deficit := (float64(req.MinAreaSqm) - area) / float64(req.MinAreaSqm)
		return clip01(1 - deficit/0.5)
	}
	if req.MaxAreaSqm > 0 && listing.AreaSqm > req.MaxAreaSqm {
		excess := (area - float64(req.MaxAreaSqm)) / float64(req.MaxAreaSqm)
		return clip01(1 - excess/0.5)
	}
	return 1
}

// priceFitFactor is 1 at or under budget and decays linearly to 0 at 50%
// over it.
func priceFitFactor(listing domain.Listing, req domain.Requirements) float64 {
	if req.MaxPricePerSqm <= 0 {
		return 1
	}
	if listing.PricePerSqm <= req.MaxPricePerSqm {
		return 1
	}
	over := (float64(listing.PricePerSqm) - float64(req.MaxPricePerSqm)) / float64(req.MaxPricePerSqm)
	return clip01(1 - over/0.5)
}

func availabilityFactor(listing domain.Listing) float64 {
	if listing.IsAvailableNow() {
		return 1
	}
	return availabilityLaterCredit
}

func businessBonus(listing domain.Listing, req domain.Requirements) float64 {
	bonus := 0.0
	if listing.IsHot {
		bonus += bonusHot
	}
	if listing.IsFeatured {
		bonus += bonusFeatured
	}
	if isExactMatch(listing, req) {
		bonus += bonusExactMatch
	}
	return bonus
}

// isExactMatch requires all four of type, location, area range and price to
// be constrained by the requirements and exactly satisfied by the listing.
func isExactMatch(listing domain.Listing, req domain.Requirements) bool {
	if req.PropertyType == "" || !req.HasLocationPreference() || !req.HasAreaRange() || req.MaxPricePerSqm <= 0 {
		return false
	}
	if listing.PropertyType != req.PropertyType {
		return false
	}
	if !matchesLocation(listing, req) {
		return false
	}
	if req.MinAreaSqm > 0 && listing.AreaSqm < req.MinAreaSqm {
		return false
	}
	if req.MaxAreaSqm > 0 && listing.AreaSqm > req.MaxAreaSqm {
		return false
	}
	return listing.PricePerSqm <= req.MaxPricePerSqm
}

// judgeAdjustment consults the optional external judge. Any failure
// degrades to zero adjustment; the judge can nudge, never veto.
func judgeAdjustment(
	ctx context.Context,
	query string,
	listing domain.Listing,
	req domain.Requirements,
	judge ports.RelevanceJudge,
) float64 {
	if judge == nil {
		return 0
	}
	adjustment, err := judge.Judge(ctx, query, listing, req)
	if err != nil {
		slog.Warn("relevance_judge_degraded", "listing_id", listing.ID, "error", err)
		return 0
	}
	if adjustment > maxJudgeAdjustment {
		return maxJudgeAdjustment
	}
	if adjustment < -maxJudgeAdjustment {
		return -maxJudgeAdjustment
	}
	return adjustment
}
