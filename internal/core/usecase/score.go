package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brokera/leadmatch/internal/core/domain"
	"github.com/brokera/leadmatch/internal/core/ports"
	"github.com/brokera/leadmatch/internal/core/region"
)

// Completeness awards 6 points per specified requirement group.
const completenessPointsPerField = 6

// Realism sub-component points.
const (
	realismBudgetGenerous = 12
	realismBudgetSolid    = 8
	realismBudgetTight    = 4

	realismAreaStandard  = 8
	realismAreaMedium    = 6
	realismAreaLarge     = 4
	realismAreaVeryLarge = 2

	realismUrgencyHigh     = 10
	realismUrgencyMedium   = 6
	realismUrgencyFlexible = 4
)

// Match-quality points: per-criterion fit plus a mutually exclusive
// match-count bonus.
const (
	matchCriterionPoints  = 5
	matchCountBonusThree  = 5
	matchCountBonusTwo    = 3
)

// Engagement points per present contact field.
const (
	engagementEmail   = 6
	engagementPhone   = 4
	engagementCompany = 3
	engagementName    = 2
)

// LeadScoreUseCase resolves matched listing ids and applies the
// deterministic four-component scoring formula. Scored leads are persisted
// best-effort for broker follow-up.
type LeadScoreUseCase struct {
	listings ports.ListingRepository
	leads    ports.LeadRepository
	stats    ports.MarketStats
}

func NewLeadScoreUseCase(
	listings ports.ListingRepository,
	leads ports.LeadRepository,
	stats ports.MarketStats,
) *LeadScoreUseCase {
	return &LeadScoreUseCase{
		listings: listings,
		leads:    leads,
		stats:    stats,
	}
}

func (uc *LeadScoreUseCase) Score(
	ctx context.Context,
	req domain.Requirements,
	matchedIDs []int64,
) (*domain.ScoreResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var matched []domain.Listing
	if len(matchedIDs) > 0 {
		var err error
		matched, err = uc.listings.GetByIDs(ctx, matchedIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve matched listings: %w", err)
		}
	}

	breakdown := scoreLead(req, matched, uc.stats)
	result := &domain.ScoreResult{
		Total:      breakdown.Total(),
		Tier:       domain.TierForScore(breakdown.Total()),
		Breakdown:  breakdown,
		MatchedIDs: matchedIDs,
	}

	if uc.leads != nil {
		if _, err := uc.leads.SaveScoredLead(ctx, req, *result); err != nil {
			slog.Warn("scored_lead_persist_failed", "error", err)
		}
	}
	return result, nil
}

// scoreLead is the pure scoring formula. Each component respects its own
// maximum, so the total is bounded by 100 with no extra clamp.
func scoreLead(req domain.Requirements, matched []domain.Listing, stats ports.MarketStats) domain.ScoreBreakdown {
	return domain.ScoreBreakdown{
		Completeness: completenessScore(req),
		Realism:      realismScore(req, stats),
		MatchQuality: matchQualityScore(req, matched),
		Engagement:   engagementScore(req),
	}
}

func completenessScore(req domain.Requirements) int {
	score := 0
	for _, specified := range []bool{
		req.PropertyType != "",
		req.HasAreaRange(),
		req.HasLocationPreference(),
		req.MaxPricePerSqm > 0,
		req.Urgency != domain.UrgencyUnspecified,
	} {
		if specified {
			score += completenessPointsPerField
		}
	}
	return score
}

func realismScore(req domain.Requirements, stats ports.MarketStats) int {
	score := budgetRealism(req, stats)
	score += areaRealism(req)
	score += urgencyRealism(req.Urgency)
	return score
}

// budgetRealism compares the budget against the market average for the
// requested type and region. An unavailable market figure degrades to 0.
func budgetRealism(req domain.Requirements, stats ports.MarketStats) int {
	if req.MaxPricePerSqm <= 0 || req.PropertyType == "" || stats == nil {
		return 0
	}

	avg, ok := stats.MarketAverage(req.PropertyType, leadRegion(req))
	if !ok || avg <= 0 {
		return 0
	}

	budget := float64(req.MaxPricePerSqm)
	switch {
	case budget >= avg*0.9:
		return realismBudgetGenerous
	case budget >= avg*0.7:
		return realismBudgetSolid
	case budget >= avg*0.5:
		return realismBudgetTight
	default:
		return 0
	}
}

// areaRealism buckets the requested size; boundaries are inclusive. Scoring
// uses the max bound, falling back to the min bound when no max is given.
func areaRealism(req domain.Requirements) int {
	if !req.HasAreaRange() {
		return 0
	}
	basis := req.MaxAreaSqm
	if basis <= 0 {
		basis = req.MinAreaSqm
	}
	switch {
	case basis <= 500:
		return realismAreaStandard
	case basis <= 1000:
		return realismAreaMedium
	case basis <= 2000:
		return realismAreaLarge
	default:
		return realismAreaVeryLarge
	}
}

func urgencyRealism(urgency domain.Urgency) int {
	switch urgency {
	case domain.UrgencyImmediate, domain.Urgency1To3Months:
		return realismUrgencyHigh
	case domain.Urgency3To6Months:
		return realismUrgencyMedium
	case domain.UrgencyFlexible:
		return realismUrgencyFlexible
	default:
		return 0
	}
}

// matchQualityScore awards each criterion independently across the matched
// set: any matched listing satisfying a criterion earns its points. The
// match-count bonus tiers are mutually exclusive.
func matchQualityScore(req domain.Requirements, matched []domain.Listing) int {
	if len(matched) == 0 {
		return 0
	}

	score := 0
	for _, satisfied := range []bool{
		anyListing(matched, func(l domain.Listing) bool {
			return req.PropertyType == "" || l.PropertyType == req.PropertyType
		}),
		anyListing(matched, func(l domain.Listing) bool {
			return !req.HasAreaRange() ||
				((req.MinAreaSqm <= 0 || l.AreaSqm >= req.MinAreaSqm) &&
					(req.MaxAreaSqm <= 0 || l.AreaSqm <= req.MaxAreaSqm))
		}),
		anyListing(matched, func(l domain.Listing) bool {
			return req.MaxPricePerSqm <= 0 || l.PricePerSqm <= req.MaxPricePerSqm
		}),
		anyListing(matched, func(l domain.Listing) bool {
			return !req.HasLocationPreference() || matchesLocation(l, req)
		}),
	} {
		if satisfied {
			score += matchCriterionPoints
		}
	}

	switch {
	case len(matched) >= 3:
		score += matchCountBonusThree
	case len(matched) == 2:
		score += matchCountBonusTwo
	}
	return score
}

func engagementScore(req domain.Requirements) int {
	score := 0
	if req.HasEmail {
		score += engagementEmail
	}
	if req.HasPhone {
		score += engagementPhone
	}
	if req.HasCompany {
		score += engagementCompany
	}
	if req.HasName {
		score += engagementName
	}
	return score
}

// leadRegion picks the region for the market-average lookup: declared
// preferred regions first, then whatever is detectable from the preferred
// locations. Unknown is valid; the stats collaborator decides its fallback.
func leadRegion(req domain.Requirements) domain.Region {
	if len(req.PreferredRegions) > 0 {
		return req.PreferredRegions[0]
	}
	return region.FromLocations(req.PreferredLocations)
}

func anyListing(listings []domain.Listing, predicate func(domain.Listing) bool) bool {
	for _, listing := range listings {
		if predicate(listing) {
			return true
		}
	}
	return false
}
