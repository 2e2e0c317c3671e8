package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/brokera/leadmatch/internal/core/domain"
)

type stubJudge struct {
	adjustment float64
	err        error
}

func (j stubJudge) Judge(_ context.Context, _ string, _ domain.Listing, _ domain.Requirements) (float64, error) {
	return j.adjustment, j.err
}

func pragueWarehouse(id int64) domain.Listing {
	return domain.Listing{
		ID:           id,
		PropertyType: domain.PropertyWarehouse,
		Location:     "Praha 5",
		Region:       domain.RegionPraha,
		AreaSqm:      700,
		PricePerSqm:  100,
		Availability: domain.AvailabilityImmediate,
	}
}

func strictRequirements() domain.Requirements {
	return domain.Requirements{
		PropertyType:     domain.PropertyWarehouse,
		MinAreaSqm:       600,
		MaxAreaSqm:       800,
		PreferredRegions: []domain.Region{domain.RegionPraha},
		MaxPricePerSqm:   110,
	}
}

func TestRelevanceFactorsFullMatch(t *testing.T) {
	factors := relevanceFactors(pragueWarehouse(1), strictRequirements())
	if factors.TypeMatch != 1 || factors.LocationFit != 1 || factors.SizeAdequacy != 1 ||
		factors.PriceFit != 1 || factors.Availability != 1 {
		t.Fatalf("expected all factors 1, got %+v", factors)
	}
	if got := baseRelevance(factors); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected base relevance 1.0, got %.4f", got)
	}
}

func TestLocationFitFamilyPartialCredit(t *testing.T) {
	listing := pragueWarehouse(1)
	listing.Region = domain.RegionStredniCechy
	listing.Location = "Kladno"

	factors := relevanceFactors(listing, strictRequirements())
	if factors.LocationFit != 0.5 {
		t.Fatalf("expected family partial credit 0.5, got %.2f", factors.LocationFit)
	}

	listing.Region = domain.RegionJizniMorava
	listing.Location = "Brno"
	factors = relevanceFactors(listing, strictRequirements())
	if factors.LocationFit != 0 {
		t.Fatalf("expected 0 for different family, got %.2f", factors.LocationFit)
	}
}

func TestSizeAdequacyLinearDecay(t *testing.T) {
	req := domain.Requirements{MinAreaSqm: 600, MaxAreaSqm: 800}

	cases := []struct {
		area int
		want float64
	}{
		{700, 1.0},
		{800, 1.0},
		{1000, 0.5},  // 25% over max
		{1200, 0.0},  // 50% over max
		{1300, 0.0},  // past the decay floor
		{450, 0.5},   // 25% under min
		{300, 0.0},   // 50% under min
	}
	for _, tc := range cases {
		listing := domain.Listing{AreaSqm: tc.area}
		if got := sizeAdequacyFactor(listing, req); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("area %d: expected %.2f, got %.4f", tc.area, tc.want, got)
		}
	}
}

func TestPriceFitLinearDecay(t *testing.T) {
	req := domain.Requirements{MaxPricePerSqm: 100}
	cases := []struct {
		price int
		want  float64
	}{
		{100, 1.0},
		{125, 0.5},
		{150, 0.0},
		{200, 0.0},
	}
	for _, tc := range cases {
		listing := domain.Listing{PricePerSqm: tc.price}
		if got := priceFitFactor(listing, req); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("price %d: expected %.2f, got %.4f", tc.price, tc.want, got)
		}
	}
}

func TestBusinessBonuses(t *testing.T) {
	req := strictRequirements()
	listing := pragueWarehouse(1)
	listing.IsHot = true
	listing.IsFeatured = true

	bonus := businessBonus(listing, req)
	if math.Abs(bonus-2.0) > 1e-9 {
		t.Fatalf("expected hot+featured+exact bonus 2.0, got %.2f", bonus)
	}

	listing.PricePerSqm = 120 // over budget breaks the exact match
	bonus = businessBonus(listing, req)
	if math.Abs(bonus-1.0) > 1e-9 {
		t.Fatalf("expected 1.0 without exact match, got %.2f", bonus)
	}
}

func TestExactMatchRequiresAllFourConstraints(t *testing.T) {
	req := strictRequirements()
	req.PropertyType = ""
	if isExactMatch(pragueWarehouse(1), req) {
		t.Fatalf("exact match must require a type constraint")
	}
}

func TestRerankOrderingAndTieBreaks(t *testing.T) {
	a := pragueWarehouse(4)
	b := pragueWarehouse(2)
	c := pragueWarehouse(9)
	c.PriorityScore = 50

	candidates := []domain.FusedResult{
		{Listing: a, FusedScore: 0.7},
		{Listing: b, FusedScore: 0.6},
		{Listing: c, FusedScore: 0.5},
	}

	ranked := rerankCandidates(context.Background(), "sklad praha", candidates, strictRequirements(), nil)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked results, got %d", len(ranked))
	}
	// Identical final scores: priority desc first, then id asc.
	if ranked[0].Listing.ID != 9 || ranked[1].Listing.ID != 2 || ranked[2].Listing.ID != 4 {
		t.Fatalf("unexpected tie-break order: %d, %d, %d",
			ranked[0].Listing.ID, ranked[1].Listing.ID, ranked[2].Listing.ID)
	}
}

func TestJudgeNudgeIsClampedAndDegrades(t *testing.T) {
	listing := pragueWarehouse(1)
	req := strictRequirements()
	candidates := []domain.FusedResult{{Listing: listing, FusedScore: 0.9}}

	without := rerankCandidates(context.Background(), "q", candidates, req, nil)
	boosted := rerankCandidates(context.Background(), "q", candidates, req, stubJudge{adjustment: 5.0})
	if diff := boosted[0].BaseRelevance - without[0].BaseRelevance; diff > maxJudgeAdjustment+1e-9 {
		t.Fatalf("judge nudge exceeded clamp: %.4f", diff)
	}

	degraded := rerankCandidates(context.Background(), "q", candidates, req, stubJudge{err: errors.New("llm down")})
	if degraded[0].BaseRelevance != without[0].BaseRelevance {
		t.Fatalf("judge error must degrade to the deterministic path")
	}
	if degraded[0].FinalScore != without[0].FinalScore {
		t.Fatalf("judge error must not change the final score")
	}
}
