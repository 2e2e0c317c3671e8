package usecase

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/brokera/leadmatch/internal/core/domain"
)

type stubStats struct {
	avg float64
	ok  bool
}

func (s stubStats) MarketAverage(domain.PropertyType, domain.Region) (float64, bool) {
	return s.avg, s.ok
}

type fakeListingRepo struct {
	listings map[int64]domain.Listing
}

func (r *fakeListingRepo) Upsert(_ context.Context, listing domain.Listing) error {
	if r.listings == nil {
		r.listings = map[int64]domain.Listing{}
	}
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrListingNotFound, "fake get", fmt.Errorf("id %d", id))
	}
	return &listing, nil
}

func (r *fakeListingRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Listing, error) {
	out := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		if listing, ok := r.listings[id]; ok {
			out = append(out, listing)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) List(_ context.Context) ([]domain.Listing, error) {
	out := make([]domain.Listing, 0, len(r.listings))
	for _, listing := range r.listings {
		out = append(out, listing)
	}
	return out, nil
}

type fakeLeadRepo struct {
	saved []domain.ScoreResult
}

func (r *fakeLeadRepo) SaveScoredLead(_ context.Context, _ domain.Requirements, result domain.ScoreResult) (string, error) {
	r.saved = append(r.saved, result)
	return fmt.Sprintf("lead-%d", len(r.saved)), nil
}

func scenarioARequirements() domain.Requirements {
	return domain.Requirements{
		PropertyType:     domain.PropertyWarehouse,
		MinAreaSqm:       600,
		MaxAreaSqm:       800,
		PreferredRegions: []domain.Region{domain.RegionPraha},
		MaxPricePerSqm:   110,
		Urgency:          domain.Urgency1To3Months,
		HasEmail:         true,
		HasPhone:         true,
	}
}

func TestScoreLeadScenarioRealisticIsHot(t *testing.T) {
	req := scenarioARequirements()
	matched := []domain.Listing{
		pragueWarehouse(1),
		pragueWarehouse(2),
		pragueWarehouse(3),
	}

	breakdown := scoreLead(req, matched, stubStats{avg: 110, ok: true})
	if breakdown.Completeness != 30 {
		t.Fatalf("expected completeness 30, got %d", breakdown.Completeness)
	}
	if breakdown.Realism < 26 {
		t.Fatalf("expected realism >= 26, got %d", breakdown.Realism)
	}
	if breakdown.MatchQuality != 25 {
		t.Fatalf("expected match quality 25, got %d", breakdown.MatchQuality)
	}
	if breakdown.Engagement != 10 {
		t.Fatalf("expected engagement 10 for email+phone, got %d", breakdown.Engagement)
	}

	total := breakdown.Total()
	if total < 70 || domain.TierForScore(total) != domain.TierHot {
		t.Fatalf("expected HOT tier, got total=%d tier=%s", total, domain.TierForScore(total))
	}
}

func TestScoreLeadScenarioVagueIsCold(t *testing.T) {
	req := domain.Requirements{HasCompany: true}
	breakdown := scoreLead(req, nil, stubStats{avg: 100, ok: true})

	want := domain.ScoreBreakdown{Engagement: 3}
	if !reflect.DeepEqual(breakdown, want) {
		t.Fatalf("expected %+v, got %+v", want, breakdown)
	}
	if domain.TierForScore(breakdown.Total()) != domain.TierCold {
		t.Fatalf("expected COLD for total %d", breakdown.Total())
	}
}

func TestScoreLeadScenarioUnrealisticBudgetNeverHot(t *testing.T) {
	req := domain.Requirements{
		PropertyType:     domain.PropertyOffice,
		MinAreaSqm:       500,
		MaxAreaSqm:       500,
		PreferredRegions: []domain.Region{domain.RegionPraha},
		MaxPricePerSqm:   50,
		Urgency:          domain.UrgencyFlexible,
	}
	matched := []domain.Listing{
		{ID: 1, PropertyType: domain.PropertyOffice, Region: domain.RegionPraha, AreaSqm: 500, PricePerSqm: 300},
		{ID: 2, PropertyType: domain.PropertyOffice, Region: domain.RegionPraha, AreaSqm: 500, PricePerSqm: 320},
	}

	// 50 is below half of the 300 market average: zero budget realism.
	breakdown := scoreLead(req, matched, stubStats{avg: 300, ok: true})
	if breakdown.Completeness != 30 {
		t.Fatalf("expected full completeness, got %d", breakdown.Completeness)
	}
	if breakdown.Realism != 12 {
		t.Fatalf("expected realism 12 (area 8 + flexible 4), got %d", breakdown.Realism)
	}
	if tier := domain.TierForScore(breakdown.Total()); tier == domain.TierHot {
		t.Fatalf("unrealistic lead must not be HOT, total=%d", breakdown.Total())
	}
}

func TestAreaRealismBoundariesInclusive(t *testing.T) {
	cases := []struct {
		maxArea int
		want    int
	}{
		{500, 8},
		{501, 6},
		{1000, 6},
		{1001, 4},
		{2000, 4},
		{2001, 2},
	}
	for _, tc := range cases {
		req := domain.Requirements{MinAreaSqm: 100, MaxAreaSqm: tc.maxArea}
		if got := areaRealism(req); got != tc.want {
			t.Fatalf("max area %d: expected %d points, got %d", tc.maxArea, tc.want, got)
		}
	}
}

func TestTierBoundariesInclusive(t *testing.T) {
	cases := map[int]domain.Tier{
		100: domain.TierHot,
		70:  domain.TierHot,
		69:  domain.TierWarm,
		40:  domain.TierWarm,
		39:  domain.TierCold,
		0:   domain.TierCold,
	}
	for total, want := range cases {
		if got := domain.TierForScore(total); got != want {
			t.Fatalf("score %d: expected %s, got %s", total, want, got)
		}
	}
}

func TestBudgetRealismMonotonicInBudget(t *testing.T) {
	stats := stubStats{avg: 100, ok: true}
	last := -1
	for budget := 1; budget <= 200; budget++ {
		req := domain.Requirements{
			PropertyType:   domain.PropertyWarehouse,
			MaxPricePerSqm: budget,
		}
		got := budgetRealism(req, stats)
		if got < last {
			t.Fatalf("budget realism decreased at budget=%d: %d -> %d", budget, last, got)
		}
		last = got
	}
}

func TestBudgetRealismDegradesWithoutMarketData(t *testing.T) {
	req := domain.Requirements{PropertyType: domain.PropertyWarehouse, MaxPricePerSqm: 500}
	if got := budgetRealism(req, stubStats{ok: false}); got != 0 {
		t.Fatalf("expected 0 without market data, got %d", got)
	}
	if got := budgetRealism(req, nil); got != 0 {
		t.Fatalf("expected 0 with nil stats, got %d", got)
	}
}

func TestScoreLeadTotalBounded(t *testing.T) {
	req := scenarioARequirements()
	req.HasCompany = true
	req.HasName = true
	matched := []domain.Listing{pragueWarehouse(1), pragueWarehouse(2), pragueWarehouse(3), pragueWarehouse(4)}

	breakdown := scoreLead(req, matched, stubStats{avg: 1, ok: true})
	total := breakdown.Total()
	if total < 0 || total > 100 {
		t.Fatalf("total out of bounds: %d", total)
	}
	if breakdown.Completeness > domain.MaxCompleteness ||
		breakdown.Realism > domain.MaxRealism ||
		breakdown.MatchQuality > domain.MaxMatchQuality ||
		breakdown.Engagement > domain.MaxEngagement {
		t.Fatalf("component exceeded its maximum: %+v", breakdown)
	}
}

func TestMatchCountBonusMutuallyExclusive(t *testing.T) {
	req := domain.Requirements{}
	one := matchQualityScore(req, []domain.Listing{pragueWarehouse(1)})
	two := matchQualityScore(req, []domain.Listing{pragueWarehouse(1), pragueWarehouse(2)})
	three := matchQualityScore(req, []domain.Listing{pragueWarehouse(1), pragueWarehouse(2), pragueWarehouse(3)})

	if two-one != 3 {
		t.Fatalf("expected +3 for exactly two matches, got delta %d", two-one)
	}
	if three-one != 5 {
		t.Fatalf("expected +5 for three matches, got delta %d", three-one)
	}
}

func TestLeadScoreUseCaseResolvesAndPersists(t *testing.T) {
	repo := &fakeListingRepo{}
	for i := int64(1); i <= 3; i++ {
		_ = repo.Upsert(context.Background(), pragueWarehouse(i))
	}
	leads := &fakeLeadRepo{}
	uc := NewLeadScoreUseCase(repo, leads, stubStats{avg: 110, ok: true})

	result, err := uc.Score(context.Background(), scenarioARequirements(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tier != domain.TierHot {
		t.Fatalf("expected HOT, got %s (total %d)", result.Tier, result.Total)
	}
	if len(leads.saved) != 1 {
		t.Fatalf("expected persisted lead, got %d", len(leads.saved))
	}
}

func TestLeadScoreUseCaseRejectsInvalidRequirements(t *testing.T) {
	uc := NewLeadScoreUseCase(&fakeListingRepo{}, nil, stubStats{avg: 100, ok: true})
	_, err := uc.Score(context.Background(), domain.Requirements{MinAreaSqm: 900, MaxAreaSqm: 100}, nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestScoreLeadDeterministic(t *testing.T) {
	req := scenarioARequirements()
	matched := []domain.Listing{pragueWarehouse(1), pragueWarehouse(2)}
	stats := stubStats{avg: 110, ok: true}

	first := scoreLead(req, matched, stats)
	for i := 0; i < 10; i++ {
		if got := scoreLead(req, matched, stats); !reflect.DeepEqual(got, first) {
			t.Fatalf("scoring not deterministic: %+v vs %+v", first, got)
		}
	}
}
