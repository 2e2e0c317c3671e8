package usecase

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/brokera/leadmatch/internal/core/domain"
)

type fakeVectorIndex struct {
	mu      sync.Mutex
	hits    map[string][]domain.IndexHit
	err     error
	queried []string
}

func (f *fakeVectorIndex) QueryVector(_ context.Context, text string, _ int) ([]domain.IndexHit, error) {
	f.mu.Lock()
	f.queried = append(f.queried, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.hits[text], nil
}

type fakeKeywordIndex struct {
	hits map[string][]domain.IndexHit
	err  error
}

func (f *fakeKeywordIndex) QueryKeyword(_ context.Context, text string, _ int) ([]domain.IndexHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits[text], nil
}

func seededRepo(t *testing.T, listings ...domain.Listing) *fakeListingRepo {
	t.Helper()
	repo := &fakeListingRepo{}
	for _, listing := range listings {
		if err := repo.Upsert(context.Background(), listing); err != nil {
			t.Fatalf("seed listing %d: %v", listing.ID, err)
		}
	}
	return repo
}

func TestSearchPipelineRanksAndCuts(t *testing.T) {
	query := "sklad praha"
	vector := &fakeVectorIndex{hits: map[string][]domain.IndexHit{
		query: {{ListingID: 1, Score: 0.9}, {ListingID: 2, Score: 0.8}, {ListingID: 3, Score: 0.7}},
	}}
	keyword := &fakeKeywordIndex{hits: map[string][]domain.IndexHit{
		query: {{ListingID: 2, Score: 1.0}, {ListingID: 3, Score: 0.5}},
	}}
	repo := seededRepo(t, pragueWarehouse(1), pragueWarehouse(2), pragueWarehouse(3))

	uc := NewSearchUseCase(vector, keyword, repo, nil, SearchConfig{TopN: 2})
	ranked, err := uc.Search(context.Background(), query, strictRequirements())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected top-2 cut, got %d results", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].FinalScore > ranked[i-1].FinalScore {
			t.Fatalf("results not sorted by final score: %v then %v",
				ranked[i-1].FinalScore, ranked[i].FinalScore)
		}
	}
}

func TestSearchQueriesEveryVariant(t *testing.T) {
	vector := &fakeVectorIndex{hits: map[string][]domain.IndexHit{}}
	keyword := &fakeKeywordIndex{hits: map[string][]domain.IndexHit{}}
	uc := NewSearchUseCase(vector, keyword, seededRepo(t), nil, SearchConfig{})

	req := strictRequirements()
	if _, err := uc.Search(context.Background(), "sklad brno", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := expandQuery("sklad brno", req, 3)
	if len(vector.queried) != len(want) {
		t.Fatalf("expected %d vector queries, got %v", len(want), vector.queried)
	}
	seen := map[string]bool{}
	for _, q := range vector.queried {
		seen[q] = true
	}
	for _, variant := range want {
		if !seen[variant] {
			t.Fatalf("variant %q never reached the vector index", variant)
		}
	}
}

func TestSearchDegradesWhenOneSourceFails(t *testing.T) {
	query := "sklad praha"
	vector := &fakeVectorIndex{err: errors.New("index down")}
	keyword := &fakeKeywordIndex{hits: map[string][]domain.IndexHit{
		query: {{ListingID: 1, Score: 0.8}},
	}}
	repo := seededRepo(t, pragueWarehouse(1))

	uc := NewSearchUseCase(vector, keyword, repo, nil, SearchConfig{})
	ranked, err := uc.Search(context.Background(), query, strictRequirements())
	if err != nil {
		t.Fatalf("one degraded source must not fail the search: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Listing.ID != 1 {
		t.Fatalf("expected keyword-only result for listing 1, got %+v", ranked)
	}
}

func TestSearchEmptyWhenBothSourcesFail(t *testing.T) {
	vector := &fakeVectorIndex{err: errors.New("down")}
	keyword := &fakeKeywordIndex{err: errors.New("down")}
	uc := NewSearchUseCase(vector, keyword, seededRepo(t), nil, SearchConfig{})

	ranked, err := uc.Search(context.Background(), "sklad", domain.Requirements{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %d", len(ranked))
	}
}

func TestSearchDropsStaleIndexHits(t *testing.T) {
	query := "sklad praha"
	vector := &fakeVectorIndex{hits: map[string][]domain.IndexHit{
		query: {{ListingID: 1, Score: 0.9}, {ListingID: 99, Score: 0.95}},
	}}
	keyword := &fakeKeywordIndex{hits: map[string][]domain.IndexHit{}}
	repo := seededRepo(t, pragueWarehouse(1))

	uc := NewSearchUseCase(vector, keyword, repo, nil, SearchConfig{})
	ranked, err := uc.Search(context.Background(), query, strictRequirements())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Listing.ID != 1 {
		t.Fatalf("expected stale id 99 dropped, got %+v", ranked)
	}
}

func TestSearchRejectsInvalidRequirements(t *testing.T) {
	uc := NewSearchUseCase(&fakeVectorIndex{}, &fakeKeywordIndex{}, seededRepo(t), nil, SearchConfig{})
	_, err := uc.Search(context.Background(), "sklad", domain.Requirements{PropertyType: "castle"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestSearchDeterministicAcrossRuns(t *testing.T) {
	query := "sklad praha"
	vector := &fakeVectorIndex{hits: map[string][]domain.IndexHit{
		query: {{ListingID: 3, Score: 0.7}, {ListingID: 1, Score: 0.7}, {ListingID: 2, Score: 0.7}},
	}}
	keyword := &fakeKeywordIndex{hits: map[string][]domain.IndexHit{
		query: {{ListingID: 2, Score: 0.7}, {ListingID: 3, Score: 0.7}},
	}}
	repo := seededRepo(t, pragueWarehouse(1), pragueWarehouse(2), pragueWarehouse(3))
	uc := NewSearchUseCase(vector, keyword, repo, nil, SearchConfig{})

	first, err := uc.Search(context.Background(), query, strictRequirements())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := uc.Search(context.Background(), query, strictRequirements())
		if err != nil {
			t.Fatalf("unexpected error on run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("ranking not stable across runs:\n%+v\n%+v", first, again)
		}
	}
}
