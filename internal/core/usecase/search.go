package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brokera/leadmatch/internal/core/domain"
	"github.com/brokera/leadmatch/internal/core/ports"
)

// SearchConfig carries the pipeline knobs. Zero values fall back to the
// defaults below.
type SearchConfig struct {
	// TopN is the size of the final ranked output.
	TopN int
	// CandidateTopN is the fused-candidate pool cut before metadata
	// filtering; the indexes are queried with this limit too.
	CandidateTopN int
	// MaxVariants bounds query expansion.
	MaxVariants int
	// SourceTimeout bounds each index sub-query; an expired source
	// degrades to an empty score set.
	SourceTimeout time.Duration
}

func (c SearchConfig) normalize() SearchConfig {
	out := c
	if out.TopN <= 0 {
		out.TopN = 5
	}
	if out.CandidateTopN <= 0 {
		out.CandidateTopN = 20
	}
	if out.MaxVariants <= 0 {
		out.MaxVariants = 3
	}
	if out.SourceTimeout <= 0 {
		out.SourceTimeout = 3 * time.Second
	}
	return out
}

// SearchUseCase runs the retrieval-and-ranking pipeline: query expansion,
// parallel hybrid fan-out, score fusion, metadata filtering and reranking.
// It holds no mutable state across calls; every intermediate value is
// call-scoped, so concurrent searches are independent.
type SearchUseCase struct {
	vector   ports.VectorIndex
	keyword  ports.KeywordIndex
	listings ports.ListingRepository
	judge    ports.RelevanceJudge
	cfg      SearchConfig
}

func NewSearchUseCase(
	vector ports.VectorIndex,
	keyword ports.KeywordIndex,
	listings ports.ListingRepository,
	judge ports.RelevanceJudge,
	cfg SearchConfig,
) *SearchUseCase {
	return &SearchUseCase{
		vector:   vector,
		keyword:  keyword,
		listings: listings,
		judge:    judge,
		cfg:      cfg.normalize(),
	}
}

func (uc *SearchUseCase) Search(
	ctx context.Context,
	query string,
	req domain.Requirements,
) ([]domain.RankedResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	variants := expandQuery(query, req, uc.cfg.MaxVariants)
	hits := uc.fanOut(ctx, variants)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search canceled: %w", err)
	}

	fused := fuseHits(hits)
	candidates, err := uc.resolveCandidates(ctx, fused)
	if err != nil {
		return nil, err
	}

	filtered := filterCandidates(candidates, req)
	ranked := rerankCandidates(ctx, query, filtered, req, uc.judge)
	if len(ranked) > uc.cfg.TopN {
		ranked = ranked[:uc.cfg.TopN]
	}
	return ranked, nil
}

// fanOut queries both indexes for every variant in parallel. Each goroutine
// writes only its own slot, so the collected result is independent of
// completion order. A failing or slow source logs, degrades to no hits and
// never fails the search.
func (uc *SearchUseCase) fanOut(ctx context.Context, variants []string) []variantHits {
	hits := make([]variantHits, len(variants))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, variant := range variants {
		i, variant := i, variant
		g.Go(func() error {
			hits[i].vector = uc.querySource(groupCtx, "vector", variant, uc.queryVector)
			return nil
		})
		g.Go(func() error {
			hits[i].keyword = uc.querySource(groupCtx, "keyword", variant, uc.queryKeyword)
			return nil
		})
	}
	_ = g.Wait()

	return hits
}

func (uc *SearchUseCase) querySource(
	ctx context.Context,
	source, variant string,
	query func(context.Context, string, int) ([]domain.IndexHit, error),
) []domain.IndexHit {
	sourceCtx, cancel := context.WithTimeout(ctx, uc.cfg.SourceTimeout)
	defer cancel()

	result, err := query(sourceCtx, variant, uc.cfg.CandidateTopN)
	if err != nil {
		slog.Warn("search_source_degraded", "source", source, "variant", variant, "error", err)
		return nil
	}
	return result
}

func (uc *SearchUseCase) queryVector(ctx context.Context, text string, topN int) ([]domain.IndexHit, error) {
	return uc.vector.QueryVector(ctx, text, topN)
}

func (uc *SearchUseCase) queryKeyword(ctx context.Context, text string, topN int) ([]domain.IndexHit, error) {
	return uc.keyword.QueryKeyword(ctx, text, topN)
}

// resolveCandidates cuts the fused pool to the candidate limit and loads
// the catalog records. Ids the repository no longer knows are dropped with
// a warning; the index may lag the catalog.
func (uc *SearchUseCase) resolveCandidates(
	ctx context.Context,
	fused map[int64]fusedScore,
) ([]domain.FusedResult, error) {
	ids := topFusedIDs(fused, uc.cfg.CandidateTopN)
	if len(ids) == 0 {
		return nil, nil
	}

	listings, err := uc.listings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve fused candidates: %w", err)
	}
	byID := make(map[int64]domain.Listing, len(listings))
	for _, listing := range listings {
		byID[listing.ID] = listing
	}

	out := make([]domain.FusedResult, 0, len(ids))
	for _, id := range ids {
		listing, ok := byID[id]
		if !ok {
			slog.Warn("fused_candidate_missing_listing", "listing_id", id)
			continue
		}
		score := fused[id]
		out = append(out, domain.FusedResult{
			Listing:      listing,
			FusedScore:   score.fused,
			VectorScore:  score.vector,
			KeywordScore: score.keyword,
		})
	}
	return out, nil
}
