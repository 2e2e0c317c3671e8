package ports

import (
	"context"

	"github.com/brokera/leadmatch/internal/core/domain"
)

// VectorIndex performs embedding-similarity search over indexed listings.
// Scores are expected in [0,1]; the engine clips anything outside.
type VectorIndex interface {
	QueryVector(ctx context.Context, text string, topN int) ([]domain.IndexHit, error)
}

// KeywordIndex performs lexical (BM25-style) search over indexed listings.
// Implementations normalize their own scores to [0,1] per query.
type KeywordIndex interface {
	QueryKeyword(ctx context.Context, text string, topN int) ([]domain.IndexHit, error)
}

// ListingIndexer writes listings into the retrieval indexes.
type ListingIndexer interface {
	IndexListing(ctx context.Context, listing domain.Listing, vector []float32) error
	DeleteListing(ctx context.Context, listingID int64) error
}

// Embedder builds vectors for listing texts and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// MarketStats supplies the market-average price per sqm for a property
// type in a region. ok=false means the figure is unavailable and the
// caller must degrade, not fail.
type MarketStats interface {
	MarketAverage(propertyType domain.PropertyType, region domain.Region) (avg float64, ok bool)
}

// RelevanceJudge optionally nudges a candidate's base relevance. The
// adjustment is clamped by the reranker; an error degrades to zero
// adjustment and never aborts the search.
type RelevanceJudge interface {
	Judge(ctx context.Context, query string, listing domain.Listing, req domain.Requirements) (adjustment float64, err error)
}

// ListingRepository persists and reads the listing catalog.
type ListingRepository interface {
	Upsert(ctx context.Context, listing domain.Listing) error
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
}

// LeadRepository persists scored leads for broker follow-up.
type LeadRepository interface {
	SaveScoredLead(ctx context.Context, req domain.Requirements, result domain.ScoreResult) (leadID string, err error)
}

// MessageQueue publishes/consumes listing catalog events.
type MessageQueue interface {
	PublishListingUpserted(ctx context.Context, listingID int64) error
	SubscribeListingUpserted(ctx context.Context, handler func(context.Context, int64) error) error
}
