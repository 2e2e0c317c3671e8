package ports

import (
	"context"

	"github.com/brokera/leadmatch/internal/core/domain"
)

// PropertySearcher is the inbound contract for the retrieval-and-ranking
// pipeline.
type PropertySearcher interface {
	Search(ctx context.Context, query string, req domain.Requirements) ([]domain.RankedResult, error)
}

// LeadScorer is the inbound contract for deterministic lead scoring.
type LeadScorer interface {
	Score(ctx context.Context, req domain.Requirements, matchedIDs []int64) (*domain.ScoreResult, error)
}

// ListingReader is the inbound read model for catalog records.
type ListingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

// ListingProcessor is the inbound contract for asynchronous listing
// indexing.
type ListingProcessor interface {
	ProcessByID(ctx context.Context, listingID int64) error
}
