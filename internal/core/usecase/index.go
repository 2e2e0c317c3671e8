package usecase

import (
	"context"
	"fmt"

	"github.com/brokera/leadmatch/internal/core/ports"
)

// IndexListingUseCase renders a listing into its searchable text, embeds
// it and writes it into the retrieval indexes. Driven by catalog events.
type IndexListingUseCase struct {
	listings ports.ListingRepository
	embedder ports.Embedder
	indexer  ports.ListingIndexer
}

func NewIndexListingUseCase(
	listings ports.ListingRepository,
	embedder ports.Embedder,
	indexer ports.ListingIndexer,
) *IndexListingUseCase {
	return &IndexListingUseCase{
		listings: listings,
		embedder: embedder,
		indexer:  indexer,
	}
}

func (uc *IndexListingUseCase) ProcessByID(ctx context.Context, listingID int64) error {
	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("fetch listing by id: %w", err)
	}

	vector, err := uc.embedder.EmbedQuery(ctx, listing.SearchText())
	if err != nil {
		return fmt.Errorf("embed listing text: %w", err)
	}

	if err := uc.indexer.IndexListing(ctx, *listing, vector); err != nil {
		return fmt.Errorf("index listing: %w", err)
	}
	return nil
}
