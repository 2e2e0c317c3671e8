package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brokera/leadmatch/internal/core/domain"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	texts  []string
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	f.texts = append(f.texts, texts...)
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, text)
	return f.vector, nil
}

type fakeIndexer struct {
	indexed []domain.Listing
	vectors [][]float32
	err     error
}

func (f *fakeIndexer) IndexListing(_ context.Context, listing domain.Listing, vector []float32) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, listing)
	f.vectors = append(f.vectors, vector)
	return nil
}

func (f *fakeIndexer) DeleteListing(_ context.Context, _ int64) error {
	return f.err
}

func TestProcessByIDEmbedsSearchText(t *testing.T) {
	listing := pragueWarehouse(7)
	repo := seededRepo(t, listing)
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	indexer := &fakeIndexer{}

	uc := NewIndexListingUseCase(repo, embedder, indexer)
	if err := uc.ProcessByID(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(embedder.texts) != 1 || embedder.texts[0] != listing.SearchText() {
		t.Fatalf("expected the rendered search text to be embedded, got %v", embedder.texts)
	}
	if !strings.Contains(embedder.texts[0], "sklad") {
		t.Fatalf("search text missing czech synonym: %q", embedder.texts[0])
	}
	if len(indexer.indexed) != 1 || indexer.indexed[0].ID != 7 {
		t.Fatalf("expected listing 7 indexed, got %+v", indexer.indexed)
	}
}

func TestProcessByIDUnknownListing(t *testing.T) {
	uc := NewIndexListingUseCase(seededRepo(t), &fakeEmbedder{}, &fakeIndexer{})
	err := uc.ProcessByID(context.Background(), 404)
	if !domain.IsKind(err, domain.ErrListingNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestProcessByIDPropagatesEmbedFailure(t *testing.T) {
	repo := seededRepo(t, pragueWarehouse(1))
	embedder := &fakeEmbedder{err: errors.New("model unavailable")}
	indexer := &fakeIndexer{}

	uc := NewIndexListingUseCase(repo, embedder, indexer)
	if err := uc.ProcessByID(context.Background(), 1); err == nil {
		t.Fatal("expected error from embedder")
	}
	if len(indexer.indexed) != 0 {
		t.Fatalf("nothing should be indexed after an embed failure, got %d", len(indexer.indexed))
	}
}
