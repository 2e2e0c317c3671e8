package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/brokera/leadmatch/internal/core/domain"
	"github.com/brokera/leadmatch/internal/core/ports"
)

const (
	denseVectorName  = "dense"
	sparseVectorName = "keywords"
)

// Client stores listings as qdrant points with two named vectors: a dense
// embedding for semantic search and a hashed sparse vector for keyword
// search. The point id is the listing id, so re-indexing overwrites.
type Client struct {
	baseURL    string
	collection string
	embedder   ports.Embedder
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string, embedder ports.Embedder) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) IndexListing(ctx context.Context, listing domain.Listing, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty dense vector for listing %d", listing.ID)
	}
	if err := c.ensureCollection(ctx, len(vector)); err != nil {
		return err
	}

	sparse := encodeSparseDocument(listing.SearchText(), listing.Location)
	body, err := json.Marshal(map[string]any{
		"points": []map[string]any{
			{
				"id": listing.ID,
				"vector": map[string]any{
					denseVectorName:  vector,
					sparseVectorName: sparse,
				},
				"payload": map[string]any{
					"listing_id":    listing.ID,
					"property_type": string(listing.PropertyType),
					"location":      listing.Location,
					"region":        string(listing.Region),
					"area_sqm":      listing.AreaSqm,
					"price_per_sqm": listing.PricePerSqm,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal upsert body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("qdrant upsert listing %d: %w", listing.ID, err)
	}
	return nil
}

func (c *Client) DeleteListing(ctx context.Context, listingID int64) error {
	body, err := json.Marshal(map[string]any{
		"points": []int64{listingID},
	})
	if err != nil {
		return fmt.Errorf("marshal delete body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, body, nil); err != nil {
		return fmt.Errorf("qdrant delete listing %d: %w", listingID, err)
	}
	return nil
}

// QueryVector embeds the query text and searches the dense vector space.
// Cosine scores below zero are clipped by the fusion stage, not here.
func (c *Client) QueryVector(ctx context.Context, text string, topN int) ([]domain.IndexHit, error) {
	vector, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return c.queryPoints(ctx, map[string]any{
		"query": vector,
		"using": denseVectorName,
		"limit": topN,
	})
}

// QueryKeyword searches the sparse keyword space. Raw BM25-style scores are
// unbounded, so they are normalized by the best score of this query, which
// puts every hit in [0,1] and makes the top keyword hit comparable to the
// top dense hit.
func (c *Client) QueryKeyword(ctx context.Context, text string, topN int) ([]domain.IndexHit, error) {
	sparse := encodeSparseQuery(text)
	if len(sparse.Indices) == 0 {
		return nil, nil
	}

	hits, err := c.queryPoints(ctx, map[string]any{
		"query": sparse,
		"using": sparseVectorName,
		"limit": topN,
	})
	if err != nil {
		return nil, err
	}
	return normalizeByMax(hits), nil
}

func (c *Client) queryPoints(ctx context.Context, query map[string]any) ([]domain.IndexHit, error) {
	query["with_payload"] = false
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal query body: %w", err)
	}

	var queryResp struct {
		Result struct {
			Points []struct {
				ID    int64   `json:"id"`
				Score float64 `json:"score"`
			} `json:"points"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/query", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, body, &queryResp); err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	out := make([]domain.IndexHit, 0, len(queryResp.Result.Points))
	for _, p := range queryResp.Result.Points {
		out = append(out, domain.IndexHit{ListingID: p.ID, Score: p.Score})
	}
	return out, nil
}

func normalizeByMax(hits []domain.IndexHit) []domain.IndexHit {
	best := 0.0
	for _, hit := range hits {
		if hit.Score > best {
			best = hit.Score
		}
	}
	if best <= 0 {
		return hits
	}
	out := make([]domain.IndexHit, len(hits))
	for i, hit := range hits {
		out[i] = domain.IndexHit{ListingID: hit.ListingID, Score: hit.Score / best}
	}
	return out
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	body, err := json.Marshal(map[string]any{
		"vectors": map[string]any{
			denseVectorName: map[string]any{
				"size":     vectorSize,
				"distance": "Cosine",
			},
		},
		"sparse_vectors": map[string]any{
			sparseVectorName: map[string]any{},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	err = c.do(ctx, http.MethodPut, url, body, nil)
	// 409 means the collection already exists (depends on version/config).
	if err != nil && !isConflict(err) {
		return fmt.Errorf("qdrant ensure collection: %w", err)
	}

	c.ensureMu.Lock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
	c.ensureMu.Unlock()
	return nil
}

type statusError struct {
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	if e.body != "" {
		return fmt.Sprintf("status: %s: %s", e.status, e.body)
	}
	return fmt.Sprintf("status: %s", e.status)
}

func isConflict(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusConflict
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			code:   resp.StatusCode,
			status: resp.Status,
			body:   strings.TrimSpace(string(raw)),
		}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
