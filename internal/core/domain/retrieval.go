package domain

// IndexHit is one (listing, score) pair returned by an index collaborator.
type IndexHit struct {
	ListingID int64   `json:"listing_id"`
	Score     float64 `json:"score"`
}

// FusedResult aggregates one listing across all query variants. Exactly one
// FusedResult exists per distinct listing id surviving fan-out.
type FusedResult struct {
	Listing      Listing `json:"listing"`
	FusedScore   float64 `json:"fused_score"`
	VectorScore  float64 `json:"vector_score"`
	KeywordScore float64 `json:"keyword_score"`
}

// RelevanceFactors are the reranker sub-scores, each in [0,1].
type RelevanceFactors struct {
	TypeMatch    float64 `json:"type_match"`
	LocationFit  float64 `json:"location_fit"`
	SizeAdequacy float64 `json:"size_adequacy"`
	PriceFit     float64 `json:"price_fit"`
	Availability float64 `json:"availability"`
}

// RankedResult is a fused candidate with its relevance breakdown and the
// final ordering score. FinalScore is unbounded above; higher ranks first.
type RankedResult struct {
	Listing       Listing          `json:"listing"`
	FusedScore    float64          `json:"fused_score"`
	Factors       RelevanceFactors `json:"factors"`
	BaseRelevance float64          `json:"base_relevance"`
	Bonus         float64          `json:"bonus"`
	FinalScore    float64          `json:"final_score"`
}
