package usecase

import (
	"sort"

	"github.com/brokera/leadmatch/internal/core/domain"
)

const (
	vectorWeight  = 0.6
	keywordWeight = 0.4
)

// variantHits holds the raw per-source results for one query variant. A
// source that failed or timed out contributes a nil slice, which fuses
// identically to "no hits".
type variantHits struct {
	vector  []domain.IndexHit
	keyword []domain.IndexHit
}

type fusedScore struct {
	fused   float64
	vector  float64
	keyword float64
}

// fuseHits combines per-variant, per-source hits into one aggregate score
// per listing id. Within a variant the fused score is the weighted sum of
// the clipped source scores (a listing absent from one source scores 0 for
// it). Across variants the aggregate is the maximum fused score, so the
// merge is commutative and associative over arrival order.
func fuseHits(sets []variantHits) map[int64]fusedScore {
	acc := make(map[int64]fusedScore)

	for _, set := range sets {
		vectorScores := bestScoreByListing(set.vector)
		keywordScores := bestScoreByListing(set.keyword)

		for id := range union(vectorScores, keywordScores) {
			v := vectorScores[id]
			k := keywordScores[id]
			fused := vectorWeight*v + keywordWeight*k
			if current, ok := acc[id]; !ok || fused > current.fused {
				acc[id] = fusedScore{fused: fused, vector: v, keyword: k}
			}
		}
	}

	return acc
}

// topFusedIDs orders fused listings by aggregate score descending, ties by
// listing id ascending, and cuts to limit.
func topFusedIDs(scores map[int64]fusedScore, limit int) []int64 {
	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]].fused != scores[ids[j]].fused {
			return scores[ids[i]].fused > scores[ids[j]].fused
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func bestScoreByListing(hits []domain.IndexHit) map[int64]float64 {
	out := make(map[int64]float64, len(hits))
	for _, hit := range hits {
		score := clip01(hit.Score)
		if score > out[hit.ListingID] {
			out[hit.ListingID] = score
		}
	}
	return out
}

func union(a, b map[int64]float64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
