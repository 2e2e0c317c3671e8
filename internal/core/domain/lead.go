package domain

// Tier is the coarse lead-quality bucket derived from the total score.
type Tier string

const (
	TierHot  Tier = "HOT"
	TierWarm Tier = "WARM"
	TierCold Tier = "COLD"
)

// Tier boundaries are inclusive: 70 is HOT, 40 is WARM, 39 is COLD.
const (
	TierHotThreshold  = 70
	TierWarmThreshold = 40
)

func TierForScore(total int) Tier {
	switch {
	case total >= TierHotThreshold:
		return TierHot
	case total >= TierWarmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}

// ScoreBreakdown holds the four named sub-scores. Each is bounded by its
// own maximum, so the sum never exceeds 100.
type ScoreBreakdown struct {
	Completeness int `json:"completeness"`
	Realism      int `json:"realism"`
	MatchQuality int `json:"match_quality"`
	Engagement   int `json:"engagement"`
}

const (
	MaxCompleteness = 30
	MaxRealism      = 30
	MaxMatchQuality = 25
	MaxEngagement   = 15
)

func (b ScoreBreakdown) Total() int {
	return b.Completeness + b.Realism + b.MatchQuality + b.Engagement
}

// ScoreResult is the outcome of scoring one lead against its matched
// listings. Owned by the call that produced it, never shared.
type ScoreResult struct {
	Total      int            `json:"total"`
	Tier       Tier           `json:"tier"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	MatchedIDs []int64        `json:"matched_ids,omitempty"`
}
