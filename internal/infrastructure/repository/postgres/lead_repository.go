package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brokera/leadmatch/internal/core/domain"
)

// LeadRepository persists scored leads so brokers can pull the HOT queue
// and revisit how a score was put together.
type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082502)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS scored_leads (
	id TEXT PRIMARY KEY,
	requirements JSONB NOT NULL,
	total INTEGER NOT NULL,
	tier TEXT NOT NULL,
	breakdown JSONB NOT NULL,
	matched_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scored_leads_tier ON scored_leads(tier);
CREATE INDEX IF NOT EXISTS idx_scored_leads_created_at ON scored_leads(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *LeadRepository) SaveScoredLead(
	ctx context.Context,
	req domain.Requirements,
	result domain.ScoreResult,
) (string, error) {
	requirementsJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal requirements: %w", err)
	}
	breakdownJSON, err := json.Marshal(result.Breakdown)
	if err != nil {
		return "", fmt.Errorf("marshal breakdown: %w", err)
	}
	matchedJSON, err := json.Marshal(result.MatchedIDs)
	if err != nil {
		return "", fmt.Errorf("marshal matched ids: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
INSERT INTO scored_leads (id, requirements, total, tier, breakdown, matched_ids, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, id, requirementsJSON, result.Total, string(result.Tier), breakdownJSON, matchedJSON, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert scored lead: %w", err)
	}
	return id, nil
}
