package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/brokera/leadmatch/internal/core/domain"
)

type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/seeder startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS listings (
	id BIGINT PRIMARY KEY,
	property_type TEXT NOT NULL,
	location TEXT NOT NULL,
	region TEXT NOT NULL DEFAULT '',
	area_sqm INTEGER NOT NULL,
	price_per_sqm INTEGER NOT NULL,
	availability TEXT NOT NULL DEFAULT '',
	is_featured BOOLEAN NOT NULL DEFAULT FALSE,
	is_hot BOOLEAN NOT NULL DEFAULT FALSE,
	priority_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	amenities JSONB NOT NULL DEFAULT '[]'::jsonb,
	description TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type);
CREATE INDEX IF NOT EXISTS idx_listings_region ON listings(region);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ListingRepository) Upsert(ctx context.Context, listing domain.Listing) error {
	amenitiesJSON, err := json.Marshal(listing.Amenities)
	if err != nil {
		return fmt.Errorf("marshal amenities: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO listings (
	id, property_type, location, region, area_sqm, price_per_sqm,
	availability, is_featured, is_hot, priority_score, amenities, description, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
	property_type = EXCLUDED.property_type,
	location = EXCLUDED.location,
	region = EXCLUDED.region,
	area_sqm = EXCLUDED.area_sqm,
	price_per_sqm = EXCLUDED.price_per_sqm,
	availability = EXCLUDED.availability,
	is_featured = EXCLUDED.is_featured,
	is_hot = EXCLUDED.is_hot,
	priority_score = EXCLUDED.priority_score,
	amenities = EXCLUDED.amenities,
	description = EXCLUDED.description,
	updated_at = EXCLUDED.updated_at
`,
		listing.ID, string(listing.PropertyType), listing.Location, string(listing.Region),
		listing.AreaSqm, listing.PricePerSqm, listing.Availability, listing.IsFeatured,
		listing.IsHot, listing.PriorityScore, amenitiesJSON, listing.Description, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	return nil
}

const listingColumns = `id, property_type, location, region, area_sqm, price_per_sqm,
	availability, is_featured, is_hot, priority_score, amenities, description`

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE id = $1
`, id)

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrListingNotFound, "get listing", fmt.Errorf("id %d", id))
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	return listing, nil
}

func (r *ListingRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE id = ANY($1)
ORDER BY id
`, ids)
	if err != nil {
		return nil, fmt.Errorf("query listings by ids: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+listingColumns+`
FROM listings
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func collectListings(rows *sql.Rows) ([]domain.Listing, error) {
	var out []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var listing domain.Listing
	var propertyType, region string
	var amenitiesRaw []byte

	err := row.Scan(
		&listing.ID, &propertyType, &listing.Location, &region, &listing.AreaSqm,
		&listing.PricePerSqm, &listing.Availability, &listing.IsFeatured, &listing.IsHot,
		&listing.PriorityScore, &amenitiesRaw, &listing.Description,
	)
	if err != nil {
		return nil, err
	}

	if len(amenitiesRaw) > 0 {
		if err := json.Unmarshal(amenitiesRaw, &listing.Amenities); err != nil {
			return nil, fmt.Errorf("unmarshal amenities: %w", err)
		}
	}
	listing.PropertyType = domain.PropertyType(propertyType)
	listing.Region = domain.Region(region)
	return &listing, nil
}
