// Command seeder loads a JSON listing catalog into postgres and emits an
// upsert event per listing so the worker indexes them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/brokera/leadmatch/internal/bootstrap"
	"github.com/brokera/leadmatch/internal/config"
	"github.com/brokera/leadmatch/internal/core/domain"
	"github.com/brokera/leadmatch/internal/core/region"
	"github.com/brokera/leadmatch/internal/observability/logging"
)

func main() {
	catalogPath := flag.String("catalog", "", "path to a JSON file with an array of listings")
	flag.Parse()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("seeder", cfg.LogLevel))

	if *catalogPath == "" {
		log.Fatal("seeder: -catalog is required")
	}

	listings, err := loadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("seeder: %v", err)
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	seeded := 0
	for _, listing := range listings {
		if err := app.Listings.Upsert(ctx, listing); err != nil {
			log.Fatalf("seeder: upsert listing %d: %v", listing.ID, err)
		}
		if err := app.Queue.PublishListingUpserted(ctx, listing.ID); err != nil {
			log.Fatalf("seeder: publish listing %d: %v", listing.ID, err)
		}
		seeded++
	}
	slog.Info("catalog seeded", "listings", seeded)
}

func loadCatalog(path string) ([]domain.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	for i := range listings {
		if err := normalizeListing(&listings[i]); err != nil {
			return nil, fmt.Errorf("listing %d: %w", listings[i].ID, err)
		}
	}
	return listings, nil
}

// normalizeListing maps Czech catalog conventions onto the canonical
// fields: "ihned" availability and free-text locations without a region.
func normalizeListing(listing *domain.Listing) error {
	if listing.ID <= 0 {
		return fmt.Errorf("non-positive id")
	}
	if !listing.PropertyType.IsValid() {
		return fmt.Errorf("unknown property type %q", listing.PropertyType)
	}
	if listing.AreaSqm <= 0 || listing.PricePerSqm <= 0 {
		return fmt.Errorf("non-positive area or price")
	}

	if strings.EqualFold(strings.TrimSpace(listing.Availability), "ihned") {
		listing.Availability = domain.AvailabilityImmediate
	}
	if listing.Region == domain.RegionUnknown {
		listing.Region = region.Detect(listing.Location)
	}
	return nil
}
