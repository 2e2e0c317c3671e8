package usecase

import (
	"strings"

	"github.com/brokera/leadmatch/internal/core/domain"
	"github.com/brokera/leadmatch/internal/core/region"
)

// Property-type synonym table. Order inside each list matters: the first
// synonym differing from the matched term becomes the substitution variant.
var propertyTypeSynonyms = []struct {
	term     string
	synonyms []string
}{
	{"skladové prostory", []string{"sklad", "warehouse"}},
	{"kancelářské prostory", []string{"kancelář", "office"}},
	{"warehouse", []string{"sklad", "skladové prostory"}},
	{"sklad", []string{"skladové prostory", "warehouse", "hala"}},
	{"kancelář", []string{"kancelářské prostory", "office"}},
	{"kancelar", []string{"kancelářské prostory", "office"}},
	{"office", []string{"kancelář", "kancelářské prostory"}},
	{"hala", []string{"sklad", "skladové prostory"}},
}

// expandQuery produces a bounded, deduplicated set of query variants. The
// original query is always variant one; a type-synonym substitution and a
// region-scoped variant follow when derivable. With nothing to expand the
// result degrades to the original query alone.
func expandQuery(query string, req domain.Requirements, maxVariants int) []string {
	if maxVariants <= 0 {
		maxVariants = 3
	}

	variants := make([]string, 0, maxVariants)
	seen := make(map[string]struct{}, maxVariants)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || len(variants) >= maxVariants {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	add(query)

	lower := strings.ToLower(query)
	for _, entry := range propertyTypeSynonyms {
		if !strings.Contains(lower, entry.term) {
			continue
		}
		for _, synonym := range entry.synonyms {
			if synonym == entry.term {
				continue
			}
			add(strings.ReplaceAll(lower, entry.term, synonym))
			break
		}
		break
	}

	if detected := regionForQuery(query, req); detected != domain.RegionUnknown {
		add(strings.TrimSpace(query) + " " + detected.DisplayName())
	}

	return variants
}

// regionForQuery resolves the region to scope a variant by: detected from
// the query text first, then declared preferences.
func regionForQuery(query string, req domain.Requirements) domain.Region {
	if detected := region.Detect(query); detected != domain.RegionUnknown {
		return detected
	}
	if len(req.PreferredRegions) > 0 {
		return req.PreferredRegions[0]
	}
	return region.FromLocations(req.PreferredLocations)
}
