// Package region normalizes free-text locations, region name variants and
// postal codes onto the canonical region set. All lookups are total: input
// that matches nothing yields domain.RegionUnknown, never an error.
package region

import (
	"regexp"
	"sort"
	"strings"

	"github.com/brokera/leadmatch/internal/core/domain"
)

// gazetteer maps known city/area names (with and without diacritics) to
// their canonical region.
var gazetteer = map[string]domain.Region{
	"praha": domain.RegionPraha,

	"kladno":         domain.RegionStredniCechy,
	"mladá boleslav": domain.RegionStredniCechy,
	"mlada boleslav": domain.RegionStredniCechy,
	"kolín":          domain.RegionStredniCechy,
	"kolin":          domain.RegionStredniCechy,

	"plzeň":            domain.RegionJizniCechy,
	"plzen":            domain.RegionJizniCechy,
	"české budějovice": domain.RegionJizniCechy,
	"ceske budejovice": domain.RegionJizniCechy,
	"tábor":            domain.RegionJizniCechy,
	"tabor":            domain.RegionJizniCechy,

	"liberec":       domain.RegionSeverniCechy,
	"ústí nad labem": domain.RegionSeverniCechy,
	"usti nad labem": domain.RegionSeverniCechy,
	"karlovy vary":  domain.RegionSeverniCechy,
	"most":          domain.RegionSeverniCechy,

	"hradec králové": domain.RegionVychodniCechy,
	"hradec kralove": domain.RegionVychodniCechy,
	"pardubice":      domain.RegionVychodniCechy,
	"jihlava":        domain.RegionVychodniCechy,

	"brno":    domain.RegionJizniMorava,
	"znojmo":  domain.RegionJizniMorava,
	"vyškov":  domain.RegionJizniMorava,
	"vyskov":  domain.RegionJizniMorava,

	"ostrava":       domain.RegionSeverniMorava,
	"olomouc":       domain.RegionSeverniMorava,
	"opava":         domain.RegionSeverniMorava,
	"zlín":          domain.RegionSeverniMorava,
	"zlin":          domain.RegionSeverniMorava,
	"frýdek-místek": domain.RegionSeverniMorava,
	"frydek-mistek": domain.RegionSeverniMorava,

	"bratislava": domain.RegionSlovensko,
	"košice":     domain.RegionSlovensko,
	"kosice":     domain.RegionSlovensko,
	"žilina":     domain.RegionSlovensko,
	"zilina":     domain.RegionSlovensko,
	"nitra":      domain.RegionSlovensko,
}

// aliases map region name variants and colloquial phrases to a canonical
// region. Longer phrases must win over their substrings ("jižní morava"
// before "morava"), so matching iterates by descending phrase length.
var aliases = map[string]domain.Region{
	"prague":      domain.RegionPraha,
	"u prahy":     domain.RegionPraha,
	"okolí prahy": domain.RegionPraha,
	"okoli prahy": domain.RegionPraha,
	"near prague": domain.RegionPraha,

	"střední čechy": domain.RegionStredniCechy,
	"stredni cechy": domain.RegionStredniCechy,

	"jižní čechy": domain.RegionJizniCechy,
	"jizni cechy": domain.RegionJizniCechy,

	"severní čechy": domain.RegionSeverniCechy,
	"severni cechy": domain.RegionSeverniCechy,

	"východní čechy": domain.RegionVychodniCechy,
	"vychodni cechy": domain.RegionVychodniCechy,

	"jižní morava": domain.RegionJizniMorava,
	"jizni morava": domain.RegionJizniMorava,
	"morava":       domain.RegionJizniMorava,
	"moravě":       domain.RegionJizniMorava,
	"morave":       domain.RegionJizniMorava,
	"moravia":      domain.RegionJizniMorava,

	"severní morava": domain.RegionSeverniMorava,
	"severni morava": domain.RegionSeverniMorava,
	"slezsko":        domain.RegionSeverniMorava,
	"silesia":        domain.RegionSeverniMorava,
	"ostravsko":      domain.RegionSeverniMorava,

	"slovensko": domain.RegionSlovensko,
	"slovensku": domain.RegionSlovensko,
	"slovakia":  domain.RegionSlovensko,
}

// Matching iterates fixed orderings so that Detect stays deterministic for
// text mentioning several places.
var (
	orderedGazetteer = orderPhrases(gazetteer)
	orderedAliases   = orderPhrases(aliases)
)

func orderPhrases(table map[string]domain.Region) []string {
	out := make([]string, 0, len(table))
	for phrase := range table {
		out = append(out, phrase)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

var postalCodeRe = regexp.MustCompile(`\b[0-9]{3,5}\b`)

// Detect resolves free text to a canonical region. Resolution order, first
// match wins: gazetteer city substring, alias/variant phrase, postal code.
func Detect(text string) domain.Region {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return domain.RegionUnknown
	}

	for _, city := range orderedGazetteer {
		if strings.Contains(normalized, city) {
			return gazetteer[city]
		}
	}
	for _, phrase := range orderedAliases {
		if strings.Contains(normalized, phrase) {
			return aliases[phrase]
		}
	}
	if code := postalCodeRe.FindString(normalized); code != "" {
		if region := fromPostalCode(code); region != domain.RegionUnknown {
			return region
		}
	}
	return domain.RegionUnknown
}

// Normalize maps a region name variant to its canonical region. It is
// idempotent: canonical slugs and display names normalize to themselves,
// unknown input stays unknown.
func Normalize(name string) domain.Region {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return domain.RegionUnknown
	}

	if candidate := domain.Region(normalized); candidate.IsKnown() {
		return candidate
	}
	for _, region := range domain.KnownRegions() {
		if normalized == strings.ToLower(region.DisplayName()) {
			return region
		}
	}
	if region, ok := gazetteer[normalized]; ok {
		return region
	}
	for _, phrase := range orderedAliases {
		if strings.Contains(normalized, phrase) {
			return aliases[phrase]
		}
	}
	return domain.RegionUnknown
}

// FromLocations returns the first region detectable from a list of
// preferred locations, or unknown.
func FromLocations(locations []string) domain.Region {
	for _, location := range locations {
		if region := Detect(location); region != domain.RegionUnknown {
			return region
		}
	}
	return domain.RegionUnknown
}

// fromPostalCode buckets a 3-5 digit postal code by its leading digit,
// following the Czech and Slovak postal ranges.
func fromPostalCode(code string) domain.Region {
	if code == "" {
		return domain.RegionUnknown
	}
	switch code[0] {
	case '1':
		return domain.RegionPraha
	case '2':
		return domain.RegionStredniCechy
	case '3':
		return domain.RegionJizniCechy
	case '4':
		return domain.RegionSeverniCechy
	case '5':
		return domain.RegionVychodniCechy
	case '6':
		return domain.RegionJizniMorava
	case '7':
		return domain.RegionSeverniMorava
	case '0', '8', '9':
		return domain.RegionSlovensko
	default:
		return domain.RegionUnknown
	}
}
