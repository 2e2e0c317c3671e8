package ollama

import (
	"fmt"
	"strings"

	"github.com/brokera/leadmatch/internal/core/domain"
)

func buildJudgePrompt(query string, listing domain.Listing, req domain.Requirements) string {
	var constraints strings.Builder
	if req.PropertyType != "" {
		fmt.Fprintf(&constraints, "- property type: %s\n", req.PropertyType)
	}
	if req.HasAreaRange() {
		fmt.Fprintf(&constraints, "- area: %d-%d m2\n", req.MinAreaSqm, req.MaxAreaSqm)
	}
	if req.MaxPricePerSqm > 0 {
		fmt.Fprintf(&constraints, "- max price: %d CZK/m2/month\n", req.MaxPricePerSqm)
	}
	if req.HasLocationPreference() {
		fmt.Fprintf(&constraints, "- locations: %s\n", strings.Join(req.PreferredLocations, ", "))
	}
	if constraints.Len() == 0 {
		constraints.WriteString("- none\n")
	}

	return fmt.Sprintf(`You grade commercial property listings against a tenant query.
The query may be in Czech. Return strict JSON: {"relevance": <number 0-10>}.
5 means the listing matches the query as well as the structured data suggests;
above 5 means the free text reveals a better fit, below 5 a worse one.
No markdown, no extra keys.

Query:
%s

Stated requirements:
%sListing:
%s
`, query, constraints.String(), listing.SearchText())
}
