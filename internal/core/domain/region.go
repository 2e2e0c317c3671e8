package domain

// Region is one of the fixed canonical geographic groupings used for
// filtering and matching. The set follows the first digit of Czech and
// Slovak postal codes.
type Region string

const (
	RegionUnknown       Region = ""
	RegionPraha         Region = "praha"
	RegionStredniCechy  Region = "stredni-cechy"
	RegionJizniCechy    Region = "jizni-cechy"
	RegionSeverniCechy  Region = "severni-cechy"
	RegionVychodniCechy Region = "vychodni-cechy"
	RegionJizniMorava   Region = "jizni-morava"
	RegionSeverniMorava Region = "severni-morava"
	RegionSlovensko     Region = "slovensko"
)

// AreaFamily is the broader grouping used for partial location credit.
type AreaFamily string

const (
	FamilyUnknown  AreaFamily = ""
	FamilyBohemia  AreaFamily = "bohemia"
	FamilyMoravia  AreaFamily = "moravia"
	FamilySlovakia AreaFamily = "slovakia"
)

var regionDisplayNames = map[Region]string{
	RegionPraha:         "Praha",
	RegionStredniCechy:  "Střední Čechy",
	RegionJizniCechy:    "Jižní Čechy",
	RegionSeverniCechy:  "Severní Čechy",
	RegionVychodniCechy: "Východní Čechy",
	RegionJizniMorava:   "Jižní Morava",
	RegionSeverniMorava: "Severní Morava",
	RegionSlovensko:     "Slovensko",
}

// KnownRegions lists all canonical regions in a stable order.
func KnownRegions() []Region {
	return []Region{
		RegionPraha,
		RegionStredniCechy,
		RegionJizniCechy,
		RegionSeverniCechy,
		RegionVychodniCechy,
		RegionJizniMorava,
		RegionSeverniMorava,
		RegionSlovensko,
	}
}

func (r Region) IsKnown() bool {
	_, ok := regionDisplayNames[r]
	return ok
}

// DisplayName returns the Czech display name, or an empty string for
// unknown regions.
func (r Region) DisplayName() string {
	return regionDisplayNames[r]
}

// Family maps a region onto its broader area family.
func (r Region) Family() AreaFamily {
	switch r {
	case RegionPraha, RegionStredniCechy, RegionJizniCechy, RegionSeverniCechy, RegionVychodniCechy:
		return FamilyBohemia
	case RegionJizniMorava, RegionSeverniMorava:
		return FamilyMoravia
	case RegionSlovensko:
		return FamilySlovakia
	default:
		return FamilyUnknown
	}
}
