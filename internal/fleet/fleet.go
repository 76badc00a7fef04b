// Package fleet holds the static aircraft catalog.
package fleet

import (
	"strings"

	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// Aircraft is a catalog entry.
type Aircraft struct {
	ID                     string   `json:"id"`
	Type                   string   `json:"type"`
	Model                  string   `json:"model"`
	ICAO                   string   `json:"icao"`
	Description            string   `json:"description"`
	Ceiling                int      `json:"ceiling"`
	Range                  int      `json:"range"`
	MaxPassengers          int      `json:"max_passengers"`
	SpecialRequirements    []string `json:"special_requirements,omitempty"`
	CommonComplianceIssues []string `json:"common_compliance_issues,omitempty"`
}

// Name is the display name, e.g. "Gulfstream 550".
func (a Aircraft) Name() string {
	return a.Type + " " + a.Model
}

var catalog = []Aircraft{
	{
		ID:            "g550",
		Type:          "Gulfstream",
		Model:         "550",
		ICAO:          "GLF5",
		Description:   "Large cabin, ultra-long-range business jet",
		Ceiling:       51000,
		Range:         6750,
		MaxPassengers: 19,
		SpecialRequirements: []string{
			"High-altitude operations require supplemental oxygen system checks",
			"Extended overwater operations require additional emergency equipment",
			"RVSM airspace compliance required for optimal routing",
		},
		CommonComplianceIssues: []string{
			"Oxygen system inspection requirements",
			"MEL requirements for international operations",
			"Flight crew rest requirements for ultra-long-range flights",
		},
	},
	{
		ID:            "g650",
		Type:          "Gulfstream",
		Model:         "650",
		ICAO:          "GLF6",
		Description:   "Ultra-long-range business jet",
		Ceiling:       51000,
		Range:         7000,
		MaxPassengers: 19,
	},
	{
		ID:            "c172",
		Type:          "Cessna",
		Model:         "172",
		ICAO:          "C172",
		Description:   "Single-engine light aircraft",
		Ceiling:       14000,
		Range:         800,
		MaxPassengers: 3,
	},
	{
		ID:            "pc12",
		Type:          "Pilatus",
		Model:         "PC-12",
		ICAO:          "PC12",
		Description:   "Single-engine turboprop",
		Ceiling:       30000,
		Range:         1700,
		MaxPassengers: 9,
	},
}

// Catalog returns the aircraft with priorityICAO first, the rest in
// catalog order. An empty priorityICAO keeps catalog order.
func Catalog(priorityICAO string) []Aircraft {
	return regulation.Prioritize(catalog, func(a Aircraft) bool {
		return priorityICAO != "" && strings.EqualFold(a.ICAO, priorityICAO)
	})
}
