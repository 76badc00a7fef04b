package compliance

import (
	"strings"

	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// Due dates and roles used by the fallback checklist.
const (
	fallbackDueDate = "3 days before departure"
	fallbackRole    = "Pilot/Dispatch"
)

// FallbackAnalysis derives an analysis directly from the records.
func FallbackAnalysis(records []regulation.Record) Analysis {
	a := Analysis{
		ApplicableRegulations: make([]string, 0, len(records)),
		ComplianceRisks:       make([]string, 0, len(records)),
		RequiredActions:       make([]string, 0, len(records)),
	}
	for _, r := range records {
		a.ApplicableRegulations = append(a.ApplicableRegulations, r.ID+": "+r.Title)
		a.ComplianceRisks = append(a.ComplianceRisks, "Potential non-compliance with "+r.Title)
		a.RequiredActions = append(a.RequiredActions, "Verify compliance with "+r.Title)
	}
	return a
}

// GenericActionItems is the checklist used when nothing is known about the flight.
func GenericActionItems() []ActionItem {
	return []ActionItem{
		{
			Title:           "Review applicable regulations",
			Description:     "Review all regulations applicable to this flight.",
			DueDate:         "3 days before departure",
			ResponsibleRole: "Pilot",
		},
		{
			Title:           "Check MEL items",
			Description:     "Verify all MEL items are addressed before departure.",
			DueDate:         "1 day before departure",
			ResponsibleRole: "Maintenance",
		},
	}
}

// FallbackActionItems builds one review item per applicable regulation of
// the analysis, or the generic checklist when it names none.
func FallbackActionItems(a Analysis) []ActionItem {
	if len(a.ApplicableRegulations) == 0 {
		return GenericActionItems()
	}
	items := make([]ActionItem, 0, len(a.ApplicableRegulations))
	for i, reg := range a.ApplicableRegulations {
		desc := "Confirm the flight complies with " + reg + "."
		if i < len(a.ComplianceRisks) && a.ComplianceRisks[i] != "" {
			desc = a.ComplianceRisks[i]
		}
		items = append(items, ActionItem{
			Title:           "Review " + reg,
			Description:     desc,
			DueDate:         fallbackDueDate,
			ResponsibleRole: fallbackRole,
		})
	}
	return items
}

// FallbackChat answers a chat turn without the model by listing the
// retrieved sections.
func FallbackChat(records []regulation.Record) string {
	if len(records) == 0 {
		return "The regulations assistant is unavailable right now and no related sections were found. Please try again later."
	}
	var b strings.Builder
	b.WriteString("The regulations assistant is unavailable right now. These sections look related to your question:\n")
	for _, r := range records {
		b.WriteString("- Section ")
		b.WriteString(r.ID)
		b.WriteString(", ")
		b.WriteString(r.Title)
		b.WriteString("\n")
	}
	return b.String()
}

// SampleFlight is the reference flight used when no analysis is stored.
func SampleFlight() FlightAnalysis {
	return FlightAnalysis{
		FlightRequest: FlightRequest{
			Departure:  "KJFK",
			Arrival:    "EGLL",
			Aircraft:   "Gulfstream 550",
			Date:       "2025-04-15",
			Passengers: 12,
		},
		Analysis: Analysis{
			ApplicableRegulations: []string{
				"AC GLF5-2025-01: Gulfstream 550 RVSM Operations",
				"LOI 2025-G550-01: Gulfstream 550 MEL Requirements",
				"AC 135-12B: Oxygen Mask Inspection",
			},
			ComplianceRisks: []string{
				"Non-compliance with RVSM requirements could result in routing restrictions",
				"Outdated MEL items may cause operational delays",
				"Oxygen system deficiencies may restrict high-altitude operations",
			},
			RequiredActions: []string{},
		},
	}
}
