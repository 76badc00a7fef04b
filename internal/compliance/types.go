package compliance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/flinsight/internal/regulation"
)

var (
	// ErrInvalidInput marks a request that is missing a required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned by repositories when a requested entry does not exist.
	ErrNotFound = errors.New("not found")

	errNoModel = errors.New("no generation model configured")
)

// FlightRequest describes a planned flight.
type FlightRequest struct {
	Departure  string `json:"departure" firestore:"departure"`
	Arrival    string `json:"arrival" firestore:"arrival"`
	Aircraft   string `json:"aircraft" firestore:"aircraft"`
	Date       string `json:"date" firestore:"date"`
	Passengers int    `json:"passengers" firestore:"passengers"`
}

// Validate checks the fields a flight analysis cannot do without.
func (f FlightRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Departure) == "" {
		missing = append(missing, "departure")
	}
	if strings.TrimSpace(f.Arrival) == "" {
		missing = append(missing, "arrival")
	}
	if strings.TrimSpace(f.Aircraft) == "" {
		missing = append(missing, "aircraft")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// Analysis holds three index-aligned lists: entry i of each list describes
// the same regulation.
type Analysis struct {
	ApplicableRegulations []string `json:"applicable_regulations" firestore:"applicable_regulations"`
	ComplianceRisks       []string `json:"compliance_risks" firestore:"compliance_risks"`
	RequiredActions       []string `json:"required_actions" firestore:"required_actions"`
}

// Aligned reports whether all three lists are present and of equal length.
func (a Analysis) Aligned() bool {
	if a.ApplicableRegulations == nil || a.ComplianceRisks == nil || a.RequiredActions == nil {
		return false
	}
	n := len(a.ApplicableRegulations)
	return len(a.ComplianceRisks) == n && len(a.RequiredActions) == n
}

// FlightAnalysis is a persisted analysis of one flight.
type FlightAnalysis struct {
	ID string `json:"id" firestore:"id"`
	FlightRequest
	Analysis  Analysis  `json:"analysis" firestore:"analysis"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

// FlightResult is the answer to an analyze-flight request.
type FlightResult struct {
	FlightID string
	Details  FlightRequest
	Analysis Outcome[Analysis]
}

// StatusPending is the status of a newly generated action item.
const StatusPending = "pending"

// ActionItem is one compliance task for a flight.
type ActionItem struct {
	ID              string    `json:"id,omitempty" firestore:"id"`
	FlightID        string    `json:"flight_id,omitempty" firestore:"flight_id"`
	Title           string    `json:"title" firestore:"title"`
	Description     string    `json:"description" firestore:"description"`
	DueDate         string    `json:"due_date" firestore:"due_date"`
	ResponsibleRole string    `json:"responsible_role" firestore:"responsible_role"`
	Status          string    `json:"status,omitempty" firestore:"status"`
	CreatedAt       time.Time `json:"created_at,omitempty" firestore:"created_at"`
}

// complete reports whether the model filled in every field.
func (a ActionItem) complete() bool {
	return a.Title != "" && a.Description != "" && a.DueDate != "" && a.ResponsibleRole != ""
}

// UpdateAnalysis is the model's reading of a regulation update.
type UpdateAnalysis struct {
	Applicability string `json:"applicability" firestore:"applicability"`
}

// Update is a recently dated regulation tracked for applicability review.
type Update struct {
	regulation.Record
	Processed  bool            `json:"processed" firestore:"processed"`
	AIAnalysis *UpdateAnalysis `json:"ai_analysis,omitempty" firestore:"ai_analysis,omitempty"`
	Timestamp  time.Time       `json:"timestamp" firestore:"timestamp"`
}

// ChatReply is the answer to one chat turn.
type ChatReply struct {
	Response        string              `json:"response"`
	RegulationsUsed []regulation.Record `json:"regulations_used"`
}
