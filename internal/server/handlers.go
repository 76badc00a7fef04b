package server

import (
	"net/http"
	"strings"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/fleet"
	"github.com/ziadkadry99/flinsight/internal/regulation"
	"github.com/ziadkadry99/flinsight/internal/weather"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Flinsight API is running",
	})
}

func (s *Server) handleAircraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fleet.Catalog(regulation.PriorityICAO(s.svc.Policy())))
}

type weatherRequest struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

func (s *Server) handleWeatherAt(w http.ResponseWriter, r *http.Request) {
	var req weatherRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Departure) == "" || strings.TrimSpace(req.Arrival) == "" {
		writeError(w, http.StatusBadRequest, "departure and arrival are required", "both station codes must be provided")
		return
	}

	report := func(station string) string {
		if s.weather == nil {
			return weather.Format(nil)
		}
		return s.weather.Report(r.Context(), station)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"departure": report(req.Departure),
		"arrival":   report(req.Arrival),
	})
}

type analyzeResponse struct {
	FlightID      string                   `json:"flight_id"`
	FlightDetails compliance.FlightRequest `json:"flight_details"`
	Analysis      compliance.Analysis      `json:"analysis"`
	Degraded      bool                     `json:"degraded"`
}

func (s *Server) handleAnalyzeFlight(w http.ResponseWriter, r *http.Request) {
	var req compliance.FlightRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.AnalyzeFlight(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		FlightID:      res.FlightID,
		FlightDetails: res.Details,
		Analysis:      res.Analysis.Value,
		Degraded:      res.Analysis.Degraded,
	})
}

func (s *Server) handleRegulations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records := s.svc.ListRegulations(r.Context(), regulation.Query{
		Category:              q.Get("category"),
		Search:                q.Get("search"),
		AircraftType:          q.Get("aircraft_type"),
		ExcludePrioritization: q.Get("exclude_prioritization"),
	})
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleFAAUpdates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"updates": s.svc.RecentUpdates(r.Context()),
	})
}

type actionItemsRequest struct {
	FlightID string `json:"flight_id"`
}

type actionItemsResponse struct {
	Status      string                  `json:"status"`
	ActionItems []compliance.ActionItem `json:"action_items"`
	Degraded    bool                    `json:"degraded"`
}

func (s *Server) handleGenerateActionItems(w http.ResponseWriter, r *http.Request) {
	var req actionItemsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := s.svc.GenerateActionItems(r.Context(), req.FlightID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionItemsResponse{
		Status:      "success",
		ActionItems: out.Value,
		Degraded:    out.Degraded,
	})
}

// handleListActionItems returns the stored items for ?flight_id=.
func (s *Server) handleListActionItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ActionItems(r.Context(), r.URL.Query().Get("flight_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionItemsResponse{Status: "success", ActionItems: items})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response        string              `json:"response"`
	RegulationsUsed []regulation.Record `json:"regulations_used"`
	Degraded        bool                `json:"degraded"`
}

func newChatResponse(out compliance.Outcome[compliance.ChatReply]) chatResponse {
	return chatResponse{
		Response:        out.Value.Response,
		RegulationsUsed: out.Value.RegulationsUsed,
		Degraded:        out.Degraded,
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := s.svc.Chat(r.Context(), req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newChatResponse(out))
}
