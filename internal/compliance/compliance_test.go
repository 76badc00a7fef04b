package compliance

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/flinsight/internal/llm"
	"github.com/ziadkadry99/flinsight/internal/regulation"
	"github.com/ziadkadry99/flinsight/internal/retrieval"
)

// --- stubs ---

type stubSearcher struct {
	result  retrieval.Retrieval
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string, k int) retrieval.Retrieval {
	s.queries = append(s.queries, query)
	res := s.result
	if res.Available && len(res.Records) > k {
		res.Records = res.Records[:k]
	}
	return res
}

type stubDocs []regulation.Record

func (d stubDocs) Snapshot() regulation.Snapshot {
	return regulation.Snapshot{Generation: 1, Records: d}
}

// funcProvider answers with fn and records every request.
type funcProvider struct {
	mu    sync.Mutex
	fn    func(req llm.CompletionRequest) (string, error)
	calls []llm.CompletionRequest
}

func (p *funcProvider) Name() string { return "stub" }

func (p *funcProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()
	text, err := p.fn(req)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: text, Model: "stub"}, nil
}

func answer(text string) *funcProvider {
	return &funcProvider{fn: func(llm.CompletionRequest) (string, error) { return text, nil }}
}

func failing(err error) *funcProvider {
	return &funcProvider{fn: func(llm.CompletionRequest) (string, error) { return "", err }}
}

type stubWeather struct{}

func (stubWeather) Report(_ context.Context, station string) string {
	return "observation time: N/A, temperature: 12 C at " + station
}

// memRepo implements every repository in memory.
type memRepo struct {
	flights  []FlightAnalysis
	items    []ActionItem
	updates  map[string]Update
	regs     []regulation.Record
	saveErr  error
	listErr  error
	updSaves int
}

func newMemRepo() *memRepo {
	return &memRepo{updates: map[string]Update{}}
}

func (m *memRepo) SaveFlightAnalysis(_ context.Context, fa FlightAnalysis) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.flights = append(m.flights, fa)
	return nil
}

func (m *memRepo) FlightAnalysis(_ context.Context, id string) (*FlightAnalysis, error) {
	for i := range m.flights {
		if m.flights[i].ID == id {
			fa := m.flights[i]
			return &fa, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) LatestFlightAnalysis(_ context.Context) (*FlightAnalysis, error) {
	if len(m.flights) == 0 {
		return nil, ErrNotFound
	}
	latest := m.flights[0]
	for _, fa := range m.flights[1:] {
		if fa.Timestamp.After(latest.Timestamp) {
			latest = fa
		}
	}
	return &latest, nil
}

func (m *memRepo) SaveActionItem(_ context.Context, item ActionItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = append(m.items, item)
	return nil
}

func (m *memRepo) ActionItems(_ context.Context, flightID string) ([]ActionItem, error) {
	var out []ActionItem
	for _, it := range m.items {
		if it.FlightID == flightID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, id string) (*Update, error) {
	u, ok := m.updates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memRepo) SaveUpdate(_ context.Context, u Update) error {
	m.updSaves++
	m.updates[u.ID] = u
	return nil
}

func (m *memRepo) ListRegulations(_ context.Context, category string) ([]regulation.Record, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []regulation.Record
	for _, r := range m.regs {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	return out, nil
}

var (
	recA = regulation.Record{ID: "A", Title: "T1", Content: "oxygen", Category: regulation.CategoryRegulation, Date: "2025-03-10"}
	recB = regulation.Record{ID: "B", Title: "T2", Content: "altimeter", Category: regulation.CategoryRegulation, Date: regulation.UnknownDate}
)

func newTestService(repo *memRepo, model llm.Provider, search *stubSearcher, docs stubDocs) *Service {
	return New(Deps{
		Retriever:   search,
		Documents:   docs,
		Model:       model,
		Weather:     stubWeather{},
		Flights:     repo,
		ActionItems: repo,
		Updates:     repo,
		Regulations: repo,
		Policy:      regulation.PolicyFor("GLF5"),
	})
}

var g550Flight = FlightRequest{Departure: "KJFK", Arrival: "EGLL", Aircraft: "Gulfstream 550", Date: "2025-04-15", Passengers: 12}

// --- outcome ---

func TestOutcome(t *testing.T) {
	f := Fresh(3)
	assert.False(t, f.Degraded)
	assert.Equal(t, 3, f.Value)

	fb := Fallback("x", "model down")
	assert.True(t, fb.Degraded)
	assert.Equal(t, "model down", fb.Reason)
}

// --- flight analysis ---

func TestAnalyzeFlight_MalformedModelOutputFallsBack(t *testing.T) {
	repo := newMemRepo()
	search := &stubSearcher{result: retrieval.Retrieval{Records: []regulation.Record{recA, recB}, Available: true}}
	model := &funcProvider{fn: func(req llm.CompletionRequest) (string, error) {
		if req.ResponseSchema != nil {
			return `{"applicable_regulations": [oops`, nil
		}
		return "oxygen system check", nil
	}}
	svc := newTestService(repo, model, search, nil)

	res, err := svc.AnalyzeFlight(context.Background(), g550Flight)
	require.NoError(t, err)

	assert.True(t, res.Analysis.Degraded)
	assert.Equal(t, []string{"A: T1", "B: T2"}, res.Analysis.Value.ApplicableRegulations)
	assert.Equal(t, []string{"Potential non-compliance with T1", "Potential non-compliance with T2"}, res.Analysis.Value.ComplianceRisks)
	assert.Equal(t, []string{"Verify compliance with T1", "Verify compliance with T2"}, res.Analysis.Value.RequiredActions)
	assert.Equal(t, []string{"oxygen system check"}, search.queries)

	require.Len(t, repo.flights, 1)
	assert.Equal(t, res.FlightID, repo.flights[0].ID)
	assert.Equal(t, "KJFK", repo.flights[0].Departure)
}

func TestAnalyzeFlight_ModelAnswer(t *testing.T) {
	repo := newMemRepo()
	search := &stubSearcher{result: retrieval.Retrieval{Records: []regulation.Record{recA}, Available: true}}
	model := &funcProvider{fn: func(req llm.CompletionRequest) (string, error) {
		if req.ResponseSchema == nil {
			return "risks", nil
		}
		assert.Equal(t, AnalysisSchema, req.ResponseSchema)
		assert.Contains(t, req.Messages[0].Content, `"id": "A"`)
		assert.Contains(t, req.Messages[0].Content, "Departure: KJFK")
		return `{"applicable_regulations":["A: T1"],"compliance_risks":["hypoxia"],"required_actions":["check masks"]}`, nil
	}}
	svc := newTestService(repo, model, search, nil)

	res, err := svc.AnalyzeFlight(context.Background(), g550Flight)
	require.NoError(t, err)
	assert.False(t, res.Analysis.Degraded)
	assert.Equal(t, []string{"hypoxia"}, res.Analysis.Value.ComplianceRisks)
	assert.Len(t, model.calls, 2)
	assert.Contains(t, model.calls[0].Messages[0].Content, "temperature: 12 C at KJFK")
}

func TestAnalyzeFlight_UnequalListsFallBack(t *testing.T) {
	search := &stubSearcher{result: retrieval.Retrieval{Records: []regulation.Record{recA}, Available: true}}
	model := answer(`{"applicable_regulations":["A"],"compliance_risks":[],"required_actions":["x"]}`)
	svc := newTestService(newMemRepo(), model, search, nil)

	res, err := svc.AnalyzeFlight(context.Background(), g550Flight)
	require.NoError(t, err)
	assert.True(t, res.Analysis.Degraded)
	assert.Equal(t, []string{"A: T1"}, res.Analysis.Value.ApplicableRegulations)
}

func TestAnalyzeFlight_RetrievalUnavailableUsesTags(t *testing.T) {
	tagged := regulation.Record{ID: "AC GLF5-2025-01", Title: "Gulfstream 550 RVSM Operations", AircraftTypes: []string{"GLF5"}}
	other := regulation.Record{ID: "X", Title: "Other type", AircraftTypes: []string{"C172"}}
	docs := stubDocs{recA, other, tagged, recB, {ID: "C", Title: "T3"}}
	search := &stubSearcher{}

	svc := newTestService(newMemRepo(), nil, search, docs)
	res, err := svc.AnalyzeFlight(context.Background(), g550Flight)
	require.NoError(t, err)

	assert.True(t, res.Analysis.Degraded)
	assert.Equal(t, []string{
		"AC GLF5-2025-01: Gulfstream 550 RVSM Operations",
		"A: T1",
		"B: T2",
	}, res.Analysis.Value.ApplicableRegulations)
	require.Len(t, search.queries, 1)
	assert.Equal(t, FlightContext(g550Flight), search.queries[0])
}

func TestAnalyzeFlight_NonPriorityAircraftUsesGeneralRecords(t *testing.T) {
	tagged := regulation.Record{ID: "G", Title: "G550 only", AircraftTypes: []string{"GLF5"}}
	docs := stubDocs{tagged, recA, recB}
	svc := newTestService(newMemRepo(), nil, &stubSearcher{}, docs)

	req := g550Flight
	req.Aircraft = "Cessna 172"
	res, err := svc.AnalyzeFlight(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"A: T1", "B: T2"}, res.Analysis.Value.ApplicableRegulations)
}

func TestAnalyzeFlight_EmptyRetrievalIsNotAFallbackToTags(t *testing.T) {
	search := &stubSearcher{result: retrieval.Retrieval{Records: []regulation.Record{}, Available: true}}
	svc := newTestService(newMemRepo(), nil, search, stubDocs{recA})

	res, err := svc.AnalyzeFlight(context.Background(), g550Flight)
	require.NoError(t, err)
	assert.NotNil(t, res.Analysis.Value.ApplicableRegulations)
	assert.Empty(t, res.Analysis.Value.ApplicableRegulations)
}

func TestAnalyzeFlight_PersistenceFailureIsNotFatal(t *testing.T) {
	repo := newMemRepo()
	repo.saveErr = errors.New("disk full")
	search := &stubSearcher{result: retrieval.Retrieval{Records: []regulation.Record{recA}, Available: true}}
	svc := newTestService(repo, nil, search, nil)

	res, err := svc.AnalyzeFlight(context.Background(), g550Flight)
	require.NoError(t, err)
	assert.NotEmpty(t, res.FlightID)
}

func TestAnalyzeFlight_InvalidInput(t *testing.T) {
	svc := newTestService(newMemRepo(), nil, &stubSearcher{}, nil)
	_, err := svc.AnalyzeFlight(context.Background(), FlightRequest{Departure: "KJFK"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "arrival, aircraft")
}

// --- action items ---

func TestGenerateActionItems_ModelAnswer(t *testing.T) {
	repo := newMemRepo()
	model := answer(`{"action_items":[
		{"title":"Inspect oxygen","description":"90-day check","due_date":"7 days before departure","responsible_role":"Maintenance"},
		{"title":"Incomplete","description":"no role"}
	]}`)
	svc := newTestService(repo, model, &stubSearcher{}, nil)

	out, err := svc.GenerateActionItems(context.Background(), "flight-1")
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	require.Len(t, out.Value, 1)
	assert.Equal(t, "Inspect oxygen", out.Value[0].Title)

	require.Len(t, repo.items, 1)
	assert.Equal(t, "flight-1", repo.items[0].FlightID)
	assert.Equal(t, StatusPending, repo.items[0].Status)
	assert.NotEmpty(t, repo.items[0].ID)
	assert.False(t, repo.items[0].CreatedAt.IsZero())
}

func TestActionItemsListsStoredItems(t *testing.T) {
	repo := newMemRepo()
	repo.items = []ActionItem{
		{ID: "1", FlightID: "f1", Title: "Inspect oxygen"},
		{ID: "2", FlightID: "f2", Title: "Brief crew"},
		{ID: "3", FlightID: "f1", Title: "File flight plan"},
	}
	svc := newTestService(repo, nil, &stubSearcher{}, nil)

	items, err := svc.ActionItems(context.Background(), " f1 ")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "3", items[1].ID)

	items, err = svc.ActionItems(context.Background(), "none")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = svc.ActionItems(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateActionItems_UsesSampleFlightWithoutRequiredActions(t *testing.T) {
	model := answer(`[]`)
	svc := newTestService(newMemRepo(), model, &stubSearcher{}, nil)

	out, err := svc.GenerateActionItems(context.Background(), "unknown")
	require.NoError(t, err)

	require.Len(t, model.calls, 1)
	prompt := model.calls[0].Messages[0].Content
	assert.Contains(t, prompt, "KJFK")
	assert.Contains(t, prompt, "Gulfstream 550")
	assert.NotContains(t, prompt, "required_actions")

	assert.True(t, out.Degraded)
	require.Len(t, out.Value, 3)
	assert.Equal(t, "Review AC GLF5-2025-01: Gulfstream 550 RVSM Operations", out.Value[0].Title)
	assert.Equal(t, "Non-compliance with RVSM requirements could result in routing restrictions", out.Value[0].Description)
	assert.Equal(t, "3 days before departure", out.Value[0].DueDate)
	assert.Equal(t, "Pilot/Dispatch", out.Value[0].ResponsibleRole)
}

func TestGenerateActionItems_PrefersRequestedFlight(t *testing.T) {
	repo := newMemRepo()
	now := time.Now()
	repo.flights = []FlightAnalysis{
		{ID: "old", FlightRequest: FlightRequest{Departure: "KBOS"}, Timestamp: now.Add(-time.Hour),
			Analysis: Analysis{ApplicableRegulations: []string{"135.89: Oxygen"}}},
		{ID: "new", FlightRequest: FlightRequest{Departure: "KLAX"}, Timestamp: now},
	}
	model := failing(errors.New("model down"))
	svc := newTestService(repo, model, &stubSearcher{}, nil)

	out, err := svc.GenerateActionItems(context.Background(), "old")
	require.NoError(t, err)
	assert.Contains(t, model.calls[0].Messages[0].Content, "KBOS")
	require.Len(t, out.Value, 1)
	assert.Equal(t, "Review 135.89: Oxygen", out.Value[0].Title)
	assert.Equal(t, "Confirm the flight complies with 135.89: Oxygen.", out.Value[0].Description)

	out, err = svc.GenerateActionItems(context.Background(), "missing")
	require.NoError(t, err)
	assert.Contains(t, model.calls[1].Messages[0].Content, "KLAX")
	assert.Equal(t, GenericActionItems()[0].Title, out.Value[0].Title)
	assert.Len(t, out.Value, 2)
}

func TestGenerateActionItems_PersistenceFailureKeepsItems(t *testing.T) {
	repo := newMemRepo()
	repo.saveErr = errors.New("read-only")
	svc := newTestService(repo, nil, &stubSearcher{}, nil)

	out, err := svc.GenerateActionItems(context.Background(), "f")
	require.NoError(t, err)
	assert.Len(t, out.Value, 3)
}

func TestGenerateActionItems_RequiresFlightID(t *testing.T) {
	svc := newTestService(newMemRepo(), nil, &stubSearcher{}, nil)
	_, err := svc.GenerateActionItems(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "Flight ID is required")
}

func TestParseActionItems(t *testing.T) {
	items, err := ParseActionItems("```json\n[{\"title\":\"a\",\"description\":\"b\",\"due_date\":\"c\",\"responsible_role\":\"d\"}]\n```")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "d", items[0].ResponsibleRole)

	_, err = ParseActionItems("sorry, I cannot help")
	assert.ErrorIs(t, err, llm.ErrMalformedOutput)

	_, err = ParseActionItems(`[{"title": 3}]`)
	assert.ErrorIs(t, err, llm.ErrMalformedOutput)
}

// --- chat ---

func TestChat_BindsContextIntoSystemPrompt(t *testing.T) {
	search := &stubSearcher{result: retrieval.Retrieval{Records: []regulation.Record{recA}, Available: true}}
	model := answer("Use oxygen above FL250.")
	svc := newTestService(newMemRepo(), model, search, nil)

	out, err := svc.Chat(context.Background(), "When is oxygen required?")
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	assert.Equal(t, "Use oxygen above FL250.", out.Value.Response)
	assert.Equal(t, []regulation.Record{recA}, out.Value.RegulationsUsed)

	msgs := model.calls[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Section A, T1:\noxygen")
	assert.Equal(t, "When is oxygen required?", msgs[1].Content)
}

func TestChat_IsStatelessPerTurn(t *testing.T) {
	search := &stubSearcher{result: retrieval.Retrieval{Records: []regulation.Record{recA}, Available: true}}
	model := answer("ok")
	svc := newTestService(newMemRepo(), model, search, nil)

	_, _ = svc.Chat(context.Background(), "first")
	_, _ = svc.Chat(context.Background(), "second")
	require.Len(t, model.calls, 2)
	assert.Len(t, model.calls[1].Messages, 2)
	assert.Equal(t, []string{"first", "second"}, search.queries)
}

func TestChat_FallbackListsSections(t *testing.T) {
	search := &stubSearcher{result: retrieval.Retrieval{Records: []regulation.Record{recA, recB}, Available: true}}
	svc := newTestService(newMemRepo(), failing(errors.New("timeout")), search, nil)

	out, err := svc.Chat(context.Background(), "oxygen?")
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Contains(t, out.Value.Response, "- Section A, T1\n- Section B, T2\n")
}

func TestChat_UnavailableRetrievalStillAnswers(t *testing.T) {
	svc := newTestService(newMemRepo(), nil, &stubSearcher{}, nil)
	out, err := svc.Chat(context.Background(), "oxygen?")
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.NotNil(t, out.Value.RegulationsUsed)
	assert.True(t, strings.HasPrefix(out.Value.Response, "The regulations assistant is unavailable"))
}

func TestChat_UnavailableRetrievalUsesKeywordContext(t *testing.T) {
	oxygen := regulation.Record{ID: "135.89", Title: "Pilot requirements: Use of oxygen", Content: "oxygen rules above 12,000 feet"}
	docs := stubDocs{recB, oxygen, {ID: "135.1", Title: "Applicability", Content: "general"}}
	model := answer("Use supplemental oxygen.")
	svc := newTestService(newMemRepo(), model, &stubSearcher{}, docs)

	out, err := svc.Chat(context.Background(), "When is oxygen required?")
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, reasonRetrievalUnavailable, out.Reason)
	assert.Equal(t, "Use supplemental oxygen.", out.Value.Response)
	assert.Equal(t, []regulation.Record{oxygen}, out.Value.RegulationsUsed)

	require.Len(t, model.calls, 1)
	assert.Contains(t, model.calls[0].Messages[0].Content, "Section 135.89, Pilot requirements: Use of oxygen")
}

func TestChat_UnavailableRetrievalWithoutKeywordHits(t *testing.T) {
	tagged := regulation.Record{ID: "G", Title: "G550 limits", AircraftTypes: []string{"GLF5"}}
	docs := stubDocs{tagged, recA, recB}
	svc := newTestService(newMemRepo(), answer("ok"), &stubSearcher{}, docs)

	out, err := svc.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, []regulation.Record{recA, recB}, out.Value.RegulationsUsed)
}

func TestChat_RequiresMessage(t *testing.T) {
	svc := newTestService(newMemRepo(), nil, &stubSearcher{}, nil)
	_, err := svc.Chat(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

// --- updates and listing ---

func TestRecentUpdates(t *testing.T) {
	repo := newMemRepo()
	repo.regs = []regulation.Record{
		{ID: "old", Title: "Old", Date: "2024-01-01"},
		{ID: "apr", Title: "April", Date: "2025-04-01"},
		{ID: "unknown", Title: "Undated", Date: regulation.UnknownDate},
		{ID: "may", Title: "May", Date: "2025-05-01"},
		{ID: "g550", Title: "G550", Date: "2025-03-01", AircraftTypes: []string{"GLF5"}},
	}
	repo.updates["apr"] = Update{Record: repo.regs[1], Processed: true, AIAnalysis: &UpdateAnalysis{Applicability: "cached"}}

	model := answer("  Part 135 operators  ")
	svc := newTestService(repo, model, &stubSearcher{}, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	updates := svc.RecentUpdates(context.Background())
	var ids []string
	for _, u := range updates {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"g550", "may", "apr"}, ids)

	assert.Len(t, model.calls, 2)
	assert.Equal(t, "cached", updates[2].AIAnalysis.Applicability)
	assert.True(t, updates[1].Processed)
	assert.Equal(t, "Part 135 operators", updates[1].AIAnalysis.Applicability)
	assert.True(t, repo.updates["may"].Processed)
}

func TestRecentUpdates_ModelFailureLeavesUnprocessed(t *testing.T) {
	repo := newMemRepo()
	repo.regs = []regulation.Record{{ID: "may", Title: "May", Date: "2025-05-01"}}
	svc := newTestService(repo, failing(errors.New("503")), &stubSearcher{}, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	updates := svc.RecentUpdates(context.Background())
	require.Len(t, updates, 1)
	assert.False(t, updates[0].Processed)
	assert.Nil(t, updates[0].AIAnalysis)
	assert.False(t, repo.updates["may"].Processed)
}

func TestListRegulations_FallsBackToDocuments(t *testing.T) {
	repo := newMemRepo()
	repo.listErr = errors.New("store offline")
	tagged := regulation.Record{ID: "G", Title: "G550", AircraftTypes: []string{"GLF5"}}
	svc := newTestService(repo, nil, &stubSearcher{}, stubDocs{recA, tagged})

	got := svc.ListRegulations(context.Background(), regulation.Query{})
	require.Len(t, got, 2)
	assert.Equal(t, "G", got[0].ID)

	got = svc.ListRegulations(context.Background(), regulation.Query{ExcludePrioritization: "GLF5"})
	assert.Equal(t, "A", got[0].ID)
}
