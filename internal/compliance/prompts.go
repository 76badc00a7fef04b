package compliance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ziadkadry99/flinsight/internal/llm"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// ChatSystemPrompt is the fixed instruction for regulation chat. %s receives
// the formatted regulation context.
const ChatSystemPrompt = `You are an expert FAA regulations assistant specializing in Part 135 operations.
Your role is to help users understand and comply with FAA regulations.

When responding:
1. Always base your answers on the provided regulation context
2. Quote specific sections when relevant
3. Explain regulations in clear, simple terms
4. If you're unsure about something, say so
5. Focus on practical compliance advice
6. Mention any related regulations that might be relevant

Context format will be:
%s

Remember to:
- Be precise and accurate
- Cite specific regulation sections
- Explain the practical implications
- Suggest compliance strategies
`

const flightContextTemplate = `Flight Details:
- Departure: %s
- Arrival: %s
- Aircraft: %s
- Date: %s
- Passengers: %d
`

const riskPromptTemplate = `Given the flight context, come up with an exhaustive list of concise compliance risks considering the route, aircraft, passengers, temperatures, whether the flight is an international one (important), overwater, and every relation between them.

Flight context:
%s
information at %s: ` + "```%s```" + `
information at %s: ` + "```%s```"

const analysisPromptTemplate = `As an aviation compliance AI assistant, analyze this flight plan:

%s

Based on these potentially relevant regulations:
%s

Provide:
1. applicable_regulations: Which regulations specifically apply to this flight
2. compliance_risks: Any potential compliance risks
3. required_actions: What actions the operator needs to take for compliance

All 3 lists must be the same size, with the same index in each list corresponding to the same regulation.

Ensure your response is concise and contains all the necessary information.`

const actionItemsPromptTemplate = `Based on this flight analysis, generate a short list of specific action items that the operator needs to complete for compliance:
` + "```%s```" + `

Return a list of action items, each with the following 4 keys
1. title (short, specific task)
2. description (detailed explanation)
3. due_date (relative to flight date)
4. responsible_role (pilot, maintenance, dispatch, etc.)

Ensure your response is concise and contains all the necessary information in the proper structured output.`

const applicabilityPromptTemplate = `Analyze this FAA update:

Title: %s
Description: %s
Date: %s

Only answer, concisely: Who this applies to (aircraft types, operators, etc.)`

// AnalysisSchema constrains the flight analysis answer.
var AnalysisSchema = llm.ObjectOf(map[string]*llm.Schema{
	"applicable_regulations": llm.StringArray(),
	"compliance_risks":       llm.StringArray(),
	"required_actions":       llm.StringArray(),
}, "applicable_regulations", "compliance_risks", "required_actions")

// ActionItemsSchema constrains the action item answer.
var ActionItemsSchema = &llm.Schema{
	Type: llm.TypeArray,
	Items: llm.ObjectOf(map[string]*llm.Schema{
		"title":            {Type: llm.TypeString},
		"description":      {Type: llm.TypeString},
		"due_date":         {Type: llm.TypeString},
		"responsible_role": {Type: llm.TypeString},
	}, "title", "description", "due_date", "responsible_role"),
}

// FlightContext renders the flight details block shared by the prompts.
func FlightContext(f FlightRequest) string {
	return fmt.Sprintf(flightContextTemplate, f.Departure, f.Arrival, f.Aircraft, f.Date, f.Passengers)
}

func riskPrompt(f FlightRequest, departureWeather, arrivalWeather string) string {
	return fmt.Sprintf(riskPromptTemplate, FlightContext(f), f.Departure, departureWeather, f.Arrival, arrivalWeather)
}

func analysisPrompt(f FlightRequest, records []regulation.Record) string {
	if records == nil {
		records = []regulation.Record{}
	}
	regs, _ := json.MarshalIndent(records, "", "  ")
	return fmt.Sprintf(analysisPromptTemplate, FlightContext(f), regs)
}

// actionPromptFlight is the flight analysis as shown to the model. Required
// actions are left out so the model derives its own.
type actionPromptFlight struct {
	FlightRequest
	Analysis struct {
		ApplicableRegulations []string `json:"applicable_regulations"`
		ComplianceRisks       []string `json:"compliance_risks"`
	} `json:"analysis"`
}

func actionItemsPrompt(fa FlightAnalysis) string {
	var pf actionPromptFlight
	pf.FlightRequest = fa.FlightRequest
	pf.Analysis.ApplicableRegulations = fa.Analysis.ApplicableRegulations
	pf.Analysis.ComplianceRisks = fa.Analysis.ComplianceRisks
	raw, _ := json.Marshal(pf)
	return fmt.Sprintf(actionItemsPromptTemplate, raw)
}

func applicabilityPrompt(r regulation.Record) string {
	return fmt.Sprintf(applicabilityPromptTemplate, r.Title, r.Content, r.Date)
}

func chatMessages(regContext, message string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(ChatSystemPrompt, strings.TrimRight(regContext, "\n"))},
		{Role: llm.RoleUser, Content: message},
	}
}
