package llm

import "strings"

// modelPricing is USD per one million tokens.
type modelPricing struct {
	input  float64
	output float64
}

// priceTable is keyed by model name prefix. Providers often answer with a
// dated or versioned name (gemini-2.0-flash-001), so lookups take the
// longest matching prefix.
var priceTable = map[string]modelPricing{
	"claude-sonnet-4-5": {input: 3.00, output: 15.00},
	"claude-haiku-4-5":  {input: 0.80, output: 4.00},

	"gpt-4o":      {input: 2.50, output: 10.00},
	"gpt-4o-mini": {input: 0.15, output: 0.60},

	"gemini-2.0-flash":          {input: 0.10, output: 0.40},
	"gemini-2.0-flash-thinking": {input: 0.10, output: 0.40},
	"gemini-2.0-pro":            {input: 1.25, output: 10.00},
	"gemini-1.5-pro":            {input: 1.25, output: 5.00},
}

// EstimateCost returns the estimated USD cost of a call, or 0 for unpriced
// models such as local Ollama ones.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	var best string
	for prefix := range priceTable {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0
	}
	p := priceTable[best]
	return float64(inputTokens)/1e6*p.input + float64(outputTokens)/1e6*p.output
}
