package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SchemaType is an OpenAPI type name as used by Gemini response schemas.
type SchemaType string

const (
	TypeString  SchemaType = "STRING"
	TypeNumber  SchemaType = "NUMBER"
	TypeInteger SchemaType = "INTEGER"
	TypeBoolean SchemaType = "BOOLEAN"
	TypeArray   SchemaType = "ARRAY"
	TypeObject  SchemaType = "OBJECT"
)

// Schema declares the JSON shape a model answer must take.
type Schema struct {
	Type       SchemaType         `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
}

// StringArray is an array of strings.
func StringArray() *Schema {
	return &Schema{Type: TypeArray, Items: &Schema{Type: TypeString}}
}

// ObjectOf builds an object schema in which every listed property is required.
func ObjectOf(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// JSONSchema returns the schema with lower-case JSON Schema type names, the
// form accepted by Ollama's structured output.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": strings.ToLower(string(s.Type))}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for k, v := range s.Properties {
			props[k] = v.JSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	return out
}

// ExtractJSON returns the longest complete JSON object or array in text,
// tolerating code fences or prose around it. Bracketed prose such as a "[1]"
// citation loses to the real payload.
func ExtractJSON(text string) (string, error) {
	candidates := jsonValues(text)
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no complete JSON value found", ErrMalformedOutput)
	}
	return candidates[0], nil
}

// DecodeJSON unmarshals into v the longest JSON value in text that fits it.
func DecodeJSON(text string, v any) error {
	candidates := jsonValues(text)
	if len(candidates) == 0 {
		return fmt.Errorf("%w: no complete JSON value found", ErrMalformedOutput)
	}
	var err error
	for _, raw := range candidates {
		if err = json.Unmarshal([]byte(raw), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrMalformedOutput, err)
}

// jsonValues decodes one value at every '{' or '[' that is not inside an
// earlier value, longest first with ties in text order.
func jsonValues(text string) []string {
	var out []string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		out = append(out, string(raw))
		i += int(dec.InputOffset()) - 1
	}
	sort.SliceStable(out, func(a, b int) bool { return len(out[a]) > len(out[b]) })
	return out
}
