package adapter

import (
	"encoding/json"
	"strings"
)

// Request is a single structured-output call.
type Request struct {
	Model     string
	System    string
	Prompt    string
	Schema    *Schema
	MaxTokens int
}

// Schema describes a flat JSON object the model must return.
type Schema struct {
	Name        string
	Description string
	Properties  []Property
}

// Property is one field of a Schema. Type is a JSON Schema primitive:
// string, number, integer or boolean.
type Property struct {
	Name        string
	Type        string
	Description string
	Enum        []string
}

// JSONSchema renders the schema as a strict JSON Schema object. Every
// property is required and no others are allowed.
func (s *Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Properties))
	required := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = append([]string(nil), p.Enum...)
		}
		props[p.Name] = prop
		required = append(required, p.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// instruction renders the schema as prompt text for providers without a
// native schema parameter.
func (s *Schema) instruction() string {
	data, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else.")
	if s.Description != "" {
		b.WriteString(" ")
		b.WriteString(s.Description)
	}
	b.WriteString("\nJSON schema: ")
	b.Write(data)
	return b.String()
}

// systemWithSchema appends the schema instruction to the system prompt.
func systemWithSchema(req Request) string {
	if req.Schema == nil {
		return req.System
	}
	if req.System == "" {
		return req.Schema.instruction()
	}
	return req.System + "\n\n" + req.Schema.instruction()
}

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response wraps an adapter output and optional usage data.
type Response struct {
	Content string
	Model   string
	Usage   *Usage
}
