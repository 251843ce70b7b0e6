// Package output implements the OutputContract: the canonical payload
// schema every successful or degraded answer must validate against,
// plus per-tool-kind normalization of raw tool results into the stable
// shapes the schema expects.
package output

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultSchemaJSON is the canonical payload schema, used when no
// policies/output_schema.json file is configured. Mirrors the
// prototype's hardcoded fallback schema exactly.
const DefaultSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "answer": {"type": "string"},
    "citations": {"type": "array", "items": {"type": "string"}, "minItems": 1},
    "tool_used": {"type": ["string", "null"]},
    "tool_result": {}
  },
  "required": ["answer", "citations", "tool_used", "tool_result"],
  "additionalProperties": false
}`

// Payload is one validated answer.
type Payload struct {
	Answer     string      `json:"answer"`
	Citations  []string    `json:"citations"`
	ToolUsed   *string     `json:"tool_used"`
	ToolResult interface{} `json:"tool_result"`
}

// Contract ties the canonical schema to normalization and validation.
type Contract struct {
	schema *jsonschema.Schema
}

// NewContract compiles schemaJSON (or DefaultSchemaJSON if empty) into a
// ready-to-validate Contract.
func NewContract(schemaJSON string) (*Contract, error) {
	if schemaJSON == "" {
		schemaJSON = DefaultSchemaJSON
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("decode output schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	const resourceURL = "mem://output_schema.json"
	if err := compiler.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("add output schema resource: %w", err)
	}
	schema, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile output schema: %w", err)
	}
	return &Contract{schema: schema}, nil
}

// Normalize coerces a raw tool result into the stable per-tool-kind
// shape the schema's tool_result field expects.
func (c *Contract) Normalize(toolUsed string, toolResult interface{}) interface{} {
	return NormalizeToolResult(toolUsed, toolResult)
}

// Validate checks payload against the compiled schema and additionally
// requires citation to be present in payload.Citations, per spec.
func (c *Contract) Validate(payload Payload, citation string) (bool, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}
	var instance interface{}
	if err := json.Unmarshal(raw, &instance); err != nil {
		return false, fmt.Errorf("decode payload for validation: %w", err)
	}

	if err := c.schema.Validate(instance); err != nil {
		return false, err
	}

	if citation != "" && !containsString(payload.Citations, citation) {
		return false, fmt.Errorf("citation %q not present in payload citations", citation)
	}
	return true, nil
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
