// Package tools implements the ToolRegistry and Executor: schema-driven
// argument validation, sync/async handler dispatch, and the guardrails
// (shell allow/deny-list, path confinement, search rate limiting) that
// keep tool execution bounded.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is one tool's discovered argument schema.
type Schema struct {
	Name       string
	OutputKind string
	compiled   *jsonschema.Schema
}

// Handler runs a tool synchronously.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// AsyncHandler runs a tool with retry semantics applied by the
// executor (see Executor.Execute); network-facing tools provide one of
// these in addition to a sync Handler.
type AsyncHandler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Tool is one registered tool: its schema plus its handler(s).
type Tool struct {
	Schema Schema
	Sync   Handler
	Async  AsyncHandler
}

// CompileSchema parses a raw JSON Schema document describing a tool's
// arguments.
func CompileSchema(name, outputKind string, schemaJSON []byte) (Schema, error) {
	var doc interface{}
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return Schema{}, fmt.Errorf("decode schema for %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	url := fmt.Sprintf("mem://tools/%s.json", name)
	if err := compiler.AddResource(url, doc); err != nil {
		return Schema{}, fmt.Errorf("add schema resource for %s: %w", name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return Schema{}, fmt.Errorf("compile schema for %s: %w", name, err)
	}
	return Schema{Name: name, OutputKind: outputKind, compiled: compiled}, nil
}

// Validate checks args against the schema. A strict rejection: the
// executor never invokes a handler on invalid arguments.
func (s Schema) Validate(args map[string]interface{}) error {
	if s.compiled == nil {
		return nil
	}
	return s.compiled.Validate(args)
}
