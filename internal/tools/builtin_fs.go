package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cklxx-labs/agentcore/internal/config"
)

// NewCalcTool builds the calculator tool: {op, a, b} -> a bare number,
// which output.NormalizeToolResult shapes into {result}.
func NewCalcTool() Tool {
	schema, _ := CompileSchema("calc", "number", []byte(`{
		"type": "object",
		"properties": {
			"op": {"type": "string", "enum": ["add", "sub", "mul", "div"]},
			"a": {"type": "number"},
			"b": {"type": "number"}
		},
		"required": ["op", "a", "b"]
	}`))
	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			a, _ := args["a"].(float64)
			b, _ := args["b"].(float64)
			op, _ := args["op"].(string)
			switch op {
			case "add":
				return a + b, nil
			case "sub":
				return a - b, nil
			case "mul":
				return a * b, nil
			case "div":
				if b == 0 {
					return nil, fmt.Errorf("division by zero")
				}
				return a / b, nil
			default:
				return nil, fmt.Errorf("unknown op %q", op)
			}
		},
	}
}

// NewFileReadTool builds the file_read tool, confined to guard.AllowedBaseDir.
func NewFileReadTool(guard config.FileReadGuard) Tool {
	schema, _ := CompileSchema("file_read", "object", []byte(`{
		"type": "object",
		"properties": {"path": {"type": "string"}},
		"required": ["path"]
	}`))
	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			path, _ := args["path"].(string)
			resolved, err := ResolveConfinedPath(guard.AllowedBaseDir, path)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(resolved)
			if err != nil {
				return map[string]interface{}{"path": path, "error": err.Error()}, nil
			}
			return map[string]interface{}{"path": path, "text": string(data)}, nil
		},
	}
}

// NewFileWriteTool builds the file_write tool, confined to guard.AllowedBaseDir
// and bounded by guard.MaxBytes.
func NewFileWriteTool(guard config.FileWriteGuard) Tool {
	schema, _ := CompileSchema("file_write", "object", []byte(`{
		"type": "object",
		"properties": {
			"path": {"type": "string"},
			"text": {"type": "string"},
			"overwrite": {"type": "boolean"}
		},
		"required": ["path", "text"]
	}`))
	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			path, _ := args["path"].(string)
			text, _ := args["text"].(string)
			overwrite, _ := args["overwrite"].(bool)

			if err := CheckWriteSize(guard, len(text)); err != nil {
				return nil, err
			}
			resolved, err := ResolveConfinedPath(guard.AllowedBaseDir, path)
			if err != nil {
				return nil, err
			}
			if !overwrite {
				if _, statErr := os.Stat(resolved); statErr == nil {
					return nil, fmt.Errorf("file already exists and overwrite=false: %s", path)
				}
			}
			if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
				return nil, fmt.Errorf("create parent dirs: %w", err)
			}
			if err := os.WriteFile(resolved, []byte(text), 0o644); err != nil {
				return map[string]interface{}{"path": path, "error": err.Error()}, nil
			}
			return map[string]interface{}{"path": path, "written_bytes": len(text), "overwrite": overwrite}, nil
		},
	}
}

// NewListDirTool builds the list_dir tool, confined to guard.AllowedBaseDir.
func NewListDirTool(guard config.ListDirGuard) Tool {
	schema, _ := CompileSchema("list_dir", "object", []byte(`{
		"type": "object",
		"properties": {
			"path": {"type": "string"},
			"max_entries": {"type": "integer"}
		},
		"required": ["path"]
	}`))
	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			path, _ := args["path"].(string)
			maxEntries := 100
			if v, ok := args["max_entries"].(float64); ok && v > 0 {
				maxEntries = int(v)
			}
			resolved, err := ResolveConfinedPath(guard.AllowedBaseDir, path)
			if err != nil {
				return nil, err
			}
			entries, err := os.ReadDir(resolved)
			if err != nil {
				return map[string]interface{}{"path": path, "error": err.Error()}, nil
			}
			items := make([]interface{}, 0, len(entries))
			for i, e := range entries {
				if i >= maxEntries {
					break
				}
				items = append(items, e.Name())
			}
			return map[string]interface{}{"path": path, "items": items}, nil
		},
	}
}

// NewOpenAppTool builds the open_app tool, restricted to guard.Allowlist.
func NewOpenAppTool(guard config.OpenAppGuard) Tool {
	schema, _ := CompileSchema("open_app", "object", []byte(`{
		"type": "object",
		"properties": {
			"app": {"type": "string"},
			"args": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["app"]
	}`))
	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			app, _ := args["app"].(string)
			if err := CheckAppAllowed(guard, app); err != nil {
				return nil, err
			}
			var cmdArgs []string
			if raw, ok := args["args"].([]interface{}); ok {
				for _, a := range raw {
					if s, ok := a.(string); ok {
						cmdArgs = append(cmdArgs, s)
					}
				}
			}
			cmd := exec.CommandContext(ctx, app, cmdArgs...)
			if err := cmd.Start(); err != nil {
				return map[string]interface{}{"started": false, "app": app, "error": err.Error()}, nil
			}
			return map[string]interface{}{"started": true, "app": app}, nil
		},
	}
}

// NewRunCommandTool builds the run_command tool under guard's allow/deny-list
// and wall-clock timeout ceiling.
func NewRunCommandTool(guard config.RunCommandGuard) Tool {
	schema, _ := CompileSchema("run_command", "object", []byte(`{
		"type": "object",
		"properties": {
			"command": {"type": "string"},
			"args": {"type": "array", "items": {"type": "string"}},
			"timeout_seconds": {"type": "integer"}
		},
		"required": ["command"]
	}`))
	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			command, _ := args["command"].(string)
			timeoutSeconds := 0
			if v, ok := args["timeout_seconds"].(float64); ok {
				timeoutSeconds = int(v)
			}
			timeout, err := CheckShellCommand(guard, command, timeoutSeconds)
			if err != nil {
				return nil, err
			}

			var cmdArgs []string
			if raw, ok := args["args"].([]interface{}); ok {
				for _, a := range raw {
					if s, ok := a.(string); ok {
						cmdArgs = append(cmdArgs, s)
					}
				}
			}

			runCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			cmd := exec.CommandContext(runCtx, command, cmdArgs...)
			out, err := cmd.CombinedOutput()
			if runCtx.Err() != nil {
				return nil, denied("timeout", "command %q exceeded %v", command, timeout)
			}
			if err != nil {
				return map[string]interface{}{"command": command, "output": string(out), "error": err.Error()}, nil
			}
			return map[string]interface{}{"command": command, "output": string(out)}, nil
		},
	}
}
