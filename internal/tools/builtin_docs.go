package tools

import (
	"context"
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/cklxx-labs/agentcore/internal/config"
)

// NewDocxParseTool builds the docx_parse tool via
// github.com/gomutex/godocx: it extracts up to max_paragraphs paragraph
// texts. Sections and tables are not extracted; both lists are always
// empty and include_tables has no effect.
func NewDocxParseTool(guard config.FileReadGuard) Tool {
	schema, _ := CompileSchema("docx_parse", "object", []byte(`{
		"type": "object",
		"properties": {
			"path": {"type": "string"},
			"include_tables": {"type": "boolean"},
			"max_paragraphs": {"type": "integer"}
		},
		"required": ["path"]
	}`))

	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			path, _ := args["path"].(string)
			maxParagraphs := 2000
			if v, ok := args["max_paragraphs"].(float64); ok && v > 0 {
				maxParagraphs = int(v)
			}
			resolved, err := ResolveConfinedPath(guard.AllowedBaseDir, path)
			if err != nil {
				return nil, err
			}

			doc, err := godocx.OpenDocument(resolved)
			if err != nil {
				return map[string]interface{}{"path": path, "error": err.Error()}, nil
			}

			var paragraphs []interface{}
			if doc.Document != nil && doc.Document.Body != nil {
				for _, child := range doc.Document.Body.Children {
					if child.Para == nil {
						continue
					}
					if len(paragraphs) >= maxParagraphs {
						break
					}
					paragraphs = append(paragraphs, child.Para.Text())
				}
			}

			return map[string]interface{}{
				"path":       path,
				"paragraphs": paragraphs,
				"sections":   []interface{}{},
				"tables":     []interface{}{},
			}, nil
		},
	}
}

// NewXlsxParseTool builds the xlsx_parse tool via
// github.com/xuri/excelize/v2, bounded by max_rows.
func NewXlsxParseTool(guard config.FileReadGuard) Tool {
	schema, _ := CompileSchema("xlsx_parse", "object", []byte(`{
		"type": "object",
		"properties": {
			"path": {"type": "string"},
			"sheet_index": {"type": "integer"},
			"header": {"type": "boolean"},
			"max_rows": {"type": "integer"}
		},
		"required": ["path"]
	}`))

	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			path, _ := args["path"].(string)
			sheetIndex := 0
			if v, ok := args["sheet_index"].(float64); ok {
				sheetIndex = int(v)
			}
			maxRows := 1000
			if v, ok := args["max_rows"].(float64); ok && v > 0 {
				maxRows = int(v)
			}
			hasHeader, _ := args["header"].(bool)

			resolved, err := ResolveConfinedPath(guard.AllowedBaseDir, path)
			if err != nil {
				return nil, err
			}

			f, err := excelize.OpenFile(resolved)
			if err != nil {
				return map[string]interface{}{"path": path, "error": err.Error()}, nil
			}
			defer f.Close()

			sheets := f.GetSheetList()
			if sheetIndex < 0 || sheetIndex >= len(sheets) {
				return map[string]interface{}{"path": path, "error": fmt.Sprintf("sheet index %d out of range", sheetIndex)}, nil
			}
			rawRows, err := f.GetRows(sheets[sheetIndex])
			if err != nil {
				return map[string]interface{}{"path": path, "error": err.Error()}, nil
			}

			rows := make([]interface{}, 0, len(rawRows))
			for _, row := range rawRows {
				if len(rows) >= maxRows {
					break
				}
				cells := make([]interface{}, len(row))
				for j, c := range row {
					cells[j] = c
				}
				rows = append(rows, cells)
			}

			return map[string]interface{}{
				"path":        path,
				"sheet_index": sheetIndex,
				"header":      hasHeader,
				"rows":        rows,
			}, nil
		},
	}
}

// NewPdfParseTool builds the pdf_parse tool via
// github.com/ledongthuc/pdf, concatenating the plain text of pages up to
// max_pages into one preview capped at 500 bytes.
func NewPdfParseTool(guard config.FileReadGuard) Tool {
	schema, _ := CompileSchema("pdf_parse", "object", []byte(`{
		"type": "object",
		"properties": {
			"path": {"type": "string"},
			"max_pages": {"type": "integer"}
		},
		"required": ["path"]
	}`))

	return Tool{
		Schema: schema,
		Sync: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			path, _ := args["path"].(string)
			maxPages := 20
			if v, ok := args["max_pages"].(float64); ok && v > 0 {
				maxPages = int(v)
			}

			resolved, err := ResolveConfinedPath(guard.AllowedBaseDir, path)
			if err != nil {
				return nil, err
			}

			f, r, err := pdf.Open(resolved)
			if err != nil {
				return map[string]interface{}{"path": path, "error": err.Error()}, nil
			}
			defer f.Close()

			pages := r.NumPage()
			limit := pages
			if limit > maxPages {
				limit = maxPages
			}

			var preview string
			for i := 1; i <= limit; i++ {
				page := r.Page(i)
				if page.V.IsNull() {
					continue
				}
				text, err := page.GetPlainText(nil)
				if err != nil {
					continue
				}
				preview += text
				if len(preview) >= 500 {
					break
				}
			}
			if len(preview) > 500 {
				preview = preview[:500]
			}

			return map[string]interface{}{
				"path":         path,
				"pages":        pages,
				"text_preview": preview,
			}, nil
		},
	}
}
