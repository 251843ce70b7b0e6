package output

// NormalizeToolResult coerces a raw tool handler result into the stable
// shape spec.md documents per tool kind, so the schema's tool_result
// field is predictable regardless of what the handler actually
// returned. Unrecognized tool kinds pass through unchanged; for a
// recognized kind, a result that is not a map is shaped as if it were an
// empty map. Nothing here errors — normalization is advisory shaping,
// not validation.
func NormalizeToolResult(toolUsed string, toolResult interface{}) interface{} {
	d, isMap := toolResult.(map[string]interface{})

	switch toolUsed {
	case "calc":
		return normalizeCalc(toolResult)

	case "http_fetch", "web_fetch":
		if !isMap {
			d = map[string]interface{}{}
		}
		out := map[string]interface{}{
			"ok":     d["error"] == nil,
			"status": d["status"],
		}
		if text, ok := d["text"].(string); ok && text != "" {
			out["text_preview"] = preview(text, 500)
		} else {
			out["text_preview"] = nil
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "file_read":
		if !isMap {
			d = map[string]interface{}{}
		}
		text, _ := d["text"].(string)
		out := map[string]interface{}{
			"path":         d["path"],
			"size":         len([]byte(text)),
			"text_preview": preview(text, 500),
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "web_search":
		if !isMap {
			d = map[string]interface{}{}
		}
		items := asSlice(d["results"])
		out := map[string]interface{}{
			"count":  len(items),
			"items":  items,
			"source": d["source"],
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "search_aggregate":
		if !isMap {
			d = map[string]interface{}{}
		}
		items := asSlice(d["results"])
		out := map[string]interface{}{
			"count":   len(items),
			"items":   items,
			"sources": asSlice(d["sources"]),
			"counts":  d["counts"],
		}
		return out

	case "web_scrape":
		if !isMap {
			d = map[string]interface{}{}
		}
		content, _ := d["content"].(string)
		out := map[string]interface{}{
			"url":          d["url"],
			"status":       d["status"],
			"title":        d["title"],
			"text_preview": preview(content, 500),
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "file_write":
		if !isMap {
			d = map[string]interface{}{}
		}
		out := map[string]interface{}{
			"path":          d["path"],
			"written_bytes": d["written_bytes"],
			"overwrite":     d["overwrite"],
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "list_dir":
		if !isMap {
			d = map[string]interface{}{}
		}
		items := asSlice(d["items"])
		out := map[string]interface{}{
			"path":  d["path"],
			"count": len(items),
			"items": items,
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "open_app":
		if !isMap {
			d = map[string]interface{}{}
		}
		started, _ := d["started"].(bool)
		out := map[string]interface{}{
			"started": started,
			"app":     d["app"],
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "docx_parse":
		if !isMap {
			d = map[string]interface{}{}
		}
		paragraphs := asSlice(d["paragraphs"])
		sections := asSlice(d["sections"])
		tables := asSlice(d["tables"])
		out := map[string]interface{}{
			"path":            d["path"],
			"sections":        capSlice(sections, 10),
			"paragraph_count": len(paragraphs),
			"table_count":     len(tables),
			"preview":         capSlice(paragraphs, 5),
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "xlsx_parse":
		if !isMap {
			d = map[string]interface{}{}
		}
		rows := asSlice(d["rows"])
		out := map[string]interface{}{
			"path":         d["path"],
			"sheet_index":  d["sheet_index"],
			"rows_count":   len(rows),
			"header":       d["header"],
			"preview_rows": capSlice(rows, 5),
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	case "pdf_parse":
		if !isMap {
			d = map[string]interface{}{}
		}
		tp, _ := d["text_preview"].(string)
		out := map[string]interface{}{
			"path":         d["path"],
			"pages":        d["pages"],
			"text_preview": preview(tp, 500),
		}
		if errVal, ok := d["error"]; ok && errVal != nil {
			out["error"] = errVal
		}
		return out

	default:
		return toolResult
	}
}

func normalizeCalc(toolResult interface{}) interface{} {
	switch v := toolResult.(type) {
	case float64:
		return map[string]interface{}{"result": v}
	case int:
		return map[string]interface{}{"result": float64(v)}
	case map[string]interface{}:
		if val, ok := v["result"]; ok {
			if f, ok := toFloat(val); ok {
				return map[string]interface{}{"result": f}
			}
			return map[string]interface{}{"result": val}
		}
		return v
	default:
		return toolResult
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

func asSlice(v interface{}) []interface{} {
	if items, ok := v.([]interface{}); ok {
		return items
	}
	return []interface{}{}
}

func capSlice(items []interface{}, n int) []interface{} {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
