package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cklxx-labs/agentcore/internal/config"
)

const maxScrapeBytes = 1 << 20 // 1MiB ceiling on any single fetch/scrape body

// NewWebFetchTool builds the web_fetch tool. It exposes both a Sync
// fallback (single attempt) and an Async handler (3 attempts,
// exponential backoff via the executor) since it's network-facing, per
// spec.md §4.3's dispatch rule.
func NewWebFetchTool() Tool {
	schema, _ := CompileSchema("web_fetch", "object", []byte(`{
		"type": "object",
		"properties": {
			"url": {"type": "string"},
			"method": {"type": "string"},
			"headers": {"type": "object"}
		},
		"required": ["url"]
	}`))

	fetch := func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		rawURL, _ := args["url"].(string)
		method, _ := args["method"].(string)
		if method == "" {
			method = http.MethodGet
		}
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return map[string]interface{}{"error": fmt.Sprintf("invalid url: %v", err)}, nil
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return nil, err
		}
		if headers, ok := args["headers"].(map[string]interface{}); ok {
			for k, v := range headers {
				if s, ok := v.(string); ok {
					req.Header.Set(k, s)
				}
			}
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapeBytes))
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"status": resp.StatusCode,
			"text":   string(body),
		}, nil
	}

	return Tool{Schema: schema, Sync: fetch, Async: fetch}
}

// NewWebScrapeTool builds the web_scrape tool: fetches a page and
// extracts its title and visible text via goquery.
func NewWebScrapeTool() Tool {
	schema, _ := CompileSchema("web_scrape", "object", []byte(`{
		"type": "object",
		"properties": {
			"url": {"type": "string"},
			"max_bytes": {"type": "integer"}
		},
		"required": ["url"]
	}`))

	scrape := func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		rawURL, _ := args["url"].(string)
		maxBytes := maxScrapeBytes
		if v, ok := args["max_bytes"].(float64); ok && v > 0 {
			maxBytes = int(v)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, int64(maxBytes)))
		if err != nil {
			return map[string]interface{}{"url": rawURL, "status": resp.StatusCode, "error": err.Error()}, nil
		}

		title := strings.TrimSpace(doc.Find("title").First().Text())
		content := strings.TrimSpace(doc.Find("body").Text())
		return map[string]interface{}{
			"url":     rawURL,
			"status":  resp.StatusCode,
			"title":   title,
			"content": content,
		}, nil
	}

	return Tool{Schema: schema, Sync: scrape, Async: scrape}
}

// SearchBackend performs one search-provider query. Swappable per
// source name so search_aggregate can fan out across several.
type SearchBackend func(ctx context.Context, query string, limit int) ([]map[string]interface{}, error)

// NewWebSearchTool builds the web_search tool under the configured
// sliding-window rate limit and result cap.
func NewWebSearchTool(guard config.WebSearchGuard, limiter *SearchRateLimiter, backend SearchBackend) Tool {
	schema, _ := CompileSchema("web_search", "object", []byte(`{
		"type": "object",
		"properties": {
			"query": {"type": "string"},
			"limit": {"type": "integer"},
			"source": {"type": "string"}
		},
		"required": ["query"]
	}`))

	search := func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		query, _ := args["query"].(string)
		limitArg := 0
		if v, ok := args["limit"].(float64); ok {
			limitArg = int(v)
		}
		limit := ClampResultLimit(guard, limitArg)

		if err := limiter.Allow(); err != nil {
			return nil, err
		}

		results, err := backend(ctx, query, limit)
		if err != nil {
			return map[string]interface{}{"error": err.Error(), "source": "duckduckgo"}, nil
		}
		items := make([]interface{}, len(results))
		for i, r := range results {
			items[i] = r
		}
		return map[string]interface{}{"results": items, "source": "duckduckgo"}, nil
	}

	return Tool{Schema: schema, Sync: search, Async: search}
}

// NewSearchAggregateTool builds search_aggregate: fans a query out
// across multiple named backends and merges their results.
func NewSearchAggregateTool(guard config.WebSearchGuard, limiter *SearchRateLimiter, backends map[string]SearchBackend) Tool {
	schema, _ := CompileSchema("search_aggregate", "object", []byte(`{
		"type": "object",
		"properties": {
			"query": {"type": "string"},
			"sources": {"type": "array", "items": {"type": "string"}},
			"per_source_limit": {"type": "integer"}
		},
		"required": ["query"]
	}`))

	aggregate := func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		query, _ := args["query"].(string)
		perSourceLimit := ClampResultLimit(guard, 0)
		if v, ok := args["per_source_limit"].(float64); ok && v > 0 {
			perSourceLimit = int(v)
		}

		var sourceNames []string
		if raw, ok := args["sources"].([]interface{}); ok {
			for _, s := range raw {
				if name, ok := s.(string); ok {
					sourceNames = append(sourceNames, name)
				}
			}
		}
		if len(sourceNames) == 0 {
			for name := range backends {
				sourceNames = append(sourceNames, name)
			}
		}

		if err := limiter.Allow(); err != nil {
			return nil, err
		}

		var allResults []interface{}
		counts := map[string]interface{}{}
		var usedSources []interface{}
		for _, name := range sourceNames {
			backend, ok := backends[name]
			if !ok {
				continue
			}
			results, err := backend(ctx, query, perSourceLimit)
			if err != nil {
				counts[name] = 0
				continue
			}
			counts[name] = len(results)
			usedSources = append(usedSources, name)
			for _, r := range results {
				allResults = append(allResults, r)
			}
		}

		return map[string]interface{}{
			"results": allResults,
			"sources": usedSources,
			"counts":  counts,
		}, nil
	}

	return Tool{Schema: schema, Sync: aggregate, Async: aggregate}
}
