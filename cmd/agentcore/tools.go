package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/cklxx-labs/agentcore/internal/clock"
	"github.com/cklxx-labs/agentcore/internal/config"
	"github.com/cklxx-labs/agentcore/internal/tools"
)

// buildToolRegistry registers every built-in tool under its guardrail
// config, the same wiring a long-lived deployment would use, so a
// one-shot `agentcore run --tool` call is guarded identically.
func buildToolRegistry(guardrails config.Guardrails) *tools.Registry {
	reg := tools.NewRegistry()
	reg.Register(tools.NewCalcTool())
	reg.Register(tools.NewFileReadTool(guardrails.Tools.FileRead))
	reg.Register(tools.NewFileWriteTool(guardrails.Tools.FileWrite))
	reg.Register(tools.NewListDirTool(guardrails.Tools.ListDir))
	reg.Register(tools.NewOpenAppTool(guardrails.Tools.OpenApp))
	reg.Register(tools.NewRunCommandTool(guardrails.Tools.RunCommand))
	reg.Register(tools.NewWebFetchTool())
	reg.Register(tools.NewWebScrapeTool())

	limiter := tools.NewSearchRateLimiter(guardrails.Tools.WebSearch, clock.System{})
	reg.Register(tools.NewWebSearchTool(guardrails.Tools.WebSearch, limiter, duckDuckGoSearch))
	reg.Register(tools.NewSearchAggregateTool(guardrails.Tools.WebSearch, limiter, map[string]tools.SearchBackend{
		"duckduckgo": duckDuckGoSearch,
	}))
	reg.Register(tools.NewDocxParseTool(guardrails.Tools.FileRead))
	reg.Register(tools.NewXlsxParseTool(guardrails.Tools.FileRead))
	reg.Register(tools.NewPdfParseTool(guardrails.Tools.FileRead))
	return reg
}

// duckDuckGoSearch implements tools.SearchBackend against DuckDuckGo's
// HTML-only results endpoint (no API key required), scraping result
// links/snippets with goquery the same way builtin_web.go's
// NewWebScrapeTool parses a fetched page.
func duckDuckGoSearch(ctx context.Context, query string, limit int) ([]map[string]interface{}, error) {
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", "agentcore/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var results []map[string]interface{}
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}
		title := s.Find(".result__title").First().Text()
		link, _ := s.Find(".result__a").First().Attr("href")
		snippet := s.Find(".result__snippet").First().Text()
		if title == "" && link == "" {
			return true
		}
		results = append(results, map[string]interface{}{
			"title":   title,
			"url":     link,
			"snippet": snippet,
		})
		return true
	})
	return results, nil
}
