package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vegalabs/voicegate/internal/tools"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

const (
	searchAPIVersion  = "2024-07-01"
	defaultResultSize = 5
)

// hybridSearchRequest is the request body for the search service
type hybridSearchRequest struct {
	Search    string `json:"search"`
	Top       int    `json:"top"`
	QueryType string `json:"queryType"`
	Select    string `json:"select"`
	Captions  string `json:"captions,omitempty"`
	Answers   string `json:"answers,omitempty"`
}

// hybridSearchHit is a single document hit from the search service
type hybridSearchHit struct {
	ID            string  `json:"id"`
	Score         float64 `json:"@search.score"`
	RerankerScore float64 `json:"@search.rerankerScore,omitempty"`
	Content       string  `json:"content,omitempty"`
	Title         string  `json:"title,omitempty"`
	Captions      []struct {
		Text string `json:"text"`
	} `json:"@search.captions,omitempty"`
}

// hybridSearchResponse is the response body from the search service
type hybridSearchResponse struct {
	Value []hybridSearchHit `json:"value"`
}

// ProductSearchToolBuilder builds the hybrid product-knowledge search tool
type ProductSearchToolBuilder struct{}

func (p *ProductSearchToolBuilder) Build(deps *tools.ToolDependencies) (toolsystem.Tool, error) {
	return toolsystem.NewToolBuilder("search_products_text",
		"Búsqueda híbrida (texto + vector) sobre el índice de productos. Devuelve id, score, caption y campos básicos.").
		AddStringParameter("query", "Consulta de búsqueda.", true).
		AddIntegerParameter("k", "Número de resultados (default=5).", false).
		SetHandler(func(ctx context.Context, args map[string]any) (any, error) {
			query, ok := args["query"].(string)
			if !ok {
				return nil, fmt.Errorf("query parameter is required and must be a string")
			}

			if deps.Search.SearchEndpoint == "" || deps.Search.SearchIndex == "" {
				return nil, fmt.Errorf("search backend is not configured")
			}

			k := defaultResultSize
			if kv, exists := args["k"]; exists {
				if kf, ok := kv.(float64); ok && int(kf) > 0 {
					k = int(kf)
				}
			}

			hits, err := hybridSearch(ctx, deps, query, k)
			if err != nil {
				return nil, err
			}

			items := make([]map[string]any, 0, len(hits))
			for _, h := range hits {
				item := map[string]any{
					"id":    h.ID,
					"score": h.Score,
				}
				if h.RerankerScore != 0 {
					item["reranker_score"] = h.RerankerScore
				}
				if len(h.Captions) > 0 {
					item["caption"] = h.Captions[0].Text
				}
				item["fields"] = map[string]any{
					"content": h.Content,
					"title":   h.Title,
				}
				items = append(items, item)
			}

			return map[string]any{
				"count": len(items),
				"items": items,
			}, nil
		}).
		Build()
}

func hybridSearch(ctx context.Context, deps *tools.ToolDependencies, query string, k int) ([]hybridSearchHit, error) {
	reqBody := hybridSearchRequest{
		Search:    query,
		Top:       k,
		QueryType: "semantic",
		Select:    "id,content,title",
		Captions:  "extractive",
		Answers:   "extractive",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		deps.Search.SearchEndpoint, deps.Search.SearchIndex, searchAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", deps.Search.SearchAPIKey)

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned status %d: %s", resp.StatusCode, body)
	}

	var searchResp hybridSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return searchResp.Value, nil
}
