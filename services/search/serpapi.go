package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentkit/agentctl/services"
)

const defaultSerpAPIBaseURL = "https://serpapi.com"

// serpAPIEngine queries SerpAPI's Google results endpoint
type serpAPIEngine struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func (e *serpAPIEngine) name() string { return EngineSerpAPI }

func (e *serpAPIEngine) available() bool { return e.apiKey != "" }

func (e *serpAPIEngine) search(ctx context.Context, query string, numResults int) ([]Result, error) {
	if e.apiKey == "" {
		return nil, services.WrapConfiguration("SERPAPI_KEY environment variable not set", nil)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", e.apiKey)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(numResults))

	endpoint := e.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.WrapInternal("failed to build serpapi request", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, services.WrapTransport("serpapi request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.WrapTransport(
			fmt.Sprintf("serpapi returned status %d", resp.StatusCode), nil)
	}

	var payload struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.WrapTransport("failed to decode serpapi response", err)
	}

	results := make([]Result, 0, numResults)
	for _, r := range payload.OrganicResults {
		if len(results) >= numResults {
			break
		}
		results = append(results, Result{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	return results, nil
}
