package search

import (
	"context"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/agentkit/agentctl/services"
)

// googleEngine queries the Google Custom Search JSON API
type googleEngine struct {
	apiKey   string
	cx       string
	endpoint string // overridden in tests
}

func (e *googleEngine) name() string { return EngineGoogle }

func (e *googleEngine) available() bool { return e.apiKey != "" && e.cx != "" }

func (e *googleEngine) search(ctx context.Context, query string, numResults int) ([]Result, error) {
	if !e.available() {
		return nil, services.WrapConfiguration(
			"GOOGLE_API_KEY or GOOGLE_CX environment variable not set", nil)
	}

	opts := []option.ClientOption{option.WithAPIKey(e.apiKey)}
	if e.endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, services.WrapConfiguration("failed to create google search client", err)
	}

	// The API rejects num values above 10
	num := numResults
	if num > 10 {
		num = 10
	}

	call := svc.Cse.List().Q(query).Cx(e.cx).Num(int64(num)).Context(ctx)
	page, err := call.Do()
	if err != nil {
		return nil, services.WrapTransport("google search request failed", err)
	}

	results := make([]Result, 0, numResults)
	for _, item := range page.Items {
		if len(results) >= numResults {
			break
		}
		results = append(results, Result{Title: item.Title, URL: item.Link, Snippet: item.Snippet})
	}
	return results, nil
}
