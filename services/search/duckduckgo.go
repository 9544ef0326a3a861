package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentkit/agentctl/services"
)

const defaultDuckDuckGoBaseURL = "https://lite.duckduckgo.com"

// duckDuckGoEngine scrapes DuckDuckGo Lite. It needs no credentials and
// serves as the fallback when no search API key is configured.
type duckDuckGoEngine struct {
	baseURL string
	client  *http.Client
}

func (e *duckDuckGoEngine) name() string { return EngineDuckDuckGo }

func (e *duckDuckGoEngine) available() bool { return true }

func (e *duckDuckGoEngine) search(ctx context.Context, query string, numResults int) ([]Result, error) {
	endpoint := e.baseURL + "/lite/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.WrapInternal("failed to build duckduckgo request", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, services.WrapTransport("duckduckgo request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.WrapTransport(
			fmt.Sprintf("duckduckgo returned status %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, services.WrapTransport("failed to parse duckduckgo response", err)
	}

	// Lite renders each hit as two table rows: a result-link row holding the
	// anchor, followed by a result-snippet row with plain text.
	var results []Result
	doc.Find("tr.result-link, tr.result-snippet").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result-link") {
			if len(results) >= numResults {
				return false
			}
			a := s.Find("a").First()
			if a.Length() == 0 {
				return true
			}
			href, _ := a.Attr("href")
			results = append(results, Result{
				Title: strings.TrimSpace(a.Text()),
				URL:   href,
			})
		} else if len(results) > 0 && results[len(results)-1].Snippet == "" {
			results[len(results)-1].Snippet = strings.TrimSpace(s.Text())
		}
		return true
	})

	return results, nil
}
