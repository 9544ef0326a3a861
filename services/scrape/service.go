package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/models"
	"github.com/agentkit/agentctl/services"
	"github.com/agentkit/agentctl/services/audit"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; agentctl/1.0)"
	maxBodyBytes = 10 << 20
)

// Result is the outcome of fetching a single URL. A failed fetch is reported
// in-band so one bad URL never fails the whole batch.
type Result struct {
	URL        string `json:"url"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Title      string `json:"title,omitempty"`
	Content    string `json:"content,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Request describes a scrape batch
type Request struct {
	URLs          []string
	MaxConcurrent int
}

// Service fetches web pages concurrently and extracts their readable text
type Service struct {
	client   *http.Client
	recorder audit.Recorder
	logger   *zap.Logger
}

// NewService creates a new scrape service
func NewService(timeout time.Duration, recorder audit.Recorder, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		client:   &http.Client{Timeout: timeout},
		recorder: recorder,
		logger:   logger,
	}
}

// Scrape fetches every URL in the request with bounded concurrency and
// returns one result per URL in input order.
func (s *Service) Scrape(ctx context.Context, req *Request) ([]Result, error) {
	start := time.Now()

	results, err := s.scrape(ctx, req)

	inv := models.NewInvocation("scrape")
	inv.PromptChars = len(strings.Join(req.URLs, " "))
	inv.LatencyMs = int(time.Since(start).Milliseconds())
	if err != nil {
		inv.Status = models.StatusError
		inv.ErrorMessage = err.Error()
	}
	s.recorder.Record(ctx, inv)

	return results, err
}

func (s *Service) scrape(ctx context.Context, req *Request) ([]Result, error) {
	if len(req.URLs) == 0 {
		return nil, services.ErrNoURLs
	}
	for _, raw := range req.URLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, services.WrapValidation(
				fmt.Sprintf("invalid URL %q: must be absolute http or https", raw), nil)
		}
	}

	maxConcurrent := req.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = config.DefaultMaxConcurrent
	}

	results := make([]Result, len(req.URLs))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, u := range req.URLs {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.fetch(ctx, u)
		}(i, u)
	}
	wg.Wait()

	return results, nil
}

func (s *Service) fetch(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("fetch failed", zap.String("url", rawURL), zap.Error(err))
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return res
	}

	// Parse once for title, once for content. The body is small enough that
	// buffering it is cheaper than a streaming double-parse.
	body := new(strings.Builder)
	if _, err := io.Copy(body, io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		res.Error = err.Error()
		return res
	}

	if title, err := ExtractTitle(strings.NewReader(body.String())); err == nil {
		res.Title = title
	}
	content, err := ExtractText(strings.NewReader(body.String()))
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	res.Content = content
	s.logger.Debug("page scraped",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("content_chars", len(content)))
	return res
}
