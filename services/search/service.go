package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/models"
	"github.com/agentkit/agentctl/services"
	"github.com/agentkit/agentctl/services/audit"
)

// engine is one backing search provider
type engine interface {
	name() string
	available() bool
	search(ctx context.Context, query string, numResults int) ([]Result, error)
}

// Service performs web searches, picking an engine by configured credentials
// when the caller asks for auto selection. Preference order is SerpAPI, then
// Google Custom Search, then DuckDuckGo Lite which needs no credentials.
type Service struct {
	serpapi  engine
	google   engine
	ddg      engine
	recorder audit.Recorder
	logger   *zap.Logger
}

// NewService creates a new search service from the search configuration
func NewService(cfg *config.SearchConfig, recorder audit.Recorder, logger *zap.Logger) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	return &Service{
		serpapi:  &serpAPIEngine{apiKey: cfg.SerpAPIKey, baseURL: defaultSerpAPIBaseURL, client: client},
		google:   &googleEngine{apiKey: cfg.GoogleAPIKey, cx: cfg.GoogleCX},
		ddg:      &duckDuckGoEngine{baseURL: defaultDuckDuckGoBaseURL, client: client},
		recorder: recorder,
		logger:   logger,
	}
}

// Search runs a query against the selected engine
func (s *Service) Search(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	resp, err := s.search(ctx, req)

	inv := models.NewInvocation("search")
	inv.PromptChars = len(req.Query)
	inv.LatencyMs = int(time.Since(start).Milliseconds())
	if resp != nil {
		inv.Engine = resp.Engine
	}
	if err != nil {
		inv.Status = models.StatusError
		inv.ErrorMessage = err.Error()
	}
	s.recorder.Record(ctx, inv)

	return resp, err
}

func (s *Service) search(ctx context.Context, req *Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, services.ErrEmptyQuery
	}

	numResults := req.NumResults
	if numResults <= 0 {
		numResults = config.DefaultNumResults
	}

	eng, err := s.selectEngine(req.Engine)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("searching",
		zap.String("engine", eng.name()),
		zap.String("query", req.Query),
		zap.Int("num_results", numResults))

	results, err := eng.search(ctx, req.Query, numResults)
	if err != nil {
		return &Response{Engine: eng.name()}, err
	}

	return &Response{Engine: eng.name(), Results: results}, nil
}

func (s *Service) selectEngine(name string) (engine, error) {
	switch name {
	case "", EngineAuto:
		if s.serpapi.available() {
			return s.serpapi, nil
		}
		if s.google.available() {
			return s.google, nil
		}
		return s.ddg, nil
	case EngineSerpAPI:
		return s.serpapi, nil
	case EngineGoogle:
		return s.google, nil
	case EngineDuckDuckGo:
		return s.ddg, nil
	default:
		return nil, services.WrapValidation(
			fmt.Sprintf("unknown search engine %q, supported: %s, %s, %s, %s",
				name, EngineAuto, EngineSerpAPI, EngineGoogle, EngineDuckDuckGo), nil)
	}
}
