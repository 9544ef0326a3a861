package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentkit/agentctl/services/scrape"
)

type stubScrapeService struct {
	results     []scrape.Result
	err         error
	lastRequest *scrape.Request
}

func (s *stubScrapeService) Scrape(ctx context.Context, req *scrape.Request) ([]scrape.Result, error) {
	s.lastRequest = req
	return s.results, s.err
}

func TestHandleScrape_Success(t *testing.T) {
	svc := &stubScrapeService{
		results: []scrape.Result{
			{URL: "https://example.com", Success: true, StatusCode: 200, Content: "hello"},
		},
	}
	h := NewScrapeHandler(svc, zap.NewNop())

	body := `{"urls":["https://example.com"],"max_concurrent":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleScrape(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ScrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "hello", resp.Results[0].Content)

	require.NotNil(t, svc.lastRequest)
	assert.Equal(t, 3, svc.lastRequest.MaxConcurrent)
}

func TestHandleScrape_EmptyURLs(t *testing.T) {
	svc := &stubScrapeService{}
	h := NewScrapeHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(`{"urls":[]}`))
	rec := httptest.NewRecorder()
	h.HandleScrape(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.lastRequest)
}

func TestHandleScrape_RejectsNonURL(t *testing.T) {
	h := NewScrapeHandler(&stubScrapeService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape",
		strings.NewReader(`{"urls":["not a url"]}`))
	rec := httptest.NewRecorder()
	h.HandleScrape(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
