package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentkit/agentctl/services/providers"
)

func TestAdapter_DefaultModel(t *testing.T) {
	adapter := NewAdapter(providers.Config{APIKey: "g-key"})

	if got := adapter.DefaultModel(false); got != "gemini-pro" {
		t.Errorf("DefaultModel(false) = %s, want gemini-pro", got)
	}
	if got := adapter.DefaultModel(true); got != "gemini-pro-vision" {
		t.Errorf("DefaultModel(true) = %s, want gemini-pro-vision", got)
	}
}

func TestAdapter_ChatCompletion(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Bonjour"}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 4, "candidatesTokenCount": 2, "totalTokenCount": 6}
		}`))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "g-key", BaseURL: server.URL})
	resp, err := adapter.ChatCompletion(context.Background(), &providers.ChatRequest{
		Model:       "gemini-pro",
		Messages:    []providers.Message{{Role: "user", Content: "Say hello in French"}},
		Temperature: 0.7,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}

	if resp.Text != "Bonjour" {
		t.Errorf("Text = %q, want Bonjour", resp.Text)
	}
	if resp.Usage.TotalTokens != 6 {
		t.Errorf("TotalTokens = %d, want 6", resp.Usage.TotalTokens)
	}
	if gotPath != "/v1/models/gemini-pro:generateContent" {
		t.Errorf("path = %s", gotPath)
	}
	if gotKey != "g-key" {
		t.Errorf("key = %q, want g-key", gotKey)
	}

	genCfg, ok := gotBody["generationConfig"].(map[string]interface{})
	if !ok {
		t.Fatalf("generationConfig missing: %v", gotBody)
	}
	if genCfg["maxOutputTokens"] != float64(100) {
		t.Errorf("maxOutputTokens = %v, want 100", genCfg["maxOutputTokens"])
	}
}

func TestAdapter_ChatCompletion_InlineImage(t *testing.T) {
	var gotBody struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MimeType string `json:"mime_type"`
					Data     string `json:"data"`
				} `json:"inline_data"`
			} `json:"parts"`
		} `json:"contents"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a bird"}]}}]}`))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "g-key", BaseURL: server.URL})
	_, err := adapter.ChatCompletion(context.Background(), &providers.ChatRequest{
		Model: "gemini-pro-vision",
		Messages: []providers.Message{{
			Role:    "user",
			Content: "What bird is this?",
			Image:   &providers.ImageAttachment{MediaType: "image/jpeg", Data: "ZmVhdGhlcnM="},
		}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}

	parts := gotBody.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/jpeg" {
		t.Errorf("inline_data = %+v", parts[1].InlineData)
	}
}

func TestAdapter_ChatCompletion_RoleMapping(t *testing.T) {
	var gotBody struct {
		Contents []struct {
			Role string `json:"role"`
		} `json:"contents"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "g-key", BaseURL: server.URL})
	_, err := adapter.ChatCompletion(context.Background(), &providers.ChatRequest{
		Model: "gemini-pro",
		Messages: []providers.Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "bye"},
		},
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}

	wantRoles := []string{"user", "model", "user"}
	for i, want := range wantRoles {
		if gotBody.Contents[i].Role != want {
			t.Errorf("contents[%d].role = %s, want %s", i, gotBody.Contents[i].Role, want)
		}
	}
}

func TestAdapter_ChatCompletion_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "bad", BaseURL: server.URL})
	_, err := adapter.ChatCompletion(context.Background(), &providers.ChatRequest{
		Model:    "gemini-pro",
		Messages: []providers.Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("ChatCompletion() expected error")
	}
	provErr := err.(*providers.ProviderError)
	if provErr.Code != "INVALID_ARGUMENT" {
		t.Errorf("Code = %s, want INVALID_ARGUMENT", provErr.Code)
	}
}
