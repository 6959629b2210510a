package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiProviderAvailable(t *testing.T) {
	if NewGeminiProvider("", "").Available() {
		t.Error("provider without an API key reports available")
	}
	if !NewGeminiProvider("key", "").Available() {
		t.Error("provider with an API key reports unavailable")
	}
}

func TestGeminiProviderDefaultModel(t *testing.T) {
	g := NewGeminiProvider("key", "")
	if g.model != "gemini-2.5-flash-lite" {
		t.Errorf("model = %q", g.model)
	}
	if g := NewGeminiProvider("key", "custom"); g.model != "custom" {
		t.Errorf("model = %q, want custom", g.model)
	}
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "hello back"}},
				},
				"finishReason": "STOP",
			}},
			"modelVersion": "gemini-2.5-flash-lite-001",
		})
	}))
	defer srv.Close()

	g := NewGeminiProvider("secret", "")
	g.baseURL = srv.URL

	resp, err := g.Generate(context.Background(), Request{
		SystemPrompt: "be terse",
		UserPrompt:   "say hello",
		MaxTokens:    128,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "hello back" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Model != "gemini-2.5-flash-lite-001" {
		t.Errorf("Model = %q, want the server-reported version", resp.Model)
	}
	if !strings.Contains(gotPath, "gemini-2.5-flash-lite:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["systemInstruction"] == nil {
		t.Error("system prompt not forwarded")
	}
	cfg, _ := gotBody["generationConfig"].(map[string]interface{})
	if cfg == nil || cfg["maxOutputTokens"].(float64) != 128 {
		t.Errorf("generationConfig = %v", cfg)
	}
}

func TestGeminiGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	g := NewGeminiProvider("wrong", "")
	g.baseURL = srv.URL

	if _, err := g.Generate(context.Background(), Request{UserPrompt: "x"}); err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}

func TestGeminiGenerateUnconfigured(t *testing.T) {
	g := NewGeminiProvider("", "")
	if _, err := g.Generate(context.Background(), Request{UserPrompt: "x"}); err == nil {
		t.Fatal("expected error when no API key is set")
	}
}
