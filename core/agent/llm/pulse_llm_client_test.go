package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"pulse_server/config"
)

func TestClient_CompleteJSON(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"{\"sentiment\":\"positive\"}"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := NewClientWithConfig(ClientConfig{APIKey: "test", BaseURL: srv.URL + "/v1", Temperature: 0.3})
	got, err := c.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"sentiment":"positive"}` {
		t.Errorf("expected JSON content, got %q", got)
	}

	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("expected json_object response format, got %v", captured["response_format"])
	}
	if temp, _ := captured["temperature"].(float64); temp < 0.29 || temp > 0.31 {
		t.Errorf("expected temperature 0.3, got %v", captured["temperature"])
	}
	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(msgs))
	}
}

func TestClient_ZeroTemperatureIsSent(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-1","object":"chat.completion",
			"choices":[{"index":0,"message":{"role":"assistant","content":"{}"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := NewClientWithConfig(ClientConfig{APIKey: "test", BaseURL: srv.URL + "/v1", Temperature: 0})
	if _, err := c.CompleteJSON(context.Background(), "system", "user"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	temp, ok := captured["temperature"].(float64)
	if !ok {
		t.Fatalf("expected temperature in request, got %v", captured)
	}
	if temp <= 0 || temp > 1e-6 {
		t.Errorf("expected near-zero temperature, got %v", temp)
	}
}

func TestClient_CompleteJSON_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	c := NewClientWithConfig(ClientConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	if _, err := c.CompleteJSON(context.Background(), "s", "u"); err != ErrEmptyResponse {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnthropicClient_CompleteJSON(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
			"content":[{"type":"text","text":"\"sentiment\":\"urgent\"}"}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient(ClientConfig{APIKey: "test", BaseURL: srv.URL})
	got, err := c.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"sentiment":"urgent"}` {
		t.Errorf("expected prefilled object, got %q", got)
	}
	if temp, ok := captured["temperature"].(float64); !ok || temp != 0 {
		t.Errorf("expected temperature 0 to be sent, got %v", captured["temperature"])
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		provider string
	}{
		{"no key", config.Config{LLMProvider: config.ProviderOpenAI}, ""},
		{"openai", config.Config{LLMProvider: config.ProviderOpenAI, OpenAIAPIKey: "k"}, "openai"},
		{"anthropic", config.Config{LLMProvider: config.ProviderAnthropic, AnthropicAPIKey: "k"}, "anthropic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewFromConfig(&tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.provider == "" {
				if gen != nil {
					t.Errorf("expected nil generator without key, got %s", gen.Provider())
				}
				return
			}
			if gen == nil || gen.Provider() != tt.provider {
				t.Errorf("expected provider %q, got %v", tt.provider, gen)
			}
		})
	}
}
