package generate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go/option"

	"github.com/letterloop/letterloop/internal/interview"
)

const okResponse = `{"id":"resp_test","object":"response","created_at":0,"model":"gpt-test","status":"completed",` +
	`"output":[{"type":"message","id":"msg_test","role":"assistant","status":"completed",` +
	`"content":[{"type":"output_text","text":"  tell me more  ","annotations":[]}]}]}`

func testOpenAI(t *testing.T, retries int, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAI(Config{
		Model:          "gpt-test",
		MaxTokens:      50,
		MaxRetries:     retries,
		RetryBaseDelay: time.Millisecond,
	}, "test-key", option.WithBaseURL(srv.URL+"/"))
}

func TestOpenAIGenerate(t *testing.T) {
	var body struct {
		Model           string `json:"model"`
		Instructions    string `json:"instructions"`
		Input           string `json:"input"`
		MaxOutputTokens int    `json:"max_output_tokens"`
	}
	var path string

	o := testOpenAI(t, 0, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, okResponse)
	})

	got, err := o.Generate(context.Background(), sampleRequest)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "tell me more" {
		t.Errorf("Generate = %q, want trimmed output text", got)
	}

	if !strings.HasSuffix(path, "/responses") {
		t.Errorf("path = %q, want the responses endpoint", path)
	}
	if body.Model != "gpt-test" || body.MaxOutputTokens != 50 {
		t.Errorf("model/tokens = %q/%d", body.Model, body.MaxOutputTokens)
	}
	if body.Instructions == "" {
		t.Error("instructions missing")
	}
	want := "User: " + OpeningTurn + "\n\nAssistant: Q0\n\nUser: an answer\n\nAssistant:"
	if body.Input != want {
		t.Errorf("input = %q, want %q", body.Input, want)
	}
}

func TestOpenAIStatusError(t *testing.T) {
	var calls int32
	o := testOpenAI(t, 2, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	})

	_, err := o.Generate(context.Background(), sampleRequest)
	var se *interview.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *interview.StatusError", err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", se.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1 (401 is not retried)", got)
	}
	if text := interview.ErrorText(err); !strings.HasPrefix(text, interview.APIErrorMarker+"401)") {
		t.Errorf("ErrorText = %q", text)
	}
}

func TestOpenAIRetriesServerError(t *testing.T) {
	var calls int32
	o := testOpenAI(t, 1, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
			return
		}
		_, _ = io.WriteString(w, okResponse)
	})

	if _, err := o.Generate(context.Background(), sampleRequest); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}
