package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitbuddy/app/internal/domain"
)

func TestCompleteSendsTranscript(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		var body chatPayload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if body.Model != "gpt-3.5-turbo" || body.Temperature != 0.8 {
			t.Errorf("model/temperature = %s/%v", body.Model, body.Temperature)
		}
		if len(body.Messages) != 2 || body.Messages[1].Role != "user" || body.Messages[1].Content != "and legs?" {
			t.Errorf("messages = %+v", body.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Squats."}}]}`))
	}))
	defer ts.Close()

	c, err := New(Options{BaseURL: ts.URL + "/v1/", APIKey: "sk-test", Model: "gpt-3.5-turbo", Temperature: 0.8}, ts.Client())
	if err != nil {
		t.Fatal(err)
	}
	data, err := c.Complete(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "Arms done."},
		{Role: domain.RoleUser, Content: "and legs?"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if string(data) != `{"choices":[{"message":{"role":"assistant","content":"Squats."}}]}` {
		t.Errorf("payload = %s", data)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer ts.Close()

	c, _ := New(Options{BaseURL: ts.URL, Model: "m"}, ts.Client())
	_, err := c.Complete(context.Background(), nil)

	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
	if perr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", perr.StatusCode)
	}
	if string(perr.Payload) != `{"error":{"message":"slow down"}}` {
		t.Errorf("payload = %s", perr.Payload)
	}
}

func TestCompleteMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer ts.Close()

	c, _ := New(Options{BaseURL: ts.URL, Model: "m"}, ts.Client())
	if _, err := c.Complete(context.Background(), nil); !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("err = %v, want provider error", err)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Options{BaseURL: "http://x", Model: "m"}, nil); err == nil {
		t.Error("nil http client accepted")
	}
	if _, err := New(Options{Model: "m"}, http.DefaultClient); err == nil {
		t.Error("empty base url accepted")
	}
	if _, err := New(Options{BaseURL: "http://x"}, http.DefaultClient); err == nil {
		t.Error("empty model accepted")
	}
}
