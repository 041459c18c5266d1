package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vovakirdan/chatscore/internal/log"
	"github.com/vovakirdan/chatscore/internal/score"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("test-key", "test-model", log.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.baseURL = srv.URL
	return c
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", "model", log.Nop())
	if !errors.Is(err, score.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestComplete_ReturnsFirstChoice(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": " 7/10 \n"}},
			},
		})
	})

	got, err := c.Complete(context.Background(), "rate this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "7/10" {
		t.Fatalf("Complete = %q, want trimmed reply", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotReq.Model != "test-model" || len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "rate this" {
		t.Fatalf("request = %+v", gotReq)
	}
}

func TestComplete_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := c.Complete(context.Background(), "rate this"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestComplete_APIErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model overloaded", "code": 502},
		})
	})

	_, err := c.Complete(context.Background(), "rate this")
	if err == nil {
		t.Fatal("expected error from error body")
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	if _, err := c.Complete(context.Background(), "rate this"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
