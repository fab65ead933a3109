package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAsk(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("path = %q, want /chat", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Message != "hello" {
			t.Errorf("message = %q, want %q", req.Message, "hello")
		}
		json.NewEncoder(w).Encode(chatResponse{Response: "hi back"})
	}))
	defer ts.Close()

	c := New(ts.URL)
	got, err := c.Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got != "hi back" {
		t.Errorf("Ask() = %q, want %q", got, "hi back")
	}
}

func TestAskServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Ask(context.Background(), "hello")
	if err == nil {
		t.Fatal("Ask() expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "model exploded") {
		t.Errorf("error should carry the server body, got %v", err)
	}
}

func TestAskConnectionRefused(t *testing.T) {
	// Port 1 is essentially never listening.
	c := New("http://127.0.0.1:1")
	_, err := c.Ask(context.Background(), "hello")
	if err == nil {
		t.Fatal("Ask() expected error when server is unreachable")
	}
}

func TestSendFeedback(t *testing.T) {
	var got likeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/like" {
			t.Errorf("path = %q, want /like", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}))
	defer ts.Close()

	c := New(ts.URL)
	if err := c.SendFeedback(context.Background(), "q", "a"); err != nil {
		t.Fatalf("SendFeedback() error = %v", err)
	}
	if got.Instruction != "q" || got.Response != "a" {
		t.Errorf("server received %+v", got)
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "//") {
			t.Errorf("path %q has a double slash", r.URL.Path)
		}
		json.NewEncoder(w).Encode(chatResponse{Response: "ok"})
	}))
	defer ts.Close()

	c := New(ts.URL + "/")
	if _, err := c.Ask(context.Background(), "x"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
}
