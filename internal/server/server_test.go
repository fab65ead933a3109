package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poppitai/poppit/internal/metrics"
)

type fakeAnswerer struct {
	reply  string
	chunks []string
	err    error
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string) (string, error) {
	return f.reply, f.err
}

func (f *fakeAnswerer) Stream(_ context.Context, _ string, fn func([]byte) error) error {
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		if err := fn([]byte(c)); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAnswerer) Model() string { return "test-model" }

type fakeSink struct {
	pairs [][2]string
	err   error
}

func (f *fakeSink) SendFeedback(_ context.Context, instruction, response string) error {
	if f.err != nil {
		return f.err
	}
	f.pairs = append(f.pairs, [2]string{instruction, response})
	return nil
}

func testServer(answerer Answerer, sink FeedbackSink) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(":0", answerer, sink, metrics.NewCollector(), logger)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChat(t *testing.T) {
	srv := testServer(&fakeAnswerer{reply: "hello there"}, nil)
	handler := srv.Handler()

	rec := postJSON(t, handler, "/chat", chatRequest{Message: "hi"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello there", resp.Response)
}

func TestChatEmptyMessage(t *testing.T) {
	srv := testServer(&fakeAnswerer{reply: "x"}, nil)
	rec := postJSON(t, srv.Handler(), "/chat", chatRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatGenerationError(t *testing.T) {
	srv := testServer(&fakeAnswerer{err: errors.New("model gone")}, nil)
	rec := postJSON(t, srv.Handler(), "/chat", chatRequest{Message: "hi"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "model gone", "internal detail must not leak")
}

func TestChatMethodNotAllowed(t *testing.T) {
	srv := testServer(&fakeAnswerer{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLike(t *testing.T) {
	sink := &fakeSink{}
	srv := testServer(&fakeAnswerer{}, sink)

	rec := postJSON(t, srv.Handler(), "/like", likeRequest{Instruction: "q", Response: "a"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp likeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, sink.pairs, 1)
	assert.Equal(t, [2]string{"q", "a"}, sink.pairs[0])
}

func TestLikeSinkError(t *testing.T) {
	srv := testServer(&fakeAnswerer{}, &fakeSink{err: errors.New("disk full")})
	rec := postJSON(t, srv.Handler(), "/like", likeRequest{Instruction: "q", Response: "a"})

	// Mirrors the upstream contract: errors are reported in the body, not
	// the status code.
	require.Equal(t, http.StatusOK, rec.Code)
	var resp likeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestStats(t *testing.T) {
	srv := testServer(&fakeAnswerer{reply: "x"}, nil)
	handler := srv.Handler()

	// One chat call populates the generate metric.
	postJSON(t, handler, "/chat", chatRequest{Message: "hi"})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.Operations[metrics.OpLLMGenerate].Count)
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(&fakeAnswerer{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	srv := testServer(&fakeAnswerer{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebsocketStream(t *testing.T) {
	srv := testServer(&fakeAnswerer{chunks: []string{"hel", "lo"}}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(chatRequest{Message: "hi"}))

	var got strings.Builder
	for {
		var ev wsEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Type == "done" {
			break
		}
		require.Equal(t, "delta", ev.Type)
		got.WriteString(ev.Delta)
	}
	assert.Equal(t, "hello", got.String())
}

func TestWebsocketStreamError(t *testing.T) {
	srv := testServer(&fakeAnswerer{err: errors.New("model gone")}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(chatRequest{Message: "hi"}))

	var ev wsEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "error", ev.Type)
	assert.Equal(t, "generation failed", ev.Error)
}
