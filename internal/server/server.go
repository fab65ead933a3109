// Package server provides the model server HTTP surface: chat, feedback,
// stats and a websocket stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poppitai/poppit/internal/metrics"
)

// Answerer generates replies to user messages.
type Answerer interface {
	Answer(ctx context.Context, message string) (string, error)
	Stream(ctx context.Context, message string, fn func(chunk []byte) error) error
	Model() string
}

// FeedbackSink accepts liked instruction/response pairs.
type FeedbackSink interface {
	SendFeedback(ctx context.Context, instruction, response string) error
}

// Server wires the HTTP handlers with their dependencies.
type Server struct {
	answerer Answerer
	feedback FeedbackSink
	stats    *metrics.Collector
	logger   *slog.Logger
	addr     string
}

// New creates a server listening on addr. feedback and stats may be nil.
func New(addr string, answerer Answerer, feedback FeedbackSink, stats *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		answerer: answerer,
		feedback: feedback,
		stats:    stats,
		logger:   logger,
		addr:     addr,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/like", s.handleLike)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return CORS(Logging(s.logger)(mux))
}

// Run starts the server and blocks until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("model server listening", "addr", s.addr, "model", s.answerer.Model())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down model server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type likeRequest struct {
	Instruction string `json:"instruction"`
	Response    string `json:"response"`
}

type likeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	answer, err := s.answerer.Answer(r.Context(), req.Message)
	if s.stats != nil {
		s.stats.Record(metrics.OpLLMGenerate, time.Since(start))
	}
	if err != nil {
		s.logger.Error("generation failed", "error", err)
		http.Error(w, "generation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if s.feedback == nil {
		writeJSON(w, http.StatusOK, likeResponse{Status: "error", Message: "feedback disabled"})
		return
	}
	if err := s.feedback.SendFeedback(r.Context(), req.Instruction, req.Response); err != nil {
		s.logger.Warn("feedback write failed", "error", err)
		writeJSON(w, http.StatusOK, likeResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{Status: "success", Message: "Like saved"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.stats == nil {
		writeJSON(w, http.StatusOK, metrics.Snapshot{Operations: map[string]metrics.OperationSnapshot{}})
		return
	}
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}
