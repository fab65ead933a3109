package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/poppitai/poppit/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same trust model as the CORS-allow-all HTTP surface
	},
}

// wsEvent is one frame on the stream. Type is "delta" while tokens arrive,
// then a final "done", or "error".
type wsEvent struct {
	Type  string `json:"type"`
	Delta string `json:"delta,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleWS upgrades to a websocket and serves a request/stream loop: each
// text frame {"message": ...} is answered with a sequence of delta frames
// followed by a done frame. One generation at a time per connection.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if req.Message == "" {
			if err := conn.WriteJSON(wsEvent{Type: "error", Error: "message is required"}); err != nil {
				return
			}
			continue
		}

		start := time.Now()
		streamErr := s.answerer.Stream(r.Context(), req.Message, func(chunk []byte) error {
			return conn.WriteJSON(wsEvent{Type: "delta", Delta: string(chunk)})
		})
		if s.stats != nil {
			s.stats.Record(metrics.OpLLMGenerate, time.Since(start))
		}

		if streamErr != nil {
			s.logger.Error("stream generation failed", "error", streamErr)
			if err := conn.WriteJSON(wsEvent{Type: "error", Error: "generation failed"}); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(wsEvent{Type: "done"}); err != nil {
			return
		}
	}
}
