package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kalibr1/cinequery/internal/domain"
	"github.com/kalibr1/cinequery/internal/version"
)

const maxChatBodyBytes = 64 * 1024

// turnFailedMessage is what clients see when a turn errors. Provider error
// bodies can contain upstream response text and never leave the process.
const turnFailedMessage = "the model is currently unavailable; please try again"

type chatRequest struct {
	Message  string `json:"message"`
	SenderID string `json:"senderId,omitempty"`
}

type chatResponse struct {
	Reply      string `json:"reply"`
	SessionID  string `json:"sessionId"`
	Model      string `json:"model,omitempty"`
	ToolRounds int    `json:"toolRounds"`
	DurationMs int64  `json:"durationMs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SenderID == "" {
		req.SenderID = "default"
	}

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	result, err := s.chatter.Run(ctx, domain.SessionKey{Channel: "http", SenderID: req.SenderID}, req.Message)
	if err != nil {
		// Full detail stays in the log; provider responses are not forwarded.
		s.log.Error().Err(err).Msg("chat turn failed")
		writeError(w, http.StatusBadGateway, turnFailedMessage)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:      result.Reply,
		SessionID:  result.SessionID,
		Model:      result.Model,
		ToolRounds: result.ToolRounds,
		DurationMs: result.Duration.Milliseconds(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.AggregateStats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats query failed")
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleWebSocket runs a line-of-JSON chat loop over one connection. Each
// connection gets its own session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxChatBodyBytes)

	connID := uuid.New().String()
	key := domain.SessionKey{Channel: "ws", SenderID: connID}
	s.log.Debug().Str("connId", connID).Str("remote", r.RemoteAddr).Msg("new websocket connection")

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("connId", connID).Msg("client closed connection")
			} else {
				s.log.Warn().Err(err).Str("connId", connID).Msg("read error")
			}
			return
		}
		if req.Message == "" {
			conn.WriteJSON(errorResponse{Error: "message is required"})
			continue
		}

		ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
		result, err := s.chatter.Run(ctx, key, req.Message)
		cancel()
		if err != nil {
			s.log.Error().Err(err).Str("connId", connID).Msg("chat turn failed")
			conn.WriteJSON(errorResponse{Error: turnFailedMessage})
			continue
		}

		if err := conn.WriteJSON(chatResponse{
			Reply:      result.Reply,
			SessionID:  result.SessionID,
			Model:      result.Model,
			ToolRounds: result.ToolRounds,
			DurationMs: result.Duration.Milliseconds(),
		}); err != nil {
			s.log.Warn().Err(err).Str("connId", connID).Msg("write error")
			return
		}
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
