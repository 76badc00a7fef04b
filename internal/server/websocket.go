package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/logger"
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{CheckOrigin: s.originAllowed}
}

// originAllowed accepts requests without an Origin header and origins in the
// configured allow list.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Scheme+"://"+u.Host) {
			return true
		}
	}
	return false
}

// handleChatWebSocket serves chat over a websocket. Each {"message"} frame
// is answered independently with the same shape as POST /api/chat.
func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.Component("server")
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendFrame(conn, errorBody{Status: "error", Error: "invalid message format", Message: err.Error()})
			continue
		}

		out, err := s.svc.Chat(r.Context(), req.Message)
		if err != nil {
			reason := "internal_error"
			if errors.Is(err, compliance.ErrInvalidInput) {
				reason = strings.TrimPrefix(err.Error(), compliance.ErrInvalidInput.Error()+": ")
			}
			s.sendFrame(conn, errorBody{Status: "error", Error: reason, Message: err.Error()})
			continue
		}
		s.sendFrame(conn, newChatResponse(out))
	}
}

func (s *Server) sendFrame(conn *websocket.Conn, v any) {
	if err := conn.WriteJSON(v); err != nil {
		logger.Component("server").Warn().Err(err).Msg("websocket write failed")
	}
}
