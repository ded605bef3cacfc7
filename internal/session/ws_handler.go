package session

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/quizlive/engine/pkg/http/errors"
	"github.com/quizlive/engine/pkg/http/ws"
)

// WSHandler streams session events to WebSocket clients. Clients are
// read-mostly: the only inbound messages are pings.
type WSHandler struct {
	registry *Registry
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWSHandler creates the session WebSocket handler.
func NewWSHandler(registry *Registry, hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "session_ws").Logger(),
	}
}

// HandleWebSocket handles GET /ws/sessions?session_id=...
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session_id must be a UUID", "session_id")
		return
	}
	s, err := h.registry.Get(sessionID)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Subscribe(sessionID, wsConn)
	go wsConn.WritePump()

	// Send the current status so late subscribers don't start blind.
	if payload, err := json.Marshal(statusPayload(s.Status())); err == nil {
		wsConn.Send(ws.Message{Type: ws.TypeStateChanged, Payload: payload})
	}

	wsConn.ReadPump(func(msg ws.Message) error {
		if msg.Type == ws.TypePing {
			return wsConn.Send(ws.Message{Type: ws.TypePong})
		}
		return wsConn.Send(errorMessage(httperrors.ErrCodeUnknownMessageType, "unknown message type"))
	})

	h.hub.Unsubscribe(sessionID, wsConn)
}

// EventBroadcaster adapts the hub into a session event sink.
func EventBroadcaster(hub *ws.Hub, logger zerolog.Logger) Sink {
	return func(ev Event) {
		msg, ok := eventMessage(ev)
		if !ok {
			return
		}
		hub.Broadcast(ev.SessionID, msg)
	}
}

func eventMessage(ev Event) (ws.Message, bool) {
	switch ev.Type {
	case EventStateChanged:
		return marshalMessage(ws.TypeStateChanged, ws.StateChangedPayload{
			SessionID:     ev.SessionID.String(),
			State:         string(ev.State),
			QuestionIndex: ev.QuestionIndex,
		})
	case EventPlayerJoined:
		return marshalMessage(ws.TypePlayerJoined, ws.PlayerJoinedPayload{
			SessionID:   ev.SessionID.String(),
			PlayerID:    ev.Player.ID,
			DisplayName: ev.Player.Name,
			PlayerCount: ev.PlayerCount,
		})
	case EventCountdown:
		return marshalMessage(ws.TypeCountdown, ws.StateChangedPayload{
			SessionID:     ev.SessionID.String(),
			State:         string(ev.State),
			QuestionIndex: ev.QuestionIndex,
		})
	case EventQuestionOpen:
		opts := make([]ws.OptionView, len(ev.Question.Options))
		for i, o := range ev.Question.Options {
			opts[i] = ws.OptionView{ID: o.ID, Text: o.Text}
		}
		return marshalMessage(ws.TypeQuestionOpen, ws.QuestionOpenPayload{
			SessionID:       ev.SessionID.String(),
			QuestionIndex:   ev.Question.Index,
			Prompt:          ev.Question.Prompt,
			Options:         opts,
			DurationSeconds: int(ev.Question.Duration.Seconds()),
		})
	case EventQuestionClose:
		return marshalMessage(ws.TypeQuestionClose, ws.StateChangedPayload{
			SessionID:     ev.SessionID.String(),
			State:         string(ev.State),
			QuestionIndex: ev.QuestionIndex,
		})
	case EventAnswerReveal:
		result, err := json.Marshal(ev.Result)
		if err != nil {
			return ws.Message{}, false
		}
		return marshalMessage(ws.TypeAnswerReveal, ws.AnswerRevealPayload{
			SessionID:     ev.SessionID.String(),
			QuestionIndex: ev.QuestionIndex,
			Result:        result,
		})
	case EventFinalResults:
		lb, err := json.Marshal(ev.Leaderboard)
		if err != nil {
			return ws.Message{}, false
		}
		return marshalMessage(ws.TypeFinalResults, ws.FinalResultsPayload{
			SessionID:   ev.SessionID.String(),
			Leaderboard: lb,
		})
	case EventSessionEnded:
		return marshalMessage(ws.TypeSessionEnded, ws.StateChangedPayload{
			SessionID:     ev.SessionID.String(),
			State:         string(ev.State),
			QuestionIndex: ev.QuestionIndex,
		})
	}
	return ws.Message{}, false
}

func statusPayload(status StatusView) ws.StateChangedPayload {
	return ws.StateChangedPayload{
		SessionID:     status.ID.String(),
		State:         string(status.State),
		QuestionIndex: status.QuestionIndex,
	}
}

func marshalMessage(msgType string, payload interface{}) (ws.Message, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		return ws.Message{}, false
	}
	return ws.Message{Type: msgType, Payload: data}, true
}

func errorMessage(code, message string) ws.Message {
	data, _ := json.Marshal(ws.ErrorPayload{Code: code, Message: message})
	return ws.Message{Type: ws.TypeError, Payload: data}
}
