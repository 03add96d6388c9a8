package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"bonitx-quiz-service/internal/app"
	"bonitx-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var errUnsupported = errors.New("unsupported message type")

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID int    `json:"questionId"`
	Category   string `json:"category"`
}

type emailPayload struct {
	Email *string `json:"email"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorMessage(err error) outboundMessage[any] {
	payload := errorPayload{Code: domain.ErrorCode(err), Message: domain.UserMessage(err)}
	if errors.Is(err, errUnsupported) {
		payload = errorPayload{Code: "unsupported", Message: err.Error()}
	}
	return outboundMessage[any]{Type: "error", Payload: payload}
}

// ServeWS upgrades HTTP requests to websockets, opens a quiz visit and
// streams its state until the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	session, err := h.service.Start(ctx)
	if err != nil {
		h.logger.Error("start session failed", zap.Error(err))
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	sessionID := session.ID()
	defer h.service.End(ctx, sessionID)

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("session", sessionID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: view}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r, sessionID, inbound); err != nil {
			if !enqueue(send, writerDone, errorMessage(err)) {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer. It returns false once the writer has exited.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

// dispatch applies one client event. State changes reach the client through
// the session subscription; only failures are answered here.
func (h *WSHandler) dispatch(r *http.Request, sessionID string, inbound inboundMessage) error {
	ctx := r.Context()
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return domain.ErrInvalidCategory
		}
		category, err := domain.ParseCategory(payload.Category)
		if err != nil {
			return err
		}
		_, err = h.service.Select(ctx, sessionID, payload.QuestionID, category)
		return err
	case "advance":
		_, err := h.service.Advance(ctx, sessionID)
		return err
	case "retreat":
		_, err := h.service.Retreat(ctx, sessionID)
		return err
	case "email":
		var payload emailPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Email == nil {
			return domain.ErrInvalidEmail
		}
		_, err := h.service.SetEmail(ctx, sessionID, *payload.Email)
		return err
	case "submit":
		var payload emailPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return domain.ErrInvalidEmail
			}
		}
		if payload.Email != nil {
			if _, err := h.service.SetEmail(ctx, sessionID, *payload.Email); err != nil {
				return err
			}
		}
		_, _, err := h.service.Submit(ctx, sessionID)
		return err
	default:
		return errUnsupported
	}
}
