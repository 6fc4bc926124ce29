package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/leavedesk/leavegate-backend/internal/middleware"
	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/service"
	ws "github.com/leavedesk/leavegate-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a test session over one socket: autosave, violation
// reports, and submission share the REST semantics, just without the
// per-request overhead.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/employee/sessions/:session_id/stream
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("session_id", sessionID.String()).
		Logger()

	wsLog.Info().Msg("Session stream connected")

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			h.handlePing(conn, wsLog, claims.UserID, sessionID)
		case ws.ActionAnswer:
			h.handleAnswer(conn, wsLog, claims.UserID, sessionID, &msg)
		case ws.ActionViolation:
			h.handleViolation(conn, wsLog, claims.UserID, sessionID, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(conn, wsLog, claims.UserID, sessionID)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) handlePing(conn *websocket.Conn, wsLog zerolog.Logger, userID int, sessionID uuid.UUID) {
	pong := ws.PongResponse{Event: ws.EventPong}
	if view, err := h.sessionService.State(context.Background(), userID, sessionID); err == nil {
		pong.RemainingSeconds = view.RemainingSeconds
	} else {
		wsLog.Debug().Err(err).Msg("Clock sync without session state")
	}
	_ = ws.WriteTyped(conn, pong)
}

func (h *WSHandler) handleAnswer(conn *websocket.Conn, wsLog zerolog.Logger, userID int, sessionID uuid.UUID, msg *ws.RequestEnvelope) {
	if msg.QID == "" || msg.Answer == "" {
		_ = ws.WriteError(conn, "q_id and ans are required")
		return
	}

	req := &model.SubmitAnswerRequest{QuestionID: msg.QID, Value: msg.Answer}
	if err := h.sessionService.SubmitAnswer(context.Background(), userID, sessionID, req); err != nil {
		wsLog.Debug().Err(err).Msg("Autosave rejected")
		_ = ws.WriteError(conn, err.Error())
		return
	}

	_ = ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID})
}

func (h *WSHandler) handleViolation(conn *websocket.Conn, wsLog zerolog.Logger, userID int, sessionID uuid.UUID, msg *ws.RequestEnvelope) {
	if msg.Type == "" {
		_ = ws.WriteError(conn, "type is required")
		return
	}

	req := &model.ReportViolationRequest{Type: msg.Type, Detail: msg.Detail}
	status, err := h.sessionService.ReportViolation(context.Background(), userID, sessionID, req)
	if err != nil {
		wsLog.Debug().Err(err).Msg("Violation report rejected")
		_ = ws.WriteError(conn, err.Error())
		return
	}

	_ = ws.WriteTyped(conn, ws.ViolationResponse{
		Event:          ws.EventViolation,
		ViolationCount: status.ViolationCount,
		MaxViolations:  status.MaxViolations,
		CurrentPenalty: status.CurrentPenalty,
		WarningLevel:   status.WarningLevel,
		AutoSubmitted:  status.AutoSubmitted,
	})
}

func (h *WSHandler) handleSubmit(conn *websocket.Conn, wsLog zerolog.Logger, userID int, sessionID uuid.UUID) {
	result, err := h.sessionService.Submit(context.Background(), userID, sessionID)
	if err != nil {
		wsLog.Debug().Err(err).Msg("Submit rejected")
		_ = ws.WriteError(conn, err.Error())
		return
	}

	wsLog.Info().Float64("final_score", result.TotalScore).Msg("Session submitted over stream")

	_ = ws.WriteTyped(conn, ws.SubmittedResponse{
		Event:      ws.EventSubmitted,
		FinalScore: result.TotalScore,
		Passed:     result.Passed,
	})
}
