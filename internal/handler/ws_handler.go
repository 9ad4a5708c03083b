package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fitlearn/quizlab-backend/internal/middleware"
	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/fitlearn/quizlab-backend/internal/quiz"
	"github.com/fitlearn/quizlab-backend/internal/service"
	ws "github.com/fitlearn/quizlab-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
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

// WSHandler streams a live quiz session: autosave, navigation, countdown
// ticks and the final graded outcome over one connection.
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

// safeConn serializes writes. The tick goroutine and the action loop both
// write to the same connection.
type safeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *safeConn) send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ws.WriteTyped(s.conn, v)
}

func (s *safeConn) sendError(msg string) {
	_ = s.send(ws.ErrorResponse{Event: ws.EventError, Error: msg})
}

// QuizStream godoc
// WS /ws/v1/member/quizzes/:quiz_id/stream
// Upgrades to WebSocket. Requires that the member already started the quiz
// via the REST start endpoint.
func (h *WSHandler) QuizStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz ID"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer rawConn.Close()

	conn := &safeConn{conn: rawConn}
	memberID := claims.UserID

	live, ok := h.sessionService.LiveSession(quizID, memberID)
	if !ok {
		conn.sendError("no active session for this quiz")
		return
	}

	wsLog := h.log.With().
		Int("member_id", memberID).
		Str("quiz_id", quizID.String()).
		Logger()

	wsLog.Info().Msg("Member connected")

	stop := make(chan struct{})
	defer close(stop)
	go h.pushTicks(conn, live, stop, wsLog)

	for {
		rawConn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		_, data, err := rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			conn.sendError("malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			h.handleAnswer(c, conn, quizID, memberID, data)
		case ws.ActionNavigate:
			h.handleNavigate(conn, quizID, memberID, data)
		case ws.ActionSubmit:
			h.handleSubmit(c, conn, wsLog, quizID, memberID)
		case ws.ActionPing:
			_ = conn.send(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			conn.sendError("unknown action: " + string(envelope.Action))
		}
	}
}

// pushTicks streams the countdown once per second and pushes the graded
// outcome when the session terminates, whether by submit or expiry.
func (h *WSHandler) pushTicks(conn *safeConn, live *quiz.Session, stop <-chan struct{}, wsLog zerolog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-live.Done():
			sub, ok := live.Submission()
			if !ok {
				return
			}
			_ = conn.send(ws.GradedResponse{
				Event:        ws.EventGraded,
				Status:       "completed",
				Score:        sub.Score,
				ScorePercent: sub.ScorePercent,
				Passed:       sub.Passed,
			})
			wsLog.Info().
				Int("score", sub.Score).
				Float64("score_percent", sub.ScorePercent).
				Msg("Graded outcome pushed")
			return
		case <-ticker.C:
			if remaining := live.RemainingSeconds(); remaining >= 0 {
				_ = conn.send(ws.TickResponse{Event: ws.EventTick, RemainingSeconds: remaining})
			}
		}
	}
}

// handleAnswer saves one answer through the same path as the REST endpoint:
// live session, Redis buffer and the persistence queue.
func (h *WSHandler) handleAnswer(c *gin.Context, conn *safeConn, quizID uuid.UUID, memberID int, data []byte) {
	var msg ws.AnswerRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		conn.sendError("malformed answer")
		return
	}

	if _, err := uuid.Parse(msg.QuestionID); err != nil {
		conn.sendError("invalid question_id format")
		return
	}

	req := model.AnswerRequest{
		QuestionID:    msg.QuestionID,
		SelectedIndex: msg.SelectedIndex,
		Text:          msg.Text,
	}
	if err := h.sessionService.Answer(c.Request.Context(), quizID, memberID, req); err != nil {
		conn.sendError("save failed")
		return
	}

	_ = conn.send(ws.AnswerResponse{Event: ws.EventSuccess, Status: "saved"})
}

func (h *WSHandler) handleNavigate(conn *safeConn, quizID uuid.UUID, memberID int, data []byte) {
	var msg ws.NavigateRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		conn.sendError("malformed navigate")
		return
	}

	if err := h.sessionService.Navigate(quizID, memberID, msg.Move, msg.Index); err != nil {
		conn.sendError("navigate failed")
		return
	}

	_ = conn.send(ws.AnswerResponse{Event: ws.EventSuccess, Status: "moved"})
}

// handleSubmit finalizes the attempt. The graded event itself is pushed by
// pushTicks when the session's done channel closes, so expiry and explicit
// submit deliver the outcome through one path.
func (h *WSHandler) handleSubmit(c *gin.Context, conn *safeConn, wsLog zerolog.Logger, quizID uuid.UUID, memberID int) {
	if _, err := h.sessionService.Submit(c.Request.Context(), quizID, memberID); err != nil {
		wsLog.Error().Err(err).Msg("Submit error")
		conn.sendError("submit failed")
		return
	}
}
