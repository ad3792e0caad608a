package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/middleware"
	"github.com/shikshaprep/mocktest-backend/internal/service"
	ws "github.com/shikshaprep/mocktest-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler handles WebSocket status streaming for tests in the
// ingestion pipeline.
type WSHandler struct {
	rdb         *redis.Client
	testService *service.MockTestService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, testService *service.MockTestService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:         rdb,
		testService: testService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// StatusStream godoc
// WS /ws/v1/tests/:id/status
// Streams processing status updates until the test reaches a terminal
// state, then closes. The first frame is always the current snapshot,
// so a client that connects after completion still gets an answer.
func (h *WSHandler) StatusStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	// Ownership check happens before the upgrade so other users' tests
	// read as plain 404s.
	test, err := h.testService.GetByOwner(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test not found"})
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
		Str("test_id", testID.String()).
		Logger()
	wsLog.Info().Msg("Status stream connected")

	// Subscribe before the snapshot read so a transition between the two
	// cannot be missed.
	pubsub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.TestEventsChannel(testID.String()))
	defer pubsub.Close()

	snapshot := ws.StatusEvent{
		Event:         ws.EventStatus,
		TestID:        test.ID.String(),
		Status:        test.Status,
		QuestionCount: len(test.Questions),
	}
	if test.ProcessingError != nil {
		snapshot.ProcessingError = *test.ProcessingError
	}
	if err := ws.WriteTyped(conn, snapshot); err != nil {
		return
	}
	if test.Status.IsTerminal() {
		return
	}

	// Reader pump: detects the peer going away and relays pings. All
	// writes stay on the main loop, gorilla allows one writer at a time.
	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(done)
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
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	events := pubsub.Channel()
	for {
		select {
		case <-done:
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				return
			}

			var event ws.StatusEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err == nil && event.Status.IsTerminal() {
				wsLog.Info().Str("status", string(event.Status)).Msg("Status stream finished")
				return
			}
		}
	}
}
