package editor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mattfehr/volleyball-rotation-tracker/auth"
	"github.com/mattfehr/volleyball-rotation-tracker/domain"
	"github.com/mattfehr/volleyball-rotation-tracker/metrics"
	"github.com/mattfehr/volleyball-rotation-tracker/rotation"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidRequestFormatStr = "bad-request-format"
	ErrUnknownStr              = "unknown-error"
)

// MaxFrameBytes bounds a single editor frame; an imported document is the
// largest thing a client sends.
const MaxFrameBytes = 1 << 20

type HandlerConfig struct {
	Rate      rate.Limit
	Burst     int
	PingEvery time.Duration
}

type editorHandler struct {
	base     context.Context
	library  Library
	metrics  *metrics.Metrics
	config   HandlerConfig
	upgrader websocket.Upgrader
}

// NewEditorHandler builds the editor endpoints. Sessions end when base is done.
func NewEditorHandler(base context.Context, library Library, m *metrics.Metrics, config HandlerConfig) *editorHandler {
	if m == nil {
		m = metrics.Discard()
	}
	if config.PingEvery <= 0 {
		config.PingEvery = 30 * time.Second
	}
	return &editorHandler{
		base:    base,
		library: library,
		metrics: m,
		config:  config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origins are already filtered by the server middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WebsocketHandler opens an editing session for the signed in user. With
// ?set=<id> the session starts from that saved set.
func (eh *editorHandler) WebsocketHandler(ctx *gin.Context) {
	userId := ctx.GetString(auth.ContextKeyID)
	session := NewSession(userId, eh.library, WithMetrics(eh.metrics))

	if setId := ctx.Query("set"); setId != "" {
		doc, err := eh.library.Load(ctx.Request.Context(), userId, setId)
		if err == nil {
			err = session.Open(setId, doc)
		}
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRotationSetNotFound):
				ctx.String(http.StatusNotFound, ErrorCode(err))
			case errors.Is(err, context.DeadlineExceeded):
				ctx.String(http.StatusGatewayTimeout, ErrorCode(err))
			case errors.Is(err, context.Canceled):
				ctx.Status(499)
			default:
				log.Error().Err(err).Str("user_id", userId).Str("set_id", setId).Msg("open editor session")
				ctx.String(http.StatusInternalServerError, ErrUnknownStr)
			}
			ctx.Abort()
			return
		}
	}

	conn, err := eh.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("editor websocket upgrade failed")
		return
	}

	var limiter *rate.Limiter
	if eh.config.Rate > 0 {
		limiter = rate.NewLimiter(eh.config.Rate, eh.config.Burst)
	}

	eh.metrics.EditorSessions.Inc()
	defer eh.metrics.EditorSessions.Dec()

	log.Debug().Str("user_id", userId).Str("set_id", session.SetID()).Msg("editor session opened")
	NewClient(session, NewWebsocketConnection(conn, MaxFrameBytes), limiter, eh.config.PingEvery).Run(eh.base)
	log.Debug().Str("user_id", userId).Msg("editor session closed")
}

// LegalityHandler validates a players array without any session.
func (eh *editorHandler) LegalityHandler(ctx *gin.Context) {
	var players []rotation.Player
	if err := ctx.ShouldBindJSON(&players); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		return
	}

	result := rotation.Check(players)
	eh.metrics.ObserveLegality(result.Outcome.String())
	ctx.JSON(http.StatusOK, NewLegalityReport(result))
}

// DeriveHandler answers with the rotation that follows the posted one.
func (eh *editorHandler) DeriveHandler(ctx *gin.Context) {
	var players []rotation.Player
	if err := ctx.ShouldBindJSON(&players); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		return
	}

	derived := rotation.Derive(players, rotation.DefaultPositions, rotation.UUIDGenerator{})
	eh.metrics.Derivations.Inc()
	ctx.JSON(http.StatusOK, derived)
}
