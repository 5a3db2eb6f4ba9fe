// Package httpapi is a thin illustrative transport over the engine: one
// gin route per command, plus a websocket upgrade for event subscription.
// It owns no business logic — every handler validates the request shape,
// calls into internal/engine, and translates the result (or
// apperrors.Kind) into an HTTP response, the same division of labor as
// the reference repo's handler package.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/engine"
	"github.com/triviaengine/sessionengine/internal/hub"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// API wires every command SPEC_FULL.md names to a gin route.
type API struct {
	eng       *engine.Engine
	hub       *hub.Hub
	tickets   hub.TicketStore
	ticketTTL time.Duration
}

// New returns an API ready to have its routes registered.
func New(eng *engine.Engine, h *hub.Hub, tickets hub.TicketStore, ticketTTL time.Duration) *API {
	return &API{eng: eng, hub: h, tickets: tickets, ticketTTL: ticketTTL}
}

// RegisterRoutes attaches every command route to router.
func (a *API) RegisterRoutes(router gin.IRouter) {
	trivias := router.Group("/trivias/:triviaID")
	{
		trivias.POST("/join", a.join)
		trivias.POST("/ready", a.setReady)
		trivias.POST("/start", a.start)
		trivias.POST("/advance", a.advance)
		trivias.POST("/reset", a.reset)
		trivias.POST("/heartbeat", a.heartbeat)
		trivias.GET("/current-question", a.getCurrentQuestion)
		trivias.POST("/answers", a.submitAnswer)
		trivias.POST("/fifty-fifty", a.useFiftyFifty)
		trivias.GET("/lobby", a.getLobby)
		trivias.GET("/admin-lobby", a.getAdminLobby)
		trivias.GET("/ranking", a.getRanking)
		trivias.POST("/event-ticket", a.createEventTicket)
	}
	router.GET("/events", a.subscribeEvents)
}

func triviaIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("triviaID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trivia id"})
		return uuid.Nil, false
	}
	return id, true
}

// userIDFromRequest reads the acting user id. The reference repo derives
// this from a validated JWT; authentication is an explicit Non-goal here,
// so the caller-identity header stands in for it — a production deployment
// would replace this with real middleware ahead of these routes.
func userIDFromRequest(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-User-ID")
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-User-ID header"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps an apperrors.Kind to its HTTP status, mirroring the
// reference repo's handleQuizError.
func writeError(c *gin.Context, err error) {
	switch apperrors.Classify(err) {
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperrors.KindInvalidState:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (a *API) join(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	res, err := a.eng.Join(c.Request.Context(), triviaID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) setReady(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	res, err := a.eng.SetReady(c.Request.Context(), triviaID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) start(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	res, err := a.eng.StartTrivia(c.Request.Context(), triviaID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) advance(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	res, err := a.eng.AdvanceQuestion(c.Request.Context(), triviaID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) reset(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	if err := a.eng.ResetTrivia(c.Request.Context(), triviaID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) heartbeat(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	if err := a.eng.Heartbeat(c.Request.Context(), triviaID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) getCurrentQuestion(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	res, err := a.eng.GetCurrentQuestion(c.Request.Context(), triviaID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type submitAnswerRequest struct {
	SelectedOptionID uuid.UUID `json:"selected_option_id" binding:"required"`
}

func (a *API) submitAnswer(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := a.eng.SubmitAnswer(c.Request.Context(), triviaID, userID, req.SelectedOptionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type useFiftyFiftyRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
}

func (a *API) useFiftyFifty(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	var req useFiftyFiftyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := a.eng.UseFiftyFifty(c.Request.Context(), triviaID, req.QuestionID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) getLobby(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	res, err := a.eng.GetLobby(c.Request.Context(), triviaID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// getAdminLobby has no auth gate here: access control for the admin view
// is a transport-layer concern left to whatever middleware a deployment
// puts in front of this route (see the reference repo's AdminOnly()).
func (a *API) getAdminLobby(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	res, err := a.eng.GetAdminLobby(c.Request.Context(), triviaID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) getRanking(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	res, err := a.eng.GetRanking(c.Request.Context(), triviaID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type createEventTicketRequest struct {
	IsAdmin bool `json:"is_admin"`
}

func (a *API) createEventTicket(c *gin.Context) {
	triviaID, ok := triviaIDParam(c)
	if !ok {
		return
	}
	userID, ok := userIDFromRequest(c)
	if !ok {
		return
	}
	var req createEventTicketRequest
	_ = c.ShouldBindJSON(&req) // body is optional; absent means IsAdmin=false

	tok, err := a.tickets.Issue(c.Request.Context(), triviaID, userID, req.IsAdmin, a.ticketTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticket":             tok,
		"expires_in_seconds": int(a.ticketTTL.Seconds()),
	})
}
