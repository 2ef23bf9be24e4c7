package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/engine"
	"tycoon_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateGame opens a new session and returns its join code.
func (h *Handler) CreateGame(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		LapLimit int `json:"lap_limit"`
	}
	_ = c.BindJSON(&req)

	g, err := h.Games.CreateGame(c.Request.Context(), req.LapLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": g.ID, "code": g.Code, "lap_limit": g.LapLimit})
}

// JoinGame seats the caller in a game by join code.
func (h *Handler) JoinGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
		Name string `json:"name"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	p, err := h.Games.JoinGame(c.Request.Context(), req.Code, userID, req.Name)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// AddBot seats a computer player.
func (h *Handler) AddBot(c *gin.Context) {
	gameID, ok := pathGameID(c)
	if !ok {
		return
	}

	var req struct {
		Archetype  string `json:"archetype" binding:"required"`
		Difficulty int    `json:"difficulty"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	p, err := h.Games.AddBot(c.Request.Context(), gameID, domain.Archetype(req.Archetype), req.Difficulty)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// StartGame activates a game in setup.
func (h *Handler) StartGame(c *gin.Context) {
	gameID, ok := pathGameID(c)
	if !ok {
		return
	}

	g, err := h.Games.StartGame(c.Request.Context(), gameID)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GetGame returns the full game snapshot.
func (h *Handler) GetGame(c *gin.Context) {
	gameID, ok := pathGameID(c)
	if !ok {
		return
	}

	snap, err := h.Games.Snapshot(c.Request.Context(), gameID)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetEvents replays the event log from ?after=<id>.
func (h *Handler) GetEvents(c *gin.Context) {
	gameID, ok := pathGameID(c)
	if !ok {
		return
	}
	after, _ := strconv.ParseInt(c.Query("after"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.Games.Events(c.Request.Context(), gameID, after, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// RollDice performs the roll intent for the caller's seat.
func (h *Handler) RollDice(c *gin.Context) {
	gameID, playerID, ok := h.callerSeat(c)
	if !ok {
		return
	}

	out, err := h.Games.RollDice(c.Request.Context(), gameID, playerID)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ResolveAction answers the pending action for the caller's seat.
func (h *Handler) ResolveAction(c *gin.Context) {
	gameID, playerID, ok := h.callerSeat(c)
	if !ok {
		return
	}

	var req struct {
		Buy        bool `json:"buy"`
		PayFine    bool `json:"pay_fine"`
		TaxPercent bool `json:"tax_percent"`
		Auto       bool `json:"auto"`
	}
	_ = c.BindJSON(&req)

	out, err := h.Games.ResolveAction(c.Request.Context(), gameID, playerID, engine.Choice{
		Buy: req.Buy, PayFine: req.PayFine, TaxPercent: req.TaxPercent, Auto: req.Auto,
	})
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// EndTurn hands the turn over.
func (h *Handler) EndTurn(c *gin.Context) {
	gameID, playerID, ok := h.callerSeat(c)
	if !ok {
		return
	}

	if err := h.Games.EndTurn(c.Request.Context(), gameID, playerID); err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ForceEndTurn discards any pending action and advances the game.
func (h *Handler) ForceEndTurn(c *gin.Context) {
	gameID, ok := pathGameID(c)
	if !ok {
		return
	}

	if err := h.Games.ForceEndTurn(c.Request.Context(), gameID); err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// LiquidationOptions lists what a manage_assets marker offers the caller.
func (h *Handler) LiquidationOptions(c *gin.Context) {
	gameID, playerID, ok := h.callerSeat(c)
	if !ok {
		return
	}

	opts, err := h.Games.ProposeLiquidation(c.Request.Context(), gameID, playerID)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": opts})
}

// GetLoans lists the caller's outstanding loans.
func (h *Handler) GetLoans(c *gin.Context) {
	_, playerID, ok := h.callerSeat(c)
	if !ok {
		return
	}

	loans, err := h.Games.PlayerLoans(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans})
}

// RepayLoan settles one of the caller's loans early.
func (h *Handler) RepayLoan(c *gin.Context) {
	gameID, playerID, ok := h.callerSeat(c)
	if !ok {
		return
	}
	loanID, err := strconv.ParseInt(c.Param("loanId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad loan id"})
		return
	}

	if err := h.Games.PrepayLoan(c.Request.Context(), gameID, playerID, loanID); err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// OpenDeposit places the caller's cash at interest.
func (h *Handler) OpenDeposit(c *gin.Context) {
	gameID, playerID, ok := h.callerSeat(c)
	if !ok {
		return
	}

	var req struct {
		Amount int64 `json:"amount" binding:"required"`
		Laps   int   `json:"laps"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.Laps <= 0 {
		req.Laps = 1
	}

	if err := h.Games.OpenDeposit(c.Request.Context(), gameID, playerID, req.Amount, req.Laps); err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func pathGameID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad game id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) callerSeat(c *gin.Context) (gameID, playerID int64, ok bool) {
	userID, authed := getUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return 0, 0, false
	}
	gameID, idOK := pathGameID(c)
	if !idOK {
		return 0, 0, false
	}

	p, err := h.Games.PlayerForUser(c.Request.Context(), gameID, userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not seated in this game"})
		return 0, 0, false
	}
	return gameID, p.ID, true
}

func writeGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, engine.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	case errors.Is(err, engine.ErrPlayerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
	case errors.Is(err, engine.ErrNotYourTurn):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your turn"})
	case errors.Is(err, engine.ErrGameNotActive), errors.Is(err, service.ErrGameNotJoinable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrActionNotPending),
		errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, service.ErrDuplicateIntent),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrTooFewPlayers),
		errors.Is(err, service.ErrBadArchetype):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient funds"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
