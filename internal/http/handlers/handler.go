package handlers

import (
	"tycoon_backend/internal/service"
)

type Handler struct {
	Games *service.GameService
}

func NewHandler(games *service.GameService) *Handler {
	return &Handler{Games: games}
}

// getUserID extracts user_id from the Gin context.
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
