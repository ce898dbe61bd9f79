package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opositest/notification-service/internal/models"
	"github.com/opositest/notification-service/internal/services"
	log "github.com/sirupsen/logrus"
)

// UnsubscribeHandler serves the token-scoped unsubscribe flow. Responses are
// deliberately uniform for every invalid-token case so the endpoint leaks
// nothing about why a token was rejected.
type UnsubscribeHandler struct {
	Tokens *services.TokenService
	Prefs  *services.PreferenceService
}

func NewUnsubscribeHandler(tokens *services.TokenService, prefs *services.PreferenceService) *UnsubscribeHandler {
	return &UnsubscribeHandler{
		Tokens: tokens,
		Prefs:  prefs,
	}
}

// GET /unsubscribe?token=...&email=...
func (h *UnsubscribeHandler) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}

	info, err := h.Tokens.Validate(r.Context(), token)
	if err != nil {
		log.WithError(err).Error("Token validation failed")
		http.Error(w, "Failed to validate token", http.StatusInternalServerError)
		return
	}
	if info == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"valid": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    true,
		"email":    info.Email,
		"category": info.Category,
	})
}

// POST /unsubscribe
func (h *UnsubscribeHandler) RedeemHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token          string   `json:"token"`
		Categories     []string `json:"categories"`
		UnsubscribeAll bool     `json:"unsubscribe_all"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	categories := make([]models.Category, 0, len(req.Categories))
	for _, c := range req.Categories {
		categories = append(categories, models.Category(c))
	}

	err := h.Prefs.Redeem(r.Context(), req.Token, categories, req.UnsubscribeAll)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"message": "Invalid or expired link",
			})
			return
		}
		log.WithError(err).Error("Token redemption failed")
		http.Error(w, "Failed to update preferences", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Preferences updated",
	})
}
