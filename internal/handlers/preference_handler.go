package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/opositest/notification-service/internal/models"
	"github.com/opositest/notification-service/internal/services"
	"github.com/opositest/notification-service/pkg/middleware"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PreferenceHandler lets authenticated users read and change their own
// notification preferences.
type PreferenceHandler struct {
	Prefs *services.PreferenceService
}

func NewPreferenceHandler(prefs *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{Prefs: prefs}
}

// GET /api/preferences
func (h *PreferenceHandler) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.Prefs.GetPreferences(r.Context(), userID))
}

// PUT /api/preferences
func (h *PreferenceHandler) UpdatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var pref models.NotificationPreference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	pref.UserID = userID

	if err := h.Prefs.UpdatePreferences(r.Context(), userID, &pref); err != nil {
		log.WithError(err).Error("Failed to update preferences")
		http.Error(w, "Failed to update preferences", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Preferences updated"})
}
