package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/opositest/notification-service/internal/config"
	"github.com/opositest/notification-service/internal/services"
	jwtutil "github.com/opositest/notification-service/pkg/jwt"
	log "github.com/sirupsen/logrus"
)

// AdminHandler handles admin authentication.
type AdminHandler struct {
	Users  *services.UserService
	Config *config.Config
}

func NewAdminHandler(users *services.UserService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		Users:  users,
		Config: cfg,
	}
}

// POST /admin/login
func (h *AdminHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Users.AuthenticateAdmin(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithField("email", credentials.Email).Warn("Admin authentication failed")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"id":       user.ID.Hex(),
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
