package middleware

import (
	"net/http"

	"github.com/opositest/notification-service/internal/services"
	"github.com/opositest/notification-service/pkg/presence"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpdateLastActiveMiddleware records user activity on every authenticated
// request: last_active_at in Mongo (read by the inactivity detector) and the
// presence key in Redis (read by the support-email gate).
func UpdateLastActiveMiddleware(userService *services.UserService, tracker *presence.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims != nil {
				userID, err := primitive.ObjectIDFromHex(claims.UserID)
				if err == nil {
					_ = userService.UpdateLastActive(r.Context(), userID)
					_ = tracker.Touch(r.Context(), claims.UserID)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
