package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/opositest/notification-service/internal/models"
	"github.com/opositest/notification-service/internal/repository"
	"github.com/opositest/notification-service/internal/services"
	"github.com/opositest/notification-service/pkg/logger"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmailHandler exposes the campaign and transactional email endpoints.
type EmailHandler struct {
	Campaign *services.CampaignService
	Detector *services.DetectorService
	Logs     *repository.EmailLogRepository
}

func NewEmailHandler(campaign *services.CampaignService, detector *services.DetectorService, logs *repository.EmailLogRepository) *EmailHandler {
	return &EmailHandler{
		Campaign: campaign,
		Detector: detector,
		Logs:     logs,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// POST /api/emails/send-automatic
func (h *EmailHandler) SendAutomaticHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("SendAutomaticHandler called")

	result, err := h.Campaign.RunCampaign(r.Context())
	if err != nil {
		logger.Log.Errorf("Campaign run failed: %v", err)
		http.Error(w, "Failed to run campaign", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"batch_id":  result.BatchID,
		"total":     result.Total,
		"sent":      result.Sent,
		"failed":    result.Failed,
		"cancelled": result.Cancelled,
		"details":   result.Details,
	})
}

// POST /api/emails/send-weekly-digest
func (h *EmailHandler) SendWeeklyDigestHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("SendWeeklyDigestHandler called")

	result, err := h.Campaign.RunWeeklyDigest(r.Context())
	if err != nil {
		logger.Log.Errorf("Weekly digest run failed: %v", err)
		http.Error(w, "Failed to run weekly digest", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"batch_id":  result.BatchID,
		"total":     result.Total,
		"sent":      result.Sent,
		"failed":    result.Failed,
		"cancelled": result.Cancelled,
		"details":   result.Details,
	})
}

// POST /api/emails/retry
func (h *EmailHandler) RetryFailedHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BatchID string `json:"batch_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BatchID == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := h.Campaign.RetryFailed(r.Context(), req.BatchID)
	if err != nil {
		logger.Log.Errorf("Retry run failed: %v", err)
		http.Error(w, "Failed to retry batch", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"batch_id":  result.BatchID,
		"total":     result.Total,
		"sent":      result.Sent,
		"failed":    result.Failed,
		"cancelled": result.Cancelled,
		"details":   result.Details,
	})
}

// GET /api/emails/test-inactive lists candidates without sending anything.
func (h *EmailHandler) TestInactiveHandler(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.Detector.DetectInactive(r.Context())
	if err != nil {
		logger.Log.Errorf("Inactive detection failed: %v", err)
		http.Error(w, "Failed to detect inactive users", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"count":      len(candidates),
		"candidates": candidates,
	})
}

// GET /api/emails/logs
func (h *EmailHandler) GetEmailLogsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Logs.ListRecent(r.Context(), 200)
	if err != nil {
		logger.Log.Errorf("Failed to fetch email logs: %v", err)
		http.Error(w, "Failed to fetch email logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// POST /api/send-dispute-email
func (h *EmailHandler) SendDisputeEmailHandler(w http.ResponseWriter, r *http.Request) {
	h.sendDispute(w, r, models.DisputeKindGeneral)
}

// POST /api/send-dispute-email/psychometric
func (h *EmailHandler) SendPsychometricDisputeEmailHandler(w http.ResponseWriter, r *http.Request) {
	h.sendDispute(w, r, models.DisputeKindPsychometric)
}

func (h *EmailHandler) sendDispute(w http.ResponseWriter, r *http.Request, kind models.DisputeKind) {
	var req struct {
		DisputeID string `json:"dispute_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	disputeID, err := primitive.ObjectIDFromHex(req.DisputeID)
	if err != nil {
		http.Error(w, "Invalid dispute ID", http.StatusBadRequest)
		return
	}

	result, err := h.Campaign.SendDisputeEmail(r.Context(), disputeID, kind)
	if err != nil {
		log.WithError(err).Error("Failed to send dispute email")
		http.Error(w, "Failed to send dispute email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /api/send-dispute-email/direct is the raw-ids variant.
func (h *EmailHandler) SendDisputeEmailDirectHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        string `json:"user_id"`
		Email         string `json:"email"`
		AdminResponse string `json:"admin_response"`
		Status        string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	result, err := h.Campaign.SendDisputeEmailDirect(r.Context(), userID, req.Email, req.AdminResponse, models.DisputeStatus(req.Status))
	if err != nil {
		log.WithError(err).Error("Failed to send direct dispute email")
		http.Error(w, "Failed to send dispute email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /api/send-welcome-email is triggered by the backend on registration.
func (h *EmailHandler) SendWelcomeEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	result, err := h.Campaign.SendWelcomeEmail(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to send welcome email")
		http.Error(w, "Failed to send welcome email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /api/send-support-email
func (h *EmailHandler) SendSupportEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TicketID string `json:"ticket_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ticketID, err := primitive.ObjectIDFromHex(req.TicketID)
	if err != nil {
		http.Error(w, "Invalid ticket ID", http.StatusBadRequest)
		return
	}

	result, err := h.Campaign.SendSupportEmail(r.Context(), ticketID)
	if err != nil {
		log.WithError(err).Error("Failed to send support email")
		http.Error(w, "Failed to send support email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
