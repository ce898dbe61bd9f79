package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opositest/notification-service/internal/models"
	"github.com/opositest/notification-service/internal/templates"
	"github.com/opositest/notification-service/pkg/email"
	"github.com/opositest/notification-service/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// bounded wait for the dispute row to leave the pending state
	disputeReadAttempts = 3
	disputeReadDelay    = time.Second
)

// CandidateSource produces the queues the orchestrator works through.
type CandidateSource interface {
	BuildQueue(ctx context.Context) ([]models.NotificationCandidate, error)
	DetectWeeklyDigestCandidates(ctx context.Context) ([]models.NotificationCandidate, error)
}

// UserReader loads contact and display data at send time.
type UserReader interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// LogStore is the append-only send log.
type LogStore interface {
	Insert(ctx context.Context, entry *models.EmailLogEntry) error
	ListByBatchAndStatus(ctx context.Context, batchID string, status models.SendStatus) ([]models.EmailLogEntry, error)
}

// TokenIssuer mints unsubscribe tokens for outgoing email.
type TokenIssuer interface {
	Issue(ctx context.Context, userID primitive.ObjectID, email string, category models.Category) (string, error)
}

// DisputeReader loads dispute rows for transactional sends.
type DisputeReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Dispute, error)
}

// TicketReader loads support tickets for transactional sends.
type TicketReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SupportTicket, error)
}

// PresenceChecker reports whether a user is currently online in the app.
type PresenceChecker interface {
	IsOnline(ctx context.Context, userID string) bool
}

// SendDetail is the per-candidate outcome inside a batch result.
type SendDetail struct {
	UserID   string            `json:"user_id"`
	Email    string            `json:"email"`
	Category models.Category   `json:"category"`
	Subject  string            `json:"subject,omitempty"`
	Status   models.SendStatus `json:"status"`
	Reason   string            `json:"reason,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// CampaignResult aggregates one batch run. Sent+Failed+Cancelled always
// equals Total.
type CampaignResult struct {
	BatchID   string       `json:"batch_id"`
	Total     int          `json:"total"`
	Sent      int          `json:"sent"`
	Failed    int          `json:"failed"`
	Cancelled int          `json:"cancelled"`
	Details   []SendDetail `json:"details"`
}

func (r *CampaignResult) add(d SendDetail) {
	r.Total++
	switch d.Status {
	case models.StatusSent:
		r.Sent++
	case models.StatusFailed:
		r.Failed++
	case models.StatusCancelled:
		r.Cancelled++
	}
	r.Details = append(r.Details, d)
}

// TransactionalResult is the outcome of a single transactional send.
type TransactionalResult struct {
	Success   bool              `json:"success"`
	Skipped   bool              `json:"skipped,omitempty"`
	Message   string            `json:"message,omitempty"`
	Status    models.SendStatus `json:"status,omitempty"`
	MessageID string            `json:"message_id,omitempty"`
}

// CampaignService turns candidates into delivered (or explicitly rejected)
// emails with a durable record of every outcome. Batch runs are strictly
// sequential: one candidate at a time, paced by a fixed inter-send delay.
type CampaignService struct {
	detector  CandidateSource
	prefs     EligibilityChecker
	tokens    TokenIssuer
	users     UserReader
	logs      LogStore
	disputes  DisputeReader
	tickets   TicketReader
	transport email.Transport
	presence  PresenceChecker
	baseURL   string
	sendDelay time.Duration
}

func NewCampaignService(
	detector CandidateSource,
	prefs EligibilityChecker,
	tokens TokenIssuer,
	users UserReader,
	logs LogStore,
	disputes DisputeReader,
	tickets TicketReader,
	transport email.Transport,
	presence PresenceChecker,
	baseURL string,
	sendDelay time.Duration,
) *CampaignService {
	return &CampaignService{
		detector:  detector,
		prefs:     prefs,
		tokens:    tokens,
		users:     users,
		logs:      logs,
		disputes:  disputes,
		tickets:   tickets,
		transport: transport,
		presence:  presence,
		baseURL:   baseURL,
		sendDelay: sendDelay,
	}
}

// RunCampaign executes one full automatic run: inactive plus unmotivated
// candidates, in priority order. A detector failure before the loop starts is
// the only error this returns; per-candidate failures become failed details.
func (s *CampaignService) RunCampaign(ctx context.Context) (*CampaignResult, error) {
	queue, err := s.detector.BuildQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate queue: %w", err)
	}

	metrics.RecordCampaignRun("automatic")
	return s.runBatch(ctx, queue), nil
}

// RunWeeklyDigest executes one digest run.
func (s *CampaignService) RunWeeklyDigest(ctx context.Context) (*CampaignResult, error) {
	candidates, err := s.detector.DetectWeeklyDigestCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect digest candidates: %w", err)
	}

	metrics.RecordCampaignRun("weekly_digest")
	return s.runBatch(ctx, candidates), nil
}

// RetryFailed re-submits exactly the failed subset of a prior batch as a new,
// independent batch. The original log entries are never mutated.
func (s *CampaignService) RetryFailed(ctx context.Context, batchID string) (*CampaignResult, error) {
	entries, err := s.logs.ListByBatchAndStatus(ctx, batchID, models.StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to load failed entries: %w", err)
	}

	candidates := make([]models.NotificationCandidate, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, models.NotificationCandidate{
			UserID:   entry.UserID,
			Email:    entry.Email,
			Category: entry.Category,
			Priority: models.PriorityOf(entry.Category),
		})
	}

	metrics.RecordCampaignRun("retry")
	return s.runBatch(ctx, candidates), nil
}

func (s *CampaignService) runBatch(ctx context.Context, queue []models.NotificationCandidate) *CampaignResult {
	result := &CampaignResult{
		BatchID: uuid.NewString(),
		Details: []SendDetail{},
	}

	for i, candidate := range queue {
		result.add(s.sendCandidate(ctx, candidate, result.BatchID))

		// Pace outbound sends for the mail relay's rate limits.
		if i < len(queue)-1 {
			time.Sleep(s.sendDelay)
		}
	}

	logrus.WithFields(logrus.Fields{
		"batchID":   result.BatchID,
		"total":     result.Total,
		"sent":      result.Sent,
		"failed":    result.Failed,
		"cancelled": result.Cancelled,
	}).Info("Campaign batch completed")
	return result
}

// sendCandidate processes one candidate to a terminal outcome. Cancellations
// are reported in the batch result only; sent and failed attempts are also
// persisted to the send log.
func (s *CampaignService) sendCandidate(ctx context.Context, candidate models.NotificationCandidate, batchID string) SendDetail {
	detail := SendDetail{
		UserID:   candidate.UserID.Hex(),
		Email:    candidate.Email,
		Category: candidate.Category,
	}

	// Eligibility may have changed since detection; re-check before sending.
	if !s.prefs.CanSend(ctx, candidate.UserID, candidate.Category) {
		detail.Status = models.StatusCancelled
		detail.Reason = "user_unsubscribed"
		metrics.RecordEmail(string(candidate.Category), string(models.StatusCancelled))
		return detail
	}

	user, err := s.users.GetUserByID(ctx, candidate.UserID)
	if err != nil {
		return s.failDetail(ctx, detail, batchID, fmt.Sprintf("failed to load user: %v", err))
	}
	if candidate.Email == "" {
		candidate.Email = user.Email
		detail.Email = user.Email
	}
	if candidate.DisplayName == "" {
		candidate.DisplayName = user.Username
	}

	// A retried candidate carries no signal data; re-derive it.
	if candidate.DaysInactive == 0 && isInactivityCategory(candidate.Category) && !user.LastActiveAt.IsZero() {
		candidate.DaysInactive = int(time.Since(user.LastActiveAt).Hours() / 24)
	}

	subject, html := templates.Render(candidate.Category, templates.Data{
		Name:                  candidate.DisplayName,
		DaysInactive:          candidate.DaysInactive,
		DaysSinceRegistration: candidate.DaysSinceRegistration,
		Items:                 candidate.DigestItems,
		UnsubscribeURL:        s.unsubscribeURL(ctx, candidate),
		PreferencesURL:        s.baseURL + "/preferencias",
		BaseURL:               s.baseURL,
	})
	detail.Subject = subject

	messageID, err := s.transport.Send(ctx, candidate.Email, subject, html)
	if err != nil {
		return s.failDetail(ctx, detail, batchID, err.Error())
	}

	detail.Status = models.StatusSent
	metrics.RecordEmail(string(candidate.Category), string(models.StatusSent))
	s.writeLog(ctx, &models.EmailLogEntry{
		UserID:    candidate.UserID,
		Email:     candidate.Email,
		Category:  candidate.Category,
		Subject:   subject,
		Status:    models.StatusSent,
		MessageID: messageID,
		BatchID:   batchID,
	})
	return detail
}

func (s *CampaignService) failDetail(ctx context.Context, detail SendDetail, batchID, errMsg string) SendDetail {
	detail.Status = models.StatusFailed
	detail.Error = errMsg
	metrics.RecordEmail(string(detail.Category), string(models.StatusFailed))

	userID, _ := primitive.ObjectIDFromHex(detail.UserID)
	s.writeLog(ctx, &models.EmailLogEntry{
		UserID:   userID,
		Email:    detail.Email,
		Category: detail.Category,
		Subject:  detail.Subject,
		Status:   models.StatusFailed,
		Error:    errMsg,
		BatchID:  batchID,
	})

	logrus.WithFields(logrus.Fields{
		"userID":   detail.UserID,
		"category": detail.Category,
		"error":    errMsg,
	}).Warn("Email send failed")
	return detail
}

func (s *CampaignService) writeLog(ctx context.Context, entry *models.EmailLogEntry) {
	if err := s.logs.Insert(ctx, entry); err != nil {
		logrus.WithError(err).Error("Failed to persist email log entry")
	}
}

// unsubscribeURL mints a token-scoped deep link. Token issuance is
// best-effort relative to the send: on failure the template falls back to the
// generic preferences page.
func (s *CampaignService) unsubscribeURL(ctx context.Context, candidate models.NotificationCandidate) string {
	token, err := s.tokens.Issue(ctx, candidate.UserID, candidate.Email, candidate.Category)
	if err != nil {
		logrus.WithField("userID", candidate.UserID.Hex()).WithError(err).Warn("Failed to issue unsubscribe token, falling back to preferences link")
		return ""
	}
	return fmt.Sprintf("%s/unsubscribe?token=%s&email=%s", s.baseURL, token, url.QueryEscape(candidate.Email))
}

func isInactivityCategory(c models.Category) bool {
	return c == models.CategoryInactivityGentle || c == models.CategoryInactivityUrgent
}

// SendDisputeEmail sends the transactional email for a resolved dispute. The
// dispute row is written by the resolving request just before this trigger,
// so the read waits out the consistency race with a bounded retry.
func (s *CampaignService) SendDisputeEmail(ctx context.Context, disputeID primitive.ObjectID, kind models.DisputeKind) (*TransactionalResult, error) {
	dispute, ok, err := awaitConsistentRead(ctx, disputeReadAttempts, disputeReadDelay,
		func(ctx context.Context) (*models.Dispute, bool, error) {
			d, err := s.disputes.GetByID(ctx, disputeID)
			if err != nil {
				return nil, false, err
			}
			return d, d.Status != models.DisputeStatusPending, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load dispute: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("dispute %s is still pending", disputeID.Hex())
	}

	if strings.TrimSpace(dispute.AdminResponse) == "" {
		return &TransactionalResult{Success: true, Message: "no admin response"}, nil
	}

	user, err := s.users.GetUserByID(ctx, dispute.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.sendDisputeTo(ctx, user.ID, user.Email, user.Username, dispute.AdminResponse, dispute.Status), nil
}

// SendDisputeEmailDirect is the raw-ids variant used when the caller already
// holds the resolved dispute data.
func (s *CampaignService) SendDisputeEmailDirect(ctx context.Context, userID primitive.ObjectID, userEmail, adminResponse string, status models.DisputeStatus) (*TransactionalResult, error) {
	if strings.TrimSpace(adminResponse) == "" {
		return &TransactionalResult{Success: true, Message: "no admin response"}, nil
	}

	displayName := ""
	if user, err := s.users.GetUserByID(ctx, userID); err == nil {
		if userEmail == "" {
			userEmail = user.Email
		}
		displayName = user.Username
	} else if userEmail == "" {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.sendDisputeTo(ctx, userID, userEmail, displayName, adminResponse, status), nil
}

func (s *CampaignService) sendDisputeTo(ctx context.Context, userID primitive.ObjectID, to, displayName, adminResponse string, status models.DisputeStatus) *TransactionalResult {
	subject, html := templates.RenderDispute(templates.Data{
		Name:           displayName,
		AdminResponse:  adminResponse,
		DisputeStatus:  status,
		PreferencesURL: s.baseURL + "/preferencias",
		BaseURL:        s.baseURL,
	})

	messageID, err := s.transport.Send(ctx, to, subject, html)
	status2 := models.StatusSent
	errMsg := ""
	if err != nil {
		status2 = models.StatusFailed
		errMsg = err.Error()
	}

	metrics.RecordEmail(string(models.CategoryDisputeResolved), string(status2))
	s.writeLog(ctx, &models.EmailLogEntry{
		UserID:    userID,
		Email:     to,
		Category:  models.CategoryDisputeResolved,
		Subject:   subject,
		Status:    status2,
		Error:     errMsg,
		MessageID: messageID,
	})

	if err != nil {
		return &TransactionalResult{Success: false, Message: errMsg, Status: models.StatusFailed}
	}
	return &TransactionalResult{Success: true, Status: models.StatusSent, MessageID: messageID}
}

// SendWelcomeEmail sends the immediate welcome email, triggered by the
// backend right after registration.
func (s *CampaignService) SendWelcomeEmail(ctx context.Context, userID primitive.ObjectID) (*TransactionalResult, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.prefs.CanSend(ctx, userID, models.CategoryImmediateWelcome) {
		return &TransactionalResult{Success: true, Skipped: true, Message: "user_unsubscribed", Status: models.StatusCancelled}, nil
	}

	subject, html := templates.Render(models.CategoryImmediateWelcome, templates.Data{
		Name: user.Username,
		UnsubscribeURL: s.unsubscribeURL(ctx, models.NotificationCandidate{
			UserID:   user.ID,
			Email:    user.Email,
			Category: models.CategoryImmediateWelcome,
		}),
		PreferencesURL: s.baseURL + "/preferencias",
		BaseURL:        s.baseURL,
	})

	messageID, err := s.transport.Send(ctx, user.Email, subject, html)
	status := models.StatusSent
	errMsg := ""
	if err != nil {
		status = models.StatusFailed
		errMsg = err.Error()
	}

	metrics.RecordEmail(string(models.CategoryImmediateWelcome), string(status))
	s.writeLog(ctx, &models.EmailLogEntry{
		UserID:    userID,
		Email:     user.Email,
		Category:  models.CategoryImmediateWelcome,
		Subject:   subject,
		Status:    status,
		Error:     errMsg,
		MessageID: messageID,
	})

	if err != nil {
		return &TransactionalResult{Success: false, Message: errMsg, Status: models.StatusFailed}, nil
	}
	return &TransactionalResult{Success: true, Status: models.StatusSent, MessageID: messageID}, nil
}

// SendSupportEmail sends the reply to a support ticket, unless the user is
// currently online in the app (they will see the reply there) or has opted
// out of support-reply emails.
func (s *CampaignService) SendSupportEmail(ctx context.Context, ticketID primitive.ObjectID) (*TransactionalResult, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load support ticket: %w", err)
	}

	if strings.TrimSpace(ticket.AdminReply) == "" {
		return &TransactionalResult{Success: true, Message: "no admin reply"}, nil
	}

	if s.presence.IsOnline(ctx, ticket.UserID.Hex()) {
		logrus.WithField("userID", ticket.UserID.Hex()).Info("User online, skipping support email")
		return &TransactionalResult{Success: true, Skipped: true, Message: "user is online"}, nil
	}

	if !s.prefs.CanSend(ctx, ticket.UserID, models.CategorySupportReply) {
		return &TransactionalResult{Success: true, Skipped: true, Message: "user_unsubscribed", Status: models.StatusCancelled}, nil
	}

	user, err := s.users.GetUserByID(ctx, ticket.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	subject, html := templates.Render(models.CategorySupportReply, templates.Data{
		Name:          user.Username,
		TicketSubject: ticket.Subject,
		AdminReply:    ticket.AdminReply,
		UnsubscribeURL: s.unsubscribeURL(ctx, models.NotificationCandidate{
			UserID:   user.ID,
			Email:    user.Email,
			Category: models.CategorySupportReply,
		}),
		PreferencesURL: s.baseURL + "/preferencias",
		BaseURL:        s.baseURL,
	})

	messageID, err := s.transport.Send(ctx, user.Email, subject, html)
	status := models.StatusSent
	errMsg := ""
	if err != nil {
		status = models.StatusFailed
		errMsg = err.Error()
	}

	metrics.RecordEmail(string(models.CategorySupportReply), string(status))
	s.writeLog(ctx, &models.EmailLogEntry{
		UserID:    ticket.UserID,
		Email:     user.Email,
		Category:  models.CategorySupportReply,
		Subject:   subject,
		Status:    status,
		Error:     errMsg,
		MessageID: messageID,
	})

	if err != nil {
		return &TransactionalResult{Success: false, Message: errMsg, Status: models.StatusFailed}, nil
	}
	return &TransactionalResult{Success: true, Status: models.StatusSent, MessageID: messageID}, nil
}
