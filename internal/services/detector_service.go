package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// unmotivated lookback window: registered at least minRegistrationAge ago
	// but no longer than maxRegistrationAge, with zero practice attempts.
	minRegistrationAge = 3 * 24 * time.Hour
	maxRegistrationAge = 30 * 24 * time.Hour

	// digest parameters over the trailing week
	digestWindow         = 7 * 24 * time.Hour
	digestSuppression    = 6 * 24 * time.Hour
	digestMinFailures    = 2
	digestMinFailureRate = 0.5
)

// UserFinder is the user read surface the detectors need.
type UserFinder interface {
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetRegisteredBetween(ctx context.Context, from, to time.Time) ([]*models.User, error)
}

// AttemptReader is the practice-attempt read surface the detectors need.
type AttemptReader interface {
	HasAnyAttempt(ctx context.Context, userID primitive.ObjectID) (bool, error)
	GetUserAttemptsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]models.TestAttempt, error)
}

// SentLogReader looks up prior sends for near-duplicate suppression.
type SentLogReader interface {
	GetLatestByCategory(ctx context.Context, userID primitive.ObjectID, category models.Category) (*models.EmailLogEntry, error)
}

// EligibilityChecker gates candidates by user preference.
type EligibilityChecker interface {
	CanSend(ctx context.Context, userID primitive.ObjectID, category models.Category) bool
}

// DetectorService finds users eligible by activity signal for each category.
// Every detector filters its raw result through the eligibility check, so
// callers never see a candidate they are not allowed to contact.
type DetectorService struct {
	users    UserFinder
	attempts AttemptReader
	logs     SentLogReader
	prefs    EligibilityChecker
}

func NewDetectorService(users UserFinder, attempts AttemptReader, logs SentLogReader, prefs EligibilityChecker) *DetectorService {
	return &DetectorService{
		users:    users,
		attempts: attempts,
		logs:     logs,
		prefs:    prefs,
	}
}

// DetectInactive finds users whose last activity exceeds the gentle
// threshold. At or past the urgent threshold the candidate escalates to the
// urgent category.
func (s *DetectorService) DetectInactive(ctx context.Context) ([]models.NotificationCandidate, error) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	gentleDays := models.Categories[models.CategoryInactivityGentle].ThresholdDays
	urgentDays := models.Categories[models.CategoryInactivityUrgent].ThresholdDays

	now := time.Now()
	var candidates []models.NotificationCandidate
	for _, user := range users {
		lastActive := user.LastActiveAt
		if lastActive.IsZero() {
			lastActive = user.CreatedAt
		}
		daysInactive := int(now.Sub(lastActive).Hours() / 24)
		if daysInactive < gentleDays {
			continue
		}

		category := models.CategoryInactivityGentle
		if daysInactive >= urgentDays {
			category = models.CategoryInactivityUrgent
		}

		if !s.prefs.CanSend(ctx, user.ID, category) {
			continue
		}

		candidates = append(candidates, models.NotificationCandidate{
			UserID:       user.ID,
			Email:        user.Email,
			DisplayName:  user.Username,
			Category:     category,
			Priority:     models.PriorityOf(category),
			DaysInactive: daysInactive,
		})
	}

	logrus.WithField("count", len(candidates)).Info("Inactive candidate detection completed")
	return candidates, nil
}

// DetectUnmotivated finds users who registered within the lookback window
// but never completed a first practice attempt.
func (s *DetectorService) DetectUnmotivated(ctx context.Context) ([]models.NotificationCandidate, error) {
	now := time.Now()
	users, err := s.users.GetRegisteredBetween(ctx, now.Add(-maxRegistrationAge), now.Add(-minRegistrationAge))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recently registered users: %w", err)
	}

	var candidates []models.NotificationCandidate
	for _, user := range users {
		hasAttempt, err := s.attempts.HasAnyAttempt(ctx, user.ID)
		if err != nil {
			logrus.WithField("userID", user.ID.Hex()).WithError(err).Warn("Failed to check attempts, skipping user")
			continue
		}
		if hasAttempt {
			continue
		}

		if !s.prefs.CanSend(ctx, user.ID, models.CategoryMotivationalWelcome) {
			continue
		}

		candidates = append(candidates, models.NotificationCandidate{
			UserID:                user.ID,
			Email:                 user.Email,
			DisplayName:           user.Username,
			Category:              models.CategoryMotivationalWelcome,
			Priority:              models.PriorityOf(models.CategoryMotivationalWelcome),
			DaysSinceRegistration: int(now.Sub(user.CreatedAt).Hours() / 24),
		})
	}

	logrus.WithField("count", len(candidates)).Info("Unmotivated candidate detection completed")
	return candidates, nil
}

// DetectWeeklyDigestCandidates computes per-user problem areas over the
// trailing week. Users without qualifying items are excluded, and users who
// already received a digest within the last 6 days are suppressed (the window
// is deliberately shorter than a week to tolerate scheduler jitter).
func (s *DetectorService) DetectWeeklyDigestCandidates(ctx context.Context) ([]models.NotificationCandidate, error) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	now := time.Now()
	var candidates []models.NotificationCandidate
	for _, user := range users {
		if !s.prefs.CanSend(ctx, user.ID, models.CategoryWeeklyDigest) {
			continue
		}

		// Skip users who already got this digest recently.
		existing, err := s.logs.GetLatestByCategory(ctx, user.ID, models.CategoryWeeklyDigest)
		if err == nil && existing != nil && now.Sub(existing.CreatedAt) < digestSuppression {
			continue
		}

		attempts, err := s.attempts.GetUserAttemptsSince(ctx, user.ID, now.Add(-digestWindow))
		if err != nil {
			logrus.WithField("userID", user.ID.Hex()).WithError(err).Warn("Failed to fetch attempts, skipping user")
			continue
		}

		items := problemAreas(attempts)
		if len(items) == 0 {
			continue
		}

		candidates = append(candidates, models.NotificationCandidate{
			UserID:      user.ID,
			Email:       user.Email,
			DisplayName: user.Username,
			Category:    models.CategoryWeeklyDigest,
			Priority:    models.PriorityOf(models.CategoryWeeklyDigest),
			DigestItems: items,
		})
	}

	logrus.WithField("count", len(candidates)).Info("Weekly digest candidate detection completed")
	return candidates, nil
}

// BuildQueue merges the inactivity and unmotivated detectors into one queue
// sorted by descending priority.
func (s *DetectorService) BuildQueue(ctx context.Context) ([]models.NotificationCandidate, error) {
	inactive, err := s.DetectInactive(ctx)
	if err != nil {
		return nil, err
	}
	unmotivated, err := s.DetectUnmotivated(ctx)
	if err != nil {
		return nil, err
	}

	queue := append(inactive, unmotivated...)
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Priority > queue[j].Priority
	})
	return queue, nil
}

// problemAreas aggregates a week of attempts into topics the user keeps
// failing: at least digestMinFailures wrong answers and a failure rate of
// digestMinFailureRate or more.
func problemAreas(attempts []models.TestAttempt) []models.DigestItem {
	type tally struct {
		attempts int
		failures int
	}
	byTopic := make(map[string]*tally)
	var order []string
	for _, a := range attempts {
		t, ok := byTopic[a.Topic]
		if !ok {
			t = &tally{}
			byTopic[a.Topic] = t
			order = append(order, a.Topic)
		}
		t.attempts++
		if !a.Correct {
			t.failures++
		}
	}

	var items []models.DigestItem
	for _, topic := range order {
		t := byTopic[topic]
		rate := float64(t.failures) / float64(t.attempts)
		if t.failures >= digestMinFailures && rate >= digestMinFailureRate {
			items = append(items, models.DigestItem{
				Topic:       topic,
				Attempts:    t.attempts,
				Failures:    t.failures,
				FailureRate: rate,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].FailureRate > items[j].FailureRate
	})
	return items
}
