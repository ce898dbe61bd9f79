package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"github.com/opositest/notification-service/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PreferenceStore is the persistence surface the eligibility store needs.
type PreferenceStore interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreference, error)
	Insert(ctx context.Context, pref *models.NotificationPreference) error
	Update(ctx context.Context, userID primitive.ObjectID, pref *models.NotificationPreference) error
}

// PreferenceService answers "may category C be sent to user U right now" and
// applies unsubscribe-token redemptions.
type PreferenceService struct {
	store  PreferenceStore
	tokens TokenStore
}

func NewPreferenceService(store PreferenceStore, tokens TokenStore) *PreferenceService {
	return &PreferenceService{store: store, tokens: tokens}
}

// GetPreferences returns the user's preference row, creating the all-enabled
// default on first read. Read errors other than "not found" degrade to an
// all-denied row: uncertainty must never cause an unwanted send.
func (s *PreferenceService) GetPreferences(ctx context.Context, userID primitive.ObjectID) *models.NotificationPreference {
	pref, err := s.store.Get(ctx, userID)
	if err == nil {
		return pref
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		logrus.WithFields(logrus.Fields{
			"userID": userID.Hex(),
			"error":  err,
		}).Error("Preference read failed, denying all categories")
		return models.DeniedPreference(userID)
	}

	pref = models.DefaultPreference(userID)
	if err := s.store.Insert(ctx, pref); err != nil {
		logrus.WithField("userID", userID.Hex()).WithError(err).Warn("Failed to create default preference row")
	}
	return pref
}

// CanSend reports whether the category may be sent to the user. Unknown
// categories and globally opted-out users are always denied.
func (s *PreferenceService) CanSend(ctx context.Context, userID primitive.ObjectID, category models.Category) bool {
	return s.GetPreferences(ctx, userID).Allows(category)
}

// UpdatePreferences applies an explicit, authenticated preference change.
func (s *PreferenceService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, updated *models.NotificationPreference) error {
	// Ensure the row exists before updating it.
	s.GetPreferences(ctx, userID)

	if updated.OptedOutOfAll && updated.OptedOutAt == nil {
		now := time.Now()
		updated.OptedOutAt = &now
	}
	return s.store.Update(ctx, userID, updated)
}

// Redeem applies an unsubscribe-token redemption: disables the targeted
// categories (or everything, when all is set) and burns the token. Success is
// only reported once both the preference update and the token-used mark are
// durably applied. The token mark is a conditional update, so a token can be
// redeemed at most once even under concurrent duplicate clicks.
func (s *PreferenceService) Redeem(ctx context.Context, token string, categories []models.Category, all bool) error {
	row, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			metrics.RecordRedemption("invalid")
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to look up token: %v", err)
	}

	now := time.Now()
	if !row.Redeemable(now) {
		metrics.RecordRedemption("invalid")
		return ErrInvalidToken
	}

	pref, err := s.store.Get(ctx, row.UserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		pref = models.DefaultPreference(row.UserID)
		if insertErr := s.store.Insert(ctx, pref); insertErr != nil {
			return insertErr
		}
	} else if err != nil {
		return fmt.Errorf("failed to load preferences: %v", err)
	}

	if all {
		pref.DisableAll(now)
	} else {
		if len(categories) == 0 {
			categories = []models.Category{row.Category}
		}
		for _, c := range categories {
			pref.Disable(c)
		}
	}

	// The preference update is idempotent, so it is applied before the token
	// is burned: if two requests race, both apply the same disable and only
	// one wins the conditional token mark.
	if err := s.store.Update(ctx, row.UserID, pref); err != nil {
		return err
	}

	ok, err := s.tokens.MarkUsedIfUnused(ctx, token, now)
	if err != nil {
		return err
	}
	if !ok {
		metrics.RecordRedemption("invalid")
		return ErrInvalidToken
	}

	metrics.RecordRedemption("success")
	logrus.WithFields(logrus.Fields{
		"userID": row.UserID.Hex(),
		"all":    all,
	}).Info("Unsubscribe token redeemed")
	return nil
}
