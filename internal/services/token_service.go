package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrInvalidToken is returned for any token that cannot be redeemed: unknown,
// already used or expired. Callers must not reveal which case applied.
var ErrInvalidToken = errors.New("invalid or expired unsubscribe token")

// tokenBytes gives 256 bits of entropy per token.
const tokenBytes = 32

// TokenStore is the persistence surface the token issuer needs.
type TokenStore interface {
	Insert(ctx context.Context, token *models.UnsubscribeToken) error
	FindByToken(ctx context.Context, token string) (*models.UnsubscribeToken, error)
	MarkUsedIfUnused(ctx context.Context, token string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenService mints and validates single-use unsubscribe tokens.
type TokenService struct {
	store TokenStore
}

func NewTokenService(store TokenStore) *TokenService {
	return &TokenService{store: store}
}

// Issue generates a fresh random token bound to (user, email, category) and
// stores it with a 30-day expiration. Every send gets a new token; they are
// never reused.
func (s *TokenService) Issue(ctx context.Context, userID primitive.ObjectID, email string, category models.Category) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	token := hex.EncodeToString(buf)

	now := time.Now()
	row := &models.UnsubscribeToken{
		Token:     token,
		UserID:    userID,
		Email:     email,
		Category:  category,
		ExpiresAt: now.Add(models.TokenTTL),
		CreatedAt: now,
	}

	if err := s.store.Insert(ctx, row); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"userID":   userID.Hex(),
		"category": category,
	}).Debug("Issued unsubscribe token")
	return token, nil
}

// Validate returns token metadata only when the token is unused and
// unexpired. Every other state (not found, used, expired) yields (nil, nil)
// so external callers cannot distinguish why a token was rejected.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.UnsubscribeToken, error) {
	row, err := s.store.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up token: %v", err)
	}
	if !row.Redeemable(time.Now()) {
		return nil, nil
	}
	return row, nil
}

// CleanupExpired garbage-collects expired token rows.
func (s *TokenService) CleanupExpired(ctx context.Context) error {
	_, err := s.store.DeleteExpired(ctx)
	return err
}
