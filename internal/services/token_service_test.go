package services

import (
	"context"
	"testing"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueAndValidate(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewTokenService(store)
	userID := primitive.NewObjectID()

	token, err := svc.Issue(context.Background(), userID, "opositor@example.com", models.CategoryInactivityGentle)
	require.NoError(t, err)
	assert.Len(t, token, tokenBytes*2) // hex encoding

	row, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, userID, row.UserID)
	assert.Equal(t, "opositor@example.com", row.Email)
	assert.Equal(t, models.CategoryInactivityGentle, row.Category)
	assert.WithinDuration(t, time.Now().Add(models.TokenTTL), row.ExpiresAt, time.Minute)
}

func TestIssueGeneratesUniqueTokens(t *testing.T) {
	svc := NewTokenService(newFakeTokenStore())
	userID := primitive.NewObjectID()

	a, err := svc.Issue(context.Background(), userID, "a@example.com", models.CategoryWeeklyDigest)
	require.NoError(t, err)
	b, err := svc.Issue(context.Background(), userID, "a@example.com", models.CategoryWeeklyDigest)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidateRejectsBadTokensUniformly(t *testing.T) {
	store := newFakeTokenStore()
	used := time.Now().Add(-time.Hour)
	store.rows["used"] = &models.UnsubscribeToken{
		Token:     "used",
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &used,
	}
	store.rows["expired"] = &models.UnsubscribeToken{
		Token:     "expired",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	svc := NewTokenService(store)
	for _, token := range []string{"missing", "used", "expired"} {
		row, err := svc.Validate(context.Background(), token)
		assert.NoError(t, err, "token %q", token)
		assert.Nil(t, row, "token %q must validate to nil", token)
	}
}

func TestCleanupExpired(t *testing.T) {
	store := newFakeTokenStore()
	store.rows["old"] = &models.UnsubscribeToken{Token: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	store.rows["fresh"] = &models.UnsubscribeToken{Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)}

	svc := NewTokenService(store)
	require.NoError(t, svc.CleanupExpired(context.Background()))
	assert.NotContains(t, store.rows, "old")
	assert.Contains(t, store.rows, "fresh")
}
