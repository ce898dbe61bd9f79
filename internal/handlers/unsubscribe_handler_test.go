package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"github.com/opositest/notification-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memTokenStore struct {
	rows map[string]*models.UnsubscribeToken
}

func (m *memTokenStore) Insert(ctx context.Context, token *models.UnsubscribeToken) error {
	m.rows[token.Token] = token
	return nil
}

func (m *memTokenStore) FindByToken(ctx context.Context, token string) (*models.UnsubscribeToken, error) {
	row, ok := m.rows[token]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return row, nil
}

func (m *memTokenStore) MarkUsedIfUnused(ctx context.Context, token string, now time.Time) (bool, error) {
	row, ok := m.rows[token]
	if !ok || row.UsedAt != nil || !now.Before(row.ExpiresAt) {
		return false, nil
	}
	row.UsedAt = &now
	return true, nil
}

func (m *memTokenStore) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type memPrefStore struct {
	rows map[primitive.ObjectID]*models.NotificationPreference
}

func (m *memPrefStore) Get(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreference, error) {
	row, ok := m.rows[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return row, nil
}

func (m *memPrefStore) Insert(ctx context.Context, pref *models.NotificationPreference) error {
	m.rows[pref.UserID] = pref
	return nil
}

func (m *memPrefStore) Update(ctx context.Context, userID primitive.ObjectID, pref *models.NotificationPreference) error {
	m.rows[userID] = pref
	return nil
}

func newUnsubscribeFixture() (*UnsubscribeHandler, *memTokenStore, *memPrefStore) {
	tokens := &memTokenStore{rows: make(map[string]*models.UnsubscribeToken)}
	prefs := &memPrefStore{rows: make(map[primitive.ObjectID]*models.NotificationPreference)}
	handler := NewUnsubscribeHandler(
		services.NewTokenService(tokens),
		services.NewPreferenceService(prefs, tokens),
	)
	return handler, tokens, prefs
}

func seedToken(tokens *memTokenStore, token string, category models.Category) primitive.ObjectID {
	userID := primitive.NewObjectID()
	tokens.rows[token] = &models.UnsubscribeToken{
		Token:     token,
		UserID:    userID,
		Email:     "opositor@example.com",
		Category:  category,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return userID
}

func TestValidateHandlerValidToken(t *testing.T) {
	handler, tokens, _ := newUnsubscribeFixture()
	seedToken(tokens, "tok-1", models.CategoryWeeklyDigest)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe?token=tok-1", nil)
	rec := httptest.NewRecorder()
	handler.ValidateHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, "opositor@example.com", resp["email"])
	assert.Equal(t, string(models.CategoryWeeklyDigest), resp["category"])
}

func TestValidateHandlerUniformRejection(t *testing.T) {
	handler, tokens, _ := newUnsubscribeFixture()
	used := time.Now().Add(-time.Minute)
	tokens.rows["used"] = &models.UnsubscribeToken{Token: "used", ExpiresAt: time.Now().Add(time.Hour), UsedAt: &used}
	tokens.rows["expired"] = &models.UnsubscribeToken{Token: "expired", ExpiresAt: time.Now().Add(-time.Hour)}

	// Unknown, used and expired tokens all produce the same response body.
	for _, token := range []string{"missing", "used", "expired"} {
		req := httptest.NewRequest(http.MethodGet, "/unsubscribe?token="+token, nil)
		rec := httptest.NewRecorder()
		handler.ValidateHandler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "token %q", token)
		assert.JSONEq(t, `{"valid": false}`, rec.Body.String(), "token %q", token)
	}
}

func TestValidateHandlerMissingToken(t *testing.T) {
	handler, _, _ := newUnsubscribeFixture()

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe", nil)
	rec := httptest.NewRecorder()
	handler.ValidateHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedeemHandlerDisablesCategory(t *testing.T) {
	handler, tokens, prefs := newUnsubscribeFixture()
	userID := seedToken(tokens, "tok-1", models.CategoryWeeklyDigest)

	payload := bytes.NewBufferString(`{"token": "tok-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/unsubscribe", payload)
	rec := httptest.NewRecorder()
	handler.RedeemHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	row := prefs.rows[userID]
	require.NotNil(t, row)
	assert.False(t, row.WeeklyDigest)
	assert.True(t, row.InactivityGentle)
}

func TestRedeemHandlerUnsubscribeAll(t *testing.T) {
	handler, tokens, prefs := newUnsubscribeFixture()
	userID := seedToken(tokens, "tok-1", models.CategoryWeeklyDigest)

	payload := bytes.NewBufferString(`{"token": "tok-1", "unsubscribe_all": true}`)
	req := httptest.NewRequest(http.MethodPost, "/unsubscribe", payload)
	rec := httptest.NewRecorder()
	handler.RedeemHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	row := prefs.rows[userID]
	require.NotNil(t, row)
	assert.True(t, row.OptedOutOfAll)
}

func TestRedeemHandlerInvalidToken(t *testing.T) {
	handler, _, _ := newUnsubscribeFixture()

	payload := bytes.NewBufferString(`{"token": "nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/unsubscribe", payload)
	rec := httptest.NewRecorder()
	handler.RedeemHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Invalid or expired link", resp["message"])
}

func TestRedeemHandlerSecondUseRejected(t *testing.T) {
	handler, tokens, _ := newUnsubscribeFixture()
	seedToken(tokens, "tok-1", models.CategorySupportReply)

	for i, want := range []int{http.StatusOK, http.StatusBadRequest} {
		payload := bytes.NewBufferString(`{"token": "tok-1"}`)
		req := httptest.NewRequest(http.MethodPost, "/unsubscribe", payload)
		rec := httptest.NewRecorder()
		handler.RedeemHandler(rec, req)
		assert.Equal(t, want, rec.Code, "request %d", i+1)
	}
}

func TestRedeemHandlerBadPayload(t *testing.T) {
	handler, _, _ := newUnsubscribeFixture()

	req := httptest.NewRequest(http.MethodPost, "/unsubscribe", bytes.NewBufferString(`{`))
	rec := httptest.NewRecorder()
	handler.RedeemHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
