package services

import (
	"context"
	"fmt"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakePrefStore struct {
	rows    map[primitive.ObjectID]*models.NotificationPreference
	getErr  error
	inserts int
}

func newFakePrefStore() *fakePrefStore {
	return &fakePrefStore{rows: make(map[primitive.ObjectID]*models.NotificationPreference)}
}

func (f *fakePrefStore) Get(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreference, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	row, ok := f.rows[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *row
	return &copied, nil
}

func (f *fakePrefStore) Insert(ctx context.Context, pref *models.NotificationPreference) error {
	f.inserts++
	f.rows[pref.UserID] = pref
	return nil
}

func (f *fakePrefStore) Update(ctx context.Context, userID primitive.ObjectID, pref *models.NotificationPreference) error {
	f.rows[userID] = pref
	return nil
}

type fakeTokenStore struct {
	rows      map[string]*models.UnsubscribeToken
	insertErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: make(map[string]*models.UnsubscribeToken)}
}

func (f *fakeTokenStore) Insert(ctx context.Context, token *models.UnsubscribeToken) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[token.Token] = token
	return nil
}

func (f *fakeTokenStore) FindByToken(ctx context.Context, token string) (*models.UnsubscribeToken, error) {
	row, ok := f.rows[token]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *row
	return &copied, nil
}

func (f *fakeTokenStore) MarkUsedIfUnused(ctx context.Context, token string, now time.Time) (bool, error) {
	row, ok := f.rows[token]
	if !ok || row.UsedAt != nil || !now.Before(row.ExpiresAt) {
		return false, nil
	}
	row.UsedAt = &now
	return true, nil
}

func (f *fakeTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	var deleted int64
	for k, row := range f.rows {
		if !time.Now().Before(row.ExpiresAt) {
			delete(f.rows, k)
			deleted++
		}
	}
	return deleted, nil
}

type fakeUserStore struct {
	users []*models.User
}

func (f *fakeUserStore) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return f.users, nil
}

func (f *fakeUserStore) GetRegisteredBetween(ctx context.Context, from, to time.Time) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.users {
		if !u.CreatedAt.Before(from) && !u.CreatedAt.After(to) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("failed to find user by id: not found")
}

type fakeAttemptStore struct {
	attempts map[primitive.ObjectID][]models.TestAttempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[primitive.ObjectID][]models.TestAttempt)}
}

func (f *fakeAttemptStore) HasAnyAttempt(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	return len(f.attempts[userID]) > 0, nil
}

func (f *fakeAttemptStore) GetUserAttemptsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]models.TestAttempt, error) {
	var out []models.TestAttempt
	for _, a := range f.attempts[userID] {
		if a.CompletedAt.After(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeLogStore struct {
	entries   []models.EmailLogEntry
	insertErr error
}

func (f *fakeLogStore) Insert(ctx context.Context, entry *models.EmailLogEntry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLogStore) ListByBatchAndStatus(ctx context.Context, batchID string, status models.SendStatus) ([]models.EmailLogEntry, error) {
	var out []models.EmailLogEntry
	for _, e := range f.entries {
		if e.BatchID == batchID && e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLogStore) GetLatestByCategory(ctx context.Context, userID primitive.ObjectID, category models.Category) (*models.EmailLogEntry, error) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.UserID == userID && e.Category == category && e.Status == models.StatusSent {
			return &e, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

type fakeTransport struct {
	sent    []sentMail
	failFor map[string]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failFor: make(map[string]error)}
}

func (f *fakeTransport) Send(ctx context.Context, to, subject, html string) (string, error) {
	if err, ok := f.failFor[to]; ok {
		return "", err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, HTML: html})
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeTransport) callsTo(to string) int {
	n := 0
	for _, m := range f.sent {
		if m.To == to {
			n++
		}
	}
	return n
}

type fakePresence struct {
	online map[string]bool
}

func (f *fakePresence) IsOnline(ctx context.Context, userID string) bool {
	return f.online[userID]
}

type fakeDetector struct {
	queue  []models.NotificationCandidate
	digest []models.NotificationCandidate
	err    error
}

func (f *fakeDetector) BuildQueue(ctx context.Context) ([]models.NotificationCandidate, error) {
	return f.queue, f.err
}

func (f *fakeDetector) DetectWeeklyDigestCandidates(ctx context.Context) ([]models.NotificationCandidate, error) {
	return f.digest, f.err
}

type fakeDisputeStore struct {
	rows map[primitive.ObjectID]*models.Dispute
	// resolveAfter counts reads before a pending dispute flips to resolved
	resolveAfter map[primitive.ObjectID]int
}

func newFakeDisputeStore() *fakeDisputeStore {
	return &fakeDisputeStore{
		rows:         make(map[primitive.ObjectID]*models.Dispute),
		resolveAfter: make(map[primitive.ObjectID]int),
	}
}

func (f *fakeDisputeStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Dispute, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if n, pending := f.resolveAfter[id]; pending {
		if n > 0 {
			f.resolveAfter[id] = n - 1
			copied := *row
			copied.Status = models.DisputeStatusPending
			return &copied, nil
		}
		delete(f.resolveAfter, id)
	}
	copied := *row
	return &copied, nil
}

type fakeTicketStore struct {
	rows map[primitive.ObjectID]*models.SupportTicket
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{rows: make(map[primitive.ObjectID]*models.SupportTicket)}
}

func (f *fakeTicketStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SupportTicket, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return row, nil
}
