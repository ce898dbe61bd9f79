package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPriorityOrdering(t *testing.T) {
	// Support replies outrank everything; urgent inactivity outranks gentle.
	assert.Greater(t, PriorityOf(CategorySupportReply), PriorityOf(CategoryInactivityUrgent))
	assert.Greater(t, PriorityOf(CategoryInactivityUrgent), PriorityOf(CategoryInactivityGentle))
	assert.Greater(t, PriorityOf(CategoryInactivityGentle), PriorityOf(CategoryWeeklyDigest))
	assert.Greater(t, PriorityOf(CategoryWeeklyDigest), PriorityOf(CategoryMotivationalWelcome))
}

func TestKnownRejectsArbitraryStrings(t *testing.T) {
	for _, c := range AllCategories() {
		assert.True(t, Known(c), "category %s", c)
	}
	assert.False(t, Known(Category("marketing_blast")))
	assert.False(t, Known(Category("")))
}

func TestAllowsUnknownCategoryDenied(t *testing.T) {
	pref := DefaultPreference(primitive.NewObjectID())
	assert.True(t, pref.Allows(CategoryWeeklyDigest))
	assert.False(t, pref.Allows(Category("marketing_blast")))
}

func TestDisableAllWinsOverFlags(t *testing.T) {
	pref := DefaultPreference(primitive.NewObjectID())
	pref.DisableAll(time.Now())
	assert.True(t, pref.OptedOutOfAll)
	for _, c := range AllCategories() {
		assert.False(t, pref.Allows(c), "category %s", c)
	}
}

func TestRedeemableStates(t *testing.T) {
	now := time.Now()
	fresh := &UnsubscribeToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, fresh.Redeemable(now))

	expired := &UnsubscribeToken{ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, expired.Redeemable(now))

	used := &UnsubscribeToken{ExpiresAt: now.Add(time.Hour), UsedAt: &now}
	assert.False(t, used.Redeemable(now))
}
