package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThresholdMonotonicity(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)

	round := seedRound(t, db, nil)
	for i := 0; i < 37; i++ {
		seedProphecy(t, db, alice, round, nil, time.Now())
	}

	engine.CheckCumulativeBadges(alice)

	for _, key := range []string{"creator_1", "creator_5", "creator_15", "creator_30"} {
		assert.True(t, holdsBadge(t, db, alice, key), key)
	}
	for _, key := range []string{"creator_50", "creator_100"} {
		assert.False(t, holdsBadge(t, db, alice, key), key)
	}
}

func TestAccuracyRateGatedOnSampleSize(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	round := seedRound(t, db, nil)

	for i := 0; i < 9; i++ {
		seedProphecy(t, db, alice, round, boolPtr(true), time.Now())
	}
	engine.CheckCumulativeBadges(alice)
	assert.False(t, holdsBadge(t, db, alice, "accuracy_rate_90"),
		"9 prophecies are below the sample gate")

	seedProphecy(t, db, alice, round, boolPtr(true), time.Now())
	engine.CheckCumulativeBadges(alice)
	assert.True(t, holdsBadge(t, db, alice, "accuracy_rate_90"))
	assert.True(t, holdsBadge(t, db, alice, "accuracy_rate_50"),
		"threshold awarding is not exclusive")
}

func TestSocialBadgeGates(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	round := seedRound(t, db, nil)

	// Ten +10 ratings: enough for generous, not for the distribution rules.
	for i := 0; i < 10; i++ {
		p := seedProphecy(t, db, bob, round, nil, time.Now())
		seedRating(t, db, alice, p, 10, time.Now())
	}

	earned := engine.CheckSocialBadges(alice)
	assert.Contains(t, earnedKeys(earned), "social_generous")
	assert.False(t, holdsBadge(t, db, alice, "social_skeptic"),
		"distribution rules need 20 ratings")

	// Ten more +10 ratings push the average rules over their gate.
	for i := 0; i < 10; i++ {
		p := seedProphecy(t, db, bob, round, nil, time.Now())
		seedRating(t, db, alice, p, 10, time.Now())
	}
	engine.CheckSocialBadges(alice)
	assert.True(t, holdsBadge(t, db, alice, "social_skeptic"))
	assert.False(t, holdsBadge(t, db, alice, "social_neutral"))
	assert.False(t, holdsBadge(t, db, alice, "social_friendly"))
}

func TestRuthlessBadge(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	round := seedRound(t, db, nil)

	for i := 0; i < 10; i++ {
		p := seedProphecy(t, db, bob, round, nil, time.Now())
		seedRating(t, db, alice, p, -10, time.Now())
	}

	earned := engine.CheckSocialBadges(alice)
	assert.Contains(t, earnedKeys(earned), "social_ruthless")
}
