package services

import (
	"testing"
	"time"

	"prophecy-badge-system/models"

	"github.com/stretchr/testify/assert"
)

func TestUnicornAndPartyCrasher(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	carol := seedUser(t, db, "carol", false)
	now := time.Now()
	round := seedRound(t, db, timePtr(now))

	// Heavily doubted and fulfilled anyway.
	p1 := seedProphecy(t, db, alice, round, boolPtr(true), now.Add(-72*time.Hour))
	seedRating(t, db, carol, p1, 8, now.Add(-40*time.Hour))
	seedRating(t, db, bob, p1, 8, now.Add(-40*time.Hour))

	// Heavily doubted and failed as predicted.
	p2 := seedProphecy(t, db, bob, round, boolPtr(false), now.Add(-72*time.Hour))
	seedRating(t, db, carol, p2, 9, now.Add(-40*time.Hour))
	seedRating(t, db, alice, p2, 9, now.Add(-40*time.Hour))

	// Doubted but never resolved: no outcome, no badge.
	p3 := seedProphecy(t, db, carol, round, nil, now.Add(-72*time.Hour))
	seedRating(t, db, alice, p3, 10, now.Add(-40*time.Hour))
	seedRating(t, db, bob, p3, 10, now.Add(-40*time.Hour))

	engine.EvaluateRoundBadges(round, []string{alice, bob, carol})

	assert.True(t, holdsBadge(t, db, alice, "special_unicorn"))
	assert.True(t, holdsBadge(t, db, bob, "special_party_crasher"))
	assert.False(t, holdsBadge(t, db, carol, "special_unicorn"))
	assert.False(t, holdsBadge(t, db, carol, "special_party_crasher"))
}

func TestChaosAgent(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	carol := seedUser(t, db, "carol", false)
	now := time.Now()
	round := seedRound(t, db, timePtr(now))

	seedProphecy(t, db, alice, round, boolPtr(true), now.Add(-72*time.Hour))
	seedProphecy(t, db, alice, round, boolPtr(false), now.Add(-72*time.Hour))
	split := seedProphecy(t, db, alice, round, nil, now.Add(-72*time.Hour))
	seedRating(t, db, bob, split, -10, now.Add(-40*time.Hour))
	seedRating(t, db, carol, split, 10, now.Add(-40*time.Hour))

	// Bob has a fulfilled and a failed prophecy but nothing controversial.
	seedProphecy(t, db, bob, round, boolPtr(true), now.Add(-72*time.Hour))
	seedProphecy(t, db, bob, round, boolPtr(false), now.Add(-72*time.Hour))

	engine.EvaluateRoundBadges(round, []string{alice, bob})

	assert.True(t, holdsBadge(t, db, alice, "special_chaos_agent"))
	assert.False(t, holdsBadge(t, db, bob, "special_chaos_agent"))
}

func TestRoundAccuracyGatedOnAcceptedCount(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	now := time.Now()

	seedAccepted := func(round string, n int) {
		for i := 0; i < n; i++ {
			p := seedProphecy(t, db, alice, round, boolPtr(true), now.Add(-72*time.Hour))
			seedRating(t, db, bob, p, 6, now.Add(-40*time.Hour))
		}
	}

	small := seedRound(t, db, timePtr(now))
	seedAccepted(small, 4)
	engine.EvaluateRoundBadges(small, []string{alice})
	assert.False(t, holdsBadge(t, db, alice, "accuracy_rate_90"),
		"four accepted prophecies are below the gate")

	big := seedRound(t, db, timePtr(now))
	seedAccepted(big, 5)
	engine.EvaluateRoundBadges(big, []string{alice})
	assert.True(t, holdsBadge(t, db, alice, "accuracy_rate_90"))
}

func TestSpeedrunnerNeedsASpan(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	carol := seedUser(t, db, "carol", false)
	now := time.Now()
	round := seedRound(t, db, timePtr(now))

	p1 := seedProphecy(t, db, carol, round, nil, now.Add(-72*time.Hour))
	p2 := seedProphecy(t, db, carol, round, nil, now.Add(-72*time.Hour))

	// Alice rates both within a minute; Bob only ever rates once.
	seedRating(t, db, alice, p1, 3, now.Add(-40*time.Hour))
	seedRating(t, db, alice, p2, 3, now.Add(-40*time.Hour).Add(time.Minute))
	seedRating(t, db, bob, p1, 3, now.Add(-40*time.Hour))

	engine.EvaluateRoundBadges(round, []string{carol})

	assert.True(t, holdsBadge(t, db, alice, "special_speedrunner"))
	assert.False(t, holdsBadge(t, db, bob, "special_speedrunner"))
}

func TestAgainstTheStream(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	carol := seedUser(t, db, "carol", false)
	dave := seedUser(t, db, "dave", false)
	now := time.Now()
	round := seedRound(t, db, timePtr(now))

	// The crowd doubts, Alice alone predicts fulfillment, and it fulfills.
	p := seedProphecy(t, db, dave, round, boolPtr(true), now.Add(-72*time.Hour))
	seedRating(t, db, bob, p, 10, now.Add(-40*time.Hour))
	seedRating(t, db, carol, p, 10, now.Add(-40*time.Hour))
	seedRating(t, db, alice, p, -10, now.Add(-40*time.Hour))

	engine.EvaluateRoundBadges(round, []string{dave})

	assert.True(t, holdsBadge(t, db, alice, "special_against_the_stream"))
	assert.False(t, holdsBadge(t, db, bob, "special_against_the_stream"),
		"agreeing with the crowd and being wrong earns nothing")
}

func TestBotComparisonBadges(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	carol := seedUser(t, db, "carol", false)
	baseline := seedUser(t, db, "random-bot", true)
	now := time.Now()
	round := seedRound(t, db, timePtr(now))

	p1 := seedProphecy(t, db, carol, round, boolPtr(true), now.Add(-72*time.Hour))
	p2 := seedProphecy(t, db, carol, round, boolPtr(true), now.Add(-72*time.Hour))

	// Baseline bot is perfect this round, Alice is half right, Bob never
	// rated a resolved prophecy at all.
	seedRating(t, db, baseline, p1, -5, now.Add(-40*time.Hour))
	seedRating(t, db, baseline, p2, -5, now.Add(-40*time.Hour))
	seedRating(t, db, alice, p1, -5, now.Add(-40*time.Hour))
	seedRating(t, db, alice, p2, 5, now.Add(-40*time.Hour))

	engine.EvaluateRoundBadges(round, []string{carol})

	assert.True(t, holdsBadge(t, db, alice, "hidden_worse_than_random"))
	assert.False(t, holdsBadge(t, db, carol, "hidden_worse_than_random"),
		"no scored ratings means no signal, not a bad signal")
	assert.False(t, holdsBadge(t, db, bob, "hidden_worse_than_random"))
	assert.False(t, holdsBadge(t, db, alice, "hidden_bot_beater"),
		"missing skilled bot disables the comparison")
}

func TestBotBeater(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	carol := seedUser(t, db, "carol", false)
	skilled := seedUser(t, db, "prophet-bot", true)
	now := time.Now()
	round := seedRound(t, db, timePtr(now))

	p1 := seedProphecy(t, db, carol, round, boolPtr(true), now.Add(-72*time.Hour))
	p2 := seedProphecy(t, db, carol, round, boolPtr(false), now.Add(-72*time.Hour))

	seedRating(t, db, skilled, p1, -5, now.Add(-40*time.Hour))
	seedRating(t, db, skilled, p2, -5, now.Add(-40*time.Hour))
	seedRating(t, db, alice, p1, -5, now.Add(-40*time.Hour))
	seedRating(t, db, alice, p2, 5, now.Add(-40*time.Hour))

	engine.EvaluateRoundBadges(round, []string{carol})

	assert.True(t, holdsBadge(t, db, alice, "hidden_bot_beater"))
	assert.False(t, holdsBadge(t, db, carol, "hidden_bot_beater"))
}

func TestMorningGlory(t *testing.T) {
	engine, db := newTestEngine(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	carol := seedUser(t, db, "carol", false)
	now := time.Now()
	round := seedRound(t, db, timePtr(now))

	p := seedProphecy(t, db, carol, round, nil, now.Add(-72*time.Hour))
	seedRating(t, db, alice, p, 3, now.Add(-72*time.Hour).Add(2*time.Hour))
	seedRating(t, db, bob, p, 3, now.Add(-40*time.Hour))

	engine.EvaluateRoundBadges(round, []string{carol})

	assert.True(t, holdsBadge(t, db, alice, "special_morning_glory"))
	assert.False(t, holdsBadge(t, db, bob, "special_morning_glory"))
}

func TestUnderdogAwarded(t *testing.T) {
	engine, db := newTestEngine(t)
	champ := seedUser(t, db, "champ", false)
	rival := seedUser(t, db, "rival", false)
	now := time.Now()

	// Two prior published rounds: the champ only rated, the rival won both.
	for _, age := range []time.Duration{96 * time.Hour, 48 * time.Hour} {
		published := now.Add(-age)
		prior := seedRound(t, db, timePtr(published))
		p := seedProphecy(t, db, rival, prior, boolPtr(true), published.Add(-24*time.Hour))
		seedRating(t, db, champ, p, 8, published.Add(-12*time.Hour))
	}

	current := seedRound(t, db, timePtr(now))
	seedProphecy(t, db, champ, current, boolPtr(true), now.Add(-24*time.Hour))

	engine.EvaluateRoundBadges(current, []string{champ, rival})

	assert.True(t, holdsBadge(t, db, champ, "special_underdog"))
	assert.False(t, holdsBadge(t, db, rival, "special_underdog"))
}

func TestUnderdogNeedsHistory(t *testing.T) {
	engine, db := newTestEngine(t)
	champ := seedUser(t, db, "champ", false)
	rival := seedUser(t, db, "rival", false)
	now := time.Now()

	published := now.Add(-48 * time.Hour)
	prior := seedRound(t, db, timePtr(published))
	p := seedProphecy(t, db, rival, prior, boolPtr(true), published.Add(-24*time.Hour))
	seedRating(t, db, champ, p, 8, published.Add(-12*time.Hour))

	current := seedRound(t, db, timePtr(now))
	seedProphecy(t, db, champ, current, boolPtr(true), now.Add(-24*time.Hour))

	engine.EvaluateRoundBadges(current, []string{champ, rival})

	assert.False(t, holdsBadge(t, db, champ, "special_underdog"),
		"one prior round is insufficient history")
}

func TestUnderdogDisqualifiedByPriorPodium(t *testing.T) {
	engine, db := newTestEngine(t)
	champ := seedUser(t, db, "champ", false)
	rival := seedUser(t, db, "rival", false)
	now := time.Now()

	for i, age := range []time.Duration{96 * time.Hour, 48 * time.Hour} {
		published := now.Add(-age)
		prior := seedRound(t, db, timePtr(published))
		author := champ
		if i == 1 {
			author = rival
		}
		p := seedProphecy(t, db, author, prior, boolPtr(true), published.Add(-24*time.Hour))
		rater := rival
		if author == rival {
			rater = champ
		}
		seedRating(t, db, rater, p, 8, published.Add(-12*time.Hour))
	}

	current := seedRound(t, db, timePtr(now))
	seedProphecy(t, db, champ, current, boolPtr(true), now.Add(-24*time.Hour))

	engine.EvaluateRoundBadges(current, []string{champ, rival})

	assert.False(t, holdsBadge(t, db, champ, "special_underdog"),
		"winning a prior round podium disqualifies")
}

func TestParticipantSetExcludesBotsAndPlaceholders(t *testing.T) {
	infos := []models.RoundRatingInfo{
		{
			CreatorID: "creator",
			Ratings: []models.RoundRating{
				{RaterID: "rater", Value: 5},
				{RaterID: "placeholder", Value: 0},
				{RaterID: "bot", Value: 5, IsBot: true},
			},
		},
	}
	assert.Equal(t, []string{"creator", "rater"}, participantSet(infos))
}

func TestRoundAccuracyScoresOnlyResolved(t *testing.T) {
	infos := []models.RoundRatingInfo{
		{Fulfilled: boolPtr(true), Ratings: []models.RoundRating{{RaterID: "u", Value: -5}}},
		{Fulfilled: boolPtr(false), Ratings: []models.RoundRating{{RaterID: "u", Value: -5}}},
		{Fulfilled: nil, Ratings: []models.RoundRating{{RaterID: "u", Value: -5}}},
	}
	assert.InDelta(t, 50.0, roundAccuracy("u", infos), 0.001)
	assert.Zero(t, roundAccuracy("stranger", infos))
}
