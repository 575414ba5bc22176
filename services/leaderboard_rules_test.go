package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeaderboardPositionBadges(t *testing.T) {
	engine, db := newTestEngine(t)
	first := seedUser(t, db, "first", false)
	second := seedUser(t, db, "second", false)
	third := seedUser(t, db, "third", false)
	fourth := seedUser(t, db, "fourth", false)

	engine.CheckLeaderboardBadges([]string{first, second, third, fourth}, 0)

	assert.True(t, holdsBadge(t, db, first, "leaderboard_1"))
	assert.True(t, holdsBadge(t, db, second, "leaderboard_2"))
	assert.True(t, holdsBadge(t, db, third, "leaderboard_3"))
	assert.False(t, holdsBadge(t, db, fourth, "leaderboard_1"))
	assert.False(t, holdsBadge(t, db, fourth, "leaderboard_3"))
}

func TestLeaderboardShortField(t *testing.T) {
	engine, db := newTestEngine(t)
	only := seedUser(t, db, "only", false)

	earned := engine.CheckLeaderboardBadges([]string{only}, 0)

	assert.Equal(t, []string{"leaderboard_1"}, earnedKeys(earned))
	assert.False(t, holdsBadge(t, db, only, "leaderboard_2"))
}

func TestLeaderboardEmptyIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t)
	assert.Empty(t, engine.CheckLeaderboardBadges(nil, 3))
}

func TestChampionTiers(t *testing.T) {
	engine, db := newTestEngine(t)
	first := seedUser(t, db, "first", false)

	engine.CheckLeaderboardBadges([]string{first}, 3)
	assert.True(t, holdsBadge(t, db, first, "leaderboard_champion_3"))
	assert.False(t, holdsBadge(t, db, first, "leaderboard_champion_5"))

	engine.CheckLeaderboardBadges([]string{first}, 5)
	assert.True(t, holdsBadge(t, db, first, "leaderboard_champion_5"))
}
