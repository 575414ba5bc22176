package services

// positionBadgeKeys maps leaderboard index to its badge. A leaderboard with
// fewer entrants simply awards fewer badges.
var positionBadgeKeys = []string{"leaderboard_1", "leaderboard_2", "leaderboard_3"}

// CheckLeaderboardBadges awards position badges for the round's creator
// ranking, plus champion tiers for the winner's consecutive first-place
// streak when the caller supplies one.
func (e *RuleEngine) CheckLeaderboardBadges(leaderboard []string, consecutiveWins int) []AwardResult {
	var earned []AwardResult

	for i, key := range positionBadgeKeys {
		if i >= len(leaderboard) {
			break
		}
		e.grant(leaderboard[i], key, &earned)
	}

	if len(leaderboard) > 0 && consecutiveWins > 0 {
		e.grantGroupThresholds(leaderboard[0], "leaderboard_champion_", consecutiveWins, &earned)
	}

	return earned
}
