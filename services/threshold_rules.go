package services

import (
	"go.uber.org/zap"
)

// Minimum sample sizes before the noisy rate-based rules are evaluated.
const (
	accuracyRateMinProphecies = 10
	raterAccuracyMinRatings   = 20
	socialMinRatings          = 20
	neutralMinRatings         = 30
	extremeRatingMinCount     = 10
)

// CheckCumulativeBadges evaluates every lifetime-counter tier group against a
// fresh statistics snapshot. Returns the newly earned badges.
func (e *RuleEngine) CheckCumulativeBadges(userID string) []AwardResult {
	var earned []AwardResult

	stats, err := e.Stats.ComputeUserStats(userID)
	if err != nil {
		e.Log.Error("stats computation failed", zap.String("user_id", userID), zap.Error(err))
		return earned
	}

	e.grantGroupThresholds(userID, "creator_", stats.ProphecyCount, &earned)
	e.grantGroupThresholds(userID, "fulfilled_", stats.FulfilledCount, &earned)
	e.grantGroupThresholds(userID, "rater_", stats.RatingsGiven, &earned)
	e.grantGroupThresholds(userID, "rounds_", stats.RoundsParticipated, &earned)

	// Rate badges only once the sample is big enough to mean something.
	if stats.ProphecyCount >= accuracyRateMinProphecies {
		e.grantGroupThresholds(userID, "accuracy_rate_", int(stats.AccuracyRate), &earned)
	}
	if stats.RatingsOnResolved >= raterAccuracyMinRatings {
		e.grantGroupThresholds(userID, "rater_accuracy_", int(stats.RaterAccuracy), &earned)
	}

	return earned
}

// CheckSocialBadges evaluates the rating-distribution pattern rules.
func (e *RuleEngine) CheckSocialBadges(userID string) []AwardResult {
	var earned []AwardResult

	stats, err := e.Stats.ComputeUserStats(userID)
	if err != nil {
		e.Log.Error("stats computation failed", zap.String("user_id", userID), zap.Error(err))
		return earned
	}

	if stats.RatingsGiven >= socialMinRatings {
		if stats.AvgRatingGiven < -5 {
			e.grant(userID, "social_friendly", &earned)
		}
		if stats.AvgRatingGiven > 2 {
			e.grant(userID, "social_skeptic", &earned)
		}
		if stats.AvgRatingGiven >= -1 && stats.AvgRatingGiven <= 1 &&
			stats.RatingsGiven >= neutralMinRatings {
			e.grant(userID, "social_neutral", &earned)
		}
	}

	// The extremity badges count single ratings, not the distribution, and
	// are not gated on total volume.
	if stats.MaxRatingCount >= extremeRatingMinCount {
		e.grant(userID, "social_generous", &earned)
	}
	if stats.MinRatingCount >= extremeRatingMinCount {
		e.grant(userID, "social_ruthless", &earned)
	}

	return earned
}
