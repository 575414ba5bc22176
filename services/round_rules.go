package services

import (
	"errors"
	"sort"
	"time"

	"prophecy-badge-system/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	speedrunWindow           = 10 * time.Minute
	earlyRatingWindow        = 24 * time.Hour
	roundAccuracyMinAccepted = 5
	underdogPriorRounds      = 2
	underdogPodiumSize       = 3
)

// EvaluateRoundBadges runs the full round-completion rule set for a round
// whose results were just published. The leaderboard is the externally
// computed creator ranking, best first. Every rule is independently
// idempotent; a failing rule never blocks its siblings.
func (e *RuleEngine) EvaluateRoundBadges(roundID string, leaderboard []string) []AwardResult {
	var earned []AwardResult

	infos, err := e.Stats.LoadRoundRatingInfo(roundID)
	if err != nil {
		e.Log.Error("round info load failed", zap.String("round_id", roundID), zap.Error(err))
		return earned
	}
	if len(infos) == 0 {
		return earned
	}

	skilledAcc, skilledOK := e.botRoundAccuracy(e.Config.SkilledBotUsername, infos)
	baselineAcc, baselineOK := e.botRoundAccuracy(e.Config.BaselineBotUsername, infos)

	for _, userID := range participantSet(infos) {
		e.checkParticipantBadges(userID, infos, skilledAcc, skilledOK, baselineAcc, baselineOK, &earned)
	}

	e.checkProphecyOutcomeBadges(infos, &earned)
	e.checkCreatorPatternBadges(infos, &earned)
	e.checkUnderdogBadge(roundID, leaderboard, &earned)

	return earned
}

// participantSet collects every creator plus every non-bot rater of the
// round, deterministically ordered. A zero-value rating is a placeholder,
// not participation.
func participantSet(infos []models.RoundRatingInfo) []string {
	seen := make(map[string]bool)
	for _, info := range infos {
		seen[info.CreatorID] = true
		for _, r := range info.Ratings {
			if !r.IsBot && r.Value != 0 {
				seen[r.RaterID] = true
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// roundAccuracy scores one user's ratings against the round's resolved
// prophecies, same formula as the lifetime rater accuracy but scoped to a
// single round. No rated resolved prophecies means 0.
func roundAccuracy(userID string, infos []models.RoundRatingInfo) float64 {
	correct, total := 0, 0
	for _, info := range infos {
		if !info.Resolved() {
			continue
		}
		for _, r := range info.Ratings {
			if r.RaterID != userID || r.Value == 0 {
				continue
			}
			total++
			if (r.Value < 0) == *info.Fulfilled {
				correct++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// botRoundAccuracy resolves a reference bot by username and computes its
// round accuracy. A missing bot account disables the comparison badges for
// the round rather than failing the run.
func (e *RuleEngine) botRoundAccuracy(username string, infos []models.RoundRatingInfo) (float64, bool) {
	if username == "" {
		return 0, false
	}
	var bot models.User
	err := e.DB.Where("username = ?", username).First(&bot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e.Log.Warn("reference bot account not found", zap.String("username", username))
		return 0, false
	}
	if err != nil {
		e.Log.Error("reference bot lookup failed", zap.String("username", username), zap.Error(err))
		return 0, false
	}
	return roundAccuracy(bot.ID, infos), true
}

func (e *RuleEngine) checkParticipantBadges(
	userID string,
	infos []models.RoundRatingInfo,
	skilledAcc float64, skilledOK bool,
	baselineAcc float64, baselineOK bool,
	earned *[]AwardResult,
) {
	acc := roundAccuracy(userID, infos)

	if skilledOK && acc > skilledAcc {
		e.grant(userID, "hidden_bot_beater", earned)
	}
	// A participant with no scored ratings has no signal, and absence of
	// signal is not "worse than random".
	if baselineOK && acc > 0 && acc < baselineAcc {
		e.grant(userID, "hidden_worse_than_random", earned)
	}

	if ratedRoundWithin(userID, infos, speedrunWindow) {
		e.grant(userID, "special_speedrunner", earned)
	}
	if wentAgainstTheStream(userID, infos) {
		e.grant(userID, "special_against_the_stream", earned)
	}
	if ratedEarly(userID, infos, earlyRatingWindow) {
		e.grant(userID, "special_morning_glory", earned)
	}
}

// ratedRoundWithin reports whether the span between the user's first and
// last rating in the round stayed under the window. A single rating has no
// span and does not count.
func ratedRoundWithin(userID string, infos []models.RoundRatingInfo, window time.Duration) bool {
	var first, last time.Time
	count := 0
	for _, info := range infos {
		for _, r := range info.Ratings {
			if r.RaterID != userID || r.Value == 0 || r.IsBot {
				continue
			}
			if count == 0 || r.CreatedAt.Before(first) {
				first = r.CreatedAt
			}
			if count == 0 || r.CreatedAt.After(last) {
				last = r.CreatedAt
			}
			count++
		}
	}
	return count >= 2 && last.Sub(first) < window
}

// wentAgainstTheStream reports whether at least one of the user's ratings
// disagreed in sign with the prophecy's average rating and still turned out
// correct (negative value predicts fulfillment).
func wentAgainstTheStream(userID string, infos []models.RoundRatingInfo) bool {
	for _, info := range infos {
		if !info.Resolved() || info.AvgRating == 0 {
			continue
		}
		for _, r := range info.Ratings {
			if r.RaterID != userID || r.Value == 0 || r.IsBot {
				continue
			}
			disagrees := (r.Value > 0) != (info.AvgRating > 0)
			correct := (r.Value < 0) == *info.Fulfilled
			if disagrees && correct {
				return true
			}
		}
	}
	return false
}

// ratedEarly reports whether any of the user's ratings landed within the
// window of its prophecy's creation.
func ratedEarly(userID string, infos []models.RoundRatingInfo, window time.Duration) bool {
	for _, info := range infos {
		for _, r := range info.Ratings {
			if r.RaterID != userID || r.Value == 0 || r.IsBot {
				continue
			}
			if r.CreatedAt.Sub(info.CreatedAt) < window {
				return true
			}
		}
	}
	return false
}

// checkProphecyOutcomeBadges awards unicorn and party crasher to creators of
// heavily doubted prophecies, depending on how they resolved. Unresolved
// prophecies never trigger either.
func (e *RuleEngine) checkProphecyOutcomeBadges(infos []models.RoundRatingInfo, earned *[]AwardResult) {
	for _, info := range infos {
		if !info.Resolved() || info.AvgRating <= 5 {
			continue
		}
		if *info.Fulfilled {
			e.grant(info.CreatorID, "special_unicorn", earned)
		} else {
			e.grant(info.CreatorID, "special_party_crasher", earned)
		}
	}
}

// checkCreatorPatternBadges covers the per-creator, cross-prophecy rules:
// chaos agent and the round-scoped accuracy tier badges.
func (e *RuleEngine) checkCreatorPatternBadges(infos []models.RoundRatingInfo, earned *[]AwardResult) {
	byCreator := make(map[string][]models.RoundRatingInfo)
	for _, info := range infos {
		byCreator[info.CreatorID] = append(byCreator[info.CreatorID], info)
	}

	creators := make([]string, 0, len(byCreator))
	for id := range byCreator {
		creators = append(creators, id)
	}
	sort.Strings(creators)

	for _, creatorID := range creators {
		own := byCreator[creatorID]

		if isChaosAgent(own) {
			e.grant(creatorID, "special_chaos_agent", earned)
		}

		accepted, fulfilled := acceptedProphecies(own)
		if accepted >= roundAccuracyMinAccepted {
			rate := int(float64(fulfilled) / float64(accepted) * 100)
			e.grantGroupThresholds(creatorID, "accuracy_rate_", rate, earned)
		}
	}
}

// isChaosAgent: at least one fulfilled, at least one failed, and at least one
// controversial prophecy whose human ratings span the full -10..+10 range.
func isChaosAgent(own []models.RoundRatingInfo) bool {
	hasFulfilled, hasFailed, hasControversial := false, false, false
	for _, info := range own {
		if info.Resolved() {
			if *info.Fulfilled {
				hasFulfilled = true
			} else {
				hasFailed = true
			}
		}
		lo, hi := 0, 0
		for _, r := range info.Ratings {
			if r.Value == 0 || r.IsBot {
				continue
			}
			if r.Value < lo {
				lo = r.Value
			}
			if r.Value > hi {
				hi = r.Value
			}
		}
		if lo <= -10 && hi >= 10 {
			hasControversial = true
		}
	}
	return hasFulfilled && hasFailed && hasControversial
}

// acceptedProphecies counts a creator's accepted prophecies in the round
// (resolved with positive average rating) and how many of those fulfilled.
func acceptedProphecies(own []models.RoundRatingInfo) (accepted, fulfilled int) {
	for _, info := range own {
		if !info.Resolved() || info.AvgRating <= 0 {
			continue
		}
		accepted++
		if *info.Fulfilled {
			fulfilled++
		}
	}
	return accepted, fulfilled
}

// checkUnderdogBadge awards the round winner who participated in, but missed
// the podium of, both previously published rounds. Fewer than two prior
// rounds means insufficient history, not a free pass.
func (e *RuleEngine) checkUnderdogBadge(roundID string, leaderboard []string, earned *[]AwardResult) {
	if len(leaderboard) == 0 {
		return
	}
	candidate := leaderboard[0]

	var current models.Round
	if err := e.DB.Where("id = ?", roundID).First(&current).Error; err != nil {
		e.Log.Error("round lookup failed", zap.String("round_id", roundID), zap.Error(err))
		return
	}
	cutoff := time.Now()
	if current.ResultsPublishedAt != nil {
		cutoff = *current.ResultsPublishedAt
	}

	var priors []models.Round
	if err := e.DB.
		Where("id <> ? AND results_published_at IS NOT NULL AND results_published_at < ?", roundID, cutoff).
		Order("results_published_at DESC").
		Limit(underdogPriorRounds).
		Find(&priors).Error; err != nil {
		e.Log.Error("prior rounds lookup failed", zap.String("round_id", roundID), zap.Error(err))
		return
	}
	if len(priors) < underdogPriorRounds {
		return
	}

	for _, prior := range priors {
		infos, err := e.Stats.LoadRoundRatingInfo(prior.ID)
		if err != nil {
			e.Log.Error("prior round info load failed", zap.String("round_id", prior.ID), zap.Error(err))
			return
		}
		if !participatedIn(candidate, infos) {
			return
		}
		for _, topID := range underdogPodium(infos) {
			if topID == candidate {
				return
			}
		}
	}

	e.grant(candidate, "special_underdog", earned)
}

func participatedIn(userID string, infos []models.RoundRatingInfo) bool {
	for _, info := range infos {
		if info.CreatorID == userID {
			return true
		}
		for _, r := range info.Ratings {
			if r.RaterID == userID && r.Value != 0 && !r.IsBot {
				return true
			}
		}
	}
	return false
}

// underdogPodium ranks a round's creators by the sum of average ratings over
// their fulfilled, positively rated prophecies and returns the top three.
func underdogPodium(infos []models.RoundRatingInfo) []string {
	scores := make(map[string]float64)
	for _, info := range infos {
		if !info.Resolved() || !*info.Fulfilled || info.AvgRating <= 0 {
			continue
		}
		scores[info.CreatorID] += info.AvgRating
	}

	ranked := make([]string, 0, len(scores))
	for id := range scores {
		ranked = append(ranked, id)
	}
	sort.Slice(ranked, func(a, b int) bool {
		if scores[ranked[a]] != scores[ranked[b]] {
			return scores[ranked[a]] > scores[ranked[b]]
		}
		return ranked[a] < ranked[b]
	})

	if len(ranked) > underdogPodiumSize {
		ranked = ranked[:underdogPodiumSize]
	}
	return ranked
}
