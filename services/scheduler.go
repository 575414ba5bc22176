package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartRecomputeScheduler runs a periodic catch-up sweep: cumulative and
// social rules are re-evaluated for every user active in the last window.
// The engine is idempotent, so the sweep only ever fills in badges a crashed
// or dropped trigger left ungranted.
func (e *RuleEngine) StartRecomputeScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			e.recomputeRecentlyActive(2 * interval)
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}

// recomputeRecentlyActive re-runs the per-user rule sets for everyone who
// created or rated a prophecy within the window.
func (e *RuleEngine) recomputeRecentlyActive(window time.Duration) {
	since := time.Now().Add(-window)

	var userIDs []string
	err := e.DB.Raw(`
		SELECT author_id AS user_id FROM prophecies WHERE created_at >= ?
		UNION
		SELECT user_id FROM ratings WHERE created_at >= ? AND value <> 0`,
		since, since).Scan(&userIDs).Error
	if err != nil {
		e.Log.Error("recompute sweep query failed", zap.Error(err))
		return
	}

	for _, userID := range userIDs {
		newBadges := e.CheckCumulativeBadges(userID)
		newBadges = append(newBadges, e.CheckSocialBadges(userID)...)
		if len(newBadges) > 0 {
			e.Log.Info("recompute sweep granted badges",
				zap.String("user_id", userID),
				zap.Int("count", len(newBadges)),
			)
		}
	}
}
