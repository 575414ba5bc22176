package workers

import (
	"context"

	"prophecy-badge-system/services"

	"go.uber.org/zap"
)

// Trigger kinds the award worker consumes. Each maps to exactly one rule-set
// entry point.
const (
	TriggerProphecyCreated      = "prophecy_created"
	TriggerRatingCreated        = "rating_created"
	TriggerRoundPublished       = "round_published"
	TriggerCredentialRegistered = "credential_registered"
	TriggerProphecyClassified   = "prophecy_classified"
)

// Trigger is one badge-relevant fact announced by the prophecy service.
type Trigger struct {
	Kind            string
	UserID          string
	RoundID         string
	Leaderboard     []string
	ConsecutiveWins int
	Title           string
	Description     string
}

// AwardWorker consumes triggers off the request path. Badge evaluation is
// advisory: a full queue or a failing evaluation is logged and dropped, never
// retried; the recompute sweep and the next trigger catch anything missed.
type AwardWorker struct {
	engine *services.RuleEngine
	queue  chan Trigger
	log    *zap.Logger
}

func NewAwardWorker(engine *services.RuleEngine, queueSize int, log *zap.Logger) *AwardWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &AwardWorker{
		engine: engine,
		queue:  make(chan Trigger, queueSize),
		log:    log,
	}
}

// Enqueue hands a trigger to the worker without blocking the caller. Returns
// false when the queue is full and the trigger was dropped.
func (w *AwardWorker) Enqueue(t Trigger) bool {
	select {
	case w.queue <- t:
		return true
	default:
		w.log.Warn("award queue full, trigger dropped",
			zap.String("kind", t.Kind),
			zap.String("user_id", t.UserID),
		)
		return false
	}
}

// Run consumes the queue until the context is cancelled.
func (w *AwardWorker) Run(ctx context.Context) {
	w.log.Info("award worker started")
	for {
		select {
		case t := <-w.queue:
			w.handle(ctx, t)
		case <-ctx.Done():
			w.log.Info("award worker stopped")
			return
		}
	}
}

func (w *AwardWorker) handle(ctx context.Context, t Trigger) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("trigger evaluation panicked",
				zap.String("kind", t.Kind),
				zap.Any("panic", r),
			)
		}
	}()

	var earned []services.AwardResult
	switch t.Kind {
	case TriggerProphecyCreated:
		earned = w.engine.CheckCumulativeBadges(t.UserID)
	case TriggerRatingCreated:
		earned = w.engine.CheckCumulativeBadges(t.UserID)
		earned = append(earned, w.engine.CheckSocialBadges(t.UserID)...)
	case TriggerRoundPublished:
		earned = w.engine.EvaluateRoundBadges(t.RoundID, t.Leaderboard)
		earned = append(earned, w.engine.CheckLeaderboardBadges(t.Leaderboard, t.ConsecutiveWins)...)
	case TriggerCredentialRegistered:
		earned = w.engine.CheckSecurityBadges(t.UserID)
	case TriggerProphecyClassified:
		earned, _ = w.engine.CheckContentBadges(ctx, t.UserID, t.Title, t.Description)
	default:
		w.log.Warn("unknown trigger kind", zap.String("kind", t.Kind))
		return
	}

	if len(earned) > 0 {
		w.log.Info("trigger granted badges",
			zap.String("kind", t.Kind),
			zap.Int("count", len(earned)),
		)
	}
}
