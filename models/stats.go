package models

import (
	"time"
)

// UserStats is recomputed from the fact tables on every invocation and never
// persisted, so there is no staleness to manage.
type UserStats struct {
	UserID             string  `json:"user_id"`
	ProphecyCount      int     `json:"prophecy_count"`
	FulfilledCount     int     `json:"fulfilled_count"`
	ResolvedCount      int     `json:"resolved_count"`
	AccuracyRate       float64 `json:"accuracy_rate"` // fulfilled / resolved, 0-100
	RatingsGiven       int     `json:"ratings_given"`
	RatingsOnResolved  int     `json:"ratings_on_resolved"`
	RaterAccuracy      float64 `json:"rater_accuracy"` // 0-100, 0 with no resolved-rated prophecies
	RoundsParticipated int     `json:"rounds_participated"`
	AvgRatingGiven     float64 `json:"avg_rating_given"`
	MaxRatingCount     int     `json:"max_rating_count"` // ratings of exactly +10
	MinRatingCount     int     `json:"min_rating_count"` // ratings of exactly -10
}

// RoundRating is one rating inside a round, annotated with the rater's bot
// flag so round rules can filter without another lookup.
type RoundRating struct {
	RaterID   string
	Value     int
	CreatedAt time.Time
	IsBot     bool
}

// RoundRatingInfo is the per-prophecy aggregate the round rule set works on.
// AvgRating is computed over human, non-zero ratings only.
type RoundRatingInfo struct {
	ProphecyID       string
	CreatorID        string
	CreatedAt        time.Time
	Fulfilled        *bool
	Ratings          []RoundRating
	AvgRating        float64
	HumanRatingCount int
}

func (i *RoundRatingInfo) Resolved() bool { return i.Fulfilled != nil }
