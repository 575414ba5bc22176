package models

import (
	"time"
)

// Prophecy is a fact mirror owned by the prophecy service. The badge engine
// only ever reads these rows; the sync worker keeps them current.
type Prophecy struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID    string    `gorm:"index;not null" json:"author_id"`
	RoundID     string    `gorm:"index;not null" json:"round_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	// nil = unresolved, true = fulfilled, false = not fulfilled
	Fulfilled *bool     `json:"fulfilled,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Prophecy) Resolved() bool { return p.Fulfilled != nil }

// Rating is a signed judgment in -10..+10 on one prophecy. Value 0 is the
// UI's "not yet rated" placeholder and never counts toward any statistic.
type Rating struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string    `gorm:"index;not null;uniqueIndex:idx_rating_user_prophecy" json:"user_id"`
	ProphecyID string    `gorm:"index;not null;uniqueIndex:idx_rating_user_prophecy" json:"prophecy_id"`
	Value      int       `gorm:"not null;default:0" json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}

// Round is a time-boxed batch of prophecies. ResultsPublishedAt flips non-nil
// exactly once; round badge evaluation is triggered on that event.
type Round struct {
	ID                 string     `gorm:"primaryKey;type:uuid" json:"id"`
	Name               string     `json:"name"`
	SubmissionDeadline time.Time  `gorm:"not null" json:"submission_deadline"`
	RatingDeadline     time.Time  `gorm:"not null" json:"rating_deadline"`
	ResultsPublishedAt *time.Time `gorm:"index" json:"results_published_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Round) Published() bool { return r.ResultsPublishedAt != nil }
