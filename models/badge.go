package models

import (
	"time"
)

type BadgeCategory string

const (
	BadgeCategoryCreator     BadgeCategory = "CREATOR"
	BadgeCategoryAccuracy    BadgeCategory = "ACCURACY"
	BadgeCategoryRater       BadgeCategory = "RATER"
	BadgeCategoryRounds      BadgeCategory = "ROUNDS"
	BadgeCategorySocial      BadgeCategory = "SOCIAL"
	BadgeCategoryLeaderboard BadgeCategory = "LEADERBOARD"
	BadgeCategorySpecial     BadgeCategory = "SPECIAL"
	BadgeCategoryHidden      BadgeCategory = "HIDDEN"
	BadgeCategoryContent     BadgeCategory = "CONTENT"
	BadgeCategorySecurity    BadgeCategory = "SECURITY"
)

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// BadgeDefinition: static catalog entry (seeded from the compiled-in table)
type BadgeDefinition struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	Key         string        `gorm:"uniqueIndex;not null" json:"key"` // e.g., "creator_15", "special_unicorn"
	Name        string        `gorm:"not null" json:"name"`
	Description string        `json:"description"`
	IconURL     string        `gorm:"type:text" json:"icon_url"`
	Category    BadgeCategory `gorm:"type:varchar(16);not null" json:"category"`
	Rarity      BadgeRarity   `gorm:"type:varchar(16);default:'common'" json:"rarity"`
	Threshold   *int          `json:"threshold,omitempty"` // nil for one-shot pattern badges
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance. One per (user, badge), ever: insert-only,
// never updated or deleted. The composite unique index is the race authority
// for concurrent award attempts.
type UserBadge struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string    `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  string    `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`

	Badge BadgeDefinition `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func intPtr(v int) *int { return &v }

// BadgeCatalog is the full static badge table, diffed into the DB by
// services.SeedBadgeCatalog on startup.
var BadgeCatalog = []BadgeDefinition{
	// Prophecy creation milestones
	{Key: "creator_1", Name: "First Prophecy", Description: "Submitted your first prophecy", Category: BadgeCategoryCreator, Rarity: RarityCommon, Threshold: intPtr(1)},
	{Key: "creator_5", Name: "Apprentice Oracle", Description: "Submitted 5 prophecies", Category: BadgeCategoryCreator, Rarity: RarityCommon, Threshold: intPtr(5)},
	{Key: "creator_15", Name: "Seasoned Oracle", Description: "Submitted 15 prophecies", Category: BadgeCategoryCreator, Rarity: RarityRare, Threshold: intPtr(15)},
	{Key: "creator_30", Name: "Prolific Oracle", Description: "Submitted 30 prophecies", Category: BadgeCategoryCreator, Rarity: RarityRare, Threshold: intPtr(30)},
	{Key: "creator_50", Name: "Grand Oracle", Description: "Submitted 50 prophecies", Category: BadgeCategoryCreator, Rarity: RarityEpic, Threshold: intPtr(50)},
	{Key: "creator_100", Name: "Voice of Fate", Description: "Submitted 100 prophecies", Category: BadgeCategoryCreator, Rarity: RarityLegendary, Threshold: intPtr(100)},

	// Fulfilled prophecy milestones
	{Key: "fulfilled_1", Name: "It Came True", Description: "First fulfilled prophecy", Category: BadgeCategoryAccuracy, Rarity: RarityCommon, Threshold: intPtr(1)},
	{Key: "fulfilled_5", Name: "Pattern Spotter", Description: "5 fulfilled prophecies", Category: BadgeCategoryAccuracy, Rarity: RarityCommon, Threshold: intPtr(5)},
	{Key: "fulfilled_15", Name: "Clairvoyant", Description: "15 fulfilled prophecies", Category: BadgeCategoryAccuracy, Rarity: RarityRare, Threshold: intPtr(15)},
	{Key: "fulfilled_30", Name: "True Seer", Description: "30 fulfilled prophecies", Category: BadgeCategoryAccuracy, Rarity: RarityEpic, Threshold: intPtr(30)},
	{Key: "fulfilled_50", Name: "Prophet", Description: "50 fulfilled prophecies", Category: BadgeCategoryAccuracy, Rarity: RarityLegendary, Threshold: intPtr(50)},

	// Lifetime creator accuracy (gated at 10 prophecies)
	{Key: "accuracy_rate_50", Name: "Coin Flipper", Description: "50% of your resolved prophecies came true", Category: BadgeCategoryAccuracy, Rarity: RarityRare, Threshold: intPtr(50)},
	{Key: "accuracy_rate_70", Name: "Weathervane", Description: "70% of your resolved prophecies came true", Category: BadgeCategoryAccuracy, Rarity: RarityEpic, Threshold: intPtr(70)},
	{Key: "accuracy_rate_90", Name: "Cassandra", Description: "90% of your resolved prophecies came true", Category: BadgeCategoryAccuracy, Rarity: RarityLegendary, Threshold: intPtr(90)},

	// Ratings-given milestones
	{Key: "rater_10", Name: "Critic", Description: "Rated 10 prophecies", Category: BadgeCategoryRater, Rarity: RarityCommon, Threshold: intPtr(10)},
	{Key: "rater_50", Name: "Juror", Description: "Rated 50 prophecies", Category: BadgeCategoryRater, Rarity: RarityCommon, Threshold: intPtr(50)},
	{Key: "rater_100", Name: "Adjudicator", Description: "Rated 100 prophecies", Category: BadgeCategoryRater, Rarity: RarityRare, Threshold: intPtr(100)},
	{Key: "rater_250", Name: "Chief Justice", Description: "Rated 250 prophecies", Category: BadgeCategoryRater, Rarity: RarityEpic, Threshold: intPtr(250)},
	{Key: "rater_500", Name: "The Tribunal", Description: "Rated 500 prophecies", Category: BadgeCategoryRater, Rarity: RarityLegendary, Threshold: intPtr(500)},

	// Rater accuracy (gated at 20 ratings on resolved prophecies)
	{Key: "rater_accuracy_60", Name: "Good Nose", Description: "60% of your rated prophecies resolved the way you judged", Category: BadgeCategoryRater, Rarity: RarityRare, Threshold: intPtr(60)},
	{Key: "rater_accuracy_75", Name: "Sharp Eye", Description: "75% of your rated prophecies resolved the way you judged", Category: BadgeCategoryRater, Rarity: RarityEpic, Threshold: intPtr(75)},
	{Key: "rater_accuracy_90", Name: "Lie Detector", Description: "90% of your rated prophecies resolved the way you judged", Category: BadgeCategoryRater, Rarity: RarityLegendary, Threshold: intPtr(90)},

	// Round participation milestones
	{Key: "rounds_1", Name: "First Round", Description: "Took part in your first round", Category: BadgeCategoryRounds, Rarity: RarityCommon, Threshold: intPtr(1)},
	{Key: "rounds_5", Name: "Regular", Description: "Took part in 5 rounds", Category: BadgeCategoryRounds, Rarity: RarityCommon, Threshold: intPtr(5)},
	{Key: "rounds_10", Name: "Veteran", Description: "Took part in 10 rounds", Category: BadgeCategoryRounds, Rarity: RarityRare, Threshold: intPtr(10)},
	{Key: "rounds_25", Name: "Fixture", Description: "Took part in 25 rounds", Category: BadgeCategoryRounds, Rarity: RarityEpic, Threshold: intPtr(25)},

	// Behavioral / social pattern badges
	{Key: "social_friendly", Name: "True Believer", Description: "You tend to believe prophecies will come true", Category: BadgeCategorySocial, Rarity: RarityRare},
	{Key: "social_skeptic", Name: "Doubting Thomas", Description: "You tend to doubt prophecies", Category: BadgeCategorySocial, Rarity: RarityRare},
	{Key: "social_neutral", Name: "Switzerland", Description: "You sit firmly on the fence", Category: BadgeCategorySocial, Rarity: RarityRare},
	{Key: "social_generous", Name: "Generous", Description: "Handed out ten +10 ratings", Category: BadgeCategorySocial, Rarity: RarityRare},
	{Key: "social_ruthless", Name: "Ruthless", Description: "Handed out ten -10 ratings", Category: BadgeCategorySocial, Rarity: RarityRare},

	// Leaderboard position badges (ascending tier group: rank 1 beats rank 3)
	{Key: "leaderboard_1", Name: "Round Winner", Description: "Finished a round in first place", Category: BadgeCategoryLeaderboard, Rarity: RarityEpic, Threshold: intPtr(1)},
	{Key: "leaderboard_2", Name: "Runner-up", Description: "Finished a round in second place", Category: BadgeCategoryLeaderboard, Rarity: RarityRare, Threshold: intPtr(2)},
	{Key: "leaderboard_3", Name: "Podium Finish", Description: "Finished a round in third place", Category: BadgeCategoryLeaderboard, Rarity: RarityRare, Threshold: intPtr(3)},
	{Key: "leaderboard_champion_3", Name: "Dynasty", Description: "Won 3 rounds in a row", Category: BadgeCategoryLeaderboard, Rarity: RarityEpic, Threshold: intPtr(3)},
	{Key: "leaderboard_champion_5", Name: "Unstoppable", Description: "Won 5 rounds in a row", Category: BadgeCategoryLeaderboard, Rarity: RarityLegendary, Threshold: intPtr(5)},

	// Round-outcome pattern badges
	{Key: "special_unicorn", Name: "Unicorn", Description: "A prophecy nobody believed in came true", Category: BadgeCategorySpecial, Rarity: RarityLegendary},
	{Key: "special_party_crasher", Name: "Party Crasher", Description: "A prophecy everybody doubted indeed fell flat", Category: BadgeCategorySpecial, Rarity: RarityRare},
	{Key: "special_chaos_agent", Name: "Chaos Agent", Description: "Fulfilled, failed and bitterly contested prophecies in one round", Category: BadgeCategorySpecial, Rarity: RarityEpic},
	{Key: "special_speedrunner", Name: "Speedrunner", Description: "Rated an entire round in under ten minutes", Category: BadgeCategorySpecial, Rarity: RarityRare},
	{Key: "special_against_the_stream", Name: "Against the Stream", Description: "Disagreed with the crowd and was right", Category: BadgeCategorySpecial, Rarity: RarityEpic},
	{Key: "special_morning_glory", Name: "Morning Glory", Description: "Rated a prophecy within a day of its creation", Category: BadgeCategorySpecial, Rarity: RarityCommon},
	{Key: "special_underdog", Name: "Underdog", Description: "Won a round after missing the podium twice", Category: BadgeCategorySpecial, Rarity: RarityLegendary},

	// Hidden badges (not advertised in the UI)
	{Key: "hidden_bot_beater", Name: "Bot Beater", Description: "Out-predicted the house bot in a round", Category: BadgeCategoryHidden, Rarity: RarityEpic},
	{Key: "hidden_worse_than_random", Name: "Worse Than Random", Description: "A coin would have judged this round better", Category: BadgeCategoryHidden, Rarity: RarityRare},

	// Content badges (awarded by the AI classifier)
	{Key: "content_politics", Name: "Political Analyst", Description: "Prophesied about politics", Category: BadgeCategoryContent, Rarity: RarityCommon},
	{Key: "content_sports", Name: "Sports Commentator", Description: "Prophesied about sports", Category: BadgeCategoryContent, Rarity: RarityCommon},
	{Key: "content_science", Name: "Lab Coat", Description: "Prophesied about science or technology", Category: BadgeCategoryContent, Rarity: RarityCommon},
	{Key: "content_economy", Name: "Market Watcher", Description: "Prophesied about the economy", Category: BadgeCategoryContent, Rarity: RarityCommon},
	{Key: "content_culture", Name: "Culture Vulture", Description: "Prophesied about culture and entertainment", Category: BadgeCategoryContent, Rarity: RarityCommon},
	{Key: "content_personal", Name: "Navel Gazer", Description: "Prophesied about your own life", Category: BadgeCategoryContent, Rarity: RarityCommon},

	// Security badges
	{Key: "security_webauthn", Name: "Locked Down", Description: "Registered a passkey", Category: BadgeCategorySecurity, Rarity: RarityCommon},
}
