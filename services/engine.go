package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EngineConfig carries the knobs the rule sets need from the environment.
type EngineConfig struct {
	// Usernames of the two reference bot accounts used by round rules.
	SkilledBotUsername  string
	BaselineBotUsername string
}

// RuleEngine fans a trigger out to the rule sets. Every rule goes through the
// award primitive, so re-running any entry point is always safe; a single
// failing rule is logged and never blocks its siblings.
type RuleEngine struct {
	DB         *gorm.DB
	Badges     *BadgeService
	Stats      *StatsService
	Catalog    *CatalogIndex
	Classifier *ClassifierClient
	Config     EngineConfig
	Log        *zap.Logger
}

func NewRuleEngine(
	db *gorm.DB,
	badges *BadgeService,
	stats *StatsService,
	catalog *CatalogIndex,
	classifier *ClassifierClient,
	cfg EngineConfig,
	log *zap.Logger,
) *RuleEngine {
	return &RuleEngine{
		DB:         db,
		Badges:     badges,
		Stats:      stats,
		Catalog:    catalog,
		Classifier: classifier,
		Config:     cfg,
		Log:        log,
	}
}

// grant runs one award attempt, appending only newly earned badges to out.
// Errors are logged at the point of occurrence and swallowed so sibling
// rules keep running.
func (e *RuleEngine) grant(userID, badgeKey string, out *[]AwardResult) {
	res, err := e.Badges.Award(userID, badgeKey)
	if err != nil {
		e.Log.Error("badge award failed",
			zap.String("user_id", userID),
			zap.String("key", badgeKey),
			zap.Error(err),
		)
		return
	}
	if res != nil && res.IsNew {
		*out = append(*out, *res)
	}
}

// grantGroupThresholds awards every badge of a tier group whose threshold the
// statistic meets. Intentionally not exclusive: crossing the top tier also
// re-confirms all lower ones, each independently idempotent.
func (e *RuleEngine) grantGroupThresholds(userID, prefix string, value int, out *[]AwardResult) {
	group, ok := e.Catalog.Group(prefix)
	if !ok {
		e.Log.Warn("no tier group in catalog", zap.String("prefix", prefix))
		return
	}
	for _, threshold := range group.Thresholds {
		if value >= threshold {
			e.grant(userID, group.Key(threshold), out)
		}
	}
}
