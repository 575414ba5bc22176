package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"prophecy-badge-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a per-test in-memory database, migrates the schema and
// seeds the compiled-in catalog.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.BadgeDefinition{},
		&models.UserBadge{},
		&models.User{},
		&models.Prophecy{},
		&models.Rating{},
		&models.Round{},
	))
	require.NoError(t, SeedBadgeCatalog(db, zap.NewNop()))
	return db
}

func newTestEngine(t *testing.T) (*RuleEngine, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	catalog := NewCatalogIndex(models.BadgeCatalog)
	log := zap.NewNop()
	badges := NewBadgeService(db, catalog, log)
	stats := NewStatsService(db, log)
	engine := NewRuleEngine(db, badges, stats, catalog, nil, EngineConfig{
		SkilledBotUsername:  "prophet-bot",
		BaselineBotUsername: "random-bot",
	}, log)
	return engine, db
}

func seedUser(t *testing.T, db *gorm.DB, username string, isBot bool) string {
	t.Helper()
	u := models.User{ID: uuid.NewString(), Username: username, IsBot: isBot}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func seedRound(t *testing.T, db *gorm.DB, publishedAt *time.Time) string {
	t.Helper()
	now := time.Now()
	r := models.Round{
		ID:                 uuid.NewString(),
		SubmissionDeadline: now.Add(-48 * time.Hour),
		RatingDeadline:     now.Add(-24 * time.Hour),
		ResultsPublishedAt: publishedAt,
	}
	require.NoError(t, db.Create(&r).Error)
	return r.ID
}

func seedProphecy(t *testing.T, db *gorm.DB, authorID, roundID string, fulfilled *bool, createdAt time.Time) string {
	t.Helper()
	p := models.Prophecy{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		RoundID:   roundID,
		Title:     "prophecy",
		Fulfilled: fulfilled,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}

func seedRating(t *testing.T, db *gorm.DB, userID, prophecyID string, value int, createdAt time.Time) {
	t.Helper()
	r := models.Rating{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProphecyID: prophecyID,
		Value:      value,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&r).Error)
}

func earnedKeys(results []AwardResult) []string {
	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.Badge.Key)
	}
	return keys
}

func holdsBadge(t *testing.T, db *gorm.DB, userID, key string) bool {
	t.Helper()
	var count int64
	err := db.Model(&models.UserBadge{}).
		Joins("JOIN badge_definitions ON badge_definitions.id = user_badges.badge_id").
		Where("user_badges.user_id = ? AND badge_definitions.key = ?", userID, key).
		Count(&count).Error
	require.NoError(t, err)
	return count > 0
}

func boolPtr(v bool) *bool { return &v }

func timePtr(v time.Time) *time.Time { return &v }
