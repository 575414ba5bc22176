package services

import (
	"errors"
	"fmt"

	"prophecy-badge-system/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	DB      *gorm.DB
	Catalog *CatalogIndex
	Log     *zap.Logger
}

func NewBadgeService(db *gorm.DB, catalog *CatalogIndex, log *zap.Logger) *BadgeService {
	return &BadgeService{DB: db, Catalog: catalog, Log: log}
}

// AwardResult is what one award attempt produced. IsNew is false when the
// user already held the badge.
type AwardResult struct {
	UserBadge models.UserBadge       `json:"user_badge"`
	Badge     models.BadgeDefinition `json:"badge"`
	IsNew     bool                   `json:"is_new"`
}

// Award grants a badge to a user unless already granted. It returns nil (and
// no error) when the key is not in the catalog or the catalog row has not
// been seeded yet; callers treat that as a no-op, never a failure.
//
// Concurrent awards for the same (user, badge) are resolved by the unique
// index on user_badges: the insert ignores the conflict and the loser
// re-reads the winner's row instead of propagating an error.
func (s *BadgeService) Award(userID, badgeKey string) (*AwardResult, error) {
	if _, ok := s.Catalog.ByKey(badgeKey); !ok {
		s.Log.Warn("award for unknown badge key", zap.String("key", badgeKey))
		return nil, nil
	}

	var def models.BadgeDefinition
	err := s.DB.Where("key = ?", badgeKey).First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.Log.Warn("badge not seeded yet", zap.String("key", badgeKey))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup badge %s: %w", badgeKey, err)
	}

	var existing models.UserBadge
	err = s.DB.Where("user_id = ? AND badge_id = ?", userID, def.ID).First(&existing).Error
	if err == nil {
		return &AwardResult{UserBadge: existing, Badge: def, IsNew: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user badge %s: %w", badgeKey, err)
	}

	userBadge := models.UserBadge{
		ID:      uuid.NewString(),
		UserID:  userID,
		BadgeID: def.ID,
	}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&userBadge)
	if res.Error != nil {
		return nil, fmt.Errorf("create user badge %s: %w", badgeKey, res.Error)
	}
	if res.RowsAffected == 0 {
		// Someone else won the race between our read and our insert.
		if err := s.DB.Where("user_id = ? AND badge_id = ?", userID, def.ID).
			First(&existing).Error; err != nil {
			return nil, fmt.Errorf("re-read user badge %s: %w", badgeKey, err)
		}
		return &AwardResult{UserBadge: existing, Badge: def, IsNew: false}, nil
	}

	s.Log.Info("badge awarded",
		zap.String("user_id", userID),
		zap.String("key", badgeKey),
	)
	return &AwardResult{UserBadge: userBadge, Badge: def, IsNew: true}, nil
}

// GetUserBadges returns every badge the user holds, definitions included,
// newest first.
func (s *BadgeService) GetUserBadges(userID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.DB.Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&badges).Error
	return badges, err
}

// KnownAwardedKeys returns the set of badge keys any user has ever earned.
// Tier grouping uses it to avoid advertising tiers nobody has reached.
func (s *BadgeService) KnownAwardedKeys() (map[string]bool, error) {
	var keys []string
	err := s.DB.Model(&models.UserBadge{}).
		Distinct("badge_definitions.key").
		Joins("JOIN badge_definitions ON badge_definitions.id = user_badges.badge_id").
		Pluck("badge_definitions.key", &keys).Error
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	return known, nil
}
