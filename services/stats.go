package services

import (
	"sort"

	"prophecy-badge-system/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StatsService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewStatsService(db *gorm.DB, log *zap.Logger) *StatsService {
	return &StatsService{DB: db, Log: log}
}

// ratedProphecy pairs one rating value with the resolution state of its
// target prophecy. Zero-value ratings are filtered out before this is built.
type ratedProphecy struct {
	Value     int
	Fulfilled *bool
}

// ComputeUserStats derives the full per-user statistics snapshot from the
// fact tables. No side effects; safe to call arbitrarily often.
func (s *StatsService) ComputeUserStats(userID string) (*models.UserStats, error) {
	var prophecies []models.Prophecy
	if err := s.DB.Where("author_id = ?", userID).Find(&prophecies).Error; err != nil {
		return nil, err
	}

	var rated []ratedProphecy
	if err := s.DB.Model(&models.Rating{}).
		Select("ratings.value, prophecies.fulfilled").
		Joins("JOIN prophecies ON prophecies.id = ratings.prophecy_id").
		Where("ratings.user_id = ? AND ratings.value <> 0", userID).
		Scan(&rated).Error; err != nil {
		return nil, err
	}

	rounds, err := s.countRoundsParticipated(userID)
	if err != nil {
		return nil, err
	}

	return composeStats(userID, prophecies, rated, rounds), nil
}

// countRoundsParticipated counts published rounds in which the user authored
// a prophecy or gave a real (non-zero) rating.
func (s *StatsService) countRoundsParticipated(userID string) (int, error) {
	var count int64
	err := s.DB.Raw(`
		SELECT COUNT(DISTINCT r.id)
		FROM rounds r
		WHERE r.results_published_at IS NOT NULL
		  AND (
			EXISTS (
				SELECT 1 FROM prophecies p
				WHERE p.round_id = r.id AND p.author_id = ?
			)
			OR EXISTS (
				SELECT 1 FROM prophecies p
				JOIN ratings rt ON rt.prophecy_id = p.id
				WHERE p.round_id = r.id AND rt.user_id = ? AND rt.value <> 0
			)
		  )`, userID, userID).Scan(&count).Error
	return int(count), err
}

// composeStats is the pure aggregation over already-loaded facts.
func composeStats(userID string, prophecies []models.Prophecy, rated []ratedProphecy, rounds int) *models.UserStats {
	stats := &models.UserStats{
		UserID:             userID,
		ProphecyCount:      len(prophecies),
		RatingsGiven:       len(rated),
		RoundsParticipated: rounds,
	}

	for _, p := range prophecies {
		if !p.Resolved() {
			continue
		}
		stats.ResolvedCount++
		if *p.Fulfilled {
			stats.FulfilledCount++
		}
	}
	if stats.ResolvedCount > 0 {
		stats.AccuracyRate = float64(stats.FulfilledCount) / float64(stats.ResolvedCount) * 100
	}

	var sum int
	for _, r := range rated {
		sum += r.Value
		switch r.Value {
		case 10:
			stats.MaxRatingCount++
		case -10:
			stats.MinRatingCount++
		}
	}
	if len(rated) > 0 {
		stats.AvgRatingGiven = float64(sum) / float64(len(rated))
	}

	stats.RatingsOnResolved, stats.RaterAccuracy = raterAccuracy(rated)
	return stats
}

// raterAccuracy scores ratings against resolved prophecies: a negative value
// predicts "will be fulfilled", a positive one "will not". With no resolved
// rated prophecies the accuracy is 0, not undefined.
func raterAccuracy(rated []ratedProphecy) (resolved int, accuracy float64) {
	correct := 0
	for _, r := range rated {
		if r.Fulfilled == nil {
			continue
		}
		resolved++
		predictedFulfilled := r.Value < 0
		if predictedFulfilled == *r.Fulfilled {
			correct++
		}
	}
	if resolved == 0 {
		return 0, 0
	}
	return resolved, float64(correct) / float64(resolved) * 100
}

// LoadRoundRatingInfo loads every prophecy of a round with its ratings and
// the rater bot flags, and computes each prophecy's human-only average.
func (s *StatsService) LoadRoundRatingInfo(roundID string) ([]models.RoundRatingInfo, error) {
	var prophecies []models.Prophecy
	if err := s.DB.Where("round_id = ?", roundID).
		Order("created_at ASC").
		Find(&prophecies).Error; err != nil {
		return nil, err
	}
	if len(prophecies) == 0 {
		return nil, nil
	}

	ids := make([]string, len(prophecies))
	for i, p := range prophecies {
		ids[i] = p.ID
	}

	var ratings []models.Rating
	if err := s.DB.Where("prophecy_id IN ?", ids).Find(&ratings).Error; err != nil {
		return nil, err
	}

	botByUser, err := s.botFlags(ratings)
	if err != nil {
		return nil, err
	}

	byProphecy := make(map[string][]models.RoundRating, len(prophecies))
	for _, r := range ratings {
		byProphecy[r.ProphecyID] = append(byProphecy[r.ProphecyID], models.RoundRating{
			RaterID:   r.UserID,
			Value:     r.Value,
			CreatedAt: r.CreatedAt,
			IsBot:     botByUser[r.UserID],
		})
	}

	infos := make([]models.RoundRatingInfo, 0, len(prophecies))
	for _, p := range prophecies {
		rs := byProphecy[p.ID]
		sort.Slice(rs, func(a, b int) bool { return rs[a].CreatedAt.Before(rs[b].CreatedAt) })
		avg, humans := humanAverage(rs)
		infos = append(infos, models.RoundRatingInfo{
			ProphecyID:       p.ID,
			CreatorID:        p.AuthorID,
			CreatedAt:        p.CreatedAt,
			Fulfilled:        p.Fulfilled,
			Ratings:          rs,
			AvgRating:        avg,
			HumanRatingCount: humans,
		})
	}
	return infos, nil
}

func (s *StatsService) botFlags(ratings []models.Rating) (map[string]bool, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, r := range ratings {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	flags := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return flags, nil
	}
	var users []models.User
	if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		flags[u.ID] = u.IsBot
	}
	return flags, nil
}

// humanAverage averages the real judgments on one prophecy: zero values are
// the "unrated" placeholder and bot ratings never count toward the average.
func humanAverage(ratings []models.RoundRating) (avg float64, count int) {
	sum := 0
	for _, r := range ratings {
		if r.Value == 0 || r.IsBot {
			continue
		}
		sum += r.Value
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(sum) / float64(count), count
}
