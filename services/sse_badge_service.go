package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prophecy-badge-system/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StreamUserBadgesSSE streams newly earned badges for the authenticated user
// as server-sent events. The engine only ever inserts user_badges rows, so a
// created-at cursor is enough to pick up new grants.
func (s *BadgeService) StreamUserBadgesSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var cursor time.Time

		var latest models.UserBadge
		err := s.DB.Where("user_id = ?", userID).
			Order("earned_at DESC").
			First(&latest).Error
		if err == nil {
			cursor = latest.EarnedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.Log.Error("badge stream init failed", zap.String("user_id", userID), zap.Error(err))
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var fresh []models.UserBadge
				err := s.DB.Preload("Badge").
					Where("user_id = ? AND earned_at > ?", userID, cursor).
					Order("earned_at ASC").
					Find(&fresh).Error
				if err != nil {
					s.Log.Error("badge stream query failed", zap.String("user_id", userID), zap.Error(err))
					continue
				}
				if len(fresh) == 0 {
					continue
				}

				cursor = fresh[len(fresh)-1].EarnedAt

				for _, ub := range fresh {
					payload, _ := json.Marshal(ub)
					fmt.Fprintf(w, "event: badge\ndata: %s\n\n", payload)
				}

				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}
