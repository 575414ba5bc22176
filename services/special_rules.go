package services

import (
	"context"

	"prophecy-badge-system/models"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// contentBadgeByTag is the fixed mapping from classifier category tags
// (slug-normalized) to content badge keys. Unknown tags award nothing.
var contentBadgeByTag = map[string]string{
	"politics":      "content_politics",
	"sports":        "content_sports",
	"science":       "content_science",
	"technology":    "content_science",
	"economy":       "content_economy",
	"finance":       "content_economy",
	"culture":       "content_culture",
	"entertainment": "content_culture",
	"personal":      "content_personal",
}

const classifierMinConfidence = 0.5

var tagTitleCaser = cases.Title(language.English)

// CheckSecurityBadges awards the passkey badge once the user has at least one
// registered credential.
func (e *RuleEngine) CheckSecurityBadges(userID string) []AwardResult {
	var earned []AwardResult

	var user models.User
	if err := e.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		e.Log.Error("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return earned
	}
	if user.WebAuthnCredentials >= 1 {
		e.grant(userID, "security_webauthn", &earned)
	}
	return earned
}

// CheckContentBadges runs a prophecy's text through the classifier and maps
// the returned tags to content badges. The path is fully isolated: any
// failure is logged and converted into an empty result with a nil analysis,
// never an error. It is advisory, not load-bearing.
func (e *RuleEngine) CheckContentBadges(ctx context.Context, userID, title, description string) (earned []AwardResult, analysis *Classification) {
	defer func() {
		if r := recover(); r != nil {
			e.Log.Error("content badge check panicked", zap.String("user_id", userID), zap.Any("panic", r))
			earned, analysis = nil, nil
		}
	}()

	result, err := e.Classifier.Classify(ctx, title, description)
	if err != nil {
		e.Log.Warn("classifier call failed", zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}
	if result.Confidence < classifierMinConfidence {
		e.Log.Debug("classification below confidence floor",
			zap.String("user_id", userID),
			zap.Float64("confidence", result.Confidence),
		)
		return nil, result
	}

	for _, tag := range result.Categories {
		key, ok := contentBadgeByTag[slug.Make(tag)]
		if !ok {
			e.Log.Debug("no badge for category", zap.String("category", tagTitleCaser.String(tag)))
			continue
		}
		e.grant(userID, key, &earned)
	}
	return earned, result
}
