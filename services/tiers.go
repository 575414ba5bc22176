package services

import (
	"sort"
	"time"

	"prophecy-badge-system/models"
)

// EarnedBadge is one badge a user holds, definition plus grant time.
type EarnedBadge struct {
	models.BadgeDefinition
	EarnedAt time.Time `json:"earned_at"`
}

// BadgeGroup is the collapsed view of one tier group: only the best earned
// tier is surfaced, together with the better tiers the user could still
// reach, limited to tiers somebody has actually earned, so undiscovered
// badges are not spoiled.
type BadgeGroup struct {
	Prefix              string                   `json:"prefix"`
	HighestEarned       EarnedBadge              `json:"highest_earned"`
	KnownUnearnedBadges []models.BadgeDefinition `json:"known_unearned_badges"`
}

// BadgeSummary is the presentation-facing badge view for one user.
type BadgeSummary struct {
	Groups     []BadgeGroup  `json:"groups"`
	Standalone []EarnedBadge `json:"standalone"`
}

// GroupUserBadges collapses a user's earned badges into the tier-group view.
// Pure function of its inputs: the user's badges, the resolved catalog, and
// the set of badge keys ever awarded to anyone.
func GroupUserBadges(catalog *CatalogIndex, earned []EarnedBadge, knownAwarded map[string]bool) BadgeSummary {
	summary := BadgeSummary{
		Groups:     []BadgeGroup{},
		Standalone: []EarnedBadge{},
	}

	earnedKeys := make(map[string]bool, len(earned))
	for _, b := range earned {
		earnedKeys[b.Key] = true
	}

	type bestTier struct {
		badge     EarnedBadge
		threshold int
	}
	bestByPrefix := make(map[string]bestTier)
	for _, b := range earned {
		kind, ok := catalog.Kind(b.Key)
		if !ok || kind.OneShot() {
			summary.Standalone = append(summary.Standalone, b)
			continue
		}
		group := kind.Group
		best, has := bestByPrefix[group.Prefix]
		if !has || betterTier(group, kind.Threshold, best.threshold) {
			bestByPrefix[group.Prefix] = bestTier{badge: b, threshold: kind.Threshold}
		}
	}

	prefixes := make([]string, 0, len(bestByPrefix))
	for p := range bestByPrefix {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		best := bestByPrefix[prefix]
		group, _ := catalog.Group(prefix)

		var unearned []models.BadgeDefinition
		var unearnedTiers []int
		for i, def := range group.Badges {
			if earnedKeys[def.Key] || !knownAwarded[def.Key] {
				continue
			}
			if betterTier(group, group.Thresholds[i], best.threshold) {
				unearned = append(unearned, *def)
				unearnedTiers = append(unearnedTiers, group.Thresholds[i])
			}
		}
		// Closest reachable tier first.
		sort.Sort(&tierOrder{group: group, defs: unearned, tiers: unearnedTiers})

		summary.Groups = append(summary.Groups, BadgeGroup{
			Prefix:              prefix,
			HighestEarned:       best.badge,
			KnownUnearnedBadges: unearned,
		})
	}

	sort.Slice(summary.Standalone, func(a, b int) bool {
		return summary.Standalone[a].EarnedAt.After(summary.Standalone[b].EarnedAt)
	})
	return summary
}

// tierOrder sorts unearned tiers so the first element is the next one the
// user would reach.
type tierOrder struct {
	group *TierGroupSpec
	defs  []models.BadgeDefinition
	tiers []int
}

func (o *tierOrder) Len() int           { return len(o.tiers) }
func (o *tierOrder) Less(a, b int) bool { return betterTier(o.group, o.tiers[b], o.tiers[a]) }
func (o *tierOrder) Swap(a, b int) {
	o.tiers[a], o.tiers[b] = o.tiers[b], o.tiers[a]
	o.defs[a], o.defs[b] = o.defs[b], o.defs[a]
}

// betterTier reports whether threshold a beats threshold b within the group:
// higher wins for count-style groups, lower wins for position-style ones.
func betterTier(group *TierGroupSpec, a, b int) bool {
	if group.Ascending {
		return a < b
	}
	return a > b
}

// GetUserBadgeSummary loads everything the grouping transform needs and runs
// it. Read-only.
func (s *BadgeService) GetUserBadgeSummary(userID string) (BadgeSummary, error) {
	userBadges, err := s.GetUserBadges(userID)
	if err != nil {
		return BadgeSummary{}, err
	}
	known, err := s.KnownAwardedKeys()
	if err != nil {
		return BadgeSummary{}, err
	}

	earned := make([]EarnedBadge, 0, len(userBadges))
	for _, ub := range userBadges {
		earned = append(earned, EarnedBadge{BadgeDefinition: ub.Badge, EarnedAt: ub.EarnedAt})
	}
	return GroupUserBadges(s.Catalog, earned, known), nil
}
