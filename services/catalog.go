package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"prophecy-badge-system/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tierPrefixes lists every key prefix that forms a tier group, longest first
// so "leaderboard_champion_3" resolves to the champion group and not to
// "leaderboard_". Ascending groups are the ones where a lower threshold is
// better (leaderboard position: rank 1 beats rank 3).
var tierPrefixes = []struct {
	prefix    string
	ascending bool
}{
	{"leaderboard_champion_", false},
	{"accuracy_rate_", false},
	{"rater_accuracy_", false},
	{"leaderboard_", true},
	{"creator_", false},
	{"fulfilled_", false},
	{"rater_", false},
	{"rounds_", false},
}

// TierGroupSpec is the resolved form of one tier group: every catalog badge
// sharing the prefix, with thresholds parsed once at load time.
type TierGroupSpec struct {
	Prefix     string
	Ascending  bool
	Thresholds []int // sorted ascending
	Badges     []*models.BadgeDefinition
}

// Key returns the badge key for one threshold of the group.
func (g *TierGroupSpec) Key(threshold int) string {
	return fmt.Sprintf("%s%d", g.Prefix, threshold)
}

// BadgeKind is the closed variant over how a badge awards: either one tier of
// a threshold group, or a one-shot pattern badge. Rule code never re-parses
// key strings at evaluation time.
type BadgeKind struct {
	Group     *TierGroupSpec // nil for one-shot badges
	Threshold int            // parsed numeric suffix, meaningful when Group != nil
}

func (k BadgeKind) OneShot() bool { return k.Group == nil }

// CatalogIndex is the compiled-in badge table resolved for evaluation:
// key lookups, per-badge kinds and tier groups. Built once at startup,
// read-only afterwards.
type CatalogIndex struct {
	byKey  map[string]*models.BadgeDefinition
	kinds  map[string]BadgeKind
	groups map[string]*TierGroupSpec
}

// NewCatalogIndex resolves a badge definition table into an index.
func NewCatalogIndex(defs []models.BadgeDefinition) *CatalogIndex {
	idx := &CatalogIndex{
		byKey:  make(map[string]*models.BadgeDefinition, len(defs)),
		kinds:  make(map[string]BadgeKind, len(defs)),
		groups: make(map[string]*TierGroupSpec),
	}

	for i := range defs {
		def := &defs[i]
		idx.byKey[def.Key] = def

		prefix, ascending, threshold, ok := parseTieredKey(def.Key)
		if !ok {
			idx.kinds[def.Key] = BadgeKind{}
			continue
		}
		group, exists := idx.groups[prefix]
		if !exists {
			group = &TierGroupSpec{Prefix: prefix, Ascending: ascending}
			idx.groups[prefix] = group
		}
		group.Thresholds = append(group.Thresholds, threshold)
		group.Badges = append(group.Badges, def)
		idx.kinds[def.Key] = BadgeKind{Group: group, Threshold: threshold}
	}

	// Badges and Thresholds stay index-aligned, sorted by parsed suffix.
	for _, group := range idx.groups {
		sort.Sort(&groupOrder{group})
	}
	return idx
}

type groupOrder struct{ g *TierGroupSpec }

func (o *groupOrder) Len() int           { return len(o.g.Thresholds) }
func (o *groupOrder) Less(a, b int) bool { return o.g.Thresholds[a] < o.g.Thresholds[b] }
func (o *groupOrder) Swap(a, b int) {
	o.g.Thresholds[a], o.g.Thresholds[b] = o.g.Thresholds[b], o.g.Thresholds[a]
	o.g.Badges[a], o.g.Badges[b] = o.g.Badges[b], o.g.Badges[a]
}

// parseTieredKey splits a badge key into its tier-group prefix and numeric
// suffix. Keys matching no configured prefix, or whose suffix fails to parse,
// are standalone.
func parseTieredKey(key string) (prefix string, ascending bool, threshold int, ok bool) {
	for _, p := range tierPrefixes {
		if !strings.HasPrefix(key, p.prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(key, p.prefix))
		if err != nil {
			return "", false, 0, false
		}
		return p.prefix, p.ascending, n, true
	}
	return "", false, 0, false
}

// ByKey returns the compiled-in definition for a badge key.
func (idx *CatalogIndex) ByKey(key string) (*models.BadgeDefinition, bool) {
	def, ok := idx.byKey[key]
	return def, ok
}

// Kind returns the resolved kind for a badge key.
func (idx *CatalogIndex) Kind(key string) (BadgeKind, bool) {
	kind, ok := idx.kinds[key]
	return kind, ok
}

// Group returns the tier group for a prefix, if the catalog has one.
func (idx *CatalogIndex) Group(prefix string) (*TierGroupSpec, bool) {
	g, ok := idx.groups[prefix]
	return g, ok
}

// SeedBadgeCatalog reconciles the compiled-in badge table into the store.
// Existing rows keep their ID and icon; display fields follow the table.
// Safe to run on every startup.
func SeedBadgeCatalog(db *gorm.DB, log *zap.Logger) error {
	for _, def := range models.BadgeCatalog {
		var existing models.BadgeDefinition
		err := db.Where("key = ?", def.Key).First(&existing).Error
		if err == nil {
			existing.Name = def.Name
			existing.Description = def.Description
			existing.Category = def.Category
			existing.Rarity = def.Rarity
			existing.Threshold = def.Threshold
			if err := db.Save(&existing).Error; err != nil {
				return fmt.Errorf("update badge %s: %w", def.Key, err)
			}
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("lookup badge %s: %w", def.Key, err)
		}

		row := def
		row.ID = uuid.NewString()
		// Key is unique; a concurrent seeder winning the insert is fine.
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed badge %s: %w", def.Key, err)
		}
		log.Info("seeded badge", zap.String("key", def.Key))
	}
	return nil
}
