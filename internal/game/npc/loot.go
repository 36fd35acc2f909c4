package npc

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/inkquest/internal/game/dice"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
)

// CurrencyDrop defines the ink drops a kill yields before the tier multiplier:
// PerLevel times monster level plus a Bonus dice roll.
type CurrencyDrop struct {
	PerLevel float64 `yaml:"per_level"`
	Bonus    string  `yaml:"bonus"`
}

// RarityDrop is the base per-kill chance of an item of Rarity dropping and
// the minimum monster level at which items of that rarity may drop.
type RarityDrop struct {
	Rarity   inventory.Rarity `yaml:"rarity"`
	Chance   float64          `yaml:"chance"`
	MinLevel int              `yaml:"min_level"`
}

// LootTable is the reward tuning shared by every monster.
type LootTable struct {
	Currency   CurrencyDrop `yaml:"currency"`
	LuckFactor float64      `yaml:"luck_factor"`
	Rarities   []RarityDrop `yaml:"rarities"`
}

// Validate checks that the loot table satisfies its invariants.
func (lt LootTable) Validate() error {
	if lt.Currency.PerLevel < 0 {
		return fmt.Errorf("loot table: currency per_level must be >= 0, got %v", lt.Currency.PerLevel)
	}
	if _, err := dice.Parse(lt.Currency.Bonus); err != nil {
		return fmt.Errorf("loot table: currency bonus: %w", err)
	}
	if lt.LuckFactor < 0 {
		return fmt.Errorf("loot table: luck_factor must be >= 0, got %v", lt.LuckFactor)
	}
	seen := make(map[inventory.Rarity]bool)
	for i, r := range lt.Rarities {
		if seen[r.Rarity] {
			return fmt.Errorf("loot table: rarity %s listed twice", r.Rarity)
		}
		seen[r.Rarity] = true
		if r.Chance < 0 || r.Chance > 1 {
			return fmt.Errorf("loot table: rarities[%d] chance must be in [0, 1], got %v", i, r.Chance)
		}
		if r.MinLevel < 1 {
			return fmt.Errorf("loot table: rarities[%d] min_level must be >= 1, got %d", i, r.MinLevel)
		}
	}
	return nil
}

// LoadLootTable parses and validates a loot table document.
func LoadLootTable(data []byte) (LootTable, error) {
	var lt LootTable
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lt); err != nil {
		return LootTable{}, fmt.Errorf("npc: parsing loot table: %w", err)
	}
	if err := lt.Validate(); err != nil {
		return LootTable{}, fmt.Errorf("npc: %w", err)
	}
	sort.Slice(lt.Rarities, func(i, j int) bool { return lt.Rarities[i].Rarity > lt.Rarities[j].Rarity })
	return lt, nil
}

// Rewards is what a victory yields. Loot is nil when nothing dropped.
type Rewards struct {
	Currency int                 `json:"currency"`
	Loot     *inventory.Instance `json:"loot,omitempty"`
}

// RewardGenerator rolls currency and loot for defeated monsters.
type RewardGenerator struct {
	table  LootTable
	bonus  dice.Expression
	items  *inventory.Registry
	roller *dice.Roller
	logger *zap.Logger
}

// NewRewardGenerator creates a RewardGenerator.
//
// Precondition: table must have passed Validate; items and roller must be non-nil.
func NewRewardGenerator(table LootTable, items *inventory.Registry, roller *dice.Roller, logger *zap.Logger) *RewardGenerator {
	if items == nil || roller == nil {
		panic("npc: NewRewardGenerator precondition violated: items and roller must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sorted := make([]RarityDrop, len(table.Rarities))
	copy(sorted, table.Rarities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rarity > sorted[j].Rarity })
	table.Rarities = sorted
	return &RewardGenerator{
		table:  table,
		bonus:  dice.MustParse(table.Currency.Bonus),
		items:  items,
		roller: roller,
		logger: logger,
	}
}

// Currency rolls the ink drops for a kill.
//
// Postcondition: result >= 0.
func (g *RewardGenerator) Currency(level int, tierMultiplier float64) int {
	base := math.Floor(float64(level)*g.table.Currency.PerLevel) + float64(g.roller.Roll(g.bonus).Total())
	return max(0, int(math.Floor(base*tierMultiplier)))
}

// DropChance returns the effective chance of rarity dropping.
func (g *RewardGenerator) DropChance(base, luck, tierMultiplier float64) float64 {
	return base * (1 + luck*g.table.LuckFactor) * tierMultiplier
}

// Loot rolls each rarity from rarest to most common; the first success
// short-circuits. The dropped item is drawn from catalog items of the hit
// rarity whose level gate the monster meets, stepping down to more common
// rarities when none qualify. Returns nil when nothing drops.
func (g *RewardGenerator) Loot(level int, tierMultiplier, luck float64) *inventory.Instance {
	for i, r := range g.table.Rarities {
		p := g.DropChance(r.Chance, luck, tierMultiplier)
		if !g.roller.Percent("loot "+r.Rarity.String(), p*100) {
			continue
		}
		for _, fallback := range g.table.Rarities[i:] {
			if level < fallback.MinLevel {
				continue
			}
			pool := g.items.Droppable(fallback.Rarity)
			if len(pool) == 0 {
				continue
			}
			inst := inventory.NewInstance(pool[dice.Pick(g.roller.Source(), len(pool))])
			g.logger.Debug("loot dropped",
				zap.String("item", inst.ID),
				zap.String("rolled", r.Rarity.String()),
				zap.String("rarity", inst.Rarity.String()),
			)
			return &inst
		}
		return nil
	}
	return nil
}

// Roll produces the full rewards for a kill.
func (g *RewardGenerator) Roll(level int, tierMultiplier, luck float64) Rewards {
	return Rewards{
		Currency: g.Currency(level, tierMultiplier),
		Loot:     g.Loot(level, tierMultiplier, luck),
	}
}
