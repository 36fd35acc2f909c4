package npc

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/inkquest/internal/game/dice"
)

// Monster crit stats are fixed rather than derived.
const (
	MonsterCritChance     = 5.0
	MonsterCritMultiplier = 1.5
)

// Scaling floors applied before the tier multiplier.
const (
	minHealth  = 30
	minAttack  = 10
	minDefense = 2
)

// MaxStat caps every scaled monster stat.
const MaxStat = math.MaxInt32

// ErrUnknownArea is returned when an area key is not in the catalog.
var ErrUnknownArea = errors.New("npc: unknown area")

// Monster is a generated, self-contained encounter opponent.
type Monster struct {
	Name           string  `json:"name"`
	DisplayName    string  `json:"displayName"`
	Level          int     `json:"level"`
	BaseLevel      int     `json:"baseLevel"`
	Health         int     `json:"health"`
	MaxHealth      int     `json:"maxHealth"`
	Attack         int     `json:"attack"`
	Defense        int     `json:"defense"`
	Tier           Tier    `json:"tier"`
	TierMultiplier float64 `json:"tierMultiplier"`
	CritChance     float64 `json:"critChance"`
	CritMultiplier float64 `json:"critMultiplier"`
}

// Elite reports whether the monster rolled any tier above normal.
func (m Monster) Elite() bool { return m.Tier != TierNormal }

// ScaleFactor returns the stat multiplier for moving a template to target level.
func ScaleFactor(templateLevel, target int) float64 {
	delta := float64(target - templateLevel)
	if target <= 10 {
		return 1 + 0.15*delta
	}
	return math.Pow(1.12, delta)
}

// scaleStat returns floor(v*f), saturating at MaxStat.
func scaleStat(v int, f float64) int {
	x := math.Floor(float64(v) * f)
	if x >= MaxStat || math.IsNaN(x) {
		return MaxStat
	}
	return int(x)
}

// Generator produces encounters from the area catalog and tier table.
type Generator struct {
	areas  *AreaRegistry
	tiers  TierTable
	roller *dice.Roller
	logger *zap.Logger
}

// NewGenerator creates a Generator.
//
// Precondition: areas and roller must be non-nil.
func NewGenerator(areas *AreaRegistry, tiers TierTable, roller *dice.Roller, logger *zap.Logger) *Generator {
	if areas == nil || roller == nil {
		panic("npc: NewGenerator precondition violated: areas and roller must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{areas: areas, tiers: tiers, roller: roller, logger: logger}
}

// Generate rolls a monster for the area at playerLevel.
//
// Postcondition: on success Monster.Level lies within the area's resolved
// bounds and Health == MaxHealth. Unknown areas return ErrUnknownArea.
func (g *Generator) Generate(areaKey string, playerLevel int) (Monster, error) {
	area, ok := g.areas.Area(areaKey)
	if !ok {
		return Monster{}, ErrUnknownArea
	}
	lo, hi := area.Levels.Bounds(playerLevel)
	target := g.roller.Between("encounter level", lo, hi)
	tmpl := area.Monsters[dice.Pick(g.roller.Source(), len(area.Monsters))]

	f := ScaleFactor(tmpl.Level, target)
	health := max(minHealth, scaleStat(tmpl.Health, f))
	attack := max(minAttack, scaleStat(tmpl.Attack, f))
	defense := max(minDefense, scaleStat(tmpl.Defense, f))

	tier := g.tiers.Pick(g.roller.Source().Float64() * 100)
	health = scaleStat(health, tier.Multiplier)

	display := tmpl.Name
	if tier.Suffix != "" {
		display += " " + tier.Suffix
	}
	m := Monster{
		Name:           tmpl.Name,
		DisplayName:    display,
		Level:          target,
		BaseLevel:      tmpl.Level,
		Health:         health,
		MaxHealth:      health,
		Attack:         scaleStat(attack, tier.Multiplier),
		Defense:        scaleStat(defense, tier.Multiplier),
		Tier:           tier.Tier,
		TierMultiplier: tier.Multiplier,
		CritChance:     MonsterCritChance,
		CritMultiplier: MonsterCritMultiplier,
	}
	g.logger.Debug("encounter generated",
		zap.String("area", areaKey),
		zap.String("monster", m.DisplayName),
		zap.Int("level", m.Level),
		zap.String("tier", string(m.Tier)),
	)
	return m, nil
}
