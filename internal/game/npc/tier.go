package npc

import (
	"bytes"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Tier is a monster rarity classification.
type Tier string

const (
	TierNormal    Tier = "normal"
	TierElite     Tier = "elite"
	TierChampion  Tier = "champion"
	TierLegendary Tier = "legendary"
)

// tierRank orders tiers from most common to rarest.
var tierRank = map[Tier]int{TierNormal: 0, TierElite: 1, TierChampion: 2, TierLegendary: 3}

// TierSpec is one row of the tier probability table.
type TierSpec struct {
	Tier       Tier    `yaml:"tier"`
	Chance     float64 `yaml:"chance"` // percent
	Multiplier float64 `yaml:"multiplier"`
	Suffix     string  `yaml:"suffix"`
}

// TierTable holds the tier rows ordered rarest first.
type TierTable struct {
	rows []TierSpec
}

// LoadTiers parses a tier table document of the form {tiers: [...]}.
//
// Postcondition: the table covers all four tiers and the chances sum to 100.
func LoadTiers(data []byte) (TierTable, error) {
	var doc struct {
		Tiers []TierSpec `yaml:"tiers"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return TierTable{}, fmt.Errorf("npc: parsing tiers: %w", err)
	}
	return NewTierTable(doc.Tiers)
}

// NewTierTable validates rows and orders them rarest first.
func NewTierTable(rows []TierSpec) (TierTable, error) {
	if len(rows) != len(tierRank) {
		return TierTable{}, fmt.Errorf("npc: tier table needs exactly %d tiers, got %d", len(tierRank), len(rows))
	}
	ordered := make([]TierSpec, len(rows))
	seen := make(map[Tier]bool)
	total := 0.0
	for _, r := range rows {
		rank, ok := tierRank[r.Tier]
		if !ok {
			return TierTable{}, fmt.Errorf("npc: unknown tier %q", r.Tier)
		}
		if seen[r.Tier] {
			return TierTable{}, fmt.Errorf("npc: tier %q listed twice", r.Tier)
		}
		seen[r.Tier] = true
		if r.Chance < 0 || r.Multiplier <= 0 {
			return TierTable{}, fmt.Errorf("npc: tier %q needs chance >= 0 and multiplier > 0", r.Tier)
		}
		total += r.Chance
		ordered[len(rows)-1-rank] = r
	}
	if math.Abs(total-100) > 1e-9 {
		return TierTable{}, fmt.Errorf("npc: tier chances must sum to 100, got %v", total)
	}
	return TierTable{rows: ordered}, nil
}

// Pick maps a roll in [0, 100) to a tier, checking the rarest tier first.
func (t TierTable) Pick(roll float64) TierSpec {
	cumulative := 0.0
	for _, r := range t.rows {
		cumulative += r.Chance
		if roll < cumulative {
			return r
		}
	}
	return t.rows[len(t.rows)-1]
}

// Rows returns the table rows rarest first.
func (t TierTable) Rows() []TierSpec {
	out := make([]TierSpec, len(t.rows))
	copy(out, t.rows)
	return out
}
