// Package npc provides combat areas, monster templates, encounter
// generation, and the rewards a defeated monster yields.
package npc

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is a base monster definition, scaled per encounter.
type Template struct {
	Name    string `yaml:"name"`
	Level   int    `yaml:"level"`
	Health  int    `yaml:"health"`
	Attack  int    `yaml:"attack"`
	Defense int    `yaml:"defense"`
}

// Validate checks that the template satisfies basic invariants.
func (t Template) Validate() error {
	if t.Name == "" {
		return errors.New("monster name must not be empty")
	}
	if t.Level < 1 || t.Health < 1 || t.Attack < 0 || t.Defense < 0 {
		return fmt.Errorf("monster %q: level and health must be >= 1, attack and defense >= 0", t.Name)
	}
	return nil
}

// LevelRange is an area's encounter level band. Open means the upper bound
// follows the player.
type LevelRange struct {
	Min  int
	Max  int
	Open bool
}

// OpenFloor is the lowest upper bound an open range resolves to.
const OpenFloor = 60

// ParseLevelRange parses "1-10", "18-+", or "18+".
func ParseLevelRange(s string) (LevelRange, error) {
	s = strings.TrimSpace(s)
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		if !strings.HasSuffix(s, "+") {
			return LevelRange{}, fmt.Errorf("npc: level range %q must be min-max or min+", s)
		}
		lo, hi = strings.TrimSuffix(s, "+"), "+"
	}
	minLvl, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || minLvl < 1 {
		return LevelRange{}, fmt.Errorf("npc: level range %q has invalid minimum", s)
	}
	hi = strings.TrimSpace(hi)
	if hi == "+" {
		if minLvl > OpenFloor {
			return LevelRange{}, fmt.Errorf("npc: open level range %q must start at or below %d", s, OpenFloor)
		}
		return LevelRange{Min: minLvl, Open: true}, nil
	}
	maxLvl, err := strconv.Atoi(hi)
	if err != nil || maxLvl < minLvl {
		return LevelRange{}, fmt.Errorf("npc: level range %q has invalid maximum", s)
	}
	return LevelRange{Min: minLvl, Max: maxLvl}, nil
}

// Bounds resolves the range for a player level. An open range tops out at
// max(OpenFloor, playerLevel+10) and never below its own minimum.
func (r LevelRange) Bounds(playerLevel int) (int, int) {
	if r.Open {
		return r.Min, max(r.Min, OpenFloor, playerLevel+10)
	}
	return r.Min, r.Max
}

func (r LevelRange) String() string {
	if r.Open {
		return fmt.Sprintf("%d+", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Area is a selectable combat zone.
type Area struct {
	Key         string
	Name        string
	Description string
	Levels      LevelRange
	Monsters    []Template
}

// Difficulty labels how the area compares to the player's level.
func (a Area) Difficulty(playerLevel int) string {
	lo := a.Levels.Min
	hi := a.Levels.Max
	if a.Levels.Open {
		hi = OpenFloor
	}
	switch {
	case playerLevel < lo-5:
		return "Very Hard"
	case playerLevel > hi+5:
		return "Easy"
	case playerLevel >= lo-2 && playerLevel <= hi+2:
		return "Recommended"
	default:
		return "Moderate"
	}
}

type areaDoc struct {
	Key         string     `yaml:"key"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	LevelRange  string     `yaml:"level_range"`
	Monsters    []Template `yaml:"monsters"`
}

// AreaRegistry indexes areas by key, preserving catalog order for display.
type AreaRegistry struct {
	areas map[string]Area
	order []string
}

// LoadAreas parses an areas catalog document of the form {areas: [...]}.
//
// Postcondition: every area has a valid level range and at least one monster.
func LoadAreas(data []byte) (*AreaRegistry, error) {
	var doc struct {
		Areas []areaDoc `yaml:"areas"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("npc: parsing areas: %w", err)
	}
	reg := &AreaRegistry{areas: make(map[string]Area, len(doc.Areas))}
	for _, raw := range doc.Areas {
		if raw.Key == "" {
			return nil, errors.New("npc: area key must not be empty")
		}
		if _, dup := reg.areas[raw.Key]; dup {
			return nil, fmt.Errorf("npc: area %q defined twice", raw.Key)
		}
		levels, err := ParseLevelRange(raw.LevelRange)
		if err != nil {
			return nil, fmt.Errorf("npc: area %q: %w", raw.Key, err)
		}
		if len(raw.Monsters) == 0 {
			return nil, fmt.Errorf("npc: area %q has no monsters", raw.Key)
		}
		for _, m := range raw.Monsters {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("npc: area %q: %w", raw.Key, err)
			}
		}
		reg.areas[raw.Key] = Area{
			Key:         raw.Key,
			Name:        raw.Name,
			Description: raw.Description,
			Levels:      levels,
			Monsters:    raw.Monsters,
		}
		reg.order = append(reg.order, raw.Key)
	}
	return reg, nil
}

// Area returns the area for key and whether it exists.
func (r *AreaRegistry) Area(key string) (Area, bool) {
	a, ok := r.areas[key]
	return a, ok
}

// All returns every area in catalog order.
func (r *AreaRegistry) All() []Area {
	out := make([]Area, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.areas[k])
	}
	return out
}

// Keys returns every area key sorted alphabetically.
func (r *AreaRegistry) Keys() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	sort.Strings(keys)
	return keys
}
