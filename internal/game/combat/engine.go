package combat

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/inkquest/internal/game/catalog"
	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/condition"
	"github.com/cory-johannsen/inkquest/internal/game/dice"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/npc"
	"github.com/cory-johannsen/inkquest/internal/game/regen"
	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
	"github.com/cory-johannsen/inkquest/internal/game/stats"
)

// ErrUnknownArea is returned by Enter for an area key not in the catalog.
var ErrUnknownArea = npc.ErrUnknownArea

// ErrWrongPhase is returned when an action is not valid in the session's phase.
var ErrWrongPhase = errors.New("combat: action not valid in current phase")

// Resolver runs the combat state machine. It holds no per-encounter state;
// every call takes and returns Session and Character snapshots.
// All methods are safe for concurrent use on distinct sessions.
type Resolver struct {
	cat     *catalog.Catalog
	model   stats.Model
	roller  *dice.Roller
	monster *npc.Generator
	rewards *npc.RewardGenerator
	logger  *zap.Logger
}

// NewResolver creates a Resolver over cat, rolling every random outcome with roller.
//
// Precondition: cat, roller, and logger must be non-nil.
func NewResolver(cat *catalog.Catalog, roller *dice.Roller, logger *zap.Logger) *Resolver {
	if cat == nil || roller == nil || logger == nil {
		panic("combat: NewResolver precondition violated: cat, roller, and logger must be non-nil")
	}
	return &Resolver{
		cat:     cat,
		model:   cat.Model(),
		roller:  roller,
		monster: npc.NewGenerator(cat.Areas, cat.Tiers, roller, logger),
		rewards: npc.NewRewardGenerator(cat.Loot, cat.Items, roller, logger),
		logger:  logger,
	}
}

// Model returns the stat model the resolver derives player stats with.
func (r *Resolver) Model() stats.Model { return r.model }

// Enter starts an encounter in areaKey. Regeneration is applied to the
// character first; the returned character carries the regenerated values
// and must be persisted by the caller.
//
// Postcondition: on success the session is in PhaseCombat at turn 1 with
// cleared cooldowns, conditions, and log. PlayerHealth is at least 1.
func (r *Resolver) Enter(sess Session, ch *character.Character, areaKey string, now time.Time) (Session, *character.Character, error) {
	s := sess.Clone()
	if s.Phase != PhaseAreaSelection {
		return s, ch.Clone(), fmt.Errorf("%w: enter from %s", ErrWrongPhase, s.Phase)
	}
	area, ok := r.cat.Areas.Area(areaKey)
	if !ok {
		return s, ch.Clone(), fmt.Errorf("%w: %q", ErrUnknownArea, areaKey)
	}

	out, _ := regen.Apply(ch, ch.LastRegenTime, now, r.model)
	level := max(out.Level, 1)
	m, err := r.monster.Generate(areaKey, level)
	if err != nil {
		return s, ch.Clone(), err
	}

	s = Session{
		Phase:        PhaseCombat,
		AreaKey:      areaKey,
		Monster:      &m,
		PlayerHealth: max(out.Health, 1),
		PlayerMana:   out.Mana,
		Turn:         1,
		Cooldowns:    map[string]int{},
	}
	s.logf("You enter %s.", area.Name)
	if m.Elite() {
		s.logf("%s (Level %d) appears! It looks dangerous!", m.DisplayName, m.Level)
	} else {
		s.logf("A wild %s (Level %d) appears!", m.DisplayName, m.Level)
	}
	r.logger.Debug("combat started",
		zap.Int64("character_id", out.ID),
		zap.String("area", areaKey),
		zap.String("monster", m.DisplayName),
		zap.Int("monster_level", m.Level),
	)
	return s, out, nil
}

// Attack resolves a basic attack followed by the monster's counter-turn.
func (r *Resolver) Attack(sess Session, ch *character.Character) (Session, *character.Character, error) {
	s, out, err := r.begin(sess, ch)
	if err != nil {
		return s, out, err
	}
	ps := out.Stats(r.model)
	if r.playerHit(&s, ps, 1, "You attack") {
		return r.victory(s, out)
	}
	return r.finishTurn(s, out, ps)
}

// UseAbility casts the named class ability. Unknown or locked abilities,
// abilities on cooldown, and insufficient mana are logged no-ops that do
// not consume the turn.
func (r *Resolver) UseAbility(sess Session, ch *character.Character, name string) (Session, *character.Character, error) {
	s, out, err := r.begin(sess, ch)
	if err != nil {
		return s, out, err
	}
	ab, ok := r.cat.Classes.Ability(out.Class, out.Level, name)
	if !ok {
		s.logf("You don't know %s.", name)
		r.rejected(out, "ability unavailable", name)
		return s, out, nil
	}
	if left := s.CooldownRemaining(ab.Name); left > 0 {
		s.logf("%s is on cooldown for %d more turn(s).", ab.Name, left)
		r.rejected(out, "ability on cooldown", name)
		return s, out, nil
	}
	if s.PlayerMana < ab.ManaCost {
		s.logf("Not enough mana for %s (%d needed).", ab.Name, ab.ManaCost)
		r.rejected(out, "insufficient mana", name)
		return s, out, nil
	}

	s.PlayerMana -= ab.ManaCost
	s.Cooldowns[ab.Name] = s.Turn + ab.Cooldown
	ps := out.Stats(r.model)

	switch e := ab.Effect.(type) {
	case ruleset.Damage:
		for i := 0; i < e.Hits; i++ {
			verb := "You use " + ab.Name
			if e.Hits > 1 {
				verb = fmt.Sprintf("%s hit %d", ab.Name, i+1)
			}
			if r.playerHit(&s, ps, e.Multiplier, verb) {
				return r.victory(s, out)
			}
		}
	case ruleset.Heal:
		before := s.PlayerHealth
		s.PlayerHealth = min(ps.MaxHealth, s.PlayerHealth+int(math.Floor(float64(ps.MaxHealth)*e.Fraction)))
		s.logf("You use %s and recover %d health.", ab.Name, s.PlayerHealth-before)
	case ruleset.ManaRestore:
		before := s.PlayerMana
		s.PlayerMana = min(ps.MaxMana, s.PlayerMana+e.Amount)
		s.logf("You use %s and recover %d mana.", ab.Name, s.PlayerMana-before)
	case ruleset.Buff:
		def, ok := r.cat.Conditions.Get(e.Condition)
		if !ok {
			r.logger.Error("ability references unknown condition",
				zap.String("ability", ab.Name),
				zap.String("condition", e.Condition),
			)
			s.logf("You use %s, but nothing happens.", ab.Name)
			break
		}
		if e.Target == ruleset.TargetEnemy {
			s.MonsterConditions.Apply(def)
			s.logf("You use %s! %s is affected by %s for %d turn(s).", ab.Name, s.Monster.DisplayName, def.Name, def.Duration)
		} else {
			s.PlayerConditions.Apply(def)
			s.logf("You use %s! %s for %d turn(s).", ab.Name, def.Name, def.Duration)
		}
	}
	return r.finishTurn(s, out, ps)
}

// Flee leaves combat for FleeCost mana. The health snapshot and reduced mana
// are written back to the character. Without enough mana it is a logged no-op.
func (r *Resolver) Flee(sess Session, ch *character.Character) (Session, *character.Character, error) {
	s, out, err := r.begin(sess, ch)
	if err != nil {
		return s, out, err
	}
	if s.PlayerMana < FleeCost {
		s.logf("Not enough mana to flee (%d needed).", FleeCost)
		r.rejected(out, "insufficient mana", "flee")
		return s, out, nil
	}
	s.PlayerMana -= FleeCost
	out.Health = s.PlayerHealth
	out.Mana = s.PlayerMana
	out.Clamp(out.Stats(r.model))

	s.logf("You fled from %s.", s.Monster.DisplayName)
	r.logger.Debug("combat fled", zap.Int64("character_id", out.ID), zap.String("area", s.AreaKey))
	s.Phase = PhaseAreaSelection
	s.Monster = nil
	s.PlayerConditions = condition.ActiveSet{}
	s.MonsterConditions = condition.ActiveSet{}
	s.Cooldowns = map[string]int{}
	return s, out, nil
}

// Acknowledge closes a finished encounter and returns to area selection.
// After a defeat the character survives with exactly 1 health and keeps the
// mana it had when it fell.
func (r *Resolver) Acknowledge(sess Session, ch *character.Character) (Session, *character.Character, error) {
	s := sess.Clone()
	out := ch.Clone()
	switch s.Phase {
	case PhaseVictory:
	case PhaseDefeat:
		out.Health = 1
		out.Mana = s.PlayerMana
		out.Clamp(out.Stats(r.model))
	default:
		return s, out, fmt.Errorf("%w: acknowledge from %s", ErrWrongPhase, s.Phase)
	}
	r.logger.Debug("combat acknowledged", zap.Int64("character_id", out.ID), zap.String("phase", string(s.Phase)))
	return NewSession(), out, nil
}

// Do dispatches a to the matching resolver method.
func (r *Resolver) Do(sess Session, ch *character.Character, a Action) (Session, *character.Character, error) {
	switch a.Type {
	case ActionAttack:
		return r.Attack(sess, ch)
	case ActionAbility:
		return r.UseAbility(sess, ch, a.Ability)
	case ActionFlee:
		return r.Flee(sess, ch)
	case ActionAcknowledge:
		return r.Acknowledge(sess, ch)
	default:
		return sess.Clone(), ch.Clone(), fmt.Errorf("combat: unknown action %s", a.Type)
	}
}

func (r *Resolver) begin(sess Session, ch *character.Character) (Session, *character.Character, error) {
	s := sess.Clone()
	out := ch.Clone()
	if s.Phase != PhaseCombat || s.Monster == nil {
		return s, out, fmt.Errorf("%w: %s", ErrWrongPhase, s.Phase)
	}
	return s, out, nil
}

func (r *Resolver) rejected(ch *character.Character, reason, action string) {
	r.logger.Debug("combat action rejected",
		zap.Int64("character_id", ch.ID),
		zap.String("action", action),
		zap.String("reason", reason),
	)
}

// playerHit applies one player strike and reports whether the monster died.
func (r *Resolver) playerHit(s *Session, ps stats.Combat, multiplier float64, verb string) bool {
	m := s.Monster
	res := ResolveAttack(Strike{
		Attack:         ps.Attack,
		Defense:        m.Defense,
		Multiplier:     multiplier,
		CritChance:     ps.CritChance,
		CritMultiplier: ps.CritMultiplier,
		Attacker:       s.PlayerConditions,
		Defender:       s.MonsterConditions,
	}, r.roller)
	m.Health = max(0, m.Health-res.Damage)
	if res.Crit {
		s.logf("%s for %d damage! Critical hit!", verb, res.Damage)
	} else {
		s.logf("%s for %d damage.", verb, res.Damage)
	}
	return m.Health <= 0
}

// finishTurn runs the monster counter-turn, checks for defeat, then ticks
// conditions and advances the turn.
func (r *Resolver) finishTurn(s Session, ch *character.Character, ps stats.Combat) (Session, *character.Character, error) {
	m := s.Monster
	res := ResolveAttack(Strike{
		Attack:         m.Attack,
		Defense:        ps.Defense,
		Multiplier:     1,
		CritChance:     m.CritChance,
		CritMultiplier: m.CritMultiplier,
		Attacker:       s.MonsterConditions,
		Defender:       s.PlayerConditions,
	}, r.roller)
	s.PlayerHealth = max(0, s.PlayerHealth-res.Damage)
	if res.Crit {
		s.logf("%s attacks you for %d damage! Critical hit!", m.DisplayName, res.Damage)
	} else {
		s.logf("%s attacks you for %d damage.", m.DisplayName, res.Damage)
	}

	if s.PlayerHealth <= 0 {
		s.Phase = PhaseDefeat
		s.logf("You have been defeated by %s.", m.DisplayName)
		r.logger.Debug("combat lost",
			zap.Int64("character_id", ch.ID),
			zap.String("monster", m.DisplayName),
			zap.Int("turn", s.Turn),
		)
		return s, ch, nil
	}

	for _, name := range s.PlayerConditions.Tick() {
		s.logf("%s wears off.", name)
	}
	for _, name := range s.MonsterConditions.Tick() {
		s.logf("%s is no longer affected by %s.", m.DisplayName, name)
	}
	s.Turn++
	return s, ch, nil
}

// victory writes the snapshot back and grants rewards exactly once.
func (r *Resolver) victory(s Session, ch *character.Character) (Session, *character.Character, error) {
	m := s.Monster
	s.Phase = PhaseVictory
	s.logf("You defeated %s!", m.DisplayName)

	rw := r.rewards.Roll(m.Level, m.TierMultiplier, ch.LuckStat)
	s.Rewards = &rw

	ch.Health = s.PlayerHealth
	ch.Mana = s.PlayerMana
	ch.InkDrops += rw.Currency
	ch.Counters.MonstersDefeated++
	if m.Elite() {
		ch.Counters.EliteMonstersDefeated++
	}
	s.logf("You earned %s.", inventory.FormatInkDrops(rw.Currency))
	if rw.Loot != nil {
		ch.Inventory = ch.Inventory.Add(*rw.Loot)
		ch.Counters.EquipmentFound++
		s.logf("You found %s (%s)!", rw.Loot.Name, rw.Loot.Rarity)
	}
	ch.Clamp(ch.Stats(r.model))

	r.logger.Debug("combat won",
		zap.Int64("character_id", ch.ID),
		zap.String("monster", m.DisplayName),
		zap.Int("currency", rw.Currency),
		zap.Bool("loot", rw.Loot != nil),
	)
	return s, ch, nil
}
