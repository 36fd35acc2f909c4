// Package gameserver orchestrates the core for a client: it serialises
// writers per character, loads the character, runs the requested operation,
// and persists the result.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/inkquest/internal/game/catalog"
	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/combat"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/regen"
	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
	"github.com/cory-johannsen/inkquest/internal/game/session"
	"github.com/cory-johannsen/inkquest/internal/game/stats"
	"github.com/cory-johannsen/inkquest/internal/game/store"
	"github.com/cory-johannsen/inkquest/internal/storage"
)

// ErrNoSession is returned when a combat command targets a character without an open session.
var ErrNoSession = errors.New("gameserver: no open session")

// ErrStorage wraps every persistence failure so callers can tell them from rule violations.
var ErrStorage = errors.New("gameserver: storage failure")

// ErrInCombat is returned for out-of-combat commands while an encounter is running.
var ErrInCombat = errors.New("gameserver: not allowed during combat")

// Snapshot is the state a client renders after a command.
type Snapshot struct {
	Combat    combat.Session
	Character *character.Character
	Stats     stats.Combat
}

// Handler runs every character command under that character's writer lock.
//
// Precondition: All fields must be non-nil after construction.
type Handler struct {
	resolver *combat.Resolver
	cat      *catalog.Catalog
	chars    storage.CharacterStore
	sessions *session.Manager
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a Handler.
//
// Precondition: all arguments must be non-nil.
// Postcondition: Returns a non-nil Handler using the wall clock.
func NewHandler(
	resolver *combat.Resolver,
	cat *catalog.Catalog,
	chars storage.CharacterStore,
	sessions *session.Manager,
	logger *zap.Logger,
) *Handler {
	if resolver == nil || cat == nil || chars == nil || sessions == nil || logger == nil {
		panic("gameserver: NewHandler precondition violated: all arguments must be non-nil")
	}
	return &Handler{
		resolver: resolver,
		cat:      cat,
		chars:    chars,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for regeneration.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// Catalog returns the content the handler serves.
func (h *Handler) Catalog() *catalog.Catalog { return h.cat }

// CreateCharacter builds and stores a new level-1 character for the account.
//
// Postcondition: Returns the stored character or a non-nil error.
func (h *Handler) CreateCharacter(ctx context.Context, accountID int64, name, class string) (*character.Character, error) {
	ch, err := character.New(name, class, h.resolver.Model(), h.now())
	if err != nil {
		return nil, err
	}
	ch.AccountID = accountID
	created, err := h.chars.Create(ctx, ch)
	if errors.Is(err, storage.ErrCharacterNameTaken) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: creating character: %w", ErrStorage, err)
	}
	h.logger.Info("character created",
		zap.Int64("character_id", created.ID),
		zap.String("name", created.Name),
		zap.String("class", created.Class),
	)
	return created, nil
}

// Open starts a play session: offline regeneration is applied and saved,
// and the character is registered in area selection.
//
// Postcondition: Returns the opening snapshot, or an error if the character
// is missing or already open.
func (h *Handler) Open(ctx context.Context, characterID int64) (Snapshot, error) {
	unlock := h.sessions.Lock(characterID)
	defer unlock()

	ch, err := h.chars.Get(ctx, characterID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: loading character %d: %w", ErrStorage, characterID, err)
	}
	ps, err := h.sessions.Open(characterID, ch.Name)
	if err != nil {
		return Snapshot{}, err
	}
	ch, err = h.regenerate(ctx, ch)
	if err != nil {
		_ = h.sessions.Close(characterID)
		return Snapshot{}, err
	}
	h.logger.Info("session opened", zap.Int64("character_id", characterID))
	return h.snapshot(ps.Combat, ch), nil
}

// Close ends the play session. An encounter in progress is abandoned
// without persisting its snapshot, matching a closed client.
func (h *Handler) Close(characterID int64) error {
	unlock := h.sessions.Lock(characterID)
	defer unlock()
	if err := h.sessions.Close(characterID); err != nil {
		return err
	}
	h.logger.Info("session closed", zap.Int64("character_id", characterID))
	return nil
}

// Feed returns the combat log feed of an open session.
func (h *Handler) Feed(characterID int64) (*session.Feed, bool) {
	ps, ok := h.sessions.Get(characterID)
	if !ok {
		return nil, false
	}
	return ps.Feed, true
}

// Refresh applies regeneration outside combat and returns the current state.
func (h *Handler) Refresh(ctx context.Context, characterID int64) (Snapshot, error) {
	unlock := h.sessions.Lock(characterID)
	defer unlock()

	ch, err := h.chars.Get(ctx, characterID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: loading character %d: %w", ErrStorage, characterID, err)
	}
	sess := combat.NewSession()
	if ps, ok := h.sessions.Get(characterID); ok {
		sess = ps.Combat
	}
	if sess.Phase != combat.PhaseCombat {
		if ch, err = h.regenerate(ctx, ch); err != nil {
			return Snapshot{}, err
		}
	}
	return h.snapshot(sess, ch), nil
}

// Enter starts an encounter in areaKey for an open session.
func (h *Handler) Enter(ctx context.Context, characterID int64, areaKey string) (Snapshot, error) {
	return h.combatCommand(ctx, characterID, func(sess combat.Session, ch *character.Character) (combat.Session, *character.Character, error) {
		return h.resolver.Enter(sess, ch, areaKey, h.now())
	})
}

// Act applies a combat action to an open session.
func (h *Handler) Act(ctx context.Context, characterID int64, a combat.Action) (Snapshot, error) {
	return h.combatCommand(ctx, characterID, func(sess combat.Session, ch *character.Character) (combat.Session, *character.Character, error) {
		return h.resolver.Do(sess, ch, a)
	})
}

// RecordSession awards a writing session. It is allowed during combat
// because it touches only progression fields.
func (h *Handler) RecordSession(ctx context.Context, characterID int64, words, minutes int, skills map[string]int) (Snapshot, character.SessionResult, error) {
	var res character.SessionResult
	snap, err := h.mutate(ctx, characterID, true, func(ch *character.Character) (*character.Character, error) {
		out, r, err := character.RecordSession(ch, words, minutes, skills)
		res = r
		return out, err
	})
	if err == nil && res.LevelsGained > 0 {
		h.logger.Info("level up",
			zap.Int64("character_id", characterID),
			zap.Int("level", snap.Character.Level),
			zap.Int("levels_gained", res.LevelsGained),
		)
	}
	return snap, res, err
}

// AllocateStats spends available stat points.
func (h *Handler) AllocateStats(ctx context.Context, characterID int64, add ruleset.Attributes) (Snapshot, error) {
	return h.mutate(ctx, characterID, false, func(ch *character.Character) (*character.Character, error) {
		return character.AllocateStats(ch, add)
	})
}

// Equip moves an owned item into its slot and returns the instance it equipped.
func (h *Handler) Equip(ctx context.Context, characterID int64, instanceID string) (Snapshot, inventory.Instance, error) {
	var equipped inventory.Instance
	snap, err := h.mutate(ctx, characterID, false, func(ch *character.Character) (*character.Character, error) {
		equipped, _ = ch.Inventory.Find(instanceID)
		return character.Equip(ch, instanceID, h.resolver.Model())
	})
	return snap, equipped, err
}

// Unequip returns the item in slot to the inventory.
func (h *Handler) Unequip(ctx context.Context, characterID int64, slot inventory.Slot) (Snapshot, error) {
	return h.mutate(ctx, characterID, false, func(ch *character.Character) (*character.Character, error) {
		return character.Unequip(ch, slot, h.resolver.Model())
	})
}

// Purchase buys a store offer.
func (h *Handler) Purchase(ctx context.Context, characterID int64, offerID string) (Snapshot, store.Receipt, error) {
	var rec store.Receipt
	snap, err := h.mutate(ctx, characterID, false, func(ch *character.Character) (*character.Character, error) {
		out, r, err := store.Purchase(ch, offerID, h.cat.Store, h.resolver.Model())
		rec = r
		return out, err
	})
	return snap, rec, err
}

// combatCommand runs fn under the character lock against the open
// session, persists the character when fn changed it, and publishes the
// new log lines.
func (h *Handler) combatCommand(
	ctx context.Context,
	characterID int64,
	fn func(combat.Session, *character.Character) (combat.Session, *character.Character, error),
) (Snapshot, error) {
	unlock := h.sessions.Lock(characterID)
	defer unlock()

	ps, ok := h.sessions.Get(characterID)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: character %d", ErrNoSession, characterID)
	}
	ch, err := h.chars.Get(ctx, characterID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: loading character %d: %w", ErrStorage, characterID, err)
	}

	before := ps.Combat
	sess, updated, err := fn(before, ch)
	if err != nil {
		return Snapshot{}, err
	}
	if changed(ch, updated) {
		if err := h.chars.Save(ctx, updated); err != nil {
			return Snapshot{}, fmt.Errorf("%w: saving character %d: %w", ErrStorage, characterID, err)
		}
		h.logger.Debug("character persisted",
			zap.Int64("character_id", characterID),
			zap.String("phase", string(sess.Phase)),
		)
	}
	ps.Combat = sess
	h.publish(ps, before, sess)
	return h.snapshot(sess, updated), nil
}

// mutate runs an out-of-combat update under the character lock.
func (h *Handler) mutate(ctx context.Context, characterID int64, allowInCombat bool, fn func(*character.Character) (*character.Character, error)) (Snapshot, error) {
	unlock := h.sessions.Lock(characterID)
	defer unlock()

	sess := combat.NewSession()
	if ps, ok := h.sessions.Get(characterID); ok {
		sess = ps.Combat
	}
	if sess.Phase == combat.PhaseCombat && !allowInCombat {
		return Snapshot{}, ErrInCombat
	}
	ch, err := h.chars.Get(ctx, characterID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: loading character %d: %w", ErrStorage, characterID, err)
	}
	out, err := fn(ch)
	if err != nil {
		return Snapshot{}, err
	}
	if err := h.chars.Save(ctx, out); err != nil {
		return Snapshot{}, fmt.Errorf("%w: saving character %d: %w", ErrStorage, characterID, err)
	}
	return h.snapshot(sess, out), nil
}

func (h *Handler) regenerate(ctx context.Context, ch *character.Character) (*character.Character, error) {
	out, last := regen.Apply(ch, ch.LastRegenTime, h.now(), h.resolver.Model())
	out.LastRegenTime = last
	if !changed(ch, out) {
		return out, nil
	}
	if err := h.chars.Save(ctx, out); err != nil {
		return nil, fmt.Errorf("%w: saving regeneration for %d: %w", ErrStorage, ch.ID, err)
	}
	h.logger.Debug("regeneration applied",
		zap.Int64("character_id", ch.ID),
		zap.Int("health", out.Health),
		zap.Int("mana", out.Mana),
	)
	return out, nil
}

// publish pushes log lines appended since before. Entering an area starts
// a fresh log, so every line of it is new.
func (h *Handler) publish(ps *session.PlayerSession, before, after combat.Session) {
	start := len(before.Log)
	if before.Phase == combat.PhaseAreaSelection || start > len(after.Log) {
		start = 0
	}
	for _, line := range after.Log[start:] {
		if err := ps.Feed.Push(line); err != nil {
			h.logger.Warn("dropping combat log line",
				zap.Int64("character_id", ps.CharacterID),
				zap.Error(err),
			)
			return
		}
	}
}

func (h *Handler) snapshot(sess combat.Session, ch *character.Character) Snapshot {
	return Snapshot{Combat: sess, Character: ch, Stats: ch.Stats(h.resolver.Model())}
}

// changed reports whether any persisted field differs. The resolver always
// returns a fresh copy, so identity alone says nothing.
func changed(a, b *character.Character) bool {
	if a.Health != b.Health || a.Mana != b.Mana || a.InkDrops != b.InkDrops {
		return true
	}
	if !a.LastRegenTime.Equal(b.LastRegenTime) || a.Counters != b.Counters {
		return true
	}
	return len(a.Inventory) != len(b.Inventory)
}
