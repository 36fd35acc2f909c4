package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/inkquest/internal/game/command"
	"github.com/cory-johannsen/inkquest/internal/game/combat"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
	"github.com/cory-johannsen/inkquest/internal/gameserver"
)

// Result is the outcome of one command line. Combat narration is not in
// Lines; it arrives on the session feed.
type Result struct {
	Lines    []string
	Snapshot *gameserver.Snapshot
	Quit     bool
}

// Executor turns command lines into handler calls for one character.
type Executor struct {
	h           *gameserver.Handler
	reg         *command.Registry
	characterID int64
}

// NewExecutor creates an Executor for an open character session.
//
// Precondition: h and reg must be non-nil; characterID must be > 0.
func NewExecutor(h *gameserver.Handler, reg *command.Registry, characterID int64) *Executor {
	if h == nil || reg == nil || characterID <= 0 {
		panic("tui: NewExecutor precondition violated")
	}
	return &Executor{h: h, reg: reg, characterID: characterID}
}

// Execute runs one command line. Player mistakes are reported as lines,
// not errors; the error return is reserved for storage failures.
func (e *Executor) Execute(ctx context.Context, line string) (Result, error) {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return Result{}, nil
	}
	cmd, ok := e.reg.Resolve(parsed.Command)
	if !ok {
		return say(fmt.Sprintf("Unknown command %q. Type help for a list.", parsed.Command)), nil
	}

	switch cmd.Handler {
	case command.HandlerHelp:
		return say(renderHelp(e.reg)...), nil
	case command.HandlerQuit:
		return Result{Lines: []string{"Saving and leaving. Keep writing!"}, Quit: true}, nil
	case command.HandlerAreas:
		return e.withSnapshot(ctx, func(s gameserver.Snapshot) []string {
			return renderAreas(e.h.Catalog().Areas.All(), s.Character.Level)
		})
	case command.HandlerStatus:
		return e.withSnapshot(ctx, func(s gameserver.Snapshot) []string { return renderStatus(s) })
	case command.HandlerInventory:
		return e.withSnapshot(ctx, func(s gameserver.Snapshot) []string { return renderInventory(s.Character) })
	case command.HandlerSkills:
		return e.withSnapshot(ctx, func(s gameserver.Snapshot) []string { return renderSkills(s.Character) })
	case command.HandlerStore:
		return e.withSnapshot(ctx, func(s gameserver.Snapshot) []string {
			return renderStore(e.h.Catalog().Store.Offers(), s.Character.InkDrops)
		})
	case command.HandlerEnter:
		if parsed.RawArgs == "" {
			return say("Usage: " + cmd.Usage), nil
		}
		key, ok := e.areaKey(parsed.RawArgs)
		if !ok {
			return say(fmt.Sprintf("There is no area called %q.", parsed.RawArgs)), nil
		}
		return e.act(e.h.Enter(ctx, e.characterID, key))
	case command.HandlerAttack:
		return e.act(e.h.Act(ctx, e.characterID, combat.Action{Type: combat.ActionAttack}))
	case command.HandlerAbility:
		if parsed.RawArgs == "" {
			return say("Usage: " + cmd.Usage), nil
		}
		return e.ability(ctx, parsed.RawArgs)
	case command.HandlerFlee:
		return e.act(e.h.Act(ctx, e.characterID, combat.Action{Type: combat.ActionFlee}))
	case command.HandlerContinue:
		return e.act(e.h.Act(ctx, e.characterID, combat.Action{Type: combat.ActionAcknowledge}))
	case command.HandlerWrite:
		return e.write(ctx, parsed, cmd.Usage)
	case command.HandlerAllocate:
		return e.allocate(ctx, parsed, cmd.Usage)
	case command.HandlerEquip:
		return e.equip(ctx, parsed, cmd.Usage)
	case command.HandlerUnequip:
		if len(parsed.Args) != 1 {
			return say("Usage: " + cmd.Usage), nil
		}
		slot := inventory.Slot(strings.ToLower(parsed.Args[0]))
		snap, err := e.h.Unequip(ctx, e.characterID, slot)
		if err != nil {
			return e.refuse(err)
		}
		return Result{Lines: []string{fmt.Sprintf("You unequip your %s.", slot)}, Snapshot: &snap}, nil
	case command.HandlerBuy:
		if len(parsed.Args) != 1 {
			return say("Usage: " + cmd.Usage), nil
		}
		snap, rec, err := e.h.Purchase(ctx, e.characterID, strings.ToLower(parsed.Args[0]))
		if err != nil {
			return e.refuse(err)
		}
		return Result{
			Lines:    []string{fmt.Sprintf("You bought %s for %s.", rec.Offer.Name, inventory.FormatInkDrops(rec.Offer.Cost))},
			Snapshot: &snap,
		}, nil
	}
	return say(fmt.Sprintf("%s is not available here.", cmd.Name)), nil
}

func say(lines ...string) Result {
	return Result{Lines: lines}
}

func (e *Executor) withSnapshot(ctx context.Context, render func(gameserver.Snapshot) []string) (Result, error) {
	snap, err := e.h.Refresh(ctx, e.characterID)
	if err != nil {
		return Result{}, err
	}
	return Result{Lines: render(snap), Snapshot: &snap}, nil
}

func (e *Executor) act(snap gameserver.Snapshot, err error) (Result, error) {
	if err != nil {
		return e.refuse(err)
	}
	return Result{Snapshot: &snap}, nil
}

// refuse converts expected rule violations into a message. Storage
// failures are returned as errors.
func (e *Executor) refuse(err error) (Result, error) {
	switch {
	case errors.Is(err, gameserver.ErrStorage):
		return Result{}, err
	case errors.Is(err, combat.ErrWrongPhase):
		return say("You can't do that right now."), nil
	case errors.Is(err, gameserver.ErrInCombat):
		return say("Finish the fight first."), nil
	}
	return say(capitalise(err.Error())), nil
}

// capitalise strips a leading "pkg: " prefix and formats err text as a sentence.
func capitalise(s string) string {
	if i := strings.Index(s, ": "); i >= 0 && !strings.Contains(s[:i], " ") {
		s = s[i+2:]
	}
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func (e *Executor) areaKey(arg string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(arg))
	for _, a := range e.h.Catalog().Areas.All() {
		if a.Key == want || strings.ToLower(a.Name) == want {
			return a.Key, true
		}
	}
	return "", false
}

func (e *Executor) ability(ctx context.Context, name string) (Result, error) {
	snap, err := e.h.Refresh(ctx, e.characterID)
	if err != nil {
		return Result{}, err
	}
	ch := snap.Character
	for _, a := range e.h.Catalog().Classes.Abilities(ch.Class, ch.Level) {
		if strings.EqualFold(a.Name, name) {
			name = a.Name
			break
		}
	}
	return e.act(e.h.Act(ctx, e.characterID, combat.Action{Type: combat.ActionAbility, Ability: name}))
}

func (e *Executor) write(ctx context.Context, p command.ParseResult, usage string) (Result, error) {
	words, err := p.Int(0)
	if err != nil {
		return say("Usage: " + usage), nil
	}
	minutes, err := p.Int(1)
	if err != nil {
		return say("Usage: " + usage), nil
	}
	skills, err := p.Assignments(2)
	if err != nil {
		return say(capitalise(err.Error())), nil
	}
	snap, res, err := e.h.RecordSession(ctx, e.characterID, words, minutes, skills)
	if err != nil {
		return e.refuse(err)
	}
	lines := []string{fmt.Sprintf("Session recorded: %d words in %d minutes, +%d XP.", words, minutes, res.XPGained)}
	if res.LevelsGained > 0 {
		lines = append(lines, fmt.Sprintf("Level up! You are now level %d with %d stat points to spend.",
			snap.Character.Level, snap.Character.AvailableStatPoints))
	}
	return Result{Lines: lines, Snapshot: &snap}, nil
}

func (e *Executor) allocate(ctx context.Context, p command.ParseResult, usage string) (Result, error) {
	if len(p.Args) != 2 {
		return say("Usage: " + usage), nil
	}
	points, err := p.Int(1)
	if err != nil {
		return say("Usage: " + usage), nil
	}
	var add ruleset.Attributes
	switch strings.ToLower(p.Args[0]) {
	case "focus":
		add.Focus = points
	case "creativity":
		add.Creativity = points
	case "persistence":
		add.Persistence = points
	case "technique":
		add.Technique = points
	default:
		return say("Usage: " + usage), nil
	}
	snap, err := e.h.AllocateStats(ctx, e.characterID, add)
	if err != nil {
		return e.refuse(err)
	}
	return Result{
		Lines:    []string{fmt.Sprintf("%d point(s) added to %s.", points, strings.ToLower(p.Args[0]))},
		Snapshot: &snap,
	}, nil
}

// equip accepts a 1-based inventory position or an instance ID.
func (e *Executor) equip(ctx context.Context, p command.ParseResult, usage string) (Result, error) {
	if len(p.Args) != 1 {
		return say("Usage: " + usage), nil
	}
	cur, err := e.h.Refresh(ctx, e.characterID)
	if err != nil {
		return Result{}, err
	}
	id := p.Args[0]
	if n, err := p.Int(0); err == nil {
		if n < 1 || n > len(cur.Character.Inventory) {
			return say(fmt.Sprintf("You have no item #%d.", n)), nil
		}
		id = cur.Character.Inventory[n-1].InstanceID
	}
	snap, inst, err := e.h.Equip(ctx, e.characterID, id)
	if err != nil {
		return e.refuse(err)
	}
	return Result{Lines: []string{fmt.Sprintf("You equip %s.", inst.Name)}, Snapshot: &snap}, nil
}
