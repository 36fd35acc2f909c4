package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/inkquest/internal/game/catalog"
	"github.com/cory-johannsen/inkquest/internal/game/combat"
	"github.com/cory-johannsen/inkquest/internal/game/command"
	"github.com/cory-johannsen/inkquest/internal/game/dice"
	"github.com/cory-johannsen/inkquest/internal/game/session"
	"github.com/cory-johannsen/inkquest/internal/gameserver"
	"github.com/cory-johannsen/inkquest/internal/storage"
	"github.com/cory-johannsen/inkquest/internal/storage/sqlite"
)

type harness struct {
	h     *gameserver.Handler
	chars storage.CharacterStore
	exec  *Executor
	id    int64
	snap  gameserver.Snapshot
}

func newHarness(t *testing.T, class string) *harness {
	t.Helper()
	ctx := context.Background()
	cat, err := catalog.Default()
	require.NoError(t, err)
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "inkquest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	acct, err := db.Accounts().Create(ctx, "writer", "hunter22")
	require.NoError(t, err)

	logger := zap.NewNop()
	res := combat.NewResolver(cat, dice.NewLoggedRoller(dice.NewSeededSource(11), logger), logger)
	h := gameserver.NewHandler(res, cat, db.Characters(), session.NewManager(), logger)
	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	h.SetClock(func() time.Time { return clock })

	ch, err := h.CreateCharacter(ctx, acct.ID, "Ada", class)
	require.NoError(t, err)
	snap, err := h.Open(ctx, ch.ID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(ch.ID) })

	return &harness{h: h, chars: db.Characters(), exec: NewExecutor(h, command.DefaultRegistry(), ch.ID), id: ch.ID, snap: snap}
}

func (hs *harness) run(t *testing.T, line string) Result {
	t.Helper()
	res, err := hs.exec.Execute(context.Background(), line)
	require.NoError(t, err)
	return res
}

func TestNewExecutor_PanicsOnBadArgs(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, command.DefaultRegistry(), 1) })
}

func TestExecute_EmptyAndUnknown(t *testing.T) {
	hs := newHarness(t, "chronicler")
	assert.Empty(t, hs.run(t, "   ").Lines)
	assert.Equal(t, []string{`Unknown command "dance". Type help for a list.`}, hs.run(t, "dance").Lines)
}

func TestExecute_Help(t *testing.T) {
	hs := newHarness(t, "chronicler")
	lines := hs.run(t, "?").Lines
	require.NotEmpty(t, lines)
	assert.Equal(t, "COMBAT", lines[0])
	assert.Contains(t, strings.Join(lines, "\n"), "buy <offer>")
}

func TestExecute_Status(t *testing.T) {
	hs := newHarness(t, "chronicler")
	res := hs.run(t, "st")
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, "Ada, level 1 chronicler", res.Lines[0])
}

func TestExecute_EnterAndFight(t *testing.T) {
	hs := newHarness(t, "wordsmith")

	res := hs.run(t, "enter nowhere")
	assert.Equal(t, []string{`There is no area called "nowhere".`}, res.Lines)

	res = hs.run(t, "go Whispering Woods")
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, combat.PhaseCombat, res.Snapshot.Combat.Phase)
	assert.Empty(t, res.Lines)

	feed, ok := hs.h.Feed(hs.id)
	require.True(t, ok)
	assert.Equal(t, "You enter Whispering Woods.", <-feed.Events())

	res = hs.run(t, "buy coffee_strong")
	assert.Equal(t, []string{"Finish the fight first."}, res.Lines)

	res = hs.run(t, "a")
	require.NotNil(t, res.Snapshot)
	assert.NotEqual(t, combat.PhaseAreaSelection, res.Snapshot.Combat.Phase)
}

func TestExecute_ActionOutsideCombat(t *testing.T) {
	hs := newHarness(t, "chronicler")
	assert.Equal(t, []string{"You can't do that right now."}, hs.run(t, "attack").Lines)
	assert.Equal(t, []string{"You can't do that right now."}, hs.run(t, "continue").Lines)
}

func TestExecute_Write(t *testing.T) {
	hs := newHarness(t, "plotweaver")
	res := hs.run(t, "write 1000 30 dialogue=2")
	assert.Equal(t, []string{
		"Session recorded: 1000 words in 30 minutes, +115 XP.",
		"Level up! You are now level 2 with 3 stat points to spend.",
	}, res.Lines)

	res = hs.run(t, "write lots")
	assert.Equal(t, []string{"Usage: write <words> <minutes> [skill=points ...]"}, res.Lines)
}

func TestExecute_Allocate(t *testing.T) {
	hs := newHarness(t, "plotweaver")
	hs.run(t, "write 1000 30")

	res := hs.run(t, "allocate focus 2")
	assert.Equal(t, []string{"2 point(s) added to focus."}, res.Lines)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, 1, res.Snapshot.Character.AvailableStatPoints)

	res = hs.run(t, "train luck 1")
	assert.Equal(t, []string{"Usage: allocate <focus|creativity|persistence|technique> <points>"}, res.Lines)

	res = hs.run(t, "allocate focus 5")
	require.Len(t, res.Lines, 1)
	assert.True(t, strings.HasPrefix(res.Lines[0], "Not enough stat points"), res.Lines[0])
}

func TestExecute_Store(t *testing.T) {
	hs := newHarness(t, "dialogist")
	lines := hs.run(t, "shop").Lines
	require.NotEmpty(t, lines)
	assert.Equal(t, "You have 50 Ink Drops.", lines[0])

	res := hs.run(t, "buy coffee_strong")
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, 25, res.Snapshot.Character.InkDrops)
	assert.True(t, strings.HasPrefix(res.Lines[0], "You bought "), res.Lines[0])

	res = hs.run(t, "buy xyz")
	assert.Equal(t, []string{`Unknown offer: "xyz".`}, res.Lines)
}

func TestExecute_EquipOutOfRange(t *testing.T) {
	hs := newHarness(t, "chronicler")
	assert.Equal(t, []string{"You have no item #3."}, hs.run(t, "equip 3").Lines)
	assert.Equal(t, []string{"Usage: equip <item #>"}, hs.run(t, "wear").Lines)
}

func TestExecute_EquipByPosition(t *testing.T) {
	hs := newHarness(t, "chronicler")
	ctx := context.Background()
	ch, err := hs.chars.Get(ctx, hs.id)
	require.NoError(t, err)
	ch.InkDrops = 200
	require.NoError(t, hs.chars.Save(ctx, ch))

	hs.run(t, "buy store_cloak_writer")
	res := hs.run(t, "equip 1")
	assert.Equal(t, []string{"You equip Writer's Cloak."}, res.Lines)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, "store_cloak_writer", res.Snapshot.Character.Equipment.Armor)
}

func TestExecute_Quit(t *testing.T) {
	hs := newHarness(t, "chronicler")
	res := hs.run(t, "q")
	assert.True(t, res.Quit)
}

func TestCapitalise(t *testing.T) {
	assert.Equal(t, "Slot is empty: armor.", capitalise("inventory: slot is empty: armor"))
	assert.Equal(t, "Word count must be positive.", capitalise("word count must be positive"))
	assert.Equal(t, "", capitalise(""))
}

func TestModel_ResultAndFeed(t *testing.T) {
	hs := newHarness(t, "chronicler")
	feed, ok := hs.h.Feed(hs.id)
	require.True(t, ok)
	var m tea.Model = NewModel(context.Background(), hs.exec, feed, 0, hs.snap)

	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, cmd := m.Update(feedMsg{line: "A wild Ink Sprite (Level 1) appears!"})
	assert.NotNil(t, cmd, "listening continues after each line")
	assert.Contains(t, m.View(), "Ink Sprite")

	snap := hs.snap
	snap.Character = snap.Character.Clone()
	snap.Character.InkDrops = 999
	m, cmd = m.Update(resultMsg{res: Result{Lines: []string{"You bought nothing."}, Snapshot: &snap}})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "999 Ink Drops")

	_, cmd = m.Update(resultMsg{res: Result{Quit: true}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_EmptyEnterIsIgnored(t *testing.T) {
	hs := newHarness(t, "chronicler")
	feed, _ := hs.h.Feed(hs.id)
	m := NewModel(context.Background(), hs.exec, feed, 0, hs.snap)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestWaitForFeed_Closed(t *testing.T) {
	feed := session.NewFeed(1, 1)
	feed.Close()
	assert.IsType(t, feedClosedMsg{}, waitForFeed(feed, time.Second)())
}

func TestIsCounterTurn(t *testing.T) {
	assert.True(t, isCounterTurn("Ink Sprite attacks you for 3 damage."))
	assert.False(t, isCounterTurn("You attack Ink Sprite for 5 damage."))
}
