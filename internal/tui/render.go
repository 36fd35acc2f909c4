package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/combat"
	"github.com/cory-johannsen/inkquest/internal/game/command"
	"github.com/cory-johannsen/inkquest/internal/game/condition"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/npc"
	"github.com/cory-johannsen/inkquest/internal/game/store"
	"github.com/cory-johannsen/inkquest/internal/gameserver"
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	combatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8787"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func renderHelp(reg *command.Registry) []string {
	byCat := reg.CommandsByCategory()
	var lines []string
	for _, cat := range command.Categories() {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, strings.ToUpper(cat))
		for _, c := range cmds {
			line := fmt.Sprintf("  %-55s %s", c.Usage, c.Help)
			if len(c.Aliases) > 0 {
				line += fmt.Sprintf(" (%s)", strings.Join(c.Aliases, ", "))
			}
			lines = append(lines, line)
		}
	}
	return lines
}

func renderAreas(areas []npc.Area, level int) []string {
	lines := make([]string, 0, len(areas)+1)
	lines = append(lines, fmt.Sprintf("Areas for a level %d writer:", level))
	for _, a := range areas {
		lines = append(lines, fmt.Sprintf("  %-22s levels %-6s %-11s %s",
			a.Name, a.Levels.String(), a.Difficulty(level), a.Description))
	}
	return lines
}

// renderStatus describes the character and, during an encounter, the fight.
func renderStatus(s gameserver.Snapshot) []string {
	ch := s.Character
	health, mana := ch.Health, ch.Mana
	if s.Combat.Phase == combat.PhaseCombat {
		health, mana = s.Combat.PlayerHealth, s.Combat.PlayerMana
	}
	lines := []string{
		fmt.Sprintf("%s, level %d %s", ch.Name, ch.Level, ch.Class),
		fmt.Sprintf("XP %d/%d", ch.XP, ch.XPToNext),
		fmt.Sprintf("Health %d/%d  Mana %d/%d", health, s.Stats.MaxHealth, mana, s.Stats.MaxMana),
		fmt.Sprintf("Attack %d  Defense %d  Crit %.1f%% x%.2f",
			s.Stats.Attack, s.Stats.Defense, s.Stats.CritChance, s.Stats.CritMultiplier),
		fmt.Sprintf("Ink Drops %s", inventory.FormatInkDrops(ch.InkDrops)),
	}
	if a := ch.Attributes; a != nil {
		lines = append(lines, fmt.Sprintf("Focus %d  Creativity %d  Persistence %d  Technique %d",
			a.Focus, a.Creativity, a.Persistence, a.Technique))
	}
	if ch.AvailableStatPoints > 0 {
		lines = append(lines, fmt.Sprintf("%d stat point(s) to allocate", ch.AvailableStatPoints))
	}
	if ch.XPBoost > 0 {
		lines = append(lines, fmt.Sprintf("Next session XP x%.2f", ch.XPBoost))
	}
	return append(lines, renderEncounter(s.Combat)...)
}

func renderEncounter(sess combat.Session) []string {
	if sess.Monster == nil {
		return nil
	}
	m := sess.Monster
	lines := []string{fmt.Sprintf("Fighting %s (level %d) %d/%d", m.DisplayName, m.Level, m.Health, m.MaxHealth)}
	if sess.Phase == combat.PhaseCombat {
		lines = append(lines, fmt.Sprintf("Turn %d", sess.Turn))
	}
	if c := renderConditions(sess.PlayerConditions); c != "" {
		lines = append(lines, "You: "+c)
	}
	if c := renderConditions(sess.MonsterConditions); c != "" {
		lines = append(lines, "Monster: "+c)
	}
	switch sess.Phase {
	case combat.PhaseVictory, combat.PhaseDefeat:
		lines = append(lines, "Type continue to return to area selection.")
	}
	return lines
}

func renderConditions(s condition.ActiveSet) string {
	parts := make([]string, 0, len(s.Conditions))
	for _, c := range s.Conditions {
		parts = append(parts, fmt.Sprintf("%s (%d)", c.Name, c.Remaining))
	}
	return strings.Join(parts, ", ")
}

func renderInventory(ch *character.Character) []string {
	lines := []string{"Equipped:"}
	for _, slot := range inventory.Slots() {
		id := ch.Equipment.Get(slot)
		if id == "" {
			id = "-"
		}
		lines = append(lines, fmt.Sprintf("  %-10s %s", slot, id))
	}
	if len(ch.Inventory) == 0 {
		return append(lines, "Your pack is empty.")
	}
	lines = append(lines, "Pack:")
	for i, inst := range ch.Inventory {
		lines = append(lines, fmt.Sprintf("  %2d. %-28s %-9s %s", i+1, inst.Name, inst.Rarity, inst.Slot))
	}
	return lines
}

func renderSkills(ch *character.Character) []string {
	if len(ch.SkillXP) == 0 {
		return []string{"No skill XP yet. Try: write 500 30 dialogue=2"}
	}
	names := make([]string, 0, len(ch.SkillXP))
	for name := range ch.SkillXP {
		names = append(names, name)
	}
	slices.Sort(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		level, cur, next := character.SkillLevel(ch.SkillXP[name])
		lines = append(lines, fmt.Sprintf("  %-16s level %d (%d/%d)", name, level, cur, next))
	}
	return lines
}

func renderStore(offers []store.Offer, ink int) []string {
	lines := []string{fmt.Sprintf("You have %s.", inventory.FormatInkDrops(ink))}
	for _, o := range offers {
		mark := " "
		if o.Cost > ink {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf(" %s %-22s %-10s %8s  %s", mark, o.ID, o.Kind, inventory.FormatInkDrops(o.Cost), o.Name))
	}
	return lines
}

// renderSidebar is the always-visible state panel.
func renderSidebar(s *gameserver.Snapshot) string {
	if s == nil || s.Character == nil {
		return ""
	}
	ch := s.Character
	health, mana := ch.Health, ch.Mana
	if s.Combat.Phase == combat.PhaseCombat {
		health, mana = s.Combat.PlayerHealth, s.Combat.PlayerMana
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("WRITER") + "\n")
	fmt.Fprintf(&b, "%s\nLevel %d %s\nXP %d/%d\n\n", ch.Name, ch.Level, ch.Class, ch.XP, ch.XPToNext)
	b.WriteString(titleStyle.Render("VITALS") + "\n")
	fmt.Fprintf(&b, "HP %d/%d\nMP %d/%d\n%s\n\n", health, s.Stats.MaxHealth, mana, s.Stats.MaxMana, inventory.FormatInkDrops(ch.InkDrops))
	if enc := renderEncounter(s.Combat); len(enc) > 0 {
		b.WriteString(titleStyle.Render("ENCOUNTER") + "\n")
		b.WriteString(strings.Join(enc, "\n"))
	}
	return b.String()
}
