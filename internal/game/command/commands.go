// Package command provides the command registry, parser, and built-in command definitions.
package command

import "sort"

// Categories for organizing commands.
const (
	CategoryCombat    = "combat"
	CategoryCharacter = "character"
	CategoryStore     = "store"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to client actions.
const (
	HandlerAreas     = "areas"
	HandlerEnter     = "enter"
	HandlerAttack    = "attack"
	HandlerAbility   = "ability"
	HandlerFlee      = "flee"
	HandlerContinue  = "continue"
	HandlerStatus    = "status"
	HandlerInventory = "inventory"
	HandlerEquip     = "equip"
	HandlerUnequip   = "unequip"
	HandlerWrite     = "write"
	HandlerAllocate  = "allocate"
	HandlerSkills    = "skills"
	HandlerStore     = "store"
	HandlerBuy       = "buy"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "enter <area>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the client action.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Combat
		{Name: "areas", Aliases: []string{"map"}, Usage: "areas", Help: "List areas with their difficulty", Category: CategoryCombat, Handler: HandlerAreas},
		{Name: "enter", Aliases: []string{"go"}, Usage: "enter <area>", Help: "Start an encounter in an area", Category: CategoryCombat, Handler: HandlerEnter},
		{Name: "attack", Aliases: []string{"a", "att"}, Usage: "attack", Help: "Attack the monster", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "use", Aliases: []string{"cast", "ability"}, Usage: "use <ability>", Help: "Use a class ability", Category: CategoryCombat, Handler: HandlerAbility},
		{Name: "flee", Aliases: []string{"run"}, Usage: "flee", Help: "Flee combat (costs 5 mana)", Category: CategoryCombat, Handler: HandlerFlee},
		{Name: "continue", Aliases: []string{"ok", "c"}, Usage: "continue", Help: "Return to area selection after a fight", Category: CategoryCombat, Handler: HandlerContinue},

		// Character
		{Name: "status", Aliases: []string{"st", "stats"}, Usage: "status", Help: "Show character stats", Category: CategoryCharacter, Handler: HandlerStatus},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Usage: "inventory", Help: "List owned and equipped items", Category: CategoryCharacter, Handler: HandlerInventory},
		{Name: "equip", Aliases: []string{"wear", "wield"}, Usage: "equip <item #>", Help: "Equip an inventory item", Category: CategoryCharacter, Handler: HandlerEquip},
		{Name: "unequip", Aliases: []string{"remove"}, Usage: "unequip <weapon|armor|accessory>", Help: "Unequip a slot", Category: CategoryCharacter, Handler: HandlerUnequip},
		{Name: "write", Aliases: []string{"session"}, Usage: "write <words> <minutes> [skill=points ...]", Help: "Record a writing session", Category: CategoryCharacter, Handler: HandlerWrite},
		{Name: "allocate", Aliases: []string{"train"}, Usage: "allocate <focus|creativity|persistence|technique> <points>", Help: "Spend stat points", Category: CategoryCharacter, Handler: HandlerAllocate},
		{Name: "skills", Aliases: nil, Usage: "skills", Help: "Show writing skill levels", Category: CategoryCharacter, Handler: HandlerSkills},

		// Store
		{Name: "store", Aliases: []string{"shop"}, Usage: "store", Help: "List store offers", Category: CategoryStore, Handler: HandlerStore},
		{Name: "buy", Aliases: []string{"purchase"}, Usage: "buy <offer>", Help: "Buy a store offer", Category: CategoryStore, Handler: HandlerBuy},

		// System
		{Name: "help", Aliases: []string{"?", "commands"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Save and leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// Categories returns the category names in display order.
func Categories() []string {
	return []string{CategoryCombat, CategoryCharacter, CategoryStore, CategorySystem}
}

func sortByName(cmds []*Command) {
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
}
