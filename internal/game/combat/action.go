package combat

// ActionType identifies a player command against a session.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota
	ActionAttack
	ActionAbility
	ActionFlee
	ActionAcknowledge
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionAbility:
		return "ability"
	case ActionFlee:
		return "flee"
	case ActionAcknowledge:
		return "acknowledge"
	default:
		return "unknown"
	}
}

// Action is one player command. Ability is set only for ActionAbility.
type Action struct {
	Type    ActionType
	Ability string
}
