package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
)

// Action is one of the nine moves an agent can make in a GridWorld. Each
// Action carries a fixed direction vector and a display glyph.
type Action uint8

const (
	Up Action = iota
	Down
	Right
	Left
	UpRight
	UpLeft
	DownRight
	DownLeft
	Wait
)

var actionNames = [...]string{
	"up", "down", "right", "left", "up_right", "up_left", "down_right",
	"down_left", "wait",
}

var actionDirections = [...]Coordinates{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{0, 0},
}

var actionGlyphs = [...]string{
	"↑", "↓", "→", "←", "⬈", "⬉", "⬊",
	"⬋", "⟳",
}

// Valid returns whether a is one of the nine GridWorld actions
func (a Action) Valid() bool {
	return int(a) < len(actionNames)
}

// Direction returns the direction in which the action moves the agent
func (a Action) Direction() Coordinates {
	return actionDirections[a]
}

// Glyph returns the unicode arrow used to display the action
func (a Action) Glyph() string {
	return actionGlyphs[a]
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
	return actionNames[a]
}

// MarshalText implements encoding.TextMarshaler so that actions appear
// by name in JSON configurations
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("marshalText: invalid action %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Action) UnmarshalText(text []byte) error {
	action, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = action
	return nil
}

// ParseAction returns the Action with the given name
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("parseAction: no such action %q", name)
}

// AllActions returns all nine actions, in their enumeration order
func AllActions() []environment.Action {
	actions := make([]environment.Action, 0, len(actionNames))
	for i := range actionNames {
		actions = append(actions, Action(i))
	}
	return actions
}

// BasicActions returns the four cardinal moves: up, down, left, right
func BasicActions() []environment.Action {
	return []environment.Action{Up, Down, Left, Right}
}
