package gridworld

import (
	"encoding/gob"
	"fmt"
)

func init() {
	gob.Register(State{})
	gob.Register(TagState{})
	gob.Register(Action(0))
}

// Coordinates is a position (x, y) in a GridWorld. Coordinates are the
// stable identity of a cell: states of different GridWorld instances
// with the same Coordinates refer to the same cell.
type Coordinates struct {
	X, Y int
}

// Add returns the coordinates c translated by d
func (c Coordinates) Add(d Coordinates) Coordinates {
	return Coordinates{c.X + d.X, c.Y + d.Y}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Kind describes what a cell of a GridWorld contains
type Kind uint8

const (
	Empty Kind = iota
	Wall
	Trap
	Terminal
	Initial
)

var kindNames = [...]string{"empty", "wall", "trap", "terminal", "initial"}

// Symbols used when rendering a cell of each Kind
var kindSymbols = [...]string{" ", "█", "☠", "✘", "⚐"}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Symbol returns the unicode symbol used to display the kind
func (k Kind) Symbol() string {
	return kindSymbols[k]
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unmarshalText: no such kind %q", text)
}

// State is a cell of a GridWorld: its coordinates and its kind
type State struct {
	Coordinates
	Kind Kind
}

// NewState returns a new State
func NewState(x, y int, kind Kind) State {
	return State{Coordinates{x, y}, kind}
}

func (s State) String() string {
	return fmt.Sprintf("%v%v", s.Kind, s.Coordinates)
}

// TagState is the joint state of the two agents in a game of tag: the
// positions of the chaser and the runner.
type TagState struct {
	Chaser Coordinates
	Runner Coordinates
}

func (t TagState) String() string {
	return fmt.Sprintf("tag[%v, %v]", t.Chaser, t.Runner)
}
