// Package gridworld implements 2D gridworld environments with walls,
// traps, terminal states, and optional wind
package gridworld

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
)

// ErrUnknownStateCoordinates is returned when a GridWorld is asked for a
// state at coordinates which are out of bounds or blocked by a wall
var ErrUnknownStateCoordinates = errors.New("unknown state coordinates")

// GridWorld represents a gridworld environment of Width x Height cells.
//
// Cells are either empty, walls, traps, terminal, or the initial cell.
// Walls are not states: an agent moving into a wall or off the grid
// stays where it is. An agent acting in a trap is sent back to the
// initial state, and an agent in a terminal state never leaves it. If
// wind is configured, then after each move the wind of the landing cell
// pushes the agent once more.
//
// The states of a GridWorld are enumerated when it is constructed, and a
// GridWorld is never mutated afterwards.
type GridWorld struct {
	width, height int
	terminals     map[Coordinates]bool
	walls         map[Coordinates]bool
	traps         map[Coordinates]bool
	wind          map[Coordinates]Action

	initial  State
	initial2 *State

	states []environment.State
	cells  map[Coordinates]State
}

// New creates a new GridWorld from a configuration
func New(c Config) (*GridWorld, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	g := &GridWorld{
		width:     c.Width,
		height:    c.Height,
		terminals: toSet(c.Terminals),
		walls:     toSet(c.Walls),
		traps:     toSet(c.Traps),
		wind:      make(map[Coordinates]Action, len(c.Wind)),
		cells:     make(map[Coordinates]State),
	}
	for _, w := range c.Wind {
		g.wind[w.Coordinates] = w.Action
	}

	initial := Coordinates{}
	if c.Initial != nil {
		initial = *c.Initial
	}
	g.initial = State{initial, Initial}

	// Enumerate states x-major, skipping walls
	g.states = make([]environment.State, 0, c.Width*c.Height)
	for x := 0; x < c.Width; x++ {
		for y := 0; y < c.Height; y++ {
			coords := Coordinates{x, y}
			kind := g.kind(coords)
			if kind == Wall {
				continue
			}
			s := State{coords, kind}
			g.cells[coords] = s
			g.states = append(g.states, s)
		}
	}

	// The initial cell may have been overridden by a terminal or trap
	g.initial = g.cells[initial]

	if c.SecondInitial != nil {
		s := State{*c.SecondInitial, Empty}
		g.initial2 = &s
	}

	return g, nil
}

// kind returns the kind of the cell at coordinates c, assuming c is
// within the bounds of the GridWorld
func (g *GridWorld) kind(c Coordinates) Kind {
	switch {
	case g.terminals[c]:
		return Terminal
	case g.walls[c]:
		return Wall
	case g.traps[c]:
		return Trap
	case c == g.initial.Coordinates:
		return Initial
	default:
		return Empty
	}
}

// Dims returns the width and height of the GridWorld
func (g *GridWorld) Dims() (width, height int) {
	return g.width, g.height
}

// InBounds returns whether coordinates c lie within the grid
func (g *GridWorld) InBounds(c Coordinates) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// States returns all states of the GridWorld. The returned slice should
// not be modified.
func (g *GridWorld) States() []environment.State {
	return g.states
}

// InitialState returns the initial state
func (g *GridWorld) InitialState() environment.State {
	return g.initial
}

// SecondInitialState returns the starting state of the second agent in
// two-agent games, if one was configured
func (g *GridWorld) SecondInitialState() (State, bool) {
	if g.initial2 == nil {
		return State{}, false
	}
	return *g.initial2, true
}

// GetState returns the state at coordinates c
func (g *GridWorld) GetState(c Coordinates) (State, error) {
	s, ok := g.cells[c]
	if !ok {
		return State{}, fmt.Errorf("getState: %v: %w", c,
			ErrUnknownStateCoordinates)
	}
	return s, nil
}

// Kind returns the kind of the cell at coordinates c. Out of bounds
// coordinates are reported as walls.
func (g *GridWorld) Kind(c Coordinates) Kind {
	if !g.InBounds(c) {
		return Wall
	}
	return g.kind(c)
}

// TakeAction takes action a in state s and returns the next state and
// the effect of the transition. The effect depends only on the state
// landed in: 1 for terminal states, -1 for traps, and 0 otherwise.
//
// States are looked up by their coordinates, so states created by other
// GridWorld instances may be used as long as their coordinates are
// valid in this GridWorld. TakeAction panics if s is not a valid
// state of this GridWorld or if a is not a gridworld Action.
func (g *GridWorld) TakeAction(s environment.State, a environment.Action) (
	environment.State, environment.Effect) {
	state := g.mustState(s)
	action, ok := a.(Action)
	if !ok || !action.Valid() {
		panic(fmt.Sprintf("takeAction: invalid action %v", a))
	}

	var next State
	switch state.Kind {
	case Terminal:
		// Nothing happens in terminal states
		next = state

	case Trap:
		// Traps send the agent back to the start
		next = g.initial

	default:
		next = g.move(state, action)
		if wind, ok := g.wind[next.Coordinates]; ok {
			next = g.move(next, wind)
		}
	}

	return next, effect(next.Kind)
}

// move moves from state s in the direction of a, staying in place if
// the target is blocked
func (g *GridWorld) move(s State, a Action) State {
	if next, ok := g.cells[s.Coordinates.Add(a.Direction())]; ok {
		return next
	}
	return s
}

func (g *GridWorld) mustState(s environment.State) State {
	var coords Coordinates
	switch st := s.(type) {
	case State:
		coords = st.Coordinates
	case *State:
		coords = st.Coordinates
	default:
		panic(fmt.Sprintf("gridworld: cannot use state %v of type %T", s, s))
	}

	state, err := g.GetState(coords)
	if err != nil {
		panic(fmt.Sprintf("gridworld: %v", err))
	}
	return state
}

func effect(k Kind) environment.Effect {
	switch k {
	case Terminal:
		return environment.Success
	case Trap:
		return environment.Failure
	default:
		return environment.Normal
	}
}

func toSet(coords []Coordinates) map[Coordinates]bool {
	set := make(map[Coordinates]bool, len(coords))
	for _, c := range coords {
		set[c] = true
	}
	return set
}
