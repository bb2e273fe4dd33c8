// Package worldmap implements a partial map of a grid world which is
// built from the transitions an agent observes
package worldmap

import (
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
)

// WorldMap records the grid world states an agent has observed. Walls
// are inferred from collisions: an action that leaves the agent where
// it was, in a non-terminal state, must have been blocked by a wall at
// its target. The map only ever grows.
//
// For each known state the map caches the reasonable actions: the
// actions whose target is not a known wall or trap.
type WorldMap struct {
	actions []environment.Action

	known      map[gridworld.State]bool
	states     []gridworld.State
	noGo       map[gridworld.Coordinates]bool
	reasonable map[gridworld.State][]environment.Action
}

// New returns a new WorldMap over the given ordered actions, which
// already knows the argument states
func New(actions []environment.Action, known ...gridworld.State) *WorldMap {
	m := &WorldMap{
		actions:    actions,
		known:      make(map[gridworld.State]bool),
		noGo:       make(map[gridworld.Coordinates]bool),
		reasonable: make(map[gridworld.State][]environment.Action),
	}
	for _, s := range known {
		m.add(s)
	}
	return m
}

// Update records the transition from s to next under action a. It
// returns whether the map learned something that invalidates plans
// made with it: a collision, or a step into a trap.
func (m *WorldMap) Update(s gridworld.State, a gridworld.Action,
	next gridworld.State) bool {
	m.add(s)

	dir := a.Direction()
	collision := next == s && s.Kind != gridworld.Terminal &&
		dir != (gridworld.Coordinates{})

	if collision {
		m.add(gridworld.State{
			Coordinates: s.Coordinates.Add(dir),
			Kind:        gridworld.Wall,
		})
	} else {
		m.add(next)
	}

	return collision || next.Kind == gridworld.Trap
}

func (m *WorldMap) add(s gridworld.State) {
	if m.known[s] {
		return
	}
	m.known[s] = true
	m.states = append(m.states, s)

	if s.Kind == gridworld.Wall || s.Kind == gridworld.Trap {
		if !m.noGo[s.Coordinates] {
			m.noGo[s.Coordinates] = true
			for _, known := range m.states {
				m.reasonable[known] = m.reasonableActions(known)
			}
			return
		}
	}
	m.reasonable[s] = m.reasonableActions(s)
}

func (m *WorldMap) reasonableActions(s gridworld.State) []environment.Action {
	actions := make([]environment.Action, 0, len(m.actions))
	for _, a := range m.actions {
		action, ok := a.(gridworld.Action)
		if !ok {
			continue
		}
		if !m.noGo[s.Coordinates.Add(action.Direction())] {
			actions = append(actions, a)
		}
	}
	return actions
}

// ReasonableActions returns the actions of s whose targets are not
// known to be walls or traps, and whether s is known to the map
func (m *WorldMap) ReasonableActions(s gridworld.State) (
	[]environment.Action, bool) {
	actions, ok := m.reasonable[s]
	return actions, ok
}

// ReasonableActionsOr returns the reasonable actions of s, or the full
// action set if s is unknown
func (m *WorldMap) ReasonableActionsOr(s environment.State) []environment.Action {
	if state, ok := s.(gridworld.State); ok {
		if actions, ok := m.reasonable[state]; ok {
			return actions
		}
	}
	return m.actions
}

// NoGo returns whether c is known to be a wall or trap
func (m *WorldMap) NoGo(c gridworld.Coordinates) bool {
	return m.noGo[c]
}

// Contains returns whether the map knows state s
func (m *WorldMap) Contains(s gridworld.State) bool {
	return m.known[s]
}

// States returns the known states in the order they were observed. The
// returned slice should not be modified.
func (m *WorldMap) States() []gridworld.State {
	return m.states
}

// Coordinates returns the coordinates of the known states of a kind
// that lie in a width x height grid
func (m *WorldMap) Coordinates(kind gridworld.Kind, width,
	height int) []gridworld.Coordinates {
	var coords []gridworld.Coordinates
	for _, s := range m.states {
		c := s.Coordinates
		if s.Kind == kind && c.X >= 0 && c.X < width && c.Y >= 0 &&
			c.Y < height {
			coords = append(coords, c)
		}
	}
	return coords
}

// Len returns the number of known states
func (m *WorldMap) Len() int {
	return len(m.states)
}
