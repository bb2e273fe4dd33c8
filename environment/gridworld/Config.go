package gridworld

import "fmt"

// Wind pushes an agent landing on a cell in the direction of an Action
type Wind struct {
	Coordinates
	Action Action
}

// Config is the configuration of a GridWorld. A nil Initial places the
// initial state at (0, 0). SecondInitial is the starting cell of the
// second agent in two-agent games.
type Config struct {
	Width, Height int
	Terminals     []Coordinates
	Walls         []Coordinates
	Traps         []Coordinates
	Initial       *Coordinates `json:",omitempty"`
	SecondInitial *Coordinates `json:",omitempty"`
	Wind          []Wind       `json:",omitempty"`
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("gridworld: invalid shape (%d, %d)", c.Width,
			c.Height)
	}

	inBounds := func(p Coordinates) bool {
		return p.X >= 0 && p.X < c.Width && p.Y >= 0 && p.Y < c.Height
	}
	walls := toSet(c.Walls)

	for _, group := range [][]Coordinates{c.Terminals, c.Walls, c.Traps} {
		for _, p := range group {
			if !inBounds(p) {
				return fmt.Errorf("gridworld: coordinates %v out of bounds", p)
			}
		}
	}

	if c.Initial != nil {
		if !inBounds(*c.Initial) || walls[*c.Initial] {
			return fmt.Errorf("gridworld: invalid initial coordinates %v",
				*c.Initial)
		}
	} else if walls[Coordinates{}] {
		return fmt.Errorf("gridworld: default initial coordinates %v are "+
			"a wall", Coordinates{})
	}

	if c.SecondInitial != nil {
		if !inBounds(*c.SecondInitial) || walls[*c.SecondInitial] {
			return fmt.Errorf("gridworld: invalid second initial "+
				"coordinates %v", *c.SecondInitial)
		}
	}

	for _, w := range c.Wind {
		if !inBounds(w.Coordinates) || !w.Action.Valid() {
			return fmt.Errorf("gridworld: invalid wind %v at %v", w.Action,
				w.Coordinates)
		}
	}

	return nil
}

// CreateWorld creates the GridWorld described by the Config
func (c Config) CreateWorld() (*GridWorld, error) {
	return New(c)
}
