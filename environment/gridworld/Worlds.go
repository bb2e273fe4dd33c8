package gridworld

// SmallWorld01 is a 4x5 world with a single trap next to the goal
var SmallWorld01 = Config{
	Width:     4,
	Height:    5,
	Terminals: []Coordinates{{0, 4}},
	Walls:     []Coordinates{{0, 1}, {1, 1}, {2, 3}},
	Traps:     []Coordinates{{1, 3}},
}

// SmallWorld02 is a 5x5 world with a corridor to the goal
var SmallWorld02 = Config{
	Width:     5,
	Height:    5,
	Terminals: []Coordinates{{1, 4}},
	Walls:     []Coordinates{{0, 1}, {1, 1}, {2, 3}, {3, 3}},
	Traps:     []Coordinates{{1, 3}},
}

var MediumWorld01 = Config{
	Width:     6,
	Height:    7,
	Terminals: []Coordinates{{5, 6}},
	Walls: []Coordinates{
		{1, 1}, {2, 1}, {3, 1}, {4, 1}, {4, 3}, {5, 5}, {3, 3}, {3, 4},
		{3, 5},
	},
	Traps: []Coordinates{{1, 3}, {2, 3}, {0, 5}, {1, 5}},
}

var LargeWorld01 = Config{
	Width:     8,
	Height:    10,
	Terminals: []Coordinates{{5, 6}},
	Walls: []Coordinates{
		{1, 1}, {2, 1}, {3, 1}, {5, 1}, {5, 2}, {5, 4}, {5, 5}, {4, 5},
		{3, 3}, {3, 4}, {3, 5}, {3, 6}, {2, 6}, {1, 6}, {7, 0}, {7, 1},
		{7, 2}, {7, 3}, {7, 4}, {6, 6}, {6, 7}, {6, 8}, {5, 8}, {3, 8},
		{3, 9}, {0, 3},
	},
	Traps: []Coordinates{{1, 3}, {1, 4}, {1, 9}},
}

// TaggingWorld01 is a 6x6 world with a few walls and no goal for games
// of tag. The chaser starts in one corner and the runner in the other.
var TaggingWorld01 = Config{
	Width:         6,
	Height:        6,
	Walls:         []Coordinates{{2, 2}, {2, 3}, {3, 2}, {4, 4}},
	Initial:       &Coordinates{0, 0},
	SecondInitial: &Coordinates{5, 5},
}

// Named returns one of the predefined world configurations by name
func Named(name string) (Config, bool) {
	switch name {
	case "SmallWorld01":
		return SmallWorld01, true
	case "SmallWorld02":
		return SmallWorld02, true
	case "MediumWorld01":
		return MediumWorld01, true
	case "LargeWorld01":
		return LargeWorld01, true
	case "TaggingWorld01":
		return TaggingWorld01, true
	}
	return Config{}, false
}
