package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
	"golang.org/x/exp/rand"
)

// RandomStarter samples starting states uniformly from the non-trap
// states of a GridWorld
type RandomStarter struct {
	world *GridWorld
	rng   *rand.Rand
}

// NewRandomStarter returns a new RandomStarter for world g
func NewRandomStarter(g *GridWorld, seed uint64) *RandomStarter {
	return &RandomStarter{g, rand.New(rand.NewSource(seed))}
}

// Start returns a random starting state
func (r *RandomStarter) Start() environment.State {
	s, err := r.StartExcluding()
	if err != nil {
		panic(err)
	}
	return s
}

// StartExcluding returns a random non-trap state which is not one of
// the excluded states
func (r *RandomStarter) StartExcluding(exclude ...State) (State, error) {
	excluded := make(map[Coordinates]bool, len(exclude))
	for _, s := range exclude {
		excluded[s.Coordinates] = true
	}

	candidates := make([]State, 0, len(r.world.states))
	for _, s := range r.world.states {
		state := s.(State)
		if state.Kind != Trap && !excluded[state.Coordinates] {
			candidates = append(candidates, state)
		}
	}

	if len(candidates) == 0 {
		return State{}, fmt.Errorf("startExcluding: no valid starting states")
	}
	return candidates[r.rng.Intn(len(candidates))], nil
}
