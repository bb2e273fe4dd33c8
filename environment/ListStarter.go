package environment

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ListStarter returns starting states sampled uniformly from a fixed
// list of states.
type ListStarter struct {
	states []State
	seed   uint64
	rand   distuv.Categorical
}

// NewListStarter returns a new ListStarter sampling uniformly from
// states
func NewListStarter(states []State, seed uint64) (*ListStarter, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("newListStarter: no states to start from")
	}

	weights := make([]float64, len(states))
	for i := range weights {
		weights[i] = 1.0 / float64(len(weights))
	}
	source := rand.NewSource(seed)

	return &ListStarter{
		states: states,
		seed:   seed,
		rand:   distuv.NewCategorical(weights, source),
	}, nil
}

// Start returns a starting state
func (l *ListStarter) Start() State {
	return l.states[int(l.rand.Rand())]
}

// SingleStarter always starts at the same state
type SingleStarter struct {
	State
}

// Start returns the starting state
func (s SingleStarter) Start() State {
	return s.State
}
