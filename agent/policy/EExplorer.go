package policy

import (
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
)

// EExplorer is an ε-greedy policy restricted, in each state, to a subset
// of reasonable actions. Actions outside the subset of a state have
// probability 0, and if the subset has a single action, that action is
// always selected. States which were never updated are uniformly random
// over all actions.
type EExplorer struct {
	actionSet
	epsilon float64
	decayer decay.Decayer

	best  map[environment.State]environment.Action
	valid map[environment.State][]environment.Action
	probs map[environment.State]map[environment.Action]float64
}

// NewEExplorer returns a new EExplorer policy. If d is nil, ε is never
// decayed.
func NewEExplorer(epsilon float64, actions []environment.Action,
	d decay.Decayer) (*EExplorer, error) {
	if err := validateEpsilon(epsilon); err != nil {
		return nil, err
	}
	set, err := newActionSet(actions)
	if err != nil {
		return nil, err
	}
	if d == nil {
		d = decay.Constant{}
	}

	return &EExplorer{
		actionSet: set,
		epsilon:   epsilon,
		decayer:   d,
		best:      make(map[environment.State]environment.Action),
		valid:     make(map[environment.State][]environment.Action),
		probs:     make(map[environment.State]map[environment.Action]float64),
	}, nil
}

// Probability returns the probability of selecting a in s
func (e *EExplorer) Probability(s environment.State, a environment.Action) (
	float64, error) {
	if !e.contains(a) {
		return 0, e.invalid(a)
	}

	if _, ok := e.valid[s]; !ok {
		return 1 / float64(len(e.actions)), nil
	}
	p, ok := e.probs[s][a]
	if !ok {
		return 0, nil
	}
	return p, nil
}

// Update sets the best action and the reasonable actions of state s.
// Probabilities of s are only recomputed if either changed or if force
// is true. An empty set of valid actions is treated as the full action
// set. Duplicate valid actions are ignored.
func (e *EExplorer) Update(s environment.State, best environment.Action,
	valid []environment.Action, force bool) error {
	if len(valid) == 0 {
		valid = e.actions
	}

	bestValid := false
	seen := make(map[environment.Action]bool, len(valid))
	v := make([]environment.Action, 0, len(valid))
	for _, a := range valid {
		if !e.contains(a) {
			return e.invalid(a)
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		v = append(v, a)
		bestValid = bestValid || a == best
	}
	if !bestValid {
		return e.invalid(best)
	}

	current, ok := e.best[s]
	if ok && current == best && sameActions(e.valid[s], v) && !force {
		return nil
	}

	e.best[s] = best
	e.valid[s] = v
	e.probs[s] = explorerProbs(e.epsilon, best, v)

	return nil
}

// Valid returns the reasonable actions recorded for state s
func (e *EExplorer) Valid(s environment.State) ([]environment.Action, bool) {
	v, ok := e.valid[s]
	return v, ok
}

// Best returns the best action recorded for state s
func (e *EExplorer) Best(s environment.State) (environment.Action, bool) {
	a, ok := e.best[s]
	return a, ok
}

// Epsilon returns the current value of ε
func (e *EExplorer) Epsilon() float64 {
	return e.epsilon
}

// SetEpsilon sets ε and recomputes the probabilities of every state
// updated so far
func (e *EExplorer) SetEpsilon(epsilon float64) error {
	if err := validateEpsilon(epsilon); err != nil {
		return err
	}

	e.epsilon = epsilon
	for s, best := range e.best {
		e.probs[s] = explorerProbs(epsilon, best, e.valid[s])
	}
	return nil
}

// Decay decays ε using the decay schedule of the policy
func (e *EExplorer) Decay(step int) {
	decayEpsilon(e, e.decayer, step)
}

// Decayer returns the decay schedule of ε
func (e *EExplorer) Decayer() decay.Decayer {
	return e.decayer
}

func explorerProbs(epsilon float64, best environment.Action,
	valid []environment.Action) map[environment.Action]float64 {
	probs := make(map[environment.Action]float64, len(valid))
	if len(valid) == 1 {
		probs[valid[0]] = 1
		return probs
	}

	other := epsilon / float64(len(valid)-1)
	for _, a := range valid {
		if a == best {
			probs[a] = 1 - epsilon
		} else {
			probs[a] = other
		}
	}
	return probs
}

func sameActions(a, b []environment.Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
