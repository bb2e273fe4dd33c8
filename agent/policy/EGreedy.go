package policy

import (
	"fmt"

	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
)

// EGreedy implements an ε-greedy policy over a Q-table. In each state
// that has been updated, the best known action is selected with
// probability 1-ε and every other action with probability ε/(|A|-1).
// States which were never updated are uniformly random.
type EGreedy struct {
	actionSet
	epsilon float64
	decayer decay.Decayer

	best  map[environment.State]environment.Action
	probs map[environment.State][]float64
}

// NewEGreedy returns a new EGreedy policy. If d is nil, ε is never
// decayed.
func NewEGreedy(epsilon float64, actions []environment.Action,
	d decay.Decayer) (*EGreedy, error) {
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

	return &EGreedy{
		actionSet: set,
		epsilon:   epsilon,
		decayer:   d,
		best:      make(map[environment.State]environment.Action),
		probs:     make(map[environment.State][]float64),
	}, nil
}

// Probability returns the probability of selecting a in s
func (e *EGreedy) Probability(s environment.State, a environment.Action) (
	float64, error) {
	i, ok := e.index[a]
	if !ok {
		return 0, e.invalid(a)
	}

	probs, ok := e.probs[s]
	if !ok {
		return 1 / float64(len(e.actions)), nil
	}
	return probs[i], nil
}

// Update sets the best action of state s. Probabilities of s are only
// recomputed if the best action changed or if force is true.
func (e *EGreedy) Update(s environment.State, best environment.Action,
	force bool) error {
	i, ok := e.index[best]
	if !ok {
		return e.invalid(best)
	}

	if current, ok := e.best[s]; ok && current == best && !force {
		return nil
	}
	e.best[s] = best
	e.probs[s] = egreedyProbs(e.epsilon, i, len(e.actions), e.probs[s])

	return nil
}

// Best returns the best action recorded for state s
func (e *EGreedy) Best(s environment.State) (environment.Action, bool) {
	a, ok := e.best[s]
	return a, ok
}

// States returns the number of states which have been updated
func (e *EGreedy) States() int {
	return len(e.best)
}

// Epsilon returns the current value of ε
func (e *EGreedy) Epsilon() float64 {
	return e.epsilon
}

// SetEpsilon sets ε and recomputes the probabilities of every state
// updated so far
func (e *EGreedy) SetEpsilon(epsilon float64) error {
	if err := validateEpsilon(epsilon); err != nil {
		return err
	}

	e.epsilon = epsilon
	for s, best := range e.best {
		e.probs[s] = egreedyProbs(epsilon, e.index[best], len(e.actions),
			e.probs[s])
	}
	return nil
}

// Decay decays ε using the decay schedule of the policy
func (e *EGreedy) Decay(step int) {
	decayEpsilon(e, e.decayer, step)
}

// Decayer returns the decay schedule of ε
func (e *EGreedy) Decayer() decay.Decayer {
	return e.decayer
}

// epsilonSetter is implemented by policies with a settable ε
type epsilonSetter interface {
	Epsilon() float64
	SetEpsilon(float64) error
}

func decayEpsilon(p epsilonSetter, d decay.Decayer, step int) {
	if _, ok := d.(decay.Constant); ok {
		return
	}

	next := d.Apply(p.Epsilon(), step)
	if next < 0 {
		next = 0
	} else if next > 1 {
		next = 1
	}

	// Cannot fail since next is in [0, 1]
	_ = p.SetEpsilon(next)
}

// egreedyProbs fills dst with the ε-greedy distribution over n actions
// where action best is greedy
func egreedyProbs(epsilon float64, best, n int, dst []float64) []float64 {
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	if n == 1 {
		dst[0] = 1
		return dst
	}

	other := epsilon / float64(n-1)
	for i := range dst {
		if i == best {
			dst[i] = 1 - epsilon
		} else {
			dst[i] = other
		}
	}
	return dst
}

func validateEpsilon(epsilon float64) error {
	if epsilon < 0 || epsilon > 1 {
		return fmt.Errorf("policy: epsilon must be in [0, 1], got %v",
			epsilon)
	}
	return nil
}
