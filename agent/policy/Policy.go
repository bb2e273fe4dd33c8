// Package policy implements tabular policies: mappings from state-action
// pairs to selection probabilities
package policy

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/utils/floatutils"
)

var (
	// ErrInvalidAction is returned when a policy is queried about an
	// action outside of its action set
	ErrInvalidAction = errors.New("invalid action")

	// ErrPolicyNormalization is returned when the probabilities of a
	// policy over its actions do not sum to one
	ErrPolicyNormalization = errors.New("policy is not normalized")
)

// Policy returns the probability of selecting an action in a state. For
// every state, probabilities over the action set of the policy sum to 1.
type Policy interface {
	Probability(s environment.State, a environment.Action) (float64, error)
}

// Decayer is a Policy whose exploration can be decayed between episodes
type Decayer interface {
	Policy
	Decay(step int)
}

// actionSet indexes an ordered list of actions
type actionSet struct {
	actions []environment.Action
	index   map[environment.Action]int
}

func newActionSet(actions []environment.Action) (actionSet, error) {
	if len(actions) == 0 {
		return actionSet{}, fmt.Errorf("policy: no actions given")
	}

	index := make(map[environment.Action]int, len(actions))
	for i, a := range actions {
		if _, ok := index[a]; ok {
			return actionSet{}, fmt.Errorf("policy: duplicate action %v", a)
		}
		index[a] = i
	}

	// Copy so that callers cannot reorder our actions
	acts := make([]environment.Action, len(actions))
	copy(acts, actions)

	return actionSet{acts, index}, nil
}

func (a actionSet) contains(action environment.Action) bool {
	_, ok := a.index[action]
	return ok
}

func (a actionSet) invalid(action environment.Action) error {
	return fmt.Errorf("%w: %v is not part of the policy", ErrInvalidAction,
		action)
}

// Actions returns the ordered actions of the policy
func (a actionSet) Actions() []environment.Action {
	return a.actions
}

// Recommendation returns, for each state, the action that policy p
// selects most often. Ties are broken by the first action in actions.
// States for which no action has positive probability are omitted.
func Recommendation(p Policy, states []environment.State,
	actions []environment.Action) (map[environment.State]environment.Action,
	error) {
	rec := make(map[environment.State]environment.Action, len(states))
	if len(actions) == 0 {
		return rec, nil
	}

	probs := make([]float64, len(actions))
	for _, s := range states {
		for i, a := range actions {
			prob, err := p.Probability(s, a)
			if err != nil {
				return nil, err
			}
			probs[i] = prob
		}
		if best, indices := floatutils.MaxSlice(probs); best > 0 {
			rec[s] = actions[indices[0]]
		}
	}
	return rec, nil
}
