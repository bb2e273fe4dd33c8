package policy

import "github.com/samuelfneumann/tabular/environment"

// Random is a uniform random policy over a set of actions
type Random struct {
	actionSet
}

// NewRandom returns a new Random policy
func NewRandom(actions []environment.Action) (*Random, error) {
	set, err := newActionSet(actions)
	if err != nil {
		return nil, err
	}
	return &Random{set}, nil
}

// Probability returns 1/|actions| for actions of the policy
func (r *Random) Probability(_ environment.State, a environment.Action) (
	float64, error) {
	if !r.contains(a) {
		return 0, r.invalid(a)
	}
	return 1 / float64(len(r.actions)), nil
}
