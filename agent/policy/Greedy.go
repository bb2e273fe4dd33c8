package policy

import "github.com/samuelfneumann/tabular/environment"

// Greedy is a deterministic policy which always selects the single
// action mapped to each state. States without a mapped action have
// probability 0 for every action.
type Greedy struct {
	actionSet
	policy map[environment.State]environment.Action
}

// NewGreedy returns a new Greedy policy. The policy map may be nil.
func NewGreedy(actions []environment.Action,
	policy map[environment.State]environment.Action) (*Greedy, error) {
	set, err := newActionSet(actions)
	if err != nil {
		return nil, err
	}

	m := make(map[environment.State]environment.Action, len(policy))
	for s, a := range policy {
		if !set.contains(a) {
			return nil, set.invalid(a)
		}
		m[s] = a
	}

	return &Greedy{set, m}, nil
}

// Probability returns 1 if a is the action selected in state s and 0
// otherwise
func (g *Greedy) Probability(s environment.State, a environment.Action) (
	float64, error) {
	if !g.contains(a) {
		return 0, g.invalid(a)
	}
	if best, ok := g.policy[s]; ok && best == a {
		return 1, nil
	}
	return 0, nil
}

// Update sets the action selected in state s
func (g *Greedy) Update(s environment.State, best environment.Action) error {
	if !g.contains(best) {
		return g.invalid(best)
	}
	g.policy[s] = best
	return nil
}

// Action returns the action selected in state s
func (g *Greedy) Action(s environment.State) (environment.Action, bool) {
	a, ok := g.policy[s]
	return a, ok
}

// Map returns a copy of the state to action mapping of the policy
func (g *Greedy) Map() map[environment.State]environment.Action {
	m := make(map[environment.State]environment.Action, len(g.policy))
	for s, a := range g.policy {
		m[s] = a
	}
	return m
}
