package dp

import (
	"errors"
	"fmt"
	"math"

	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/environment"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNotConverged is returned when policy evaluation does not converge
// within its maximum number of sweeps
var ErrNotConverged = errors.New("evaluation did not converge")

// StateValue maps states to their values
type StateValue map[environment.State]float64

// Copy returns a copy of the StateValue
func (v StateValue) Copy() StateValue {
	c := make(StateValue, len(v))
	for s, value := range v {
		c[s] = value
	}
	return c
}

// EvalConfig configures iterative policy evaluation
type EvalConfig struct {
	// Initial values, 0 for states not in V0
	V0 StateValue

	Gamma float64

	// Evaluation stops when no state value changes by more than Epsilon
	// in a sweep
	Epsilon float64

	// Maximum number of sweeps, 0 for no limit
	MaxSweeps int
}

// DefaultEvalConfig returns an EvalConfig with γ = 1 and ε = 0.01
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{Gamma: 1, Epsilon: 0.01}
}

// Validate checks an EvalConfig for errors
func (c EvalConfig) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("dp: gamma must be in [0, 1], got %v", c.Gamma)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("dp: epsilon must be positive, got %v", c.Epsilon)
	}
	if c.MaxSweeps < 0 {
		return fmt.Errorf("dp: max sweeps must be non-negative")
	}
	return nil
}

// system is the Bellman expectation operator of a policy over an
// enumerated set of states: v' = r + γPv
type system struct {
	states []environment.State
	index  map[environment.State]int
	p      *mat.Dense
	r      *mat.VecDense
}

// newSystem builds the transition matrix and expected rewards of policy
// pi. Outcomes leading outside of states are ignored.
func newSystem(pi policy.Policy, m Model, actions []environment.Action,
	states []environment.State) (*system, error) {
	n := len(states)
	index := make(map[environment.State]int, n)
	for i, s := range states {
		index[s] = i
	}

	p := mat.NewDense(n, n, nil)
	r := mat.NewVecDense(n, nil)
	for i, s := range states {
		for _, a := range actions {
			prob, err := pi.Probability(s, a)
			if err != nil {
				return nil, err
			}
			if prob == 0 {
				continue
			}

			reward := m.Reward(s, a)
			for _, o := range m.Transitions(s, a) {
				j, ok := index[o.Next]
				if !ok {
					continue
				}
				weight := prob * o.Probability
				p.Set(i, j, p.At(i, j)+weight)
				r.SetVec(i, r.AtVec(i)+weight*reward)
			}
		}
	}

	return &system{states, index, p, r}, nil
}

// vector returns the values of v as a vector ordered as the states of
// the system
func (sys *system) vector(v StateValue) *mat.VecDense {
	vec := mat.NewVecDense(len(sys.states), nil)
	for i, s := range sys.states {
		vec.SetVec(i, v[s])
	}
	return vec
}

func (sys *system) stateValue(vec *mat.VecDense) StateValue {
	v := make(StateValue, len(sys.states))
	for i, s := range sys.states {
		v[s] = vec.AtVec(i)
	}
	return v
}

// sweep computes next = r + γPv and returns the largest change of any
// state value. All values of next are computed from v.
func (sys *system) sweep(next, v *mat.VecDense, gamma float64) float64 {
	next.MulVec(sys.p, v)
	next.ScaleVec(gamma, next)
	next.AddVec(next, sys.r)

	return floats.Distance(next.RawVector().Data, v.RawVector().Data,
		math.Inf(1))
}

// IterativePolicyEvaluation computes the value of policy pi by
// synchronous sweeps of the Bellman expectation operator. Sweeps are
// repeated until the largest change of a state value is at most
// c.Epsilon.
//
// Evaluation only terminates if the operator is a contraction for the
// given policy and world: either γ < 1, or every state reaches an
// absorbing state under pi. If c.MaxSweeps is positive and reached
// first, the last values are returned along with ErrNotConverged.
func IterativePolicyEvaluation(pi policy.Policy, m Model,
	actions []environment.Action, states []environment.State,
	c EvalConfig) (StateValue, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return StateValue{}, nil
	}

	sys, err := newSystem(pi, m, actions, states)
	if err != nil {
		return nil, fmt.Errorf("iterativePolicyEvaluation: %w", err)
	}
	v, next := sys.vector(c.V0), mat.NewVecDense(len(states), nil)

	delta := 2 * c.Epsilon
	for sweeps := 0; delta > c.Epsilon; sweeps++ {
		if c.MaxSweeps > 0 && sweeps >= c.MaxSweeps {
			return sys.stateValue(v), fmt.Errorf("iterativePolicyEvaluation: "+
				"%w after %d sweeps (delta %v)", ErrNotConverged, sweeps, delta)
		}

		delta = sys.sweep(next, v, c.Gamma)
		v, next = next, v
	}

	return sys.stateValue(v), nil
}

// QFromV estimates the value of taking action a in state s by a one
// step lookahead over v: R(s, a) + γ Σ P(s'|s, a) v(s'). States missing
// from v have value 0. With gamma = 1 this is the undiscounted lookahead
// used by GPI on episodic grid worlds.
func QFromV(s environment.State, a environment.Action, v StateValue,
	m Model, gamma float64) float64 {
	q := 0.0
	for _, o := range m.Transitions(s, a) {
		q += o.Probability * v[o.Next]
	}
	return m.Reward(s, a) + gamma*q
}

// GreedyPolicyFromV returns the policy which in each state selects the
// action maximizing QFromV. Ties are broken towards the first action.
func GreedyPolicyFromV(v StateValue, m Model, actions []environment.Action,
	states []environment.State, gamma float64) (*policy.Greedy, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("greedyPolicyFromV: no actions")
	}

	best := make(map[environment.State]environment.Action, len(states))
	for _, s := range states {
		bestAction := actions[0]
		bestScore := QFromV(s, bestAction, v, m, gamma)
		for _, a := range actions[1:] {
			if score := QFromV(s, a, v, m, gamma); score > bestScore {
				bestScore = score
				bestAction = a
			}
		}
		best[s] = bestAction
	}

	return policy.NewGreedy(actions, best)
}
