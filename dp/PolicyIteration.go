package dp

import (
	"fmt"

	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/environment"
	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerances used when comparing value functions
const (
	absTolerance = 1e-8
	relTolerance = 1e-5
)

// GPIConfig configures generalized policy iteration
type GPIConfig struct {
	// Initial policy, uniform random if nil
	Policy policy.Policy

	// Maximum number of improvement steps
	MaxEpochs int

	// Configuration of each policy evaluation. Eval.V0 warm starts the
	// first evaluation.
	Eval EvalConfig

	// OnEpoch, if not nil, is called after each improvement step with
	// the index of the epoch and the value of the improved policy
	OnEpoch func(epoch int, v StateValue)
}

// DefaultGPIConfig returns a GPIConfig running at most 100 epochs with
// the default evaluation configuration
func DefaultGPIConfig() GPIConfig {
	return GPIConfig{MaxEpochs: 100, Eval: DefaultEvalConfig()}
}

// Solution is the result of generalized policy iteration
type Solution struct {
	Policy policy.Policy
	Value  StateValue

	// Number of improvement steps run
	Epochs int

	// Whether the value function stopped changing before MaxEpochs was
	// reached
	Converged bool
}

// PolicyIteration runs generalized policy iteration: the initial policy
// is evaluated, then the policy is alternately improved greedily and
// re-evaluated until its value stops changing or c.MaxEpochs epochs have
// run. Each evaluation is warm started from the previous value function.
func PolicyIteration(m Model, actions []environment.Action,
	states []environment.State, c GPIConfig) (Solution, error) {
	if c.MaxEpochs < 0 {
		return Solution{}, fmt.Errorf("policyIteration: max epochs must be " +
			"non-negative")
	}

	pi := c.Policy
	if pi == nil {
		random, err := policy.NewRandom(actions)
		if err != nil {
			return Solution{}, fmt.Errorf("policyIteration: %w", err)
		}
		pi = random
	}

	eval := c.Eval
	v, err := IterativePolicyEvaluation(pi, m, actions, states, eval)
	if err != nil {
		return Solution{Policy: pi, Value: v}, fmt.Errorf("policyIteration: "+
			"%w", err)
	}

	solution := Solution{Policy: pi, Value: v}
	for epoch := 0; epoch < c.MaxEpochs; epoch++ {
		previous := solution.Value

		greedy, err := GreedyPolicyFromV(previous, m, actions, states,
			eval.Gamma)
		if err != nil {
			return solution, fmt.Errorf("policyIteration: %w", err)
		}

		eval.V0 = previous
		v, err := IterativePolicyEvaluation(greedy, m, actions, states, eval)
		if err != nil {
			return solution, fmt.Errorf("policyIteration: epoch %d: %w",
				epoch, err)
		}

		solution.Policy, solution.Value = greedy, v
		solution.Epochs++
		if c.OnEpoch != nil {
			c.OnEpoch(epoch, v)
		}

		if Equal(v, previous) {
			solution.Converged = true
			break
		}
	}

	return solution, nil
}

// Equal returns whether two value functions have the same states and
// approximately equal values
func Equal(a, b StateValue) bool {
	if len(a) != len(b) {
		return false
	}
	for s, x := range a {
		y, ok := b[s]
		if !ok || !scalar.EqualWithinAbsOrRel(x, y, absTolerance,
			relTolerance) {
			return false
		}
	}
	return true
}
