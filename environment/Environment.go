// Package environment outlines the interfaces and structs needed to implement
// concrete environments for tabular agents
package environment

import "fmt"

// State is a single, immutable state of a World. Concrete States must be
// comparable by value so that they can be used as map keys: two States
// are equal if and only if all their defining fields are equal.
type State interface {
	fmt.Stringer
}

// Action is a single, immutable action that an agent can take in a World.
// Like States, concrete Actions must be comparable by value.
type Action interface {
	fmt.Stringer
}

// Effect is the signal that a World emits on a transition. It is not the
// reward: agents convert Effects to rewards using a RewardFunction.
type Effect int

const (
	Failure Effect = iota - 1 // Agent entered a trap
	Normal                    // Regular transition
	Success                   // Agent reached a terminal state
)

func (e Effect) String() string {
	switch e {
	case Failure:
		return "Failure"
	case Success:
		return "Success"
	default:
		return "Normal"
	}
}

// World implements a discrete environment with a finite, pre-enumerated
// set of states. A World is never mutated after construction.
type World interface {
	States() []State
	InitialState() State
	TakeAction(s State, a Action) (State, Effect)
}

// Starter samples starting states for episodes
type Starter interface {
	Start() State
}

// RewardFunction converts an Effect emitted by a World into a scalar reward
type RewardFunction interface {
	Reward(e Effect) float64
}

// StateAction is a (state, action) pair. It is used as the key of
// Q-tables, eligibility traces, and policies.
type StateAction struct {
	State  State
	Action Action
}

func (s StateAction) String() string {
	return fmt.Sprintf("(%v, %v)", s.State, s.Action)
}
