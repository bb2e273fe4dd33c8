// Package timestep implements timesteps of the agent-world interaction
package timestep

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first step of an episode, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep of an episode. Action is
// the action which led to State and is nil on the first step of an
// episode. Number counts the steps taken so far in the episode, so the
// Number of the last TimeStep is the length of the episode.
type TimeStep struct {
	stepType StepType
	State    environment.State
	Action   environment.Action
	Effect   environment.Effect
	Reward   float64
	Number   int
	Episode  int
}

// New returns a new TimeStep
func New(t StepType, s environment.State, a environment.Action,
	e environment.Effect, r float64, n, episode int) TimeStep {
	return TimeStep{
		stepType: t,
		State:    s,
		Action:   a,
		Effect:   e,
		Reward:   r,
		Number:   n,
		Episode:  episode,
	}
}

// StepType returns the type of the TimeStep
func (t *TimeStep) StepType() StepType {
	return t.stepType
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.stepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Episode: %v  |  Step Number: %v  |  " +
		"State: %v  |  Effect: %v  |  Reward: %.2f"

	return fmt.Sprintf(str, t.stepType, t.Episode, t.Number, t.State,
		t.Effect, t.Reward)
}
