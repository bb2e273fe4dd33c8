// Package agent defines the interface of tabular agents along with the
// Q-table and configuration machinery shared by concrete agents
package agent

import (
	"github.com/samuelfneumann/tabular/environment"
)

// Agent learns to act in a World through the episode protocol: an
// episode driver repeatedly calls SelectAction, steps the World, and
// calls RunUpdate with the result. At the end of each episode the
// driver calls FinalizeEpisode with the states visited, the discounted
// returns from each step, and the actions taken.
type Agent interface {
	// SelectAction selects the action to take in state s
	SelectAction(s environment.State) (environment.Action, error)

	// RunUpdate learns from a single transition and returns the reward
	// of the transition
	RunUpdate(s environment.State, a environment.Action,
		e environment.Effect, next environment.State) (float64, error)

	// FinalizeEpisode performs end of episode learning and cleanup
	FinalizeEpisode(states []environment.State, returns []float64,
		actions []environment.Action) error

	// Gamma returns the discount factor of the agent
	Gamma() float64
}

// Learner is an Agent which maintains a Q-table
type Learner interface {
	Agent
	Q() *QTable
}

// Env is the information about a World that an agent is constructed
// with: the World itself, the ordered actions available in it, and the
// reward function to maximize.
type Env struct {
	World   environment.World
	Actions []environment.Action
	Reward  environment.RewardFunction
}
