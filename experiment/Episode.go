package experiment

import (
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// Episode records a single episode of interaction. States[i] is the
// state in which Actions[i] was taken and Rewards[i] is the reward
// received for it. Returns[i] is the discounted return from step i.
type Episode struct {
	States  []environment.State
	Actions []environment.Action
	Rewards []float64
	Returns []float64

	// Final is the state the episode ended in and Effect is the Effect
	// of the last transition
	Final  environment.State
	Effect environment.Effect
}

// Len returns the number of steps taken in the episode
func (e Episode) Len() int {
	return len(e.Actions)
}

// Return returns the discounted return from the start of the episode
func (e Episode) Return() float64 {
	if len(e.Returns) == 0 {
		return 0
	}
	return e.Returns[0]
}

// Succeeded returns whether the episode ended in a terminal state
func (e Episode) Succeeded() bool {
	return e.Effect == environment.Success
}

// RunEpisode runs a single episode of agent a in world w starting from
// state start. The episode ends when a transition has Effect Success
// or, if maxSteps > 0, after maxSteps steps. The agent learns from each
// transition and its FinalizeEpisode method is called with the states,
// returns, and actions of the episode before RunEpisode returns.
func RunEpisode(a agent.Agent, w environment.World, start environment.State,
	maxSteps int) (Episode, error) {
	return runEpisode(a, w, start, maxSteps, 0, nil)
}

// runEpisode runs an episode, calling observe on each TimeStep if
// observe is non-nil
func runEpisode(a agent.Agent, w environment.World, start environment.State,
	maxSteps, episode int, observe func(ts.TimeStep) error) (Episode, error) {
	var ep Episode
	if observe != nil {
		first := ts.New(ts.First, start, nil, environment.Normal, 0, 0,
			episode)
		if err := observe(first); err != nil {
			return ep, err
		}
	}

	state := start
	effect := environment.Normal
	for effect != environment.Success &&
		(maxSteps <= 0 || len(ep.Actions) < maxSteps) {
		action, err := a.SelectAction(state)
		if err != nil {
			return ep, fmt.Errorf("runEpisode: could not select action: %w",
				err)
		}

		var next environment.State
		next, effect = w.TakeAction(state, action)

		reward, err := a.RunUpdate(state, action, effect, next)
		if err != nil {
			return ep, fmt.Errorf("runEpisode: could not update: %w", err)
		}

		ep.States = append(ep.States, state)
		ep.Actions = append(ep.Actions, action)
		ep.Rewards = append(ep.Rewards, reward)
		state = next

		last := effect == environment.Success ||
			(maxSteps > 0 && len(ep.Actions) >= maxSteps)
		if observe != nil && !last {
			step := ts.New(ts.Mid, next, action, effect, reward,
				len(ep.Actions), episode)
			if err := observe(step); err != nil {
				return ep, err
			}
		}
	}

	ep.Final = state
	ep.Effect = effect
	ep.Returns = agent.ReturnsFromRewards(ep.Rewards, a.Gamma())

	if err := a.FinalizeEpisode(ep.States, ep.Returns, ep.Actions); err != nil {
		return ep, fmt.Errorf("runEpisode: could not finalize: %w", err)
	}

	// The last step is observed once the agent has finished learning
	// from the episode so that checkpoints include the final update
	if observe != nil && ep.Len() > 0 {
		n := ep.Len()
		step := ts.New(ts.Last, state, ep.Actions[n-1], effect,
			ep.Rewards[n-1], n, episode)
		if err := observe(step); err != nil {
			return ep, err
		}
	}
	return ep, nil
}

// Train runs episodes episodes of agent a in world w and returns the
// length and discounted return of each. Episodes start at the states
// returned by starter, or at the initial state of w if starter is nil.
func Train(a agent.Agent, w environment.World, starter environment.Starter,
	episodes, maxSteps int) (lengths []int, returns []float64, err error) {
	lengths = make([]int, 0, episodes)
	returns = make([]float64, 0, episodes)

	for i := 0; i < episodes; i++ {
		start := w.InitialState()
		if starter != nil {
			start = starter.Start()
		}

		ep, err := runEpisode(a, w, start, maxSteps, i, nil)
		if err != nil {
			return lengths, returns, fmt.Errorf("train: episode %v: %w", i,
				err)
		}
		lengths = append(lengths, ep.Len())
		returns = append(returns, ep.Return())
	}
	return lengths, returns, nil
}
