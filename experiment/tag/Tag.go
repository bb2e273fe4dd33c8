// Package tag implements games of tag between two agents in a grid
// world. The chaser tries to land on the runner, while the runner tries
// to avoid the chaser until the game runs out of time. Both agents
// observe the joint gridworld.TagState of the game.
package tag

import (
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
)

// Trajectory is the experience of one player in a game of tag.
// States[i] is the joint state in which the player took Actions[i].
type Trajectory struct {
	States    []environment.State
	Actions   []environment.Action
	Rewards   []float64
	Returns   []float64
	Positions []gridworld.State

	effect environment.Effect
}

// Effect returns the Effect of the last round for the player
func (t Trajectory) Effect() environment.Effect {
	return t.effect
}

// Return returns the discounted return of the player over the game
func (t Trajectory) Return() float64 {
	if len(t.Returns) == 0 {
		return 0
	}
	return t.Returns[0]
}

// Episode is a single game of tag
type Episode struct {
	Chaser Trajectory
	Runner Trajectory
}

// Len returns the number of rounds played
func (e Episode) Len() int {
	return len(e.Chaser.Actions)
}

// Caught returns whether the chaser caught the runner
func (e Episode) Caught() bool {
	return e.Chaser.effect == environment.Success
}

// RunEpisode plays a game of tag in world w. In each round the chaser
// moves first and then the runner. The chaser succeeds when it lands on
// the runner or the runner lands on it. The runner succeeds by not being
// caught for maxLength rounds, after which the chaser fails. If
// maxLength <= 0, the game lasts until the runner is caught. Other
// transitions carry the Effect emitted by the world.
//
// The runner learns about a round only once the chaser has chosen its
// next move, since the state the runner ends up in includes the next
// position of the chaser. For the same reason, the runner fails as soon
// as the chaser is about to land on it.
func RunEpisode(chaser, runner agent.Agent, w *gridworld.GridWorld,
	chaserStart, runnerStart gridworld.State, maxLength int) (Episode, error) {
	var ep Episode
	ep.Chaser.Positions = append(ep.Chaser.Positions, chaserStart)
	ep.Runner.Positions = append(ep.Runner.Positions, runnerStart)

	// Chaser positions before (c0) and after (c1) its move of the
	// current round and the runner position before its move (r0)
	c0, r0 := chaserStart, runnerStart
	joint := gridworld.TagState{Chaser: c0.Coordinates, Runner: r0.Coordinates}

	chaserAction, err := chaser.SelectAction(joint)
	if err != nil {
		return ep, fmt.Errorf("runEpisode: chaser: %w", err)
	}
	c1, chaserWorldEffect := move(w, c0, chaserAction)
	intermediate := gridworld.TagState{
		Chaser: c1.Coordinates,
		Runner: r0.Coordinates,
	}

	chaserEffect, runnerEffect := environment.Normal, environment.Normal
	for t := 0; chaserEffect != environment.Success &&
		runnerEffect != environment.Success; t++ {
		runnerAction, err := runner.SelectAction(intermediate)
		if err != nil {
			return ep, fmt.Errorf("runEpisode: runner: %w", err)
		}
		r1, runnerWorldEffect := move(w, r0, runnerAction)
		nextJoint := gridworld.TagState{
			Chaser: c1.Coordinates,
			Runner: r1.Coordinates,
		}

		switch {
		case c1.Coordinates == r0.Coordinates || c1.Coordinates == r1.Coordinates:
			chaserEffect = environment.Success
		case t == maxLength-1:
			chaserEffect = environment.Failure
		default:
			chaserEffect = chaserWorldEffect
		}

		chaserReward, err := chaser.RunUpdate(joint, chaserAction,
			chaserEffect, nextJoint)
		if err != nil {
			return ep, fmt.Errorf("runEpisode: chaser: %w", err)
		}

		// The chaser's next move determines the runner's next state
		nextChaserAction, err := chaser.SelectAction(nextJoint)
		if err != nil {
			return ep, fmt.Errorf("runEpisode: chaser: %w", err)
		}
		c2, nextChaserWorldEffect := move(w, c1, nextChaserAction)
		nextIntermediate := gridworld.TagState{
			Chaser: c2.Coordinates,
			Runner: r1.Coordinates,
		}

		switch {
		case c1.Coordinates == r1.Coordinates || c2.Coordinates == r1.Coordinates:
			runnerEffect = environment.Failure
		case t == maxLength-1:
			runnerEffect = environment.Success
		default:
			runnerEffect = runnerWorldEffect
		}

		runnerReward, err := runner.RunUpdate(intermediate, runnerAction,
			runnerEffect, nextIntermediate)
		if err != nil {
			return ep, fmt.Errorf("runEpisode: runner: %w", err)
		}

		ep.Chaser.record(joint, chaserAction, chaserReward, c1)
		ep.Runner.record(intermediate, runnerAction, runnerReward, r1)

		c1, r0 = c2, r1
		joint, intermediate = nextJoint, nextIntermediate
		chaserAction, chaserWorldEffect = nextChaserAction, nextChaserWorldEffect
	}
	ep.Chaser.effect = chaserEffect
	ep.Runner.effect = runnerEffect

	if err := ep.Chaser.finalize(chaser); err != nil {
		return ep, fmt.Errorf("runEpisode: chaser: %w", err)
	}
	if err := ep.Runner.finalize(runner); err != nil {
		return ep, fmt.Errorf("runEpisode: runner: %w", err)
	}
	return ep, nil
}

// Train plays episodes games of tag and returns the length of each game
// along with the return of the chaser and the runner. If starter is
// nil, the chaser starts at the initial state of w and the runner at
// its second initial state. Otherwise the players start at distinct
// random states.
func Train(chaser, runner agent.Agent, w *gridworld.GridWorld,
	starter *gridworld.RandomStarter, episodes, maxLength int) (lengths []int,
	chaserReturns, runnerReturns []float64, err error) {
	for i := 0; i < episodes; i++ {
		chaserStart, runnerStart, err := starts(w, starter)
		if err != nil {
			return lengths, chaserReturns, runnerReturns,
				fmt.Errorf("train: %w", err)
		}

		ep, err := RunEpisode(chaser, runner, w, chaserStart, runnerStart,
			maxLength)
		if err != nil {
			return lengths, chaserReturns, runnerReturns,
				fmt.Errorf("train: episode %v: %w", i, err)
		}

		lengths = append(lengths, ep.Len())
		chaserReturns = append(chaserReturns, ep.Chaser.Return())
		runnerReturns = append(runnerReturns, ep.Runner.Return())
	}
	return lengths, chaserReturns, runnerReturns, nil
}

// starts returns the starting positions of the chaser and runner
func starts(w *gridworld.GridWorld,
	starter *gridworld.RandomStarter) (gridworld.State, gridworld.State, error) {
	if starter == nil {
		runnerStart, ok := w.SecondInitialState()
		if !ok {
			return gridworld.State{}, gridworld.State{},
				fmt.Errorf("starts: world has no second initial state")
		}
		return w.InitialState().(gridworld.State), runnerStart, nil
	}

	chaserStart, err := starter.StartExcluding()
	if err != nil {
		return gridworld.State{}, gridworld.State{}, err
	}
	runnerStart, err := starter.StartExcluding(chaserStart)
	if err != nil {
		return gridworld.State{}, gridworld.State{}, err
	}
	return chaserStart, runnerStart, nil
}

// move takes action a from s in w
func move(w *gridworld.GridWorld, s gridworld.State,
	a environment.Action) (gridworld.State, environment.Effect) {
	next, effect := w.TakeAction(s, a)
	return next.(gridworld.State), effect
}

func (t *Trajectory) record(s environment.State, a environment.Action,
	r float64, next gridworld.State) {
	t.States = append(t.States, s)
	t.Actions = append(t.Actions, a)
	t.Rewards = append(t.Rewards, r)
	t.Positions = append(t.Positions, next)
}

func (t *Trajectory) finalize(a agent.Agent) error {
	t.Returns = agent.ReturnsFromRewards(t.Rewards, a.Gamma())
	return a.FinalizeEpisode(t.States, t.Returns, t.Actions)
}
