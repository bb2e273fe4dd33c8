// Package experiment implements functionality for running agents in
// grid worlds: single episodes, training runs, online experiments with
// trackers and checkpointers, and parallel hyper-parameter sweeps.
package experiment

import (
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send each TimeStep to their Trackers, which cache the
// data they track in RAM. The Save() function then writes all cached
// data to disk, usually after an experiment has been run. The Run()
// method runs all episodes of the experiment and RunEpisode() runs a
// single episode.
type Experiment interface {
	Run() error
	RunEpisode() (bool, error) // Returns whether the experiment finished

	// Tracks current timestep by sending it to Trackers
	track(ts.TimeStep)

	// Save all tracked data to disk
	Save()

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)

	// AddCheckpointer adds a new checkpointer.Checkpointer of the agent
	AddCheckpointer(c checkpointer.Checkpointer)

	// Saves the current state of all agents
	checkpoint(ts.TimeStep) error

	Agent() agent.Agent
	Lengths() []int
	Returns() []float64
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Action sets that a Config may name
const (
	BasicActions = "basic"
	AllActions   = "all"
)

// Config represents a configuration of an experiment. The world is
// either one of the named worlds of package gridworld or an explicit
// gridworld.Config. Empty Actions select the basic actions and a nil
// Reward selects environment.BasicReward.
//
// Episodes start at the initial state of the world, at a uniformly
// random one of Starts if given, or at a random non-trap state if
// RandomStarts is set.
type Config struct {
	Type
	Episodes     int
	MaxSteps     int
	World        string                   `json:",omitempty"`
	WorldConf    *gridworld.Config        `json:",omitempty"`
	Actions      string                   `json:",omitempty"`
	Reward       *environment.RewardTable `json:",omitempty"`
	Starts       []gridworld.Coordinates  `json:",omitempty"`
	RandomStarts bool
	AgentConf    agent.TypedConfigList
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return fmt.Errorf("validate: no such experiment type %v", c.Type)
	}
	if c.Episodes <= 0 {
		return fmt.Errorf("validate: episodes must be positive")
	}
	if c.AgentConf.ConfigList == nil {
		return fmt.Errorf("validate: no agent configurations")
	}

	wc, err := c.WorldConfig()
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := wc.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if _, err := c.actions(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if c.RandomStarts && len(c.Starts) > 0 {
		return fmt.Errorf("validate: random starts with fixed start states")
	}

	for i := 0; i < c.AgentConf.Len(); i++ {
		if err := c.AgentConf.At(i).Validate(); err != nil {
			return fmt.Errorf("validate: agent config %v: %w", i, err)
		}
	}
	return nil
}

// WorldConfig returns the configuration of the world of the experiment
func (c Config) WorldConfig() (gridworld.Config, error) {
	if c.WorldConf != nil {
		return *c.WorldConf, nil
	}
	wc, ok := gridworld.Named(c.World)
	if !ok {
		return gridworld.Config{}, fmt.Errorf("worldConfig: no world "+
			"named %q", c.World)
	}
	return wc, nil
}

// actions returns the actions named by the Config
func (c Config) actions() ([]environment.Action, error) {
	switch c.Actions {
	case "", BasicActions:
		return gridworld.BasicActions(), nil
	case AllActions:
		return gridworld.AllActions(), nil
	}
	return nil, fmt.Errorf("actions: unknown action set %q", c.Actions)
}

// Env creates a new world of the experiment and returns it along with
// the agent.Env used to construct agents for it
func (c Config) Env() (agent.Env, *gridworld.GridWorld, error) {
	wc, err := c.WorldConfig()
	if err != nil {
		return agent.Env{}, nil, fmt.Errorf("env: %w", err)
	}
	w, err := wc.CreateWorld()
	if err != nil {
		return agent.Env{}, nil, fmt.Errorf("env: %w", err)
	}

	actions, err := c.actions()
	if err != nil {
		return agent.Env{}, nil, fmt.Errorf("env: %w", err)
	}

	var reward environment.RewardFunction = environment.BasicReward
	if c.Reward != nil {
		reward = *c.Reward
	}

	return agent.Env{World: w, Actions: actions, Reward: reward}, w, nil
}

// CreateExp creates the experiment running the i-th agent configuration
// of the Config with the given seed and trackers
func (c Config) CreateExp(i int, seed uint64,
	t []tracker.Tracker) (Experiment, error) {
	env, world, err := c.Env()
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	a, err := c.AgentConf.At(i).CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %w", err)
	}

	starter, err := c.starter(world, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(world, starter, a, c.Episodes, c.MaxSteps, t,
			nil), nil
	}

	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}

// starter returns the Starter of episodes in world w, or nil to start
// at the initial state
func (c Config) starter(w *gridworld.GridWorld,
	seed uint64) (environment.Starter, error) {
	if c.RandomStarts {
		return gridworld.NewRandomStarter(w, seed), nil
	}
	if len(c.Starts) == 0 {
		return nil, nil
	}

	states := make([]environment.State, len(c.Starts))
	for i, coords := range c.Starts {
		s, err := w.GetState(coords)
		if err != nil {
			return nil, fmt.Errorf("starter: %w", err)
		}
		states[i] = s
	}

	if len(states) == 1 {
		return environment.SingleStarter{State: states[0]}, nil
	}
	starter, err := environment.NewListStarter(states, seed)
	if err != nil {
		return nil, fmt.Errorf("starter: %w", err)
	}
	return starter, nil
}
