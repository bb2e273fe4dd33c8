package experiment

import (
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	world   environment.World
	starter environment.Starter
	agent   agent.Agent

	episodes       int
	maxSteps       int
	currentEpisode int

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	lengths []int
	returns []float64
}

// NewOnline creates and returns a new online experiment in a given
// world with a given agent. The episodes parameter determines how many
// episodes the experiment is run for and maxSteps caps the length of
// each episode if positive. A nil starter starts every episode at the
// initial state of the world. The trackers determine which data is
// saved and the checkpointers when the agent is saved.
func NewOnline(w environment.World, starter environment.Starter,
	a agent.Agent, episodes, maxSteps int, t []tracker.Tracker,
	c []checkpointer.Checkpointer) *Online {
	return &Online{
		world:         w,
		starter:       starter,
		agent:         a,
		episodes:      episodes,
		maxSteps:      maxSteps,
		trackers:      t,
		checkpointers: c,
	}
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment and returns
// whether the episode limit has been reached
func (o *Online) RunEpisode() (bool, error) {
	if o.currentEpisode >= o.episodes {
		return true, nil
	}

	start := o.world.InitialState()
	if o.starter != nil {
		start = o.starter.Start()
	}

	ep, err := runEpisode(o.agent, o.world, start, o.maxSteps,
		o.currentEpisode, o.observe)
	if err != nil {
		return false, fmt.Errorf("runEpisode: episode %v: %w",
			o.currentEpisode, err)
	}

	o.lengths = append(o.lengths, ep.Len())
	o.returns = append(o.returns, ep.Return())
	o.currentEpisode++

	return o.currentEpisode >= o.episodes, nil
}

// Run runs the entire experiment for all episodes
func (o *Online) Run() error {
	for ended := false; !ended; {
		var err error
		if ended, err = o.RunEpisode(); err != nil {
			return err
		}
	}
	return nil
}

// AddCheckpointer adds a checkpointer.Checkpointer to the experiment
func (o *Online) AddCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// Agent returns the agent of the experiment
func (o *Online) Agent() agent.Agent {
	return o.agent
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, t := range o.trackers {
		t.Save()
	}
}

// Lengths returns the length of each episode run so far
func (o *Online) Lengths() []int {
	return o.lengths
}

// Returns returns the discounted return of each episode run so far
func (o *Online) Returns() []float64 {
	return o.returns
}

// observe tracks and checkpoints a single timestep
func (o *Online) observe(t ts.TimeStep) error {
	o.track(t)
	return o.checkpoint(t)
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

// checkpoint checkpoints the agent with each Checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
	}
	return nil
}
