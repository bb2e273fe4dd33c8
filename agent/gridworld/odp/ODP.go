// Package odp implements an agent which plans with dynamic programming
// in an optimistic model of a grid world
package odp

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/gridworld/worldmap"
	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/dp"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
)

// ODP explores a grid world while keeping a map of it. Until it has
// seen the goal it acts uniformly at random. From then on it acts
// greedily with respect to a plan computed by policy iteration in an
// optimistic world: a world of the configured shape in which every
// cell not known to be a wall, trap or goal is assumed to be empty.
// Whenever experience contradicts the optimistic world, by bumping
// into a wall or stepping into a trap, the agent plans again.
//
// Plans are indexed by coordinates, since the states of the optimistic
// world differ from the states of the real world in their kinds.
type ODP struct {
	reward  environment.RewardFunction
	actions []environment.Action
	gamma   float64

	width, height int
	initial       gridworld.Coordinates
	warmStart     bool
	gpi           dp.GPIConfig

	worldMap *worldmap.WorldMap
	random   *policy.Random
	sampler  *policy.Sampler

	plan   map[gridworld.Coordinates]environment.Action
	values map[gridworld.Coordinates]float64
	solves int

	finalStateKnown  bool
	perfectRun       bool
	optimalPathFound bool
}

// New creates a new ODP agent. Only gridworld actions may be used.
func New(env agent.Env, c Config, seed uint64) (*ODP, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	width, height := c.Width, c.Height
	var initial gridworld.Coordinates
	if g, ok := env.World.(*gridworld.GridWorld); ok {
		if width == 0 || height == 0 {
			width, height = g.Dims()
		}
		initial = g.InitialState().(gridworld.State).Coordinates
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("new: the shape of the world must be " +
			"configured for worlds other than a GridWorld")
	}

	gpi := dp.DefaultGPIConfig()
	gpi.Eval.Gamma = c.Gamma
	if c.MaxEpochs > 0 {
		gpi.MaxEpochs = c.MaxEpochs
	}
	if c.EvalEpsilon > 0 {
		gpi.Eval.Epsilon = c.EvalEpsilon
	}
	gpi.Eval.MaxSweeps = c.MaxSweeps

	var known []gridworld.State
	if c.Terminal != nil {
		known = append(known, gridworld.State{
			Coordinates: *c.Terminal,
			Kind:        gridworld.Terminal,
		})
	}

	o, err := build(env.Reward, env.Actions, c.Gamma, width, height,
		initial, c.WarmStart, gpi, known, seed)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return o, nil
}

func build(reward environment.RewardFunction, actions []environment.Action,
	gamma float64, width, height int, initial gridworld.Coordinates,
	warmStart bool, gpi dp.GPIConfig, known []gridworld.State,
	seed uint64) (*ODP, error) {
	for _, a := range actions {
		if _, ok := a.(gridworld.Action); !ok {
			return nil, fmt.Errorf("%w: %v is not a gridworld action",
				policy.ErrInvalidAction, a)
		}
	}
	random, err := policy.NewRandom(actions)
	if err != nil {
		return nil, err
	}

	o := &ODP{
		reward:     reward,
		actions:    actions,
		gamma:      gamma,
		width:      width,
		height:     height,
		initial:    initial,
		warmStart:  warmStart,
		gpi:        gpi,
		worldMap:   worldmap.New(actions, known...),
		random:     random,
		sampler:    policy.NewSampler(seed),
		perfectRun: true,
	}

	if len(o.worldMap.Coordinates(gridworld.Terminal, width, height)) > 0 {
		o.finalStateKnown = true
		if err := o.solve(); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OptimisticWorld returns the world the agent currently plans in
func (o *ODP) OptimisticWorld() (*gridworld.GridWorld, error) {
	initial := o.initial
	c := gridworld.Config{
		Width:     o.width,
		Height:    o.height,
		Terminals: o.worldMap.Coordinates(gridworld.Terminal, o.width, o.height),
		Walls:     o.worldMap.Coordinates(gridworld.Wall, o.width, o.height),
		Traps:     o.worldMap.Coordinates(gridworld.Trap, o.width, o.height),
		Initial:   &initial,
	}
	return c.CreateWorld()
}

// solve computes a new plan by policy iteration in the optimistic world
func (o *ODP) solve() error {
	w, err := o.OptimisticWorld()
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	model, err := dp.NewDeterministicModel(w, o.actions, o.reward)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	c := o.gpi
	if o.warmStart && o.values != nil {
		c.Eval.V0 = make(dp.StateValue, len(o.values))
		for _, s := range w.States() {
			if v, ok := o.values[coordinates(s)]; ok {
				c.Eval.V0[s] = v
			}
		}
	}

	solution, err := dp.PolicyIteration(model, o.actions, w.States(), c)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	if !solution.Converged {
		fmt.Fprintf(os.Stderr, "Warning: odp: policy iteration did not "+
			"converge in %d epochs\n", solution.Epochs)
	}

	greedy, err := policy.Recommendation(solution.Policy, w.States(),
		o.actions)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	o.plan = make(map[gridworld.Coordinates]environment.Action, len(greedy))
	for s, a := range greedy {
		o.plan[coordinates(s)] = a
	}
	o.values = make(map[gridworld.Coordinates]float64, len(solution.Value))
	for s, v := range solution.Value {
		o.values[coordinates(s)] = v
	}
	o.solves++

	return nil
}

func coordinates(s environment.State) gridworld.Coordinates {
	return s.(gridworld.State).Coordinates
}

// SelectAction returns the planned action in s, or a uniformly random
// action if the agent has no plan for s
func (o *ODP) SelectAction(s environment.State) (environment.Action, error) {
	if state, ok := s.(gridworld.State); ok && o.plan != nil {
		if a, ok := o.plan[state.Coordinates]; ok {
			return a, nil
		}
	}
	return o.sampler.Sample(o.random, s, o.actions)
}

// RunUpdate records the transition in the world map. The first time the
// goal is reached, and whenever a known goal is followed by a
// transition contradicting the optimistic world, the agent plans
// again.
func (o *ODP) RunUpdate(s environment.State, a environment.Action,
	e environment.Effect, next environment.State) (float64, error) {
	state, ok1 := s.(gridworld.State)
	nextState, ok2 := next.(gridworld.State)
	action, ok3 := a.(gridworld.Action)
	if !ok1 || !ok2 || !ok3 {
		return 0, fmt.Errorf("runUpdate: transition (%v, %v, %v) is not "+
			"a gridworld transition", s, a, next)
	}

	reward := o.reward.Reward(e)
	meaningful := o.worldMap.Update(state, action, nextState)

	switch {
	case !o.finalStateKnown && nextState.Kind == gridworld.Terminal:
		// The episode so far was a random walk
		o.finalStateKnown = true
		o.perfectRun = false
		if err := o.solve(); err != nil {
			return reward, fmt.Errorf("runUpdate: %w", err)
		}

	case o.finalStateKnown && meaningful:
		o.perfectRun = false
		if err := o.solve(); err != nil {
			return reward, fmt.Errorf("runUpdate: %w", err)
		}
	}

	return reward, nil
}

// FinalizeEpisode records whether the episode followed an optimal path:
// the goal was known at the start and the plan never had to be
// corrected
func (o *ODP) FinalizeEpisode([]environment.State, []float64,
	[]environment.Action) error {
	o.optimalPathFound = o.finalStateKnown && o.perfectRun
	o.perfectRun = true
	return nil
}

// Gamma returns the discount factor
func (o *ODP) Gamma() float64 {
	return o.gamma
}

// FinalStateKnown returns whether the agent has found the goal
func (o *ODP) FinalStateKnown() bool {
	return o.finalStateKnown
}

// PerfectRun returns whether the current episode has not yet
// contradicted the optimistic world
func (o *ODP) PerfectRun() bool {
	return o.perfectRun
}

// OptimalPathFound returns whether the last finished episode followed
// an optimal path
func (o *ODP) OptimalPathFound() bool {
	return o.optimalPathFound
}

// Solves returns the number of times the agent has planned
func (o *ODP) Solves() int {
	return o.solves
}

// Map returns the world map of the agent
func (o *ODP) Map() *worldmap.WorldMap {
	return o.worldMap
}

// Plan returns the planned action at each coordinate, or nil if the
// agent has not planned yet
func (o *ODP) Plan() map[gridworld.Coordinates]environment.Action {
	return o.plan
}

// Value returns the value of each coordinate in the optimistic world
// under the current plan
func (o *ODP) Value(c gridworld.Coordinates) (float64, bool) {
	v, ok := o.values[c]
	return v, ok
}

// snapshot is the serialized form of an ODP agent. Plans are recomputed
// from the world map when decoding.
type snapshot struct {
	Reward      environment.RewardFunction
	Actions     []environment.Action
	Gamma       float64
	Width       int
	Height      int
	Initial     gridworld.Coordinates
	WarmStart   bool
	MaxEpochs   int
	EvalEpsilon float64
	MaxSweeps   int
	Map         []gridworld.State
	Seed        uint64
}

// GobEncode implements the gob.GobEncoder interface
func (o *ODP) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Reward:      o.reward,
		Actions:     o.actions,
		Gamma:       o.gamma,
		Width:       o.width,
		Height:      o.height,
		Initial:     o.initial,
		WarmStart:   o.warmStart,
		MaxEpochs:   o.gpi.MaxEpochs,
		EvalEpsilon: o.gpi.Eval.Epsilon,
		MaxSweeps:   o.gpi.Eval.MaxSweeps,
		Map:         o.worldMap.States(),
		Seed:        o.sampler.Seed(),
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (o *ODP) GobDecode(in []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	gpi := dp.DefaultGPIConfig()
	gpi.MaxEpochs = snap.MaxEpochs
	gpi.Eval.Gamma = snap.Gamma
	gpi.Eval.Epsilon = snap.EvalEpsilon
	gpi.Eval.MaxSweeps = snap.MaxSweeps

	decoded, err := build(snap.Reward, snap.Actions, snap.Gamma, snap.Width,
		snap.Height, snap.Initial, snap.WarmStart, gpi, snap.Map, snap.Seed)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	*o = *decoded
	return nil
}
