// Package qexplorer implements a Q-learning agent for grid worlds which
// keeps a map of the world to avoid exploring actions that are known
// to be bad
package qexplorer

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/gridworld/worldmap"
	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
)

// QExplorer updates its Q-table as Q-learning does, but restricts
// both bootstrapping and exploration to the reasonable actions of each
// state: those not known to lead into a wall or trap. It is not suited
// to stochastic worlds, where a collision does not imply a wall.
type QExplorer struct {
	reward  environment.RewardFunction
	actions []environment.Action
	gamma   float64
	alpha   agent.Schedule

	q        *agent.QTable
	worldMap *worldmap.WorldMap
	policy   *policy.EExplorer
	sampler  *policy.Sampler
	episode  int
}

// New creates a new QExplorer agent. Only gridworld actions may be
// used. If q0 is nil, all action values start at 0.
func New(env agent.Env, c Config, q0 *agent.QTable,
	seed uint64) (*QExplorer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	epsilonDecay, err := c.EpsilonDecay.Create(c.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	alpha, err := agent.NewScheduleFromConfig(c.Alpha, c.AlphaDecay)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	var known []gridworld.State
	if q0 != nil {
		for _, s := range q0.States() {
			if state, ok := s.(gridworld.State); ok {
				known = append(known, state)
			}
		}
	}

	e, err := build(env.Reward, env.Actions, c.Gamma, alpha, c.Epsilon,
		epsilonDecay, q0, known, seed, 0)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return e, nil
}

func build(reward environment.RewardFunction, actions []environment.Action,
	gamma float64, alpha agent.Schedule, epsilon float64,
	epsilonDecay decay.Decayer, q *agent.QTable, known []gridworld.State,
	seed uint64, episode int) (*QExplorer, error) {
	for _, a := range actions {
		if _, ok := a.(gridworld.Action); !ok {
			return nil, fmt.Errorf("%w: %v is not a gridworld action",
				policy.ErrInvalidAction, a)
		}
	}

	if q == nil {
		q = agent.NewQTable()
	}
	p, err := policy.NewEExplorer(epsilon, actions, epsilonDecay)
	if err != nil {
		return nil, err
	}

	e := &QExplorer{
		reward:   reward,
		actions:  actions,
		gamma:    gamma,
		alpha:    alpha,
		q:        q,
		worldMap: worldmap.New(actions, known...),
		policy:   p,
		sampler:  policy.NewSampler(seed),
		episode:  episode,
	}

	if err := e.refresh(q.States()); err != nil {
		return nil, err
	}
	if err := e.refresh(e.mapStates()); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *QExplorer) mapStates() []environment.State {
	known := e.worldMap.States()
	states := make([]environment.State, len(known))
	for i := range known {
		states[i] = known[i]
	}
	return states
}

// refresh makes the policy greedy over the reasonable actions of each
// argument state
func (e *QExplorer) refresh(states []environment.State) error {
	for _, s := range states {
		valid := e.worldMap.ReasonableActionsOr(s)
		if len(valid) == 0 {
			valid = e.actions
		}
		best := e.q.BestAction(s, valid)
		if err := e.policy.Update(s, best, valid, false); err != nil {
			return err
		}
	}
	return nil
}

// SelectAction samples an action from the behaviour policy
func (e *QExplorer) SelectAction(s environment.State) (environment.Action,
	error) {
	return e.sampler.Sample(e.policy, s, e.actions)
}

// RunUpdate records the transition in the world map, then performs a
// Q-learning update which bootstraps from the best reasonable action of
// the next state. If the map learned of a new wall or trap, the policy
// is refreshed in every known state, otherwise only in the two states
// of the transition.
func (e *QExplorer) RunUpdate(s environment.State, a environment.Action,
	eff environment.Effect, next environment.State) (float64, error) {
	state, ok1 := s.(gridworld.State)
	nextState, ok2 := next.(gridworld.State)
	action, ok3 := a.(gridworld.Action)
	if !ok1 || !ok2 || !ok3 {
		return 0, fmt.Errorf("runUpdate: transition (%v, %v, %v) is not "+
			"a gridworld transition", s, a, next)
	}

	reward := e.reward.Reward(eff)
	meaningful := e.worldMap.Update(state, action, nextState)

	nextValid := e.worldMap.ReasonableActionsOr(next)
	current := e.q.Get(s, a)
	target := reward + e.gamma*e.q.BestValue(next, nextValid)
	e.q.Set(s, a, current+e.alpha.Value*(target-current))
	e.q.AddState(next)

	refresh := []environment.State{s, next}
	if meaningful {
		refresh = e.mapStates()
	}
	if err := e.refresh(refresh); err != nil {
		return reward, fmt.Errorf("runUpdate: %w", err)
	}

	return reward, nil
}

// FinalizeEpisode decays the exploration and learning rates
func (e *QExplorer) FinalizeEpisode([]environment.State, []float64,
	[]environment.Action) error {
	e.episode++
	e.policy.Decay(e.episode)
	e.alpha.Step(e.episode)
	return nil
}

// Gamma returns the discount factor
func (e *QExplorer) Gamma() float64 {
	return e.gamma
}

// Alpha returns the current learning rate
func (e *QExplorer) Alpha() float64 {
	return e.alpha.Value
}

// Q returns the Q-table of the agent
func (e *QExplorer) Q() *agent.QTable {
	return e.q
}

// Policy returns the behaviour policy of the agent
func (e *QExplorer) Policy() *policy.EExplorer {
	return e.policy
}

// Map returns the world map of the agent
func (e *QExplorer) Map() *worldmap.WorldMap {
	return e.worldMap
}

// snapshot is the serialized form of a QExplorer. The policy is rebuilt
// from the Q-table and world map when decoding.
type snapshot struct {
	Reward       environment.RewardFunction
	Actions      []environment.Action
	Gamma        float64
	Alpha        agent.Schedule
	Epsilon      float64
	EpsilonDecay decay.Decayer
	Q            *agent.QTable
	Map          []gridworld.State
	Seed         uint64
	Episode      int
}

// GobEncode implements the gob.GobEncoder interface
func (e *QExplorer) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Reward:       e.reward,
		Actions:      e.actions,
		Gamma:        e.gamma,
		Alpha:        e.alpha,
		Epsilon:      e.policy.Epsilon(),
		EpsilonDecay: e.policy.Decayer(),
		Q:            e.q,
		Map:          e.worldMap.States(),
		Seed:         e.sampler.Seed(),
		Episode:      e.episode,
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (e *QExplorer) GobDecode(in []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	decoded, err := build(snap.Reward, snap.Actions, snap.Gamma, snap.Alpha,
		snap.Epsilon, snap.EpsilonDecay, snap.Q, snap.Map, snap.Seed,
		snap.Episode)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	*e = *decoded
	return nil
}
