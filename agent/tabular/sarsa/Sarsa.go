// Package sarsa implements tabular on-policy SARSA
package sarsa

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
)

// Sarsa implements the SARSA algorithm. Each update samples the next
// action from the behaviour policy and bootstraps from its value. The
// sampled action is then cached and returned by the next call to
// SelectAction, so that the action used in the update is the one
// actually taken.
type Sarsa struct {
	reward  environment.RewardFunction
	actions []environment.Action
	gamma   float64
	alpha   agent.Schedule

	q       *agent.QTable
	policy  *policy.EGreedy
	sampler *policy.Sampler
	episode int

	next       environment.Action
	nextCached bool
}

// New creates a new Sarsa agent. If q0 is nil, all action values
// start at 0.
func New(env agent.Env, c Config, q0 *agent.QTable,
	seed uint64) (*Sarsa, error) {
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

	return build(env.Reward, env.Actions, c.Gamma, alpha, c.Epsilon,
		epsilonDecay, q0, seed, 0)
}

func build(reward environment.RewardFunction, actions []environment.Action,
	gamma float64, alpha agent.Schedule, epsilon float64,
	epsilonDecay decay.Decayer, q *agent.QTable, seed uint64,
	episode int) (*Sarsa, error) {
	if q == nil {
		q = agent.NewQTable()
	}
	p, err := agent.NewEGreedyFromQ(q, epsilon, actions, epsilonDecay)
	if err != nil {
		return nil, err
	}

	return &Sarsa{
		reward:  reward,
		actions: actions,
		gamma:   gamma,
		alpha:   alpha,
		q:       q,
		policy:  p,
		sampler: policy.NewSampler(seed),
		episode: episode,
	}, nil
}

// SelectAction returns the action chosen during the last update if
// there is one, and otherwise samples from the behaviour policy
func (s *Sarsa) SelectAction(state environment.State) (environment.Action,
	error) {
	if s.nextCached {
		return s.next, nil
	}
	return s.SampleAction(state)
}

// SampleAction samples an action from the behaviour policy, ignoring
// any cached action
func (s *Sarsa) SampleAction(state environment.State) (environment.Action,
	error) {
	return s.sampler.Sample(s.policy, state, s.actions)
}

// RunUpdate performs a SARSA update of the value of action a in state
// st and makes the behaviour policy greedy in st
func (s *Sarsa) RunUpdate(st environment.State, a environment.Action,
	e environment.Effect, next environment.State) (float64, error) {
	nextAction, err := s.SampleAction(next)
	if err != nil {
		return 0, fmt.Errorf("runUpdate: %w", err)
	}
	s.next, s.nextCached = nextAction, true

	reward := s.reward.Reward(e)
	current := s.q.Get(st, a)
	target := reward + s.gamma*s.q.Get(next, nextAction)
	s.q.Set(st, a, current+s.alpha.Value*(target-current))
	s.q.AddState(next)

	if err := s.policy.Update(st, s.q.BestAction(st, s.actions),
		false); err != nil {
		return reward, fmt.Errorf("runUpdate: %w", err)
	}
	return reward, nil
}

// FinalizeEpisode drops the cached action and decays the exploration
// and learning rates
func (s *Sarsa) FinalizeEpisode([]environment.State, []float64,
	[]environment.Action) error {
	s.nextCached = false
	s.episode++
	s.policy.Decay(s.episode)
	s.alpha.Step(s.episode)
	return nil
}

// Gamma returns the discount factor
func (s *Sarsa) Gamma() float64 {
	return s.gamma
}

// Alpha returns the current learning rate
func (s *Sarsa) Alpha() float64 {
	return s.alpha.Value
}

// Q returns the Q-table of the agent
func (s *Sarsa) Q() *agent.QTable {
	return s.q
}

// Policy returns the behaviour policy of the agent
func (s *Sarsa) Policy() *policy.EGreedy {
	return s.policy
}

// snapshot is the serialized form of a Sarsa agent. The cached action
// is not kept: decoded agents always start a fresh episode.
type snapshot struct {
	Reward       environment.RewardFunction
	Actions      []environment.Action
	Gamma        float64
	Alpha        agent.Schedule
	Epsilon      float64
	EpsilonDecay decay.Decayer
	Q            *agent.QTable
	Seed         uint64
	Episode      int
}

// GobEncode implements the gob.GobEncoder interface
func (s *Sarsa) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Reward:       s.reward,
		Actions:      s.actions,
		Gamma:        s.gamma,
		Alpha:        s.alpha,
		Epsilon:      s.policy.Epsilon(),
		EpsilonDecay: s.policy.Decayer(),
		Q:            s.q,
		Seed:         s.sampler.Seed(),
		Episode:      s.episode,
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (s *Sarsa) GobDecode(in []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	decoded, err := build(snap.Reward, snap.Actions, snap.Gamma, snap.Alpha,
		snap.Epsilon, snap.EpsilonDecay, snap.Q, snap.Seed, snap.Episode)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	*s = *decoded
	return nil
}
