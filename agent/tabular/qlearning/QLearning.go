// Package qlearning implements tabular Q-learning with an ε-greedy
// behaviour policy
package qlearning

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
)

// QLearning implements the Q-learning algorithm. Updates bootstrap from
// the best action value of the next state, while actions are selected
// by an ε-greedy policy with respect to the current Q-table.
type QLearning struct {
	reward  environment.RewardFunction
	actions []environment.Action
	gamma   float64
	alpha   agent.Schedule

	q       *agent.QTable
	policy  *policy.EGreedy
	sampler *policy.Sampler
	episode int
}

// New creates a new QLearning agent. If q0 is nil, all action values
// start at 0.
func New(env agent.Env, c Config, q0 *agent.QTable,
	seed uint64) (*QLearning, error) {
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
	episode int) (*QLearning, error) {
	if q == nil {
		q = agent.NewQTable()
	}
	p, err := agent.NewEGreedyFromQ(q, epsilon, actions, epsilonDecay)
	if err != nil {
		return nil, err
	}

	return &QLearning{
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

// SelectAction samples an action from the behaviour policy
func (q *QLearning) SelectAction(s environment.State) (environment.Action,
	error) {
	return q.sampler.Sample(q.policy, s, q.actions)
}

// RunUpdate performs a Q-learning update of the value of action a in
// state s and makes the behaviour policy greedy in s
func (q *QLearning) RunUpdate(s environment.State, a environment.Action,
	e environment.Effect, next environment.State) (float64, error) {
	reward := q.reward.Reward(e)

	current := q.q.Get(s, a)
	target := reward + q.gamma*q.q.BestValue(next, q.actions)
	q.q.Set(s, a, current+q.alpha.Value*(target-current))
	q.q.AddState(next)

	if err := q.policy.Update(s, q.q.BestAction(s, q.actions),
		false); err != nil {
		return reward, fmt.Errorf("runUpdate: %w", err)
	}
	return reward, nil
}

// FinalizeEpisode decays the exploration and learning rates
func (q *QLearning) FinalizeEpisode([]environment.State, []float64,
	[]environment.Action) error {
	q.episode++
	q.policy.Decay(q.episode)
	q.alpha.Step(q.episode)
	return nil
}

// Gamma returns the discount factor
func (q *QLearning) Gamma() float64 {
	return q.gamma
}

// Alpha returns the current learning rate
func (q *QLearning) Alpha() float64 {
	return q.alpha.Value
}

// Q returns the Q-table of the agent
func (q *QLearning) Q() *agent.QTable {
	return q.q
}

// Policy returns the behaviour policy of the agent
func (q *QLearning) Policy() *policy.EGreedy {
	return q.policy
}

// snapshot is the serialized form of a QLearning agent. The behaviour
// policy is rebuilt from the Q-table when decoding.
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
func (q *QLearning) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Reward:       q.reward,
		Actions:      q.actions,
		Gamma:        q.gamma,
		Alpha:        q.alpha,
		Epsilon:      q.policy.Epsilon(),
		EpsilonDecay: q.policy.Decayer(),
		Q:            q.q,
		Seed:         q.sampler.Seed(),
		Episode:      q.episode,
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (q *QLearning) GobDecode(in []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	decoded, err := build(snap.Reward, snap.Actions, snap.Gamma, snap.Alpha,
		snap.Epsilon, snap.EpsilonDecay, snap.Q, snap.Seed, snap.Episode)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	*q = *decoded
	return nil
}
