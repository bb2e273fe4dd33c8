// Package montecarlo implements first-visit on-policy Monte Carlo
// control
package montecarlo

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
)

// MonteCarlo learns only at the end of each episode. The value of each
// state-action pair is the running mean of the returns that followed
// its first visit in every episode.
type MonteCarlo struct {
	reward  environment.RewardFunction
	actions []environment.Action
	gamma   float64

	q       *agent.QTable
	counts  map[environment.StateAction]int
	policy  *policy.EGreedy
	sampler *policy.Sampler
	episode int
}

// New creates a new MonteCarlo agent. If q0 is nil, all action values
// start at 0.
func New(env agent.Env, c Config, q0 *agent.QTable,
	seed uint64) (*MonteCarlo, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	epsilonDecay, err := c.EpsilonDecay.Create(c.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return build(env.Reward, env.Actions, c.Gamma, c.Epsilon, epsilonDecay,
		q0, nil, seed, 0)
}

func build(reward environment.RewardFunction, actions []environment.Action,
	gamma, epsilon float64, epsilonDecay decay.Decayer, q *agent.QTable,
	counts map[environment.StateAction]int, seed uint64,
	episode int) (*MonteCarlo, error) {
	if q == nil {
		q = agent.NewQTable()
	}
	if counts == nil {
		counts = make(map[environment.StateAction]int)
	}
	p, err := agent.NewEGreedyFromQ(q, epsilon, actions, epsilonDecay)
	if err != nil {
		return nil, err
	}

	return &MonteCarlo{
		reward:  reward,
		actions: actions,
		gamma:   gamma,
		q:       q,
		counts:  counts,
		policy:  p,
		sampler: policy.NewSampler(seed),
		episode: episode,
	}, nil
}

// SelectAction samples an action from the behaviour policy
func (m *MonteCarlo) SelectAction(s environment.State) (environment.Action,
	error) {
	return m.sampler.Sample(m.policy, s, m.actions)
}

// RunUpdate records the next state as visited and returns the reward
// of the transition. Values are only learned at the end of the episode.
func (m *MonteCarlo) RunUpdate(_ environment.State, _ environment.Action,
	e environment.Effect, next environment.State) (float64, error) {
	m.q.AddState(next)
	return m.reward.Reward(e), nil
}

// FinalizeEpisode updates the value of every state-action pair visited
// in the episode with the return that followed its first visit, then
// makes the behaviour policy greedy in every state visited so far and
// decays ε.
func (m *MonteCarlo) FinalizeEpisode(states []environment.State,
	returns []float64, actions []environment.Action) error {
	order, first := agent.FirstVisitReturn(states, actions, returns)
	for _, sa := range order {
		m.counts[sa]++
		v := m.q.GetPair(sa)
		m.q.SetPair(sa, v+(first[sa]-v)/float64(m.counts[sa]))
	}

	if err := agent.Greedify(m.policy, m.q, m.q.States(),
		m.actions); err != nil {
		return fmt.Errorf("finalizeEpisode: %w", err)
	}

	m.episode++
	m.policy.Decay(m.episode)
	return nil
}

// Gamma returns the discount factor
func (m *MonteCarlo) Gamma() float64 {
	return m.gamma
}

// Q returns the Q-table of the agent
func (m *MonteCarlo) Q() *agent.QTable {
	return m.q
}

// Policy returns the behaviour policy of the agent
func (m *MonteCarlo) Policy() *policy.EGreedy {
	return m.policy
}

// Visits returns the number of episodes in which sa was visited
func (m *MonteCarlo) Visits(sa environment.StateAction) int {
	return m.counts[sa]
}

type visitCount struct {
	State  environment.State
	Action environment.Action
	Count  int
}

type snapshot struct {
	Reward       environment.RewardFunction
	Actions      []environment.Action
	Gamma        float64
	Epsilon      float64
	EpsilonDecay decay.Decayer
	Q            *agent.QTable
	Counts       []visitCount
	Seed         uint64
	Episode      int
}

// GobEncode implements the gob.GobEncoder interface
func (m *MonteCarlo) GobEncode() ([]byte, error) {
	counts := make([]visitCount, 0, len(m.counts))
	for sa, n := range m.counts {
		counts = append(counts, visitCount{sa.State, sa.Action, n})
	}

	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Reward:       m.reward,
		Actions:      m.actions,
		Gamma:        m.gamma,
		Epsilon:      m.policy.Epsilon(),
		EpsilonDecay: m.policy.Decayer(),
		Q:            m.q,
		Counts:       counts,
		Seed:         m.sampler.Seed(),
		Episode:      m.episode,
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (m *MonteCarlo) GobDecode(in []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	counts := make(map[environment.StateAction]int, len(snap.Counts))
	for _, c := range snap.Counts {
		counts[environment.StateAction{State: c.State, Action: c.Action}] =
			c.Count
	}

	decoded, err := build(snap.Reward, snap.Actions, snap.Gamma,
		snap.Epsilon, snap.EpsilonDecay, snap.Q, counts, snap.Seed,
		snap.Episode)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	*m = *decoded
	return nil
}
