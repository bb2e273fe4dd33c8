// Package lambdasarsa implements tabular SARSA(λ)
package lambdasarsa

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/agent/trace"
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
)

// LambdaSarsa implements SARSA(λ). The TD error of each transition is
// broadcast to every state-action pair with a nonzero eligibility
// trace, and the behaviour policy is made greedy in every state whose
// values changed.
type LambdaSarsa struct {
	reward  environment.RewardFunction
	actions []environment.Action
	gamma   float64
	alpha   agent.Schedule
	lambda  agent.Schedule

	q       *agent.QTable
	trace   *trace.Trace
	policy  *policy.EGreedy
	sampler *policy.Sampler
	episode int

	next       environment.Action
	nextCached bool
}

// New creates a new LambdaSarsa agent. If q0 is nil, all action values
// start at 0.
func New(env agent.Env, c Config, q0 *agent.QTable,
	seed uint64) (*LambdaSarsa, error) {
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
	lambda, err := agent.NewScheduleFromConfig(c.Lambda, c.LambdaDecay)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	l, err := build(env.Reward, env.Actions, c.Gamma, alpha, lambda,
		c.TraceKind, c.Epsilon, epsilonDecay, q0, seed, 0)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return l, nil
}

func build(reward environment.RewardFunction, actions []environment.Action,
	gamma float64, alpha, lambda agent.Schedule, kind trace.Kind,
	epsilon float64, epsilonDecay decay.Decayer, q *agent.QTable,
	seed uint64, episode int) (*LambdaSarsa, error) {
	t, err := trace.New(kind, lambda.Value, gamma, alpha.Value)
	if err != nil {
		return nil, err
	}

	if q == nil {
		q = agent.NewQTable()
	}
	p, err := agent.NewEGreedyFromQ(q, epsilon, actions, epsilonDecay)
	if err != nil {
		return nil, err
	}

	return &LambdaSarsa{
		reward:  reward,
		actions: actions,
		gamma:   gamma,
		alpha:   alpha,
		lambda:  lambda,
		q:       q,
		trace:   t,
		policy:  p,
		sampler: policy.NewSampler(seed),
		episode: episode,
	}, nil
}

// SelectAction returns the action chosen during the last update if
// there is one, and otherwise samples from the behaviour policy
func (l *LambdaSarsa) SelectAction(s environment.State) (environment.Action,
	error) {
	if l.nextCached {
		return l.next, nil
	}
	return l.SampleAction(s)
}

// SampleAction samples an action from the behaviour policy, ignoring
// any cached action
func (l *LambdaSarsa) SampleAction(s environment.State) (environment.Action,
	error) {
	return l.sampler.Sample(l.policy, s, l.actions)
}

// RunUpdate updates the eligibility trace with the transition, then
// broadcasts the SARSA TD error over the trace
func (l *LambdaSarsa) RunUpdate(s environment.State, a environment.Action,
	e environment.Effect, next environment.State) (float64, error) {
	sa := environment.StateAction{State: s, Action: a}
	l.trace.DecayOthers(sa)
	l.trace.VisitedUpdate(sa)

	nextAction, err := l.SampleAction(next)
	if err != nil {
		return 0, fmt.Errorf("runUpdate: %w", err)
	}
	l.next, l.nextCached = nextAction, true

	reward := l.reward.Reward(e)
	delta := reward + l.gamma*l.q.Get(next, nextAction) - l.q.Get(s, a)
	touched := agent.Broadcast(l.q, l.trace, l.alpha.Value, delta)
	l.q.AddState(next)

	if err := agent.Greedify(l.policy, l.q, touched, l.actions); err != nil {
		return reward, fmt.Errorf("runUpdate: %w", err)
	}
	return reward, nil
}

// FinalizeEpisode clears the trace and cached action, and decays the
// exploration rate, learning rate and trace decay
func (l *LambdaSarsa) FinalizeEpisode([]environment.State, []float64,
	[]environment.Action) error {
	l.nextCached = false
	l.trace.Reset()

	l.episode++
	l.policy.Decay(l.episode)
	l.alpha.Step(l.episode)
	l.lambda.Step(l.episode)

	l.trace.SetAlpha(l.alpha.Value)
	if err := l.trace.SetLambda(l.lambda.Value); err != nil {
		return fmt.Errorf("finalizeEpisode: %w", err)
	}
	return nil
}

// Gamma returns the discount factor
func (l *LambdaSarsa) Gamma() float64 {
	return l.gamma
}

// Alpha returns the current learning rate
func (l *LambdaSarsa) Alpha() float64 {
	return l.alpha.Value
}

// Lambda returns the current trace decay
func (l *LambdaSarsa) Lambda() float64 {
	return l.lambda.Value
}

// Q returns the Q-table of the agent
func (l *LambdaSarsa) Q() *agent.QTable {
	return l.q
}

// Policy returns the behaviour policy of the agent
func (l *LambdaSarsa) Policy() *policy.EGreedy {
	return l.policy
}

// Trace returns the eligibility trace of the agent
func (l *LambdaSarsa) Trace() *trace.Trace {
	return l.trace
}

// snapshot is the serialized form of a LambdaSarsa agent. Trace
// contents are not kept since they are cleared between episodes.
type snapshot struct {
	Reward       environment.RewardFunction
	Actions      []environment.Action
	Gamma        float64
	Alpha        agent.Schedule
	Lambda       agent.Schedule
	TraceKind    trace.Kind
	Epsilon      float64
	EpsilonDecay decay.Decayer
	Q            *agent.QTable
	Seed         uint64
	Episode      int
}

// GobEncode implements the gob.GobEncoder interface
func (l *LambdaSarsa) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Reward:       l.reward,
		Actions:      l.actions,
		Gamma:        l.gamma,
		Alpha:        l.alpha,
		Lambda:       l.lambda,
		TraceKind:    l.trace.Kind(),
		Epsilon:      l.policy.Epsilon(),
		EpsilonDecay: l.policy.Decayer(),
		Q:            l.q,
		Seed:         l.sampler.Seed(),
		Episode:      l.episode,
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (l *LambdaSarsa) GobDecode(in []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	decoded, err := build(snap.Reward, snap.Actions, snap.Gamma, snap.Alpha,
		snap.Lambda, snap.TraceKind, snap.Epsilon, snap.EpsilonDecay, snap.Q,
		snap.Seed, snap.Episode)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	*l = *decoded
	return nil
}
