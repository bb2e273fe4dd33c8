// Package random implements an agent which acts uniformly at random and
// never learns. It serves as a baseline in experiments.
package random

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/environment"
)

// Random selects every action with equal probability
type Random struct {
	reward  environment.RewardFunction
	actions []environment.Action
	gamma   float64

	policy  *policy.Random
	sampler *policy.Sampler
}

// New returns a new Random agent
func New(env agent.Env, c Config, seed uint64) (*Random, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return build(env.Reward, env.Actions, c.Gamma, seed)
}

func build(reward environment.RewardFunction, actions []environment.Action,
	gamma float64, seed uint64) (*Random, error) {
	p, err := policy.NewRandom(actions)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &Random{
		reward:  reward,
		actions: actions,
		gamma:   gamma,
		policy:  p,
		sampler: policy.NewSampler(seed),
	}, nil
}

// SelectAction selects an action uniformly at random
func (r *Random) SelectAction(s environment.State) (environment.Action,
	error) {
	return r.sampler.Sample(r.policy, s, r.actions)
}

// RunUpdate returns the reward of the transition
func (r *Random) RunUpdate(_ environment.State, _ environment.Action,
	e environment.Effect, _ environment.State) (float64, error) {
	return r.reward.Reward(e), nil
}

// FinalizeEpisode does nothing
func (r *Random) FinalizeEpisode([]environment.State, []float64,
	[]environment.Action) error {
	return nil
}

// Gamma returns the discount factor
func (r *Random) Gamma() float64 {
	return r.gamma
}

type snapshot struct {
	Reward  environment.RewardFunction
	Actions []environment.Action
	Gamma   float64
	Seed    uint64
}

// GobEncode implements the gob.GobEncoder interface
func (r *Random) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{r.reward, r.actions, r.gamma,
		r.sampler.Seed()})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (r *Random) GobDecode(in []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&snap); err != nil {
		return err
	}

	decoded, err := build(snap.Reward, snap.Actions, snap.Gamma, snap.Seed)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}
