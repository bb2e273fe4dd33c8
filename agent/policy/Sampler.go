package policy

import (
	"fmt"
	"math"
	"sort"

	"github.com/samuelfneumann/tabular/environment"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// normalizationTolerance is the amount by which the probabilities of a
// policy may fall short of 1 due to rounding
const normalizationTolerance = 1e-9

// Sampler samples actions from policies
type Sampler struct {
	seed    uint64
	uniform distuv.Uniform
}

// NewSampler returns a new Sampler
func NewSampler(seed uint64) *Sampler {
	return &Sampler{
		seed:    seed,
		uniform: distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)},
	}
}

// Seed returns the seed of the Sampler
func (s *Sampler) Seed() uint64 {
	return s.seed
}

// Float64 returns a uniform sample in [0, 1)
func (s *Sampler) Float64() float64 {
	return s.uniform.Rand()
}

// Sample selects an action in state following policy p. Actions are
// considered in the order given.
func (s *Sampler) Sample(p Policy, state environment.State,
	actions []environment.Action) (environment.Action, error) {
	threshold := s.uniform.Rand()

	cumSum := 0.0
	var last environment.Action
	for _, a := range actions {
		prob, err := p.Probability(state, a)
		if err != nil {
			return nil, fmt.Errorf("sample: %w", err)
		}

		cumSum += prob
		if prob > 0 {
			last = a
		}
		if threshold <= cumSum {
			return a, nil
		}
	}

	if last != nil && math.Abs(cumSum-1) <= normalizationTolerance {
		return last, nil
	}
	return nil, fmt.Errorf("sample: %w: probabilities add to %.5f over "+
		"actions %v in state %v", ErrPolicyNormalization, cumSum, actions,
		state)
}

// SampleWithExploration selects an action in state following policy p,
// and also reports whether the selection was exploratory: any action
// other than the most probable one is considered an exploration.
func (s *Sampler) SampleWithExploration(p Policy, state environment.State,
	actions []environment.Action) (environment.Action, bool, error) {
	threshold := s.uniform.Rand()

	probs := make([]float64, len(actions))
	ordered := make([]int, len(actions))
	for i, a := range actions {
		prob, err := p.Probability(state, a)
		if err != nil {
			return nil, false, fmt.Errorf("sampleWithExploration: %w", err)
		}
		probs[i] = prob
		ordered[i] = i
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return probs[ordered[i]] > probs[ordered[j]]
	})

	cumSum := 0.0
	last := -1
	for _, i := range ordered {
		cumSum += probs[i]
		if probs[i] > 0 {
			last = i
		}
		if threshold <= cumSum {
			return actions[i], threshold > probs[ordered[0]], nil
		}
	}

	if last >= 0 && math.Abs(cumSum-1) <= normalizationTolerance {
		return actions[last], true, nil
	}
	return nil, false, fmt.Errorf("sampleWithExploration: %w: probabilities "+
		"add to %.5f over actions %v in state %v", ErrPolicyNormalization,
		cumSum, actions, state)
}
