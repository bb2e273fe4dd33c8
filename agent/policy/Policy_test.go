package policy

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
)

type testState int

func (s testState) String() string { return fmt.Sprintf("s%d", int(s)) }

type testAction int

func (a testAction) String() string { return fmt.Sprintf("a%d", int(a)) }

var (
	s0 = testState(0)
	s1 = testState(1)
	a0 = testAction(0)
	a1 = testAction(1)
	a2 = testAction(2)

	actions = []environment.Action{a0, a1, a2}
)

const samples = 100_000

// checkNormalized checks that the probabilities of p in state s sum to 1
func checkNormalized(t *testing.T, name string, p Policy, s environment.State,
	actions []environment.Action) {
	sum := 0.0
	for _, a := range actions {
		prob, err := p.Probability(s, a)
		if err != nil {
			t.Fatalf("%v: %v", name, err)
		}
		sum += prob
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("%v: probabilities in state %v sum to %v", name, s, sum)
	}
}

// frequencies samples actions from p in state s and returns the
// empirical frequency of each action
func frequencies(t *testing.T, p Policy, s environment.State,
	actions []environment.Action) map[environment.Action]float64 {
	sampler := NewSampler(1)
	counts := make(map[environment.Action]float64)
	for i := 0; i < samples; i++ {
		a, err := sampler.Sample(p, s, actions)
		if err != nil {
			t.Fatalf("could not sample action: %v", err)
		}
		counts[a]++
	}
	for a := range counts {
		counts[a] /= samples
	}
	return counts
}

func TestRandom(t *testing.T) {
	r, err := NewRandom(actions)
	if err != nil {
		t.Fatalf("could not create policy: %v", err)
	}
	checkNormalized(t, "random", r, s0, actions)

	if _, err := r.Probability(s0, testAction(7)); !errors.Is(err,
		ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}

	freq := frequencies(t, r, s0, actions)
	for _, a := range actions {
		if math.Abs(freq[a]-1.0/3) > 1e-2 {
			t.Errorf("action %v sampled with frequency %v", a, freq[a])
		}
	}

	if _, err := NewRandom(nil); err == nil {
		t.Errorf("expected error for empty action set")
	}
	if _, err := NewRandom([]environment.Action{a0, a0}); err == nil {
		t.Errorf("expected error for duplicate actions")
	}
}

func TestGreedy(t *testing.T) {
	g, err := NewGreedy(actions, map[environment.State]environment.Action{
		s0: a1,
	})
	if err != nil {
		t.Fatalf("could not create policy: %v", err)
	}
	checkNormalized(t, "greedy", g, s0, actions)

	if p, _ := g.Probability(s0, a1); p != 1 {
		t.Errorf("expected probability 1, got %v", p)
	}
	if p, _ := g.Probability(s0, a0); p != 0 {
		t.Errorf("expected probability 0, got %v", p)
	}

	if err := g.Update(s0, a2); err != nil {
		t.Fatalf("could not update: %v", err)
	}
	if a, _ := g.Action(s0); a != a2 {
		t.Errorf("expected %v after update, got %v", a2, a)
	}
	if err := g.Update(s0, testAction(9)); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}

	// States without a mapped action cannot be sampled from
	_, err = NewSampler(1).Sample(g, s1, actions)
	if !errors.Is(err, ErrPolicyNormalization) {
		t.Errorf("expected ErrPolicyNormalization, got %v", err)
	}
}

func TestEGreedyDistribution(t *testing.T) {
	epsilon := 0.1
	e, err := NewEGreedy(epsilon, actions, nil)
	if err != nil {
		t.Fatalf("could not create policy: %v", err)
	}

	// Unseen states are uniform
	if p, _ := e.Probability(s0, a0); math.Abs(p-1.0/3) > 1e-12 {
		t.Errorf("expected uniform probability for unseen state, got %v", p)
	}

	if err := e.Update(s0, a1, false); err != nil {
		t.Fatalf("could not update: %v", err)
	}
	checkNormalized(t, "egreedy", e, s0, actions)

	freq := frequencies(t, e, s0, actions)
	want := map[environment.Action]float64{
		a0: epsilon / 2,
		a1: 1 - epsilon,
		a2: epsilon / 2,
	}
	for a, w := range want {
		if math.Abs(freq[a]-w) > 1e-2 {
			t.Errorf("action %v: frequency %v, want %v", a, freq[a], w)
		}
	}
}

func TestEGreedySetEpsilon(t *testing.T) {
	e, _ := NewEGreedy(0.1, actions, nil)
	_ = e.Update(s0, a0, false)
	_ = e.Update(s1, a2, false)

	if err := e.SetEpsilon(0.4); err != nil {
		t.Fatalf("could not set epsilon: %v", err)
	}
	for s, best := range map[environment.State]environment.Action{s0: a0,
		s1: a2} {
		if p, _ := e.Probability(s, best); math.Abs(p-0.6) > 1e-12 {
			t.Errorf("state %v: expected best probability 0.6, got %v", s, p)
		}
		checkNormalized(t, "setEpsilon", e, s, actions)
	}

	if err := e.SetEpsilon(1.5); err == nil {
		t.Errorf("expected error for epsilon > 1")
	}
}

func TestEGreedyDecay(t *testing.T) {
	d := decay.Linear{Rate: 0.05, Min: 0.02}
	e, _ := NewEGreedy(0.1, actions, d)
	_ = e.Update(s0, a0, false)

	e.Decay(1)
	if math.Abs(e.Epsilon()-0.05) > 1e-12 {
		t.Errorf("expected epsilon 0.05, got %v", e.Epsilon())
	}
	if p, _ := e.Probability(s0, a0); math.Abs(p-0.95) > 1e-12 {
		t.Errorf("expected recomputed probability 0.95, got %v", p)
	}

	e.Decay(2)
	if math.Abs(e.Epsilon()-0.02) > 1e-12 {
		t.Errorf("expected epsilon floor 0.02, got %v", e.Epsilon())
	}
}

func TestEGreedySingleAction(t *testing.T) {
	single := []environment.Action{a0}
	e, _ := NewEGreedy(0.3, single, nil)
	_ = e.Update(s0, a0, false)

	if p, _ := e.Probability(s0, a0); p != 1 {
		t.Errorf("expected probability 1 for single action, got %v", p)
	}
}

func TestEGreedyUpdateOnlyOnChange(t *testing.T) {
	e, _ := NewEGreedy(0.1, actions, nil)
	_ = e.Update(s0, a0, false)

	// Changing epsilon directly on the struct bypasses recomputation,
	// so an update with an unchanged best action must keep the old
	// probabilities unless forced
	e.epsilon = 0.5
	_ = e.Update(s0, a0, false)
	if p, _ := e.Probability(s0, a0); math.Abs(p-0.9) > 1e-12 {
		t.Errorf("expected unchanged probability 0.9, got %v", p)
	}

	_ = e.Update(s0, a0, true)
	if p, _ := e.Probability(s0, a0); math.Abs(p-0.5) > 1e-12 {
		t.Errorf("expected forced probability 0.5, got %v", p)
	}
}

func TestEExplorer(t *testing.T) {
	e, err := NewEExplorer(0.2, actions, nil)
	if err != nil {
		t.Fatalf("could not create policy: %v", err)
	}

	valid := []environment.Action{a0, a2}
	if err := e.Update(s0, a2, valid, false); err != nil {
		t.Fatalf("could not update: %v", err)
	}
	checkNormalized(t, "explorer", e, s0, actions)

	want := map[environment.Action]float64{a0: 0.2, a1: 0, a2: 0.8}
	for a, w := range want {
		if p, _ := e.Probability(s0, a); math.Abs(p-w) > 1e-12 {
			t.Errorf("action %v: probability %v, want %v", a, p, w)
		}
	}

	if err := e.Update(s1, a1, []environment.Action{a1}, false); err != nil {
		t.Fatalf("could not update: %v", err)
	}
	if p, _ := e.Probability(s1, a1); p != 1 {
		t.Errorf("expected probability 1 for single valid action, got %v", p)
	}

	if err := e.Update(s0, a1, valid, false); !errors.Is(err,
		ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction for best outside valid, got %v",
			err)
	}

	_ = e.SetEpsilon(0.5)
	if p, _ := e.Probability(s0, a0); math.Abs(p-0.5) > 1e-12 {
		t.Errorf("expected recomputed probability 0.5, got %v", p)
	}
	checkNormalized(t, "explorer", e, s1, actions)
}

func TestEExplorerDuplicateValid(t *testing.T) {
	e, err := NewEExplorer(0.3, actions, nil)
	if err != nil {
		t.Fatalf("could not create policy: %v", err)
	}

	if err := e.Update(s0, a0, []environment.Action{a0, a0, a2},
		false); err != nil {
		t.Fatalf("could not update: %v", err)
	}
	checkNormalized(t, "explorer", e, s0, actions)

	if v, _ := e.Valid(s0); len(v) != 2 {
		t.Errorf("expected 2 distinct valid actions, got %v", v)
	}
	if _, err := NewSampler(3).Sample(e, s0, actions); err != nil {
		t.Errorf("could not sample: %v", err)
	}
}

func TestSampleWithExploration(t *testing.T) {
	e, _ := NewEGreedy(0.1, actions, nil)
	_ = e.Update(s0, a1, false)

	sampler := NewSampler(3)
	explored := 0.0
	for i := 0; i < samples; i++ {
		a, exploration, err := sampler.SampleWithExploration(e, s0, actions)
		if err != nil {
			t.Fatalf("could not sample: %v", err)
		}
		if exploration != (a != a1) {
			t.Errorf("action %v reported exploration %v", a, exploration)
		}
		if exploration {
			explored++
		}
	}

	if freq := explored / samples; math.Abs(freq-0.1) > 1e-2 {
		t.Errorf("exploration frequency %v, want 0.1", freq)
	}
}

func TestRecommendation(t *testing.T) {
	e, _ := NewEGreedy(0.1, actions, nil)
	_ = e.Update(s0, a2, false)

	rec, err := Recommendation(e, []environment.State{s0, s1}, actions)
	if err != nil {
		t.Fatalf("could not get recommendation: %v", err)
	}
	if rec[s0] != a2 {
		t.Errorf("expected recommendation %v, got %v", a2, rec[s0])
	}

	// Uniform states recommend the first action
	if rec[s1] != a0 {
		t.Errorf("expected recommendation %v for uniform state, got %v", a0,
			rec[s1])
	}
}
