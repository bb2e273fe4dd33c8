package montecarlo

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment"
)

var (
	s0 = gridworld.NewState(0, 0, gridworld.Empty)
	s1 = gridworld.NewState(1, 0, gridworld.Empty)

	actions = []environment.Action{gridworld.Up, gridworld.Down, gridworld.Right}
)

func newMonteCarlo(t *testing.T) *MonteCarlo {
	env := agent.Env{Actions: actions, Reward: environment.BasicReward}
	m, err := New(env, Config{Gamma: 1, Epsilon: 0.1}, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRunUpdateDoesNotLearn(t *testing.T) {
	m := newMonteCarlo(t)
	reward, err := m.RunUpdate(s0, gridworld.Up, environment.Failure, s1)
	if err != nil {
		t.Fatal(err)
	}
	if reward != -100 {
		t.Errorf("expected reward -100, got %v", reward)
	}
	if v := m.Q().Get(s0, gridworld.Up); v != 0 {
		t.Errorf("expected Q to be unchanged, got %v", v)
	}
}

func TestFirstVisitRunningMean(t *testing.T) {
	m := newMonteCarlo(t)

	states := []environment.State{s0, s1, s0}
	acts := []environment.Action{gridworld.Up, gridworld.Right, gridworld.Up}
	if err := m.FinalizeEpisode(states, []float64{-3, -2, -1},
		acts); err != nil {
		t.Fatal(err)
	}
	if v := m.Q().Get(s0, gridworld.Up); v != -3 {
		t.Errorf("expected first visit return -3, got %v", v)
	}
	if v := m.Q().Get(s1, gridworld.Right); v != -2 {
		t.Errorf("expected first visit return -2, got %v", v)
	}

	err := m.FinalizeEpisode([]environment.State{s0}, []float64{-1},
		[]environment.Action{gridworld.Up})
	if err != nil {
		t.Fatal(err)
	}
	if v := m.Q().Get(s0, gridworld.Up); v != -2 {
		t.Errorf("expected running mean -2, got %v", v)
	}
	sa := environment.StateAction{State: s0, Action: gridworld.Up}
	if n := m.Visits(sa); n != 2 {
		t.Errorf("expected 2 visits, got %v", n)
	}

	// Both visited states are greedy with respect to Q
	if best, _ := m.Policy().Best(s0); best != gridworld.Down {
		t.Errorf("expected best action down in s0, got %v", best)
	}
	if best, _ := m.Policy().Best(s1); best != gridworld.Up {
		t.Errorf("expected best action up in s1, got %v", best)
	}
}

func TestTrainsOnSmallWorld(t *testing.T) {
	w, err := gridworld.SmallWorld01.CreateWorld()
	if err != nil {
		t.Fatal(err)
	}
	env := agent.Env{
		World:   w,
		Actions: gridworld.BasicActions(),
		Reward:  environment.BasicReward,
	}
	m, err := New(env, Config{Gamma: 1, Epsilon: 0.2}, nil, 31)
	if err != nil {
		t.Fatal(err)
	}

	lengths, returns, err := experiment.Train(m, w, nil, 50, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if len(lengths) != 50 || len(returns) != 50 {
		t.Fatalf("expected 50 episodes, got %v lengths and %v returns",
			len(lengths), len(returns))
	}
	if m.Q().Len() == 0 {
		t.Error("expected values to be learned")
	}
}

func TestGob(t *testing.T) {
	m := newMonteCarlo(t)
	err := m.FinalizeEpisode([]environment.State{s0}, []float64{-4},
		[]environment.Action{gridworld.Right})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		t.Fatal(err)
	}
	decoded := &MonteCarlo{}
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	sa := environment.StateAction{State: s0, Action: gridworld.Right}
	if decoded.Visits(sa) != 1 {
		t.Errorf("expected 1 visit, got %v", decoded.Visits(sa))
	}
	if v := decoded.Q().GetPair(sa); v != -4 {
		t.Errorf("expected Q = -4, got %v", v)
	}
}
