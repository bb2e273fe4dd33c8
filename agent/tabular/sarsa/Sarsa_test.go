package sarsa

import (
	"bytes"
	"encoding/gob"
	"math"
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

func newGreedySarsa(t *testing.T) *Sarsa {
	q0 := agent.NewQTableFrom(map[environment.StateAction]float64{
		{State: s1, Action: gridworld.Right}: 1,
	})
	env := agent.Env{Actions: actions, Reward: environment.BasicReward}
	s, err := New(env, Config{Gamma: 0.9, Alpha: 0.1, Epsilon: 0}, q0, 3)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunUpdateUsesNextAction(t *testing.T) {
	s := newGreedySarsa(t)

	reward, err := s.RunUpdate(s0, gridworld.Down, environment.Normal, s1)
	if err != nil {
		t.Fatal(err)
	}
	if reward != -1 {
		t.Errorf("expected reward -1, got %v", reward)
	}

	// 0 + 0.1 * (-1 + 0.9 * Q(s1, right) - 0)
	if v := s.Q().Get(s0, gridworld.Down); math.Abs(v+0.01) > 1e-12 {
		t.Errorf("expected Q(s0, down) = -0.01, got %v", v)
	}
}

func TestCachedAction(t *testing.T) {
	s := newGreedySarsa(t)
	if _, err := s.RunUpdate(s0, gridworld.Down, environment.Normal,
		s1); err != nil {
		t.Fatal(err)
	}

	// The action sampled during the update is returned regardless of
	// the state it is requested for
	a, err := s.SelectAction(s0)
	if err != nil {
		t.Fatal(err)
	}
	if a != gridworld.Right {
		t.Errorf("expected cached action %v, got %v", gridworld.Right, a)
	}

	if err := s.FinalizeEpisode(nil, nil, nil); err != nil {
		t.Fatal(err)
	}

	// Q(s0, up) = Q(s0, right) = 0 > Q(s0, down), ties break to up
	a, err = s.SelectAction(s0)
	if err != nil {
		t.Fatal(err)
	}
	if a != gridworld.Up {
		t.Errorf("expected greedy action %v after the episode, got %v",
			gridworld.Up, a)
	}
}

func TestLearnsSmallWorld(t *testing.T) {
	w, err := gridworld.SmallWorld01.CreateWorld()
	if err != nil {
		t.Fatal(err)
	}
	env := agent.Env{
		World:   w,
		Actions: gridworld.BasicActions(),
		Reward:  environment.BasicReward,
	}
	s, err := New(env, Config{Gamma: 1, Alpha: 0.5, Epsilon: 0.05}, nil, 11)
	if err != nil {
		t.Fatal(err)
	}

	lengths, _, err := experiment.Train(s, w, nil, 500, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(lengths) != 500 {
		t.Fatalf("expected 500 episodes, got %v", len(lengths))
	}

	state := w.InitialState()
	for i := 0; i < 20; i++ {
		state, _ = w.TakeAction(state, s.Q().BestAction(state, env.Actions))
	}
	if state.(gridworld.State).Kind != gridworld.Terminal {
		t.Errorf("greedy policy did not reach the goal, stopped at %v", state)
	}
}

func TestGob(t *testing.T) {
	s := newGreedySarsa(t)
	if _, err := s.RunUpdate(s0, gridworld.Down, environment.Normal,
		s1); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		t.Fatal(err)
	}
	decoded := &Sarsa{}
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	if v := decoded.Q().Get(s0, gridworld.Down); math.Abs(v+0.01) > 1e-12 {
		t.Errorf("expected Q(s0, down) = -0.01, got %v", v)
	}
	if decoded.nextCached {
		t.Error("decoded agent should not have a cached action")
	}
}
