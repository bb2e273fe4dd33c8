package qlearning

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment"
)

var (
	s0 = gridworld.NewState(0, 0, gridworld.Empty)
	s1 = gridworld.NewState(1, 0, gridworld.Empty)

	actions = []environment.Action{gridworld.Up, gridworld.Down, gridworld.Right}
)

func newEnv() agent.Env {
	return agent.Env{Actions: actions, Reward: environment.BasicReward}
}

func TestRunUpdate(t *testing.T) {
	q0 := agent.NewQTableFrom(map[environment.StateAction]float64{
		{State: s1, Action: gridworld.Up}: 1,
	})
	c := Config{Gamma: 0.9, Alpha: 0.1, Epsilon: 0.1}
	q, err := New(newEnv(), c, q0, 1)
	if err != nil {
		t.Fatal(err)
	}

	reward, err := q.RunUpdate(s0, gridworld.Down, environment.Success, s1)
	if err != nil {
		t.Fatal(err)
	}
	if reward != 0 {
		t.Errorf("expected reward 0, got %v", reward)
	}

	// 0 + 0.1 * (0 + 0.9 * 1 - 0)
	if v := q.Q().Get(s0, gridworld.Down); math.Abs(v-0.09) > 1e-12 {
		t.Errorf("expected Q(s0, down) = 0.09, got %v", v)
	}
	if best, _ := q.Policy().Best(s0); best != gridworld.Down {
		t.Errorf("expected policy to be greedy towards down, got %v", best)
	}
}

func TestFinalizeEpisodeDecays(t *testing.T) {
	c := Config{
		Gamma:        1,
		Alpha:        0.5,
		Epsilon:      0.5,
		EpsilonDecay: decay.Config{Type: "linear", Rate: 0.1},
		AlphaDecay:   decay.Config{Type: "exponential", Base: 2, Lambda: 1},
	}
	q, err := New(newEnv(), c, nil, 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := q.FinalizeEpisode(nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if eps := q.Policy().Epsilon(); math.Abs(eps-0.4) > 1e-12 {
		t.Errorf("expected epsilon 0.4, got %v", eps)
	}
	if alpha := q.Alpha(); math.Abs(alpha-0.25) > 1e-12 {
		t.Errorf("expected alpha 0.25, got %v", alpha)
	}
}

func TestValidate(t *testing.T) {
	bad := []Config{
		{Gamma: 1.5, Alpha: 0.1},
		{Gamma: 1, Alpha: 0},
		{Gamma: 1, Alpha: 0.1, Epsilon: -0.1},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("expected config %+v to be invalid", c)
		}
		if _, err := New(newEnv(), c, nil, 1); err == nil {
			t.Errorf("expected construction with %+v to fail", c)
		}
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
	c := Config{Gamma: 1, Alpha: 0.5, Epsilon: 0.1}
	q, err := New(env, c, nil, 42)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := experiment.Train(q, w, nil, 500, 1000); err != nil {
		t.Fatal(err)
	}

	// Following the greedy policy from the initial state reaches the goal
	state := w.InitialState()
	for i := 0; i < 20; i++ {
		best := q.Q().BestAction(state, env.Actions)
		state, _ = w.TakeAction(state, best)
	}
	if state.(gridworld.State).Kind != gridworld.Terminal {
		t.Errorf("greedy policy did not reach the goal, stopped at %v", state)
	}
}

func TestGob(t *testing.T) {
	q0 := agent.NewQTableFrom(map[environment.StateAction]float64{
		{State: s0, Action: gridworld.Right}: 2,
		{State: s1, Action: gridworld.Up}:    -1,
	})
	c := Config{
		Gamma:        0.9,
		Alpha:        0.1,
		Epsilon:      0.2,
		EpsilonDecay: decay.Config{Type: "linear", Rate: 0.01},
	}
	q, err := New(newEnv(), c, q0, 7)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(q); err != nil {
		t.Fatal(err)
	}
	decoded := &QLearning{}
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Gamma() != 0.9 || decoded.Alpha() != 0.1 {
		t.Errorf("hyper-parameters not restored: gamma %v alpha %v",
			decoded.Gamma(), decoded.Alpha())
	}
	if decoded.Policy().Epsilon() != 0.2 {
		t.Errorf("expected epsilon 0.2, got %v", decoded.Policy().Epsilon())
	}
	if v := decoded.Q().Get(s0, gridworld.Right); v != 2 {
		t.Errorf("expected Q(s0, right) = 2, got %v", v)
	}
	p, _ := decoded.Policy().Probability(s0, gridworld.Right)
	if math.Abs(p-0.8) > 1e-12 {
		t.Errorf("policy not rebuilt from Q: P(right | s0) = %v", p)
	}
	sum := 0.0
	for _, a := range decoded.Policy().Actions() {
		p, err := decoded.Policy().Probability(s0, a)
		if err != nil {
			t.Fatal(err)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("probabilities in s0 sum to %v", sum)
	}
}
