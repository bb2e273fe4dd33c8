package random

import (
	"math"
	"testing"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
)

func TestSelectActionUniform(t *testing.T) {
	env := agent.Env{
		Actions: gridworld.BasicActions(),
		Reward:  environment.BasicReward,
	}
	r, err := New(env, Config{Gamma: 1}, 9)
	if err != nil {
		t.Fatal(err)
	}

	const samples = 20000
	counts := make(map[environment.Action]int)
	s := gridworld.NewState(0, 0, gridworld.Initial)
	for i := 0; i < samples; i++ {
		a, err := r.SelectAction(s)
		if err != nil {
			t.Fatal(err)
		}
		counts[a]++
	}

	for _, a := range env.Actions {
		if freq := float64(counts[a]) / samples; math.Abs(freq-0.25) > 0.02 {
			t.Errorf("action %v selected with frequency %v", a, freq)
		}
	}
}

func TestRunUpdate(t *testing.T) {
	env := agent.Env{
		Actions: gridworld.BasicActions(),
		Reward:  environment.NewRewardTable(10, -10, 0),
	}
	r, err := New(env, Config{Gamma: 0.5}, 9)
	if err != nil {
		t.Fatal(err)
	}

	s := gridworld.NewState(0, 0, gridworld.Initial)
	reward, err := r.RunUpdate(s, gridworld.Up, environment.Success, s)
	if err != nil {
		t.Fatal(err)
	}
	if reward != 10 {
		t.Errorf("expected reward 10, got %v", reward)
	}
	if r.Gamma() != 0.5 {
		t.Errorf("expected gamma 0.5, got %v", r.Gamma())
	}

	if _, err := New(env, Config{Gamma: 2}, 9); err == nil {
		t.Error("expected invalid gamma to fail")
	}
}
