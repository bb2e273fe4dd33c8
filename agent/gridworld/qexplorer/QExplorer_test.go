package qexplorer

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

var origin = gridworld.NewState(0, 0, gridworld.Initial)

func newExplorer(t *testing.T, epsilon float64) *QExplorer {
	env := agent.Env{
		Actions: gridworld.BasicActions(),
		Reward:  environment.BasicReward,
	}
	e, err := New(env, Config{Gamma: 1, Alpha: 0.1, Epsilon: epsilon}, nil,
		19)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestCollisionRestrictsPolicy(t *testing.T) {
	e := newExplorer(t, 0.3)

	reward, err := e.RunUpdate(origin, gridworld.Up, environment.Normal,
		origin)
	if err != nil {
		t.Fatal(err)
	}
	if reward != -1 {
		t.Errorf("expected reward -1, got %v", reward)
	}
	if v := e.Q().Get(origin, gridworld.Up); math.Abs(v+0.1) > 1e-12 {
		t.Errorf("expected Q(origin, up) = -0.1, got %v", v)
	}

	// Up leads into a known wall and is never selected
	p, err := e.Policy().Probability(origin, gridworld.Up)
	if err != nil {
		t.Fatal(err)
	}
	if p != 0 {
		t.Errorf("expected probability 0 for up, got %v", p)
	}
	for i := 0; i < 1000; i++ {
		a, err := e.SelectAction(origin)
		if err != nil {
			t.Fatal(err)
		}
		if a == gridworld.Up {
			t.Fatal("selected an action leading into a known wall")
		}
	}
}

func TestBootstrapsFromReasonableActions(t *testing.T) {
	e := newExplorer(t, 0.1)
	right := gridworld.NewState(1, 0, gridworld.Empty)
	trap := gridworld.NewState(1, 1, gridworld.Trap)

	if _, err := e.RunUpdate(right, gridworld.Up, environment.Failure,
		trap); err != nil {
		t.Fatal(err)
	}
	// Make the action leading into the trap look best
	e.Q().Set(right, gridworld.Up, 5)

	// Up from (1, 0) is ignored when bootstrapping into (1, 0)
	if _, err := e.RunUpdate(origin, gridworld.Right, environment.Normal,
		right); err != nil {
		t.Fatal(err)
	}
	if v := e.Q().Get(origin, gridworld.Right); math.Abs(v+0.1) > 1e-12 {
		t.Errorf("expected Q(origin, right) = -0.1, got %v", v)
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
	e, err := New(env, Config{Gamma: 1, Alpha: 0.5, Epsilon: 0.1}, nil, 29)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := experiment.Train(e, w, nil, 300, 1000); err != nil {
		t.Fatal(err)
	}

	// The trap next to the goal has been found
	if !e.Map().NoGo(gridworld.Coordinates{X: 1, Y: 3}) {
		t.Error("expected the trap at (1, 3) to be mapped")
	}

	state := w.InitialState()
	for i := 0; i < 20; i++ {
		valid := e.Map().ReasonableActionsOr(state)
		state, _ = w.TakeAction(state, e.Q().BestAction(state, valid))
	}
	if state.(gridworld.State).Kind != gridworld.Terminal {
		t.Errorf("greedy policy did not reach the goal, stopped at %v", state)
	}
}

func TestGob(t *testing.T) {
	e := newExplorer(t, 0.2)
	if _, err := e.RunUpdate(origin, gridworld.Up, environment.Normal,
		origin); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded := &QExplorer{}
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	if !decoded.Map().NoGo(gridworld.Coordinates{X: 0, Y: 1}) {
		t.Error("expected the world map to be restored")
	}
	if p, _ := decoded.Policy().Probability(origin, gridworld.Up); p != 0 {
		t.Errorf("expected policy to be rebuilt from the map, P(up) = %v", p)
	}
}
