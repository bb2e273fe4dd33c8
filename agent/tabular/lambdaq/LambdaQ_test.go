package lambdaq

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/trace"
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment"
)

var (
	s0 = gridworld.NewState(0, 0, gridworld.Empty)
	s1 = gridworld.NewState(1, 0, gridworld.Empty)
	s2 = gridworld.NewState(2, 0, gridworld.Empty)

	actions = []environment.Action{gridworld.Up, gridworld.Down, gridworld.Right}
)

func TestBroadcast(t *testing.T) {
	q0 := agent.NewQTableFrom(map[environment.StateAction]float64{
		{State: s1, Action: gridworld.Right}: 1,
	})
	env := agent.Env{Actions: actions, Reward: environment.BasicReward}
	c := Config{Gamma: 0.9, Alpha: 0.1, Lambda: 0.5}
	l, err := New(env, c, q0, 5)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := l.RunUpdate(s0, gridworld.Down, environment.Normal,
		s1); err != nil {
		t.Fatal(err)
	}
	if v := l.Q().Get(s0, gridworld.Down); math.Abs(v+0.01) > 1e-12 {
		t.Errorf("expected Q(s0, down) = -0.01, got %v", v)
	}

	// The greedy action in s1 is taken with certainty, so the trace
	// survives
	if l.Trace().Len() != 1 {
		t.Fatalf("expected trace to be kept, got %v pairs", l.Trace().Len())
	}
	a, err := l.SelectAction(s1)
	if err != nil {
		t.Fatal(err)
	}
	if a != gridworld.Right {
		t.Fatalf("expected cached action right, got %v", a)
	}

	if _, err := l.RunUpdate(s1, a, environment.Normal, s2); err != nil {
		t.Fatal(err)
	}
	if v := l.Q().Get(s0, gridworld.Down); math.Abs(v+0.1) > 1e-12 {
		t.Errorf("expected Q(s0, down) = -0.1, got %v", v)
	}
	if v := l.Q().Get(s1, gridworld.Right); math.Abs(v-0.8) > 1e-12 {
		t.Errorf("expected Q(s1, right) = 0.8, got %v", v)
	}
}

func TestExploratoryActionsResetTrace(t *testing.T) {
	env := agent.Env{Actions: actions, Reward: environment.BasicReward}
	c := Config{Gamma: 1, Alpha: 0.1, Epsilon: 1, Lambda: 1}
	l, err := New(env, c, nil, 17)
	if err != nil {
		t.Fatal(err)
	}

	// With ε = 1 all actions are equally likely, and any action other
	// than the first one in the ordering counts as exploration
	const updates = 300
	resets := 0
	for i := 0; i < updates; i++ {
		from := gridworld.NewState(i, 0, gridworld.Empty)
		to := gridworld.NewState(i+1, 0, gridworld.Empty)
		if _, err := l.RunUpdate(from, gridworld.Right, environment.Normal,
			to); err != nil {
			t.Fatal(err)
		}
		if l.Trace().Len() == 0 {
			resets++
		}
	}

	if frac := float64(resets) / updates; math.Abs(frac-2.0/3.0) > 0.15 {
		t.Errorf("expected about 2/3 of updates to reset the trace, got %v",
			frac)
	}
}

func TestFinalizeEpisode(t *testing.T) {
	env := agent.Env{Actions: actions, Reward: environment.BasicReward}
	c := Config{
		Gamma:       1,
		Alpha:       0.4,
		Epsilon:     0,
		Lambda:      0.9,
		AlphaDecay:  decay.Config{Type: "linear", Rate: 0.1},
		LambdaDecay: decay.Config{Type: "linear", Rate: 0.1},
	}
	l, err := New(env, c, nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.RunUpdate(s0, gridworld.Up, environment.Normal,
		s1); err != nil {
		t.Fatal(err)
	}

	if err := l.FinalizeEpisode(nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if l.Trace().Len() != 0 {
		t.Errorf("expected trace to be reset, got %v pairs", l.Trace().Len())
	}
	if math.Abs(l.Alpha()-0.3) > 1e-12 {
		t.Errorf("expected alpha 0.3, got %v", l.Alpha())
	}
	if math.Abs(l.Trace().Lambda()-0.8) > 1e-12 {
		t.Errorf("expected trace lambda 0.8, got %v", l.Trace().Lambda())
	}
	if l.nextCached {
		t.Error("expected cached action to be dropped")
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
	c := Config{
		Gamma:     1,
		Alpha:     0.3,
		Epsilon:   0.1,
		Lambda:    0.7,
		TraceKind: trace.Accumulating,
	}
	l, err := New(env, c, nil, 23)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := experiment.Train(l, w, nil, 500, 1000); err != nil {
		t.Fatal(err)
	}

	state := w.InitialState()
	for i := 0; i < 20; i++ {
		state, _ = w.TakeAction(state, l.Q().BestAction(state, env.Actions))
	}
	if state.(gridworld.State).Kind != gridworld.Terminal {
		t.Errorf("greedy policy did not reach the goal, stopped at %v", state)
	}
}

func TestGob(t *testing.T) {
	env := agent.Env{Actions: actions, Reward: environment.BasicReward}
	c := Config{Gamma: 0.9, Alpha: 0.2, Epsilon: 0.1, Lambda: 0.3,
		TraceKind: trace.Replacing}
	l, err := New(env, c, nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.RunUpdate(s0, gridworld.Up, environment.Normal,
		s1); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(l); err != nil {
		t.Fatal(err)
	}
	decoded := &LambdaQ{}
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Trace().Kind() != trace.Replacing {
		t.Errorf("expected replacing trace, got %v", decoded.Trace().Kind())
	}
	if decoded.Trace().Len() != 0 {
		t.Errorf("expected empty trace after decoding")
	}
	if v, want := decoded.Q().Get(s0, gridworld.Up),
		l.Q().Get(s0, gridworld.Up); v != want {
		t.Errorf("expected Q(s0, up) = %v, got %v", want, v)
	}
}
