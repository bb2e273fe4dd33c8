package odp

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment"
)

func newSmallWorld(t *testing.T) (*gridworld.GridWorld, agent.Env) {
	w, err := gridworld.SmallWorld01.CreateWorld()
	if err != nil {
		t.Fatal(err)
	}
	return w, agent.Env{
		World:   w,
		Actions: gridworld.BasicActions(),
		Reward:  environment.BasicReward,
	}
}

func TestReplansOnCollision(t *testing.T) {
	_, env := newSmallWorld(t)
	goal := gridworld.Coordinates{X: 0, Y: 4}
	o, err := New(env, Config{Gamma: 1, Terminal: &goal}, 1)
	if err != nil {
		t.Fatal(err)
	}

	if !o.FinalStateKnown() || o.Solves() != 1 {
		t.Fatalf("expected a plan from the known goal, known: %v solves: %v",
			o.FinalStateKnown(), o.Solves())
	}

	// In the optimistic world the goal is straight up
	origin := gridworld.NewState(0, 0, gridworld.Initial)
	a, err := o.SelectAction(origin)
	if err != nil {
		t.Fatal(err)
	}
	if a != gridworld.Up {
		t.Fatalf("expected to plan up, got %v", a)
	}

	// Bumping into the wall at (0, 1) contradicts the optimistic world
	if _, err := o.RunUpdate(origin, gridworld.Up, environment.Normal,
		origin); err != nil {
		t.Fatal(err)
	}
	if o.PerfectRun() {
		t.Error("expected the run not to be perfect after a collision")
	}
	if o.Solves() != 2 {
		t.Errorf("expected a new plan, got %v solves", o.Solves())
	}
	if a, _ := o.SelectAction(origin); a != gridworld.Right {
		t.Errorf("expected to plan around the wall, got %v", a)
	}

	if err := o.FinalizeEpisode(nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if o.OptimalPathFound() {
		t.Error("an episode with corrections is not optimal")
	}
	if !o.PerfectRun() {
		t.Error("expected perfect run to be reset for the next episode")
	}
}

func TestReplansOnTrap(t *testing.T) {
	_, env := newSmallWorld(t)
	goal := gridworld.Coordinates{X: 0, Y: 4}
	o, err := New(env, Config{Gamma: 1, Terminal: &goal}, 1)
	if err != nil {
		t.Fatal(err)
	}

	from := gridworld.NewState(1, 2, gridworld.Empty)
	trap := gridworld.NewState(1, 3, gridworld.Trap)
	if _, err := o.RunUpdate(from, gridworld.Up, environment.Failure,
		trap); err != nil {
		t.Fatal(err)
	}

	if o.PerfectRun() {
		t.Error("expected the run not to be perfect after a trap")
	}
	if o.Solves() != 2 {
		t.Errorf("expected a new plan, got %v solves", o.Solves())
	}
	if !o.Map().NoGo(trap.Coordinates) {
		t.Errorf("expected %v to be avoided", trap.Coordinates)
	}
}

func TestFindsOptimalPath(t *testing.T) {
	w, env := newSmallWorld(t)
	o, err := New(env, Config{Gamma: 1, WarmStart: true}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if o.FinalStateKnown() || o.Plan() != nil {
		t.Fatal("expected no plan before the goal is found")
	}

	// The first episode is a random walk to the goal
	if _, _, err := experiment.Train(o, w, nil, 1, 0); err != nil {
		t.Fatal(err)
	}
	if !o.FinalStateKnown() {
		t.Fatal("expected the goal to be known after the first episode")
	}
	if o.OptimalPathFound() {
		t.Error("a random walk is not an optimal path")
	}

	// Every imperfect episode reveals a wall or trap, of which there are
	// only four
	lengths, _, err := experiment.Train(o, w, nil, 10, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !o.OptimalPathFound() {
		t.Fatal("expected an optimal path to be found")
	}
	if last := lengths[len(lengths)-1]; last != 8 {
		t.Errorf("expected the optimal path to take 8 steps, took %v", last)
	}
	if v, ok := o.Value(gridworld.Coordinates{}); !ok || v > -6.9 || v < -7.1 {
		t.Errorf("expected value -7 at the start, got %v", v)
	}
}

func TestShapeRequired(t *testing.T) {
	env := agent.Env{
		Actions: gridworld.BasicActions(),
		Reward:  environment.BasicReward,
	}
	if _, err := New(env, Config{Gamma: 1}, 1); err == nil {
		t.Error("expected an error without a world shape")
	}
	if _, err := New(env, Config{Gamma: 1, Width: 3, Height: 3}, 1); err != nil {
		t.Errorf("expected an explicit shape to be enough, got %v", err)
	}
}

func TestGob(t *testing.T) {
	_, env := newSmallWorld(t)
	goal := gridworld.Coordinates{X: 0, Y: 4}
	o, err := New(env, Config{Gamma: 1, Terminal: &goal}, 1)
	if err != nil {
		t.Fatal(err)
	}
	origin := gridworld.NewState(0, 0, gridworld.Initial)
	if _, err := o.RunUpdate(origin, gridworld.Up, environment.Normal,
		origin); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(o); err != nil {
		t.Fatal(err)
	}
	decoded := &ODP{}
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	if !decoded.FinalStateKnown() {
		t.Error("expected the goal to be known after decoding")
	}
	if a, _ := decoded.SelectAction(origin); a != gridworld.Right {
		t.Errorf("expected the plan to be rebuilt from the map, got %v", a)
	}
}
