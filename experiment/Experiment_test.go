package experiment_test

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/agent/tabular/random"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	"github.com/samuelfneumann/tabular/experiment/trackers"
)

// scripted plays a fixed sequence of actions, repeating the last one
type scripted struct {
	actions   []environment.Action
	i         int
	finalized []int
}

func (s *scripted) SelectAction(environment.State) (environment.Action,
	error) {
	a := s.actions[s.i]
	if s.i < len(s.actions)-1 {
		s.i++
	}
	return a, nil
}

func (s *scripted) RunUpdate(_ environment.State, _ environment.Action,
	e environment.Effect, _ environment.State) (float64, error) {
	return environment.BasicReward.Reward(e), nil
}

func (s *scripted) FinalizeEpisode(states []environment.State,
	returns []float64, actions []environment.Action) error {
	s.finalized = append(s.finalized, len(states), len(returns),
		len(actions))
	s.i = 0
	return nil
}

func (s *scripted) Gamma() float64 { return 1.0 }

var optimalPath = []environment.Action{
	gridworld.Right, gridworld.Right, gridworld.Up, gridworld.Up,
	gridworld.Left, gridworld.Left, gridworld.Up, gridworld.Up,
}

func smallWorld(t *testing.T) *gridworld.GridWorld {
	w, err := gridworld.New(gridworld.SmallWorld01)
	if err != nil {
		t.Fatalf("could not create world: %v", err)
	}
	return w
}

func TestRunEpisode(t *testing.T) {
	w := smallWorld(t)
	a := &scripted{actions: optimalPath}

	ep, err := experiment.RunEpisode(a, w, w.InitialState(), 0)
	if err != nil {
		t.Fatalf("runEpisode: %v", err)
	}

	if ep.Len() != 8 {
		t.Errorf("expected 8 steps, got %v", ep.Len())
	}
	if !ep.Succeeded() {
		t.Errorf("expected episode to end in a terminal state")
	}
	if ep.Return() != -7 {
		t.Errorf("expected return -7, got %v", ep.Return())
	}
	if len(a.finalized) != 3 || a.finalized[0] != 8 || a.finalized[1] != 8 ||
		a.finalized[2] != 8 {
		t.Errorf("finalize called with lengths %v, expected [8 8 8]",
			a.finalized)
	}
	if ep.States[0] != w.InitialState() {
		t.Errorf("first state %v is not the initial state", ep.States[0])
	}
}

func TestRunEpisodeStepCap(t *testing.T) {
	w := smallWorld(t)
	a := &scripted{actions: []environment.Action{gridworld.Down}}

	ep, err := experiment.RunEpisode(a, w, w.InitialState(), 5)
	if err != nil {
		t.Fatalf("runEpisode: %v", err)
	}
	if ep.Len() != 5 || ep.Succeeded() {
		t.Errorf("expected 5 unsuccessful steps, got %v (success: %v)",
			ep.Len(), ep.Succeeded())
	}
	if ep.Return() != -5 {
		t.Errorf("expected return -5, got %v", ep.Return())
	}
}

func TestOnlineTrackers(t *testing.T) {
	dir := t.TempDir()
	w := smallWorld(t)
	a := &scripted{actions: optimalPath}

	ret := trackers.NewReturn(filepath.Join(dir, "return.bin"))
	length := trackers.NewEpisodeLength(filepath.Join(dir, "length.bin"))
	every := tracker.Register(
		trackers.NewEpisodeLength(filepath.Join(dir, "every.bin")),
		tracker.Every(2),
	)

	exp := experiment.NewOnline(w, nil, a, 3, 0,
		[]tracker.Tracker{ret, length, every}, nil)
	if err := exp.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	exp.Save()

	returns := tracker.LoadData(filepath.Join(dir, "return.bin"))
	if len(returns) != 3 || returns[2] != -7 {
		t.Errorf("expected three returns of -7, got %v", returns)
	}

	lengths := tracker.LoadData(filepath.Join(dir, "length.bin"))
	if len(lengths) != 3 || lengths[0] != 8 {
		t.Errorf("expected three lengths of 8, got %v", lengths)
	}

	if n := len(tracker.LoadData(filepath.Join(dir, "every.bin"))); n != 2 {
		t.Errorf("expected episodes 0 and 2 to be tracked, got %v", n)
	}

	if len(exp.Lengths()) != 3 || len(exp.Returns()) != 3 {
		t.Errorf("expected 3 episodes, got %v", exp.Lengths())
	}

	if done, _ := exp.RunEpisode(); !done {
		t.Errorf("expected experiment to be finished")
	}
}

func TestCheckpointer(t *testing.T) {
	dir := t.TempDir()
	w := smallWorld(t)

	env := agent.Env{
		World:   w,
		Actions: gridworld.BasicActions(),
		Reward:  environment.BasicReward,
	}
	q, err := qlearning.New(env, qlearning.Config{
		Gamma: 1, Alpha: 0.5, Epsilon: 0.1,
	}, nil, 1)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}

	filename := checkpointer.FilenameEnumerator(0,
		filepath.Join(dir, "agent"), ".bin")
	exp := experiment.NewOnline(w, nil, q, 4, 100, nil, nil)
	exp.AddCheckpointer(checkpointer.NewNEpisode(2, q, filename))
	if err := exp.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	var loaded qlearning.QLearning
	if err := checkpointer.Load(filepath.Join(dir, "agent2.bin"),
		&loaded); err != nil {
		t.Fatalf("could not load checkpoint: %v", err)
	}
	if loaded.Q().Len() != q.Q().Len() {
		t.Errorf("loaded Q-table has %v entries, expected %v",
			loaded.Q().Len(), q.Q().Len())
	}

	if err := checkpointer.Load(filepath.Join(dir, "agent3.bin"),
		&loaded); err == nil {
		t.Errorf("expected only two checkpoints")
	}
}

func TestConfigJSON(t *testing.T) {
	data := []byte(`{
		"Type": "OnlineExperiment",
		"Episodes": 5,
		"MaxSteps": 50,
		"World": "SmallWorld01",
		"AgentConf": {
			"Type": "Random-Tabular",
			"ConfigList": {"Gamma": [0.9, 1.0]}
		}
	}`)

	var c experiment.Config
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("could not unmarshal config: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.AgentConf.Len() != 2 {
		t.Errorf("expected 2 agent configs, got %v", c.AgentConf.Len())
	}

	c.World = "NoSuchWorld"
	if err := c.Validate(); err == nil {
		t.Errorf("expected error for unknown world")
	}
}

func TestSweep(t *testing.T) {
	c := experiment.Config{
		Type:      experiment.OnlineExp,
		Episodes:  20,
		MaxSteps:  200,
		World:     "SmallWorld01",
		AgentConf: qlearning.NewConfigList([]float64{1}, []float64{0.5},
			[]float64{0.1, 0.2}, nil, nil),
	}

	results, err := c.Sweep(4, 10)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %v", len(results))
	}

	for _, r := range results {
		if r.Runs != 4 || len(r.Returns) != 20 || len(r.Lengths) != 20 {
			t.Errorf("unexpected result shape: %v runs, %v episodes",
				r.Runs, len(r.Returns))
		}
		for e, l := range r.Lengths {
			if l < 1 || l > 200 {
				t.Errorf("episode %v has mean length %v", e, l)
			}
			if math.IsNaN(r.ReturnsStdErr[e]) {
				t.Errorf("episode %v has NaN standard error", e)
			}
		}
	}

	if _, err := c.Sweep(0, 10); err == nil {
		t.Errorf("expected error for zero rounds")
	}
}

func TestStarts(t *testing.T) {
	c := experiment.Config{
		Type:     experiment.OnlineExp,
		Episodes: 3,
		MaxSteps: 1,
		World:    "SmallWorld01",
		Starts:   []gridworld.Coordinates{{X: 3, Y: 4}},
		AgentConf: agent.NewTypedConfigList(
			random.ConfigList{Gamma: []float64{1}},
		),
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	exp, err := c.CreateExp(0, 1, nil)
	if err != nil {
		t.Fatalf("createExp: %v", err)
	}
	if err := exp.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, l := range exp.Lengths() {
		if l != 1 {
			t.Errorf("expected single step episodes, got %v", l)
		}
	}

	c.RandomStarts = true
	if err := c.Validate(); err == nil {
		t.Errorf("expected error for random and fixed starts")
	}

	c.RandomStarts = false
	c.Starts = []gridworld.Coordinates{{X: 0, Y: 1}}
	if _, err := c.CreateExp(0, 1, nil); err == nil {
		t.Errorf("expected error for a start inside a wall")
	}
}
