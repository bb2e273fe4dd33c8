// Command tabular runs a hyper-parameter sweep of a tabular agent in a
// grid world, reports the learning curves of every configuration, and
// then trains and displays the best configuration.
//
// Usage:
//
//	tabular -config configs/smallworld_qlearning.json [-rounds 10]
//	        [-seed 42] [-out results]
//
// Defaults for -seed and -out are read from the environment variables
// TABULAR_SEED and TABULAR_OUT, which may be set in a .env file.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/report"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	"github.com/samuelfneumann/tabular/experiment/trackers"
	"github.com/samuelfneumann/tabular/utils/progressbar"

	// Register agent configurations
	_ "github.com/samuelfneumann/tabular/agent/gridworld/odp"
	_ "github.com/samuelfneumann/tabular/agent/gridworld/qexplorer"
	_ "github.com/samuelfneumann/tabular/agent/tabular/lambdaq"
	_ "github.com/samuelfneumann/tabular/agent/tabular/lambdasarsa"
	_ "github.com/samuelfneumann/tabular/agent/tabular/montecarlo"
	_ "github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	_ "github.com/samuelfneumann/tabular/agent/tabular/random"
	_ "github.com/samuelfneumann/tabular/agent/tabular/sarsa"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("could not load .env file: %v", err)
	}

	configFile := flag.String("config", "", "experiment configuration file")
	rounds := flag.Int("rounds", 10, "independent runs per configuration")
	seed := flag.Uint64("seed", envSeed(), "random seed")
	out := flag.String("out", envOr("TABULAR_OUT", "results"),
		"output directory")
	flag.Parse()

	if *configFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	c, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatalf("could not create output directory: %v", err)
	}

	_, world, err := c.Env()
	if err != nil {
		log.Fatalf("could not create world: %v", err)
	}
	fmt.Println(aurora.Bold("World"))
	fmt.Println(world)

	results, err := sweep(c, *rounds, *seed)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	best := summarize(results)

	title := fmt.Sprintf("%v (%d runs)", c.AgentConf.Type, *rounds)
	if err := report.SavePlot(filepath.Join(*out, "sweep.html"), title,
		results...); err != nil {
		log.Fatalf("could not save plot: %v", err)
	}
	if err := report.SaveWorkbook(filepath.Join(*out, "sweep.xlsx"),
		results...); err != nil {
		log.Fatalf("could not save workbook: %v", err)
	}

	if err := trainBest(c, best, *seed, *out, world); err != nil {
		log.Fatalf("could not train best configuration: %v", err)
	}
}

// loadConfig reads and validates an experiment configuration
func loadConfig(filename string) (experiment.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return experiment.Config{}, err
	}

	var c experiment.Config
	if err := json.Unmarshal(data, &c); err != nil {
		return experiment.Config{}, err
	}
	return c, c.Validate()
}

// sweep runs the sweep of c while displaying its progress
func sweep(c experiment.Config, rounds int,
	seed uint64) ([]experiment.Result, error) {
	bar := progressbar.New(os.Stdout, 50, c.AgentConf.Len()*rounds)
	defer bar.Close()

	return c.SweepWithProgress(rounds, seed, func() {
		bar.Increment()
		bar.Display()
	})
}

// summarize prints the final return of each configuration and returns
// the index of the best one
func summarize(results []experiment.Result) int {
	best := 0
	for i, r := range results {
		if report.FinalMean(r.Returns) > report.FinalMean(results[best].Returns) {
			best = i
		}
	}

	fmt.Println(aurora.Bold("Final returns"))
	for i, r := range results {
		line := fmt.Sprintf("%3d  %10.3f  %+v", r.Index,
			report.FinalMean(r.Returns), r.Config)
		if i == best {
			fmt.Println(aurora.Green(line))
		} else {
			fmt.Println(line)
		}
	}
	return best
}

// trainBest trains a single agent with the best configuration, tracks
// its returns and episode lengths, saves it, and displays its greedy
// policy
func trainBest(c experiment.Config, best int, seed uint64, out string,
	world *gridworld.GridWorld) error {
	exp, err := c.CreateExp(best, seed, []tracker.Tracker{
		trackers.NewReturn(filepath.Join(out, "return.bin")),
		trackers.NewEpisodeLength(filepath.Join(out, "length.bin")),
	})
	if err != nil {
		return err
	}

	if err := exp.Run(); err != nil {
		return err
	}
	exp.Save()

	a := exp.Agent()
	if s, ok := a.(checkpointer.Serializable); ok {
		if err := checkpointer.Save(filepath.Join(out, "agent.bin"),
			s); err != nil {
			return err
		}
	}

	env, _, err := c.Env()
	if err != nil {
		return err
	}
	display(a, world, env.Actions)
	return nil
}

// planner is an agent which plans on a map of grid world coordinates
type planner interface {
	Plan() map[gridworld.Coordinates]environment.Action
	Value(gridworld.Coordinates) (float64, bool)
}

// display renders the greedy policy and state values of agents with a
// Q-table or a plan
func display(a agent.Agent, world *gridworld.GridWorld,
	actions []environment.Action) {
	states := world.States()
	rec := make(map[environment.State]environment.Action, len(states))
	values := make(map[environment.State]float64, len(states))

	switch a := a.(type) {
	case agent.Learner:
		q := a.Q()
		for _, s := range states {
			rec[s] = q.BestAction(s, actions)
			values[s] = q.BestValue(s, actions)
		}

	case planner:
		plan := a.Plan()
		for _, s := range states {
			c := s.(gridworld.State).Coordinates
			if action, ok := plan[c]; ok {
				rec[s] = action
			}
			if v, ok := a.Value(c); ok {
				values[s] = v
			}
		}

	default:
		return
	}

	fmt.Println(aurora.Bold("Greedy policy"))
	fmt.Println(world.RenderPolicy(rec))
	fmt.Println(aurora.Bold("State values"))
	fmt.Println(world.RenderValues(values))
}

// envSeed returns the seed set by TABULAR_SEED, or 0
func envSeed() uint64 {
	seed, err := strconv.ParseUint(envOr("TABULAR_SEED", "0"), 10, 64)
	if err != nil {
		log.Fatalf("invalid TABULAR_SEED: %v", err)
	}
	return seed
}

// envOr returns the value of the environment variable key, or def if it
// is not set
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
