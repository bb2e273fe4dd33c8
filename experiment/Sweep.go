package experiment

import (
	"fmt"
	"math"
	"sync"

	"github.com/samuelfneumann/tabular/agent"
	"gonum.org/v1/gonum/stat"
)

// Result holds the per-episode statistics of a number of independent
// training runs of a single agent configuration
type Result struct {
	Index  int
	Config agent.Config
	Runs   int

	// Mean and standard error over runs of the discounted return and
	// length of each episode
	Returns       []float64
	ReturnsStdErr []float64
	Lengths       []float64
	LengthsStdErr []float64
}

// Sweep trains rounds independent agents for every agent configuration
// of c and averages their learning curves. Each run has its own world
// and agent and runs in its own goroutine. Run r of every configuration
// uses seed+r as its seed.
func (c Config) Sweep(rounds int, seed uint64) ([]Result, error) {
	return c.SweepWithProgress(rounds, seed, nil)
}

// SweepWithProgress is like Sweep but calls done, if non-nil, each time
// a run finishes. done may be called from multiple goroutines at once.
func (c Config) SweepWithProgress(rounds int, seed uint64,
	done func()) ([]Result, error) {
	if rounds <= 0 {
		return nil, fmt.Errorf("sweep: rounds must be positive")
	}

	results := make([]Result, c.AgentConf.Len())
	for i := range results {
		r, err := c.sweepConfig(i, rounds, seed, done)
		if err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
		results[i] = r
	}
	return results, nil
}

// sweepConfig runs all rounds of the i-th agent configuration
func (c Config) sweepConfig(i, rounds int, seed uint64,
	done func()) (Result, error) {
	lengths := make([][]int, rounds)
	returns := make([][]float64, rounds)
	errs := make([]error, rounds)

	var wg sync.WaitGroup
	for r := 0; r < rounds; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			if done != nil {
				defer done()
			}

			exp, err := c.CreateExp(i, seed+uint64(r), nil)
			if err != nil {
				errs[r] = err
				return
			}
			errs[r] = exp.Run()
			lengths[r] = exp.Lengths()
			returns[r] = exp.Returns()
		}(r)
	}
	wg.Wait()

	for r, err := range errs {
		if err != nil {
			return Result{}, fmt.Errorf("config %v run %v: %w", i, r, err)
		}
	}

	result := Result{
		Index:         i,
		Config:        c.AgentConf.At(i),
		Runs:          rounds,
		Returns:       make([]float64, c.Episodes),
		ReturnsStdErr: make([]float64, c.Episodes),
		Lengths:       make([]float64, c.Episodes),
		LengthsStdErr: make([]float64, c.Episodes),
	}

	episodeReturns := make([]float64, rounds)
	episodeLengths := make([]float64, rounds)
	for e := 0; e < c.Episodes; e++ {
		for r := 0; r < rounds; r++ {
			episodeReturns[r] = returns[r][e]
			episodeLengths[r] = float64(lengths[r][e])
		}
		result.Returns[e], result.ReturnsStdErr[e] = meanStdErr(episodeReturns)
		result.Lengths[e], result.LengthsStdErr[e] = meanStdErr(episodeLengths)
	}

	return result, nil
}

// meanStdErr returns the mean and standard error of x
func meanStdErr(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	mean, std := stat.MeanStdDev(x, nil)
	return mean, std / math.Sqrt(float64(len(x)))
}
