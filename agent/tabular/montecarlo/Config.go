package montecarlo

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/decay"
)

func init() {
	agent.Register(agent.MonteCarloTabular, ConfigList{})
}

// ConfigList stores the values of each Config field, with the list
// holding every combination of values
type ConfigList struct {
	Gamma        []float64
	Epsilon      []float64
	EpsilonDecay []decay.Config
}

// Config returns an empty Config that is of the type stored by
// ConfigList
func (c ConfigList) Config() agent.Config {
	return Config{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c ConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the ConfigList
func (c ConfigList) NumFields() int {
	return reflect.ValueOf(c).NumField()
}

// Len returns the number of Configs stored by the list
func (c ConfigList) Len() int {
	return agent.Len(c)
}

// Config represents a configuration for the MonteCarlo agent
type Config struct {
	Gamma        float64
	Epsilon      float64
	EpsilonDecay decay.Config
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(env agent.Env, seed uint64) (agent.Agent,
	error) {
	return New(env, c, nil, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*MonteCarlo)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1]")
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1]")
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.MonteCarloTabular
}
