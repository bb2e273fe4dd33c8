package lambdaq

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/trace"
	"github.com/samuelfneumann/tabular/decay"
)

func init() {
	// Register ConfigList type so that it can be typed using
	// agent.TypedConfigList to help with serialization/deserialization.
	agent.Register(agent.LambdaQTabular, ConfigList{})
}

// ConfigList implements functionality for storing a number of Config's
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values and constructs the list by
// every combination of field values.
type ConfigList struct {
	Gamma        []float64
	Alpha        []float64
	Epsilon      []float64
	Lambda       []float64
	TraceKind    []trace.Kind
	EpsilonDecay []decay.Config
	AlphaDecay   []decay.Config
	LambdaDecay  []decay.Config
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

// Config represents a configuration for the Watkins Q(λ) agent
type Config struct {
	Gamma        float64
	Alpha        float64
	Epsilon      float64
	Lambda       float64    // trace decay
	TraceKind    trace.Kind // accumulating, replacing or dutch
	EpsilonDecay decay.Config
	AlphaDecay   decay.Config
	LambdaDecay  decay.Config
}

// CreateAgent creates the agent from the Config with an all-zero
// Q-table
func (c Config) CreateAgent(env agent.Env, seed uint64) (agent.Agent,
	error) {
	return New(env, c, nil, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*LambdaQ)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1]")
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1]")
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1]")
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("lambda must be in [0, 1]")
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.LambdaQTabular
}
