package qexplorer

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/decay"
)

func init() {
	// Register ConfigList type so that it can be typed using
	// agent.TypedConfigList to help with serialization/deserialization.
	agent.Register(agent.QExplorerGridWorld, ConfigList{})
}

// ConfigList implements functionality for storing a number of Config's
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values and constructs the list by
// every combination of field values.
type ConfigList struct {
	Gamma        []float64
	Alpha        []float64
	Epsilon      []float64
	EpsilonDecay []decay.Config
	AlphaDecay   []decay.Config
}

// NewConfigList returns a new ConfigList as an agent.TypedConfigList
// so that it can easily be JSON serialized/deserialized without
// knowing the underlying concrete type.
func NewConfigList(gamma, alpha, epsilon []float64, epsilonDecay,
	alphaDecay []decay.Config) agent.TypedConfigList {
	config := ConfigList{
		Gamma:        gamma,
		Alpha:        alpha,
		Epsilon:      epsilon,
		EpsilonDecay: epsilonDecay,
		AlphaDecay:   alphaDecay,
	}
	return agent.NewTypedConfigList(config)
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

// Config represents a configuration for the QExplorer agent
type Config struct {
	Gamma        float64
	Alpha        float64 // learning rate
	Epsilon      float64 // exploration of the behaviour policy
	EpsilonDecay decay.Config
	AlphaDecay   decay.Config
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
	_, ok := a.(*QExplorer)
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
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.QExplorerGridWorld
}
