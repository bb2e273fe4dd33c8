package odp

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment/gridworld"
)

func init() {
	// Register ConfigList type so that it can be typed using
	// agent.TypedConfigList to help with serialization/deserialization.
	agent.Register(agent.ODPGridWorld, ConfigList{})
}

// ConfigList implements functionality for storing a number of Config's
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values and constructs the list by
// every combination of field values.
type ConfigList struct {
	Gamma       []float64
	Width       []int
	Height      []int
	Terminal    []*gridworld.Coordinates
	WarmStart   []bool
	MaxEpochs   []int
	EvalEpsilon []float64
	MaxSweeps   []int
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

// Config represents a configuration for the ODP agent.
//
// Width and Height give the shape of the optimistic world the agent
// plans in. If they are 0, the shape of the GridWorld the agent is
// created for is used. The optimistic world should be at least as large
// as the part of the real world containing the optimal path.
type Config struct {
	Gamma  float64
	Width  int
	Height int

	// Terminal, if not nil, is the known location of the goal. The
	// agent then plans from the start instead of exploring randomly
	// until the goal is found.
	Terminal *gridworld.Coordinates `json:",omitempty"`

	// WarmStart starts each solve from the values of the previous one
	WarmStart bool

	// Dynamic programming settings, 0 for the defaults
	MaxEpochs   int
	EvalEpsilon float64
	MaxSweeps   int
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(env agent.Env, seed uint64) (agent.Agent,
	error) {
	return New(env, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*ODP)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1]")
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("invalid world shape (%d, %d)", c.Width, c.Height)
	}
	if c.MaxEpochs < 0 || c.MaxSweeps < 0 || c.EvalEpsilon < 0 {
		return fmt.Errorf("dynamic programming settings must be " +
			"non-negative")
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.ODPGridWorld
}
