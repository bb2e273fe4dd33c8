package agent

import (
	"fmt"
	"reflect"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env Env, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent created by the Config
	Type() Type
}

// ConfigList stores a number of Configs of a single Type. Instead of a
// slice of Configs, a ConfigList stores a slice of values for each
// field of the Config, and the list holds every combination of field
// values.
//
// Concrete ConfigLists must be structs whose fields are slices, named
// as the fields of the Config returned by their Config method.
type ConfigList interface {
	// Config returns an empty Config of the type stored by the list
	Config() Config

	// Type returns the type of the Configs stored in the list
	Type() Type

	// NumFields returns the number of settable fields of the list
	NumFields() int

	// Len returns the number of Configs stored in the list
	Len() int
}

// ConfigAt returns the Config at index i of a ConfigList. Combinations
// are enumerated with the last field of the list varying fastest.
func ConfigAt(i int, c ConfigList) Config {
	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("configAt: index %v out of range [0, %v)", i,
			c.Len()))
	}

	list := reflect.ValueOf(c)
	if list.Kind() == reflect.Ptr {
		list = list.Elem()
	}
	config := reflect.New(reflect.TypeOf(c.Config())).Elem()

	for f := list.NumField() - 1; f >= 0; f-- {
		values := list.Field(f)
		name := list.Type().Field(f).Name
		n := values.Len()

		field := config.FieldByName(name)
		if !field.IsValid() {
			panic(fmt.Sprintf("configAt: config has no field %v", name))
		}
		if n == 0 {
			// Fields without values keep their zero value
			continue
		}
		field.Set(values.Index(i % n))
		i /= n
	}

	return config.Interface().(Config)
}

// Len returns the number of combinations of the slice fields of a
// ConfigList struct. Empty fields count as a single zero value.
// Concrete ConfigLists use it to implement their Len method.
func Len(c ConfigList) int {
	list := reflect.ValueOf(c)
	if list.Kind() == reflect.Ptr {
		list = list.Elem()
	}

	n := 1
	for f := 0; f < list.NumField(); f++ {
		if l := list.Field(f).Len(); l > 0 {
			n *= l
		}
	}
	return n
}

// Configs returns all Configs of a ConfigList
func Configs(c ConfigList) []Config {
	configs := make([]Config, c.Len())
	for i := range configs {
		configs[i] = ConfigAt(i, c)
	}
	return configs
}
