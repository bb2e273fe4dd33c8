package agent

import (
	"fmt"
	"reflect"
)

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

const (
	// Generic tabular methods
	QLearningTabular   Type = "QLearning-Tabular"
	SarsaTabular       Type = "Sarsa-Tabular"
	LambdaSarsaTabular Type = "LambdaSarsa-Tabular"
	LambdaQTabular     Type = "LambdaQ-Tabular"
	MonteCarloTabular  Type = "MonteCarlo-Tabular"
	RandomTabular      Type = "Random-Tabular"

	// Grid world methods
	QExplorerGridWorld Type = "QExplorer-GridWorld"
	ODPGridWorld       Type = "ODP-GridWorld"
)

// Registered types with the package. Once a Type has been registered
// with this map, a Config or ConfigList with that type can be created.
//
// No Type's are registered wtih this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var registeredTypes map[Type]reflect.Type

func init() {
	registeredTypes = make(map[Type]reflect.Type)
}

// Register registers an agent's Type with a concrete ConfigList type
// so that upon deserialization of a TypedConfigList, ConfigLists of
// type agentType are deserialized into the concrete type of configs.
func Register(agentType Type, configs ConfigList) {
	if _, ok := registeredTypes[agentType]; ok {
		panic(fmt.Sprintf("register: type %v registered twice", agentType))
	}
	registeredTypes[agentType] = reflect.TypeOf(configs)
}

// Registered returns whether a Type has been registered
func Registered(agentType Type) bool {
	_, ok := registeredTypes[agentType]
	return ok
}
