// Package dp implements dynamic programming over known world models:
// iterative policy evaluation and generalized policy iteration
package dp

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
)

// Outcome is a possible next state of a transition and its probability
type Outcome struct {
	Next        environment.State
	Probability float64
}

// Model is a model of the dynamics of a World. Transitions returns the
// distribution over next states when taking action a in state s, and
// Reward returns the reward of taking a in s.
type Model interface {
	Transitions(s environment.State, a environment.Action) []Outcome
	Reward(s environment.State, a environment.Action) float64
}

// TableModel is a Model stored in tables. Missing entries have no
// outcomes and a reward of 0.
type TableModel struct {
	transitions map[environment.StateAction][]Outcome
	rewards     map[environment.StateAction]float64
}

// NewTableModel returns a new, empty TableModel
func NewTableModel() *TableModel {
	return &TableModel{
		transitions: make(map[environment.StateAction][]Outcome),
		rewards:     make(map[environment.StateAction]float64),
	}
}

// Set sets the reward and outcomes of taking action a in state s
func (t *TableModel) Set(s environment.State, a environment.Action,
	reward float64, outcomes ...Outcome) {
	sa := environment.StateAction{State: s, Action: a}
	t.rewards[sa] = reward
	t.transitions[sa] = outcomes
}

// Transitions returns the distribution over next states
func (t *TableModel) Transitions(s environment.State,
	a environment.Action) []Outcome {
	return t.transitions[environment.StateAction{State: s, Action: a}]
}

// Reward returns the reward of taking a in s
func (t *TableModel) Reward(s environment.State, a environment.Action) float64 {
	return t.rewards[environment.StateAction{State: s, Action: a}]
}

// NewDeterministicModel returns the model of a deterministic World: each
// state-action pair leads with probability 1 to the state returned by
// the World, and is rewarded with the reward of the returned Effect.
// Every transition is computed once, when the model is built.
func NewDeterministicModel(w environment.World, actions []environment.Action,
	r environment.RewardFunction) (*TableModel, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("newDeterministicModel: no actions")
	}

	m := NewTableModel()
	for _, s := range w.States() {
		for _, a := range actions {
			next, effect := w.TakeAction(s, a)
			m.Set(s, a, r.Reward(effect), Outcome{next, 1})
		}
	}
	return m, nil
}
