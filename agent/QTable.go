package agent

import (
	"bytes"
	"encoding/gob"
	"math"

	"github.com/samuelfneumann/tabular/environment"
)

// QTable maps state-action pairs to estimated returns. Missing entries
// have value 0. A QTable never shrinks.
type QTable struct {
	values map[environment.StateAction]float64

	// States with at least one entry, in the order they were added
	states []environment.State
	seen   map[environment.State]bool
}

// NewQTable returns a new, empty QTable
func NewQTable() *QTable {
	return &QTable{
		values: make(map[environment.StateAction]float64),
		seen:   make(map[environment.State]bool),
	}
}

// NewQTableFrom returns a QTable initialized with the entries of q0
func NewQTableFrom(q0 map[environment.StateAction]float64) *QTable {
	q := NewQTable()
	for sa, v := range q0 {
		q.Set(sa.State, sa.Action, v)
	}
	return q
}

// Get returns the value of taking a in s
func (q *QTable) Get(s environment.State, a environment.Action) float64 {
	return q.values[environment.StateAction{State: s, Action: a}]
}

// GetPair returns the value of a state-action pair
func (q *QTable) GetPair(sa environment.StateAction) float64 {
	return q.values[sa]
}

// Set sets the value of taking a in s
func (q *QTable) Set(s environment.State, a environment.Action, v float64) {
	q.SetPair(environment.StateAction{State: s, Action: a}, v)
}

// SetPair sets the value of a state-action pair
func (q *QTable) SetPair(sa environment.StateAction, v float64) {
	q.values[sa] = v
	q.AddState(sa.State)
}

// AddState records a state as known without setting any value
func (q *QTable) AddState(s environment.State) {
	if !q.seen[s] {
		q.seen[s] = true
		q.states = append(q.states, s)
	}
}

// BestAction returns the action with the highest value in state s.
// Ties are broken towards the first action in actions.
func (q *QTable) BestAction(s environment.State,
	actions []environment.Action) environment.Action {
	best := actions[0]
	bestValue := q.Get(s, best)
	for _, a := range actions[1:] {
		if v := q.Get(s, a); v > bestValue {
			best, bestValue = a, v
		}
	}
	return best
}

// BestValue returns the highest value of any action in state s, or 0
// if there are no actions
func (q *QTable) BestValue(s environment.State,
	actions []environment.Action) float64 {
	if len(actions) == 0 {
		return 0
	}

	best := math.Inf(-1)
	for _, a := range actions {
		best = math.Max(best, q.Get(s, a))
	}
	return best
}

// States returns the states known to the QTable in the order they were
// added. The returned slice should not be modified.
func (q *QTable) States() []environment.State {
	return q.states
}

// Len returns the number of state-action entries
func (q *QTable) Len() int {
	return len(q.values)
}

// Map returns a copy of the entries of the QTable
func (q *QTable) Map() map[environment.StateAction]float64 {
	m := make(map[environment.StateAction]float64, len(q.values))
	for sa, v := range q.values {
		m[sa] = v
	}
	return m
}

// Entry is a single value of a QTable
type Entry struct {
	State  environment.State
	Action environment.Action
	Value  float64
}

// qTableData is the serialized form of a QTable. Concrete state and
// action types must be registered with encoding/gob.
type qTableData struct {
	States  []environment.State
	Entries []Entry
}

// GobEncode implements the gob.GobEncoder interface
func (q *QTable) GobEncode() ([]byte, error) {
	data := qTableData{States: q.states}
	for sa, v := range q.values {
		data.Entries = append(data.Entries, Entry{sa.State, sa.Action, v})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (q *QTable) GobDecode(b []byte) error {
	var data qTableData
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&data); err != nil {
		return err
	}

	*q = *NewQTable()
	for _, s := range data.States {
		q.AddState(s)
	}
	for _, e := range data.Entries {
		q.Set(e.State, e.Action, e.Value)
	}
	return nil
}
