// Package trace implements eligibility traces over state-action pairs
package trace

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
)

// ErrConfig is returned when a trace is configured with an unknown kind
// or invalid parameters
var ErrConfig = errors.New("invalid trace configuration")

// Kind determines how the trace of a visited state-action pair is
// bumped
type Kind int

const (
	// Accumulating traces add 1 to the decayed trace: γλe + 1
	Accumulating Kind = iota

	// Replacing traces reset the trace to 1
	Replacing

	// Dutch traces add 1 to the trace decayed by (1-α): (1-α)γλe + 1
	Dutch
)

var kindNames = [...]string{"accumulating", "replacing", "dutch"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the Kind with the given name
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("parseKind: %w: kind must be one of %v, got %q",
		ErrConfig, kindNames, name)
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("marshalText: %w: unknown kind %d", ErrConfig,
			int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// minTrace is the magnitude below which decayed entries are dropped
const minTrace = 1e-12

// Trace is an eligibility trace: a decaying weight for each visited
// state-action pair. Keys are kept in the order in which they were
// first visited.
type Trace struct {
	kind   Kind
	lambda float64
	gamma  float64
	alpha  float64

	values map[environment.StateAction]float64
	keys   []environment.StateAction
}

// New returns a new, empty Trace. The alpha parameter is only used by
// Dutch traces.
func New(kind Kind, lambda, gamma, alpha float64) (*Trace, error) {
	if kind < Accumulating || kind > Dutch {
		return nil, fmt.Errorf("new: %w: unknown kind %d", ErrConfig,
			int(kind))
	}
	if lambda < 0 || lambda > 1 {
		return nil, fmt.Errorf("new: %w: lambda must be in [0, 1]", ErrConfig)
	}
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("new: %w: gamma must be in [0, 1]", ErrConfig)
	}

	return &Trace{
		kind:   kind,
		lambda: lambda,
		gamma:  gamma,
		alpha:  alpha,
		values: make(map[environment.StateAction]float64),
	}, nil
}

// Value returns the trace of a state-action pair, which is 0 for pairs
// that are not in the trace
func (t *Trace) Value(sa environment.StateAction) float64 {
	return t.values[sa]
}

// VisitedUpdate bumps the trace of the state-action pair that was just
// visited
func (t *Trace) VisitedUpdate(sa environment.StateAction) {
	old, ok := t.values[sa]
	if !ok {
		t.keys = append(t.keys, sa)
	}

	switch t.kind {
	case Replacing:
		t.values[sa] = 1
	case Dutch:
		t.values[sa] = (1-t.alpha)*t.gamma*t.lambda*old + 1
	default:
		t.values[sa] = t.gamma*t.lambda*old + 1
	}
}

// DecayOthers multiplies the trace of every pair except exclude by γλ
func (t *Trace) DecayOthers(exclude environment.StateAction) {
	t.decay(&exclude)
}

// DecayAll multiplies the trace of every pair by γλ
func (t *Trace) DecayAll() {
	t.decay(nil)
}

func (t *Trace) decay(exclude *environment.StateAction) {
	factor := t.gamma * t.lambda
	kept := t.keys[:0]
	for _, sa := range t.keys {
		if exclude != nil && sa == *exclude {
			kept = append(kept, sa)
			continue
		}

		v := t.values[sa] * factor
		if v < minTrace && v > -minTrace {
			delete(t.values, sa)
			continue
		}
		t.values[sa] = v
		kept = append(kept, sa)
	}

	// Clear dropped tail entries so they can be collected
	for i := len(kept); i < len(t.keys); i++ {
		t.keys[i] = environment.StateAction{}
	}
	t.keys = kept
}

// RelevantKeys returns the state-action pairs with a nonzero trace in
// the order they were first visited
func (t *Trace) RelevantKeys() []environment.StateAction {
	keys := make([]environment.StateAction, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Len returns the number of pairs with a nonzero trace
func (t *Trace) Len() int {
	return len(t.keys)
}

// Reset clears the trace
func (t *Trace) Reset() {
	t.values = make(map[environment.StateAction]float64)
	t.keys = nil
}

// Kind returns the kind of the trace
func (t *Trace) Kind() Kind {
	return t.kind
}

// Lambda returns the trace decay parameter λ
func (t *Trace) Lambda() float64 {
	return t.lambda
}

// SetLambda sets the trace decay parameter λ
func (t *Trace) SetLambda(lambda float64) error {
	if lambda < 0 || lambda > 1 {
		return fmt.Errorf("setLambda: %w: lambda must be in [0, 1]", ErrConfig)
	}
	t.lambda = lambda
	return nil
}

// SetAlpha sets the learning rate used by Dutch traces
func (t *Trace) SetAlpha(alpha float64) {
	t.alpha = alpha
}
