// Package decay implements decay schedules for hyper-parameters such as
// exploration and learning rates
package decay

import (
	"encoding/gob"
	"fmt"
	"math"
)

func init() {
	gob.Register(Constant{})
	gob.Register(Linear{})
	gob.Register(Exponential{})
	gob.Register(InverseTime{})
}

// Decayer decays a value. Apply returns the next value given the
// current one and the index of the step at which the decay happens.
type Decayer interface {
	Apply(value float64, step int) float64
}

// Constant never changes the value
type Constant struct{}

// Apply returns value unchanged
func (Constant) Apply(value float64, _ int) float64 {
	return value
}

// Linear subtracts Rate from the value on every step, never going below
// Min
type Linear struct {
	Rate float64
	Min  float64
}

// NewLinear returns a new Linear decay
func NewLinear(rate, min float64) (Linear, error) {
	if rate < 0 {
		return Linear{}, fmt.Errorf("newLinear: rate must be non-negative")
	}
	return Linear{rate, min}, nil
}

// Apply decays the value
func (l Linear) Apply(value float64, _ int) float64 {
	return math.Max(value-l.Rate, l.Min)
}

// Exponential multiplies the value by Base^(-Lambda) on every step,
// never going below Min
type Exponential struct {
	Base   float64
	Lambda float64
	Min    float64
}

// NewExponential returns a new Exponential decay
func NewExponential(base, lambda, min float64) (Exponential, error) {
	if base <= 0 {
		return Exponential{}, fmt.Errorf("newExponential: base must be " +
			"positive")
	}
	return Exponential{base, lambda, min}, nil
}

// Apply decays the value
func (e Exponential) Apply(value float64, _ int) float64 {
	return math.Max(value*math.Pow(e.Base, -e.Lambda), e.Min)
}

// InverseTime sets the value to Initial / (1 + Rate * step), never going
// below Min. Unlike the other decays, it depends only on the step.
type InverseTime struct {
	Initial float64
	Rate    float64
	Min     float64
}

// Apply decays the value
func (i InverseTime) Apply(_ float64, step int) float64 {
	return math.Max(i.Initial/(1+i.Rate*float64(step)), i.Min)
}

// Config describes a Decayer so that it can be stored in JSON
// configurations. The zero Config describes a Constant decay.
type Config struct {
	Type   string  `json:",omitempty"` // "", "constant", "linear", "exponential", "inverse_time"
	Rate   float64 `json:",omitempty"`
	Base   float64 `json:",omitempty"`
	Lambda float64 `json:",omitempty"`
	Min    float64 `json:",omitempty"`
}

// Create returns the Decayer described by the Config. The initial
// value is only used by InverseTime decays.
func (c Config) Create(initial float64) (Decayer, error) {
	switch c.Type {
	case "", "constant":
		return Constant{}, nil
	case "linear":
		return NewLinear(c.Rate, c.Min)
	case "exponential":
		return NewExponential(c.Base, c.Lambda, c.Min)
	case "inverse_time":
		return InverseTime{Initial: initial, Rate: c.Rate, Min: c.Min}, nil
	}
	return nil, fmt.Errorf("decay: no such decay type %q", c.Type)
}
