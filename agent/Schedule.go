package agent

import (
	"fmt"

	"github.com/samuelfneumann/tabular/decay"
)

// Schedule is a hyper-parameter, such as a learning rate, which is
// decayed once per episode
type Schedule struct {
	Value   float64
	Decayer decay.Decayer
}

// NewSchedule returns a new Schedule. A nil Decayer never decays the
// value.
func NewSchedule(value float64, d decay.Decayer) Schedule {
	if d == nil {
		d = decay.Constant{}
	}
	return Schedule{value, d}
}

// NewScheduleFromConfig returns a new Schedule decayed as described by
// c
func NewScheduleFromConfig(value float64, c decay.Config) (Schedule, error) {
	d, err := c.Create(value)
	if err != nil {
		return Schedule{}, fmt.Errorf("newScheduleFromConfig: %w", err)
	}
	return NewSchedule(value, d), nil
}

// Step decays the value of the schedule at the given episode
func (s *Schedule) Step(episode int) {
	s.Value = s.Decayer.Apply(s.Value, episode)
}
