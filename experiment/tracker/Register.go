package tracker

import (
	"github.com/samuelfneumann/tabular/timestep"
)

// registeredTracker registers a set of episodes with some Tracker so
// that the Tracker tracks data from the registered episodes only.
// registeredTracker itself is a Tracker.
//
// The Track() and Save() methods of a registeredTracker call those of
// the embedded Tracker. TimeSteps of episodes which are not registered
// are dropped before they reach the embedded Tracker, so the logic of
// the embedded Tracker's Track() and Save() methods remains unmodified.
//
// This may be useful to track only every n-th episode of a long
// experiment, or only the episodes after some warm-up period.
type registeredTracker struct {
	Tracker
	keep func(episode int) bool
}

// Register registers a new Tracker with the episodes for which keep
// returns true. Register returns a copy of the argument Tracker which
// tracks data from the registered episodes only.
//
// Note: the underlying concrete type of the registered Tracker is
// lost when registering episodes with a Tracker.
func Register(t Tracker, keep func(episode int) bool) Tracker {
	return &registeredTracker{t, keep}
}

// Every returns a function registering every n-th episode, starting
// with the first
func Every(n int) func(episode int) bool {
	if n <= 0 {
		n = 1
	}
	return func(episode int) bool {
		return episode%n == 0
	}
}

// Track calls Track() on the embedded Tracker if the TimeStep belongs
// to a registered episode
func (r *registeredTracker) Track(step timestep.TimeStep) {
	if r.keep(step.Episode) {
		r.Tracker.Track(step)
	}
}
