package agent

import (
	"github.com/samuelfneumann/tabular/agent/trace"
	"github.com/samuelfneumann/tabular/environment"
)

// Broadcast adds α·δ·e(s, a) to the value of every state-action pair
// (s, a) with a nonzero eligibility e, and returns the distinct states
// that were touched in the order they entered the trace.
func Broadcast(q *QTable, t *trace.Trace, alpha,
	delta float64) []environment.State {
	seen := make(map[environment.State]bool)
	var touched []environment.State

	for _, sa := range t.RelevantKeys() {
		q.SetPair(sa, q.GetPair(sa)+alpha*delta*t.Value(sa))
		if !seen[sa.State] {
			seen[sa.State] = true
			touched = append(touched, sa.State)
		}
	}
	return touched
}
