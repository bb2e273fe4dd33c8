package agent

import (
	"fmt"

	"github.com/samuelfneumann/tabular/agent/policy"
	"github.com/samuelfneumann/tabular/decay"
	"github.com/samuelfneumann/tabular/environment"
)

// NewEGreedyFromQ returns an ε-greedy policy which is greedy with
// respect to q in every state q knows of
func NewEGreedyFromQ(q *QTable, epsilon float64,
	actions []environment.Action, d decay.Decayer) (*policy.EGreedy, error) {
	p, err := policy.NewEGreedy(epsilon, actions, d)
	if err != nil {
		return nil, fmt.Errorf("newEGreedyFromQ: %w", err)
	}

	if err := Greedify(p, q, q.States(), actions); err != nil {
		return nil, fmt.Errorf("newEGreedyFromQ: %w", err)
	}
	return p, nil
}

// Greedify updates the best action of p in each of the argument states
// to the best action under q
func Greedify(p *policy.EGreedy, q *QTable, states []environment.State,
	actions []environment.Action) error {
	for _, s := range states {
		if err := p.Update(s, q.BestAction(s, actions), false); err != nil {
			return err
		}
	}
	return nil
}
