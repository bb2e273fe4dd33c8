package agent

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
)

// ReturnsFromRewards returns the discounted return from each step of an
// episode with the given rewards: G_t = r_t + γ G_{t+1}
func ReturnsFromRewards(rewards []float64, gamma float64) []float64 {
	returns := make([]float64, len(rewards))
	g := 0.0
	for i := len(rewards) - 1; i >= 0; i-- {
		g = rewards[i] + gamma*g
		returns[i] = g
	}
	return returns
}

// FirstVisitReturn returns the return following the first visit of
// each state-action pair in an episode. The pairs are returned in the
// order they were first visited.
func FirstVisitReturn(states []environment.State, actions []environment.Action,
	returns []float64) ([]environment.StateAction, map[environment.StateAction]float64) {
	if len(states) < len(returns) || len(actions) < len(returns) {
		panic(fmt.Sprintf("firstVisitReturn: %v returns but only %v states "+
			"and %v actions", len(returns), len(states), len(actions)))
	}

	order := make([]environment.StateAction, 0, len(returns))
	first := make(map[environment.StateAction]float64, len(returns))
	for i, g := range returns {
		sa := environment.StateAction{State: states[i], Action: actions[i]}
		if _, ok := first[sa]; !ok {
			first[sa] = g
			order = append(order, sa)
		}
	}
	return order, first
}
