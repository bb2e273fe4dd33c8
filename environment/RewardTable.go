package environment

import (
	"encoding/gob"
	"fmt"
)

func init() {
	gob.Register(RewardTable{})
}

// RewardTable is a RewardFunction which maps each Effect to a fixed
// reward. Unlike a closure, a RewardTable can be serialized along with
// the agent that uses it.
type RewardTable struct {
	Success float64
	Failure float64
	Normal  float64
}

// BasicReward rewards reaching a terminal state with 0, entering a trap
// with -100, and every other step with -1.
var BasicReward = RewardTable{Success: 0, Failure: -100, Normal: -1}

// RunningReward rewards the runner of a game of tag with 1 for every
// step it survives, 0 for escaping until the end of the game, and -100
// for being caught.
var RunningReward = RewardTable{Success: 0, Failure: -100, Normal: 1}

// NewRewardTable returns a new RewardTable
func NewRewardTable(success, failure, normal float64) RewardTable {
	return RewardTable{Success: success, Failure: failure, Normal: normal}
}

// Reward returns the reward for an Effect
func (r RewardTable) Reward(e Effect) float64 {
	switch e {
	case Success:
		return r.Success
	case Failure:
		return r.Failure
	default:
		return r.Normal
	}
}

func (r RewardTable) String() string {
	return fmt.Sprintf("RewardTable | Success: %.2f  |  Failure: %.2f  |  "+
		"Normal: %.2f", r.Success, r.Failure, r.Normal)
}
