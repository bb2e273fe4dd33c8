package environment

import "testing"

type testState int

func (t testState) String() string { return "s" }

func TestBasicReward(t *testing.T) {
	tests := []struct {
		effect Effect
		want   float64
	}{
		{Success, 0},
		{Failure, -100},
		{Normal, -1},
	}

	for _, test := range tests {
		if got := BasicReward.Reward(test.effect); got != test.want {
			t.Errorf("effect %v: got reward %v, want %v", test.effect, got,
				test.want)
		}
	}
}

func TestListStarter(t *testing.T) {
	if _, err := NewListStarter(nil, 1); err == nil {
		t.Errorf("expected error for empty state list")
	}

	states := []State{testState(0), testState(1), testState(2)}
	starter, err := NewListStarter(states, 42)
	if err != nil {
		t.Fatalf("could not create starter: %v", err)
	}

	counts := map[State]int{}
	for i := 0; i < 3000; i++ {
		counts[starter.Start()]++
	}
	for _, s := range states {
		if counts[s] < 800 {
			t.Errorf("state %v sampled %v times out of 3000", s, counts[s])
		}
	}
}
