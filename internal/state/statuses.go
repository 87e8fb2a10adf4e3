package state

// JobState is the schedule engine's view of a single job.
// It lives only in memory; the store never persists it.
type JobState string

const (
	StateArmed     JobState = "armed"
	StateFiring    JobState = "firing"
	StateCancelled JobState = "cancelled"
)

func (s JobState) String() string {
	return string(s)
}

type Transition struct {
	From JobState
	To   JobState
}

var ValidTransitions = []Transition{
	{From: StateArmed, To: StateFiring},
	{From: StateFiring, To: StateArmed},
	{From: StateArmed, To: StateCancelled},
	{From: StateFiring, To: StateCancelled},
}

func IsValidTransition(from, to JobState) bool {
	for _, t := range ValidTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}
