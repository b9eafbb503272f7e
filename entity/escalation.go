package entity

import "fmt"

// EscalationKind tags the per-day enforcement state of a game.
type EscalationKind int

const (
	WithinLimit EscalationKind = iota
	Warned
	Killed
)

// Escalation is the enforcement state derived from the persisted
// violation count. Warnings counts how many passes already flagged the
// exe; once it reaches the threshold the state is Killed and stays
// there until the daily reset wipes the violation log.
type Escalation struct {
	Kind     EscalationKind
	Warnings int
}

// EscalationFor derives the state for an exe from its violation count.
// count is the number of violation rows recorded today, threshold the
// number of warnings tolerated before the process gets killed.
func EscalationFor(count, threshold int) Escalation {
	switch {
	case count <= 0:
		return Escalation{Kind: WithinLimit}
	case count < threshold:
		return Escalation{Kind: Warned, Warnings: count}
	default:
		return Escalation{Kind: Killed, Warnings: count}
	}
}

func (e Escalation) String() string {
	switch e.Kind {
	case Warned:
		return fmt.Sprintf("warned(%d)", e.Warnings)
	case Killed:
		return "killed"
	default:
		return "within_limit"
	}
}
