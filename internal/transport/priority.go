package transport

import "fmt"

// Priority of a message. Higher numeric value means more urgent.
//
// Values are spaced so new levels can be inserted without renumbering
// stored messages.
type Priority int

const (
	PriorityMin     Priority = 10
	PriorityLow     Priority = 20
	PriorityDefault Priority = 30
	PriorityHigh    Priority = 40
	PriorityUrgent  Priority = 50
)

// HigherOrEqual reports whether p is at least as urgent as other.
func (p Priority) HigherOrEqual(other Priority) bool { return p >= other }

func (p Priority) Valid() bool {
	switch p {
	case PriorityMin, PriorityLow, PriorityDefault, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (p Priority) String() string {
	switch p {
	case PriorityMin:
		return "min"
	case PriorityLow:
		return "low"
	case PriorityDefault:
		return "default"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority maps a priority name to its value.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "min":
		return PriorityMin, nil
	case "low":
		return PriorityLow, nil
	case "default", "":
		return PriorityDefault, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}
