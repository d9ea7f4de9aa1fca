// Package addressing expands recipient graphs into concrete transport
// selections: rank-ordered configuration evaluation per recipient,
// per-kind evaluation strategies, and the queue-based resolver that walks
// nested groups with cycle protection.
package addressing

import (
	"time"

	"opspager/internal/transport"
)

// EvaluationContext is the immutable snapshot of message and clock state
// that selection expressions are evaluated against.
type EvaluationContext struct {
	Priority      transport.Priority
	CurrentTime   time.Time
	ContentLength int
}

func NewEvaluationContext(p transport.Priority, now time.Time, contentLength int) EvaluationContext {
	return EvaluationContext{
		Priority:      p,
		CurrentTime:   now.Local(),
		ContentLength: contentLength,
	}
}

// Hour returns the hour of day (0-23) in the context's zone.
func (c EvaluationContext) Hour() int { return c.CurrentTime.Hour() }

// DayOfWeek returns the ISO-8601 day of week (Monday=1 .. Sunday=7).
func (c EvaluationContext) DayOfWeek() int {
	wd := int(c.CurrentTime.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Variables returns the variables available to selection expressions.
func (c EvaluationContext) Variables() map[string]any {
	return map[string]any{
		"priority":      c.Priority.String(),
		"priorityValue": int(c.Priority),
		"currentTime":   c.CurrentTime,
		"hour":          c.Hour(),
		"dayOfWeek":     c.DayOfWeek(),
		"contentLength": c.ContentLength,
	}
}
