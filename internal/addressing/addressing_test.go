package addressing

import (
	"context"
	"errors"
	"strings"

	"opspager/internal/recipient"
	"opspager/internal/transport"
)

// fakeTransport is a controllable transport double shared by the
// evaluator and resolver tests.
type fakeTransport struct {
	key       string
	accepts   bool
	canSend   bool
	sendErr   error
	sent      []transport.OutgoingMessage
	canSendFn func(r recipient.Recipient, msg transport.Message) bool
}

func newFakeTransport(key string) *fakeTransport {
	return &fakeTransport{key: key, accepts: true, canSend: true}
}

func (f *fakeTransport) Key() string              { return f.key }
func (f *fakeTransport) AcceptsNewMessages() bool { return f.accepts }

func (f *fakeTransport) CanSendTo(r recipient.Recipient, msg transport.Message) bool {
	if f.canSendFn != nil {
		return f.canSendFn(r, msg)
	}
	return f.canSend
}

func (f *fakeTransport) Send(_ context.Context, out transport.OutgoingMessage) error {
	f.sent = append(f.sent, out)
	return f.sendErr
}

// scriptedExpressions evaluates a tiny fixed vocabulary so tests do not
// depend on the real expression engine.
type scriptedExpressions struct{}

func (scriptedExpressions) Evaluate(expression string, ctx EvaluationContext) (bool, error) {
	switch {
	case expression == "true" || expression == "":
		return true, nil
	case expression == "false":
		return false, nil
	case expression == "boom":
		return false, errors.New("unresolved variable")
	case strings.HasPrefix(expression, "priorityValue >= "):
		switch strings.TrimPrefix(expression, "priorityValue >= ") {
		case "40":
			return ctx.Priority.HigherOrEqual(transport.PriorityHigh), nil
		case "30":
			return ctx.Priority.HigherOrEqual(transport.PriorityDefault), nil
		}
	}
	return false, errors.New("unknown test expression: " + expression)
}

func lookupOf(transports ...transport.Transport) *transport.Manager {
	m := transport.NewManager()
	for _, t := range transports {
		if err := m.Register(t); err != nil {
			panic(err)
		}
	}
	return m
}

func configFor(key string, rank int, expression string) *recipient.TransportConfiguration {
	cfg := recipient.NewTransportConfiguration(key)
	cfg.Rank = rank
	cfg.SelectionExpression = expression
	return cfg
}

func boolPtr(v bool) *bool { return &v }
