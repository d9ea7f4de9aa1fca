package addressing

import (
	"opspager/internal/recipient"
	"opspager/internal/transport"
)

// ExpressionEvaluator evaluates a boolean selection rule against an
// evaluation context. Implementations may be swapped (see exprlang for
// the default one).
type ExpressionEvaluator interface {
	Evaluate(expression string, ctx EvaluationContext) (bool, error)
}

// TransportLookup resolves a transport key to its implementation.
// *transport.Manager satisfies it.
type TransportLookup interface {
	TransportWithKey(key string) (transport.Transport, bool)
}

// ConfigurationEvaluator evaluates the transport configurations of one
// recipient in rank order. It is a pure function of its inputs plus the
// transports' capability queries.
type ConfigurationEvaluator struct {
	expressions ExpressionEvaluator
	transports  TransportLookup
}

func NewConfigurationEvaluator(expressions ExpressionEvaluator, transports TransportLookup) *ConfigurationEvaluator {
	return &ConfigurationEvaluator{
		expressions: expressions,
		transports:  transports,
	}
}

// Evaluate walks the recipient's configurations by descending rank.
//
// Per configuration: disabled ones are skipped; an unknown transport key
// records TRANSPORT_NOT_FOUND; a transport not accepting new messages is
// skipped; a failing selection expression records
// EXPRESSION_EVALUATION_FAILED and counts as a non-match. A match is only
// selected if the transport confirms it can actually send to this
// recipient. A matched configuration with EvaluateOtherConfigurations set
// to false stops the walk.
func (e *ConfigurationEvaluator) Evaluate(
	r recipient.Recipient,
	ctx EvaluationContext,
	msg transport.Message,
) ConfigurationEvaluation {
	configurations := r.Configurations()

	if len(configurations) == 0 {
		return ConfigurationEvaluation{
			Errors: []AddressingError{{Type: ErrNoTransportConfigurations, Recipient: r}},
		}
	}

	var selected []SelectedTransport
	var errors []AddressingError

	for _, cfg := range configurations {
		if !cfg.Enabled {
			continue
		}

		t, ok := e.transports.TransportWithKey(cfg.TransportKey)
		if !ok {
			errors = append(errors, AddressingError{
				Type:          ErrTransportNotFound,
				Recipient:     r,
				Configuration: cfg,
			})
			continue
		}

		if !t.AcceptsNewMessages() {
			continue
		}

		matches, err := e.expressions.Evaluate(cfg.SelectionExpression, ctx)
		if err != nil {
			errors = append(errors, AddressingError{
				Type:          ErrExpressionEvaluationFailed,
				Recipient:     r,
				Configuration: cfg,
				Details:       err.Error(),
			})
			matches = false
		}

		if !matches {
			continue
		}

		if !t.CanSendTo(r, msg) {
			continue
		}

		selected = append(selected, SelectedTransport{Configuration: cfg, Transport: t})

		if !cfg.EvaluateOtherConfigurations {
			break
		}
	}

	if len(selected) == 0 && len(errors) == 0 {
		errors = append(errors, AddressingError{Type: ErrNoMatchingConfigurations, Recipient: r})
	}

	return ConfigurationEvaluation{Selected: selected, Errors: errors}
}
