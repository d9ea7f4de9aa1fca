package addressing

import (
	"opspager/internal/recipient"
	"opspager/internal/transport"
)

// ErrorType classifies addressing errors.
type ErrorType string

const (
	ErrNoTransportConfigurations  ErrorType = "NO_TRANSPORT_CONFIGURATIONS"
	ErrNoMatchingConfigurations   ErrorType = "NO_MATCHING_CONFIGURATIONS"
	ErrExpressionEvaluationFailed ErrorType = "EXPRESSION_EVALUATION_FAILED"
	ErrEmptyGroupNoConfigurations ErrorType = "EMPTY_GROUP_NO_CONFIGURATIONS"
	ErrTransportNotFound          ErrorType = "TRANSPORT_NOT_FOUND"
)

// AddressingError is a typed, collected (never thrown) error attached to
// an AddressingResult. One recipient's failure never aborts resolution of
// its siblings.
type AddressingError struct {
	Type          ErrorType
	Recipient     recipient.Recipient
	Configuration *recipient.TransportConfiguration
	Details       string
}

// SelectedTransport pairs a matched configuration with the transport that
// will carry the message.
type SelectedTransport struct {
	Configuration *recipient.TransportConfiguration
	Transport     transport.Transport
}

// AddressingResult is the outcome of evaluating one recipient: matched
// transports, collected errors, and members still to expand.
//
// DelegatedFrom is set when a vacant-configured role handed resolution off
// to its bound individual; Recipient then refers to the delegate.
type AddressingResult struct {
	Recipient       recipient.Recipient
	DelegatedFrom   recipient.Recipient
	Selected        []SelectedTransport
	Errors          []AddressingError
	MembersToExpand []recipient.Recipient
}

func (r AddressingResult) HasSelected() bool { return len(r.Selected) > 0 }

func (r AddressingResult) HasErrors() bool { return len(r.Errors) > 0 }

func (r AddressingResult) HasMembersToExpand() bool { return len(r.MembersToExpand) > 0 }

// ConfigurationEvaluation is the outcome of evaluating the transport
// configurations of a single recipient, before any expansion decision.
type ConfigurationEvaluation struct {
	Selected []SelectedTransport
	Errors   []AddressingError
}

func (e ConfigurationEvaluation) HasSelected() bool { return len(e.Selected) > 0 }

// StopsHierarchyExpansion reports whether a matched group configuration
// set forbids member expansion: every matched configuration must carry an
// explicit ContinueInHierarchy=false. A mix where at least one matched
// configuration allows continuation still expands.
func (e ConfigurationEvaluation) StopsHierarchyExpansion() bool {
	if len(e.Selected) == 0 {
		return false
	}
	for _, sel := range e.Selected {
		if !sel.Configuration.StopsHierarchyExpansion() {
			return false
		}
	}
	return true
}
