package recipient

// DefaultSelectionExpression matches unconditionally.
const DefaultSelectionExpression = "true"

// TransportConfiguration is the ranked, rule-gated binding of a recipient
// to a transport.
type TransportConfiguration struct {
	// TransportKey identifies the transport implementation (slug).
	TransportKey string

	// Higher rank = evaluated first. Configurations are evaluated in
	// descending rank order.
	Rank int

	// Enabled allows disabling a configuration without removing it.
	Enabled bool

	// SelectionExpression must evaluate to true for this configuration
	// to be selected. Available variables: priority, priorityValue,
	// currentTime, hour, dayOfWeek, contentLength.
	SelectionExpression string

	// ContinueInHierarchy controls, for groups, whether members are
	// still expanded after this configuration matched.
	// nil = not applicable / inherit the default ("do expand"),
	// true = continue expansion, false = stop expansion.
	ContinueInHierarchy *bool

	// EvaluateOtherConfigurations controls whether lower-ranked
	// configurations are still evaluated once this one matched.
	EvaluateOtherConfigurations bool

	// VendorConfig holds whatever data the transport needs per
	// recipient (e.g. chat id, channel reference).
	VendorConfig map[string]any
}

// NewTransportConfiguration returns a configuration with defaults:
// enabled, rank 0, matching unconditionally, evaluating other
// configurations after a match.
func NewTransportConfiguration(transportKey string) *TransportConfiguration {
	return &TransportConfiguration{
		TransportKey:                transportKey,
		Enabled:                     true,
		SelectionExpression:         DefaultSelectionExpression,
		EvaluateOtherConfigurations: true,
	}
}

// StopsHierarchyExpansion reports whether this configuration explicitly
// forbids expanding group members after a match.
func (c *TransportConfiguration) StopsHierarchyExpansion() bool {
	return c.ContinueInHierarchy != nil && !*c.ContinueInHierarchy
}
