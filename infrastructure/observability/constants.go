package observability

// Metric name prefixes
const (
	MetricPrefix = "escrowbot"
)

// Metric names
const (
	// Command metrics
	CommandsTotal = MetricPrefix + ".commands.total"

	// Chain metrics
	EscrowCallsTotal = MetricPrefix + ".escrow.calls_total"

	// Account metrics
	AccountsCreatedTotal = MetricPrefix + ".accounts.created_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Dedupe metrics
	DuplicateEventsTotal = MetricPrefix + ".events.duplicates_total"
)

// Label keys
const (
	LabelVerb      = "verb"
	LabelOp        = "op"
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
)

// Outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
