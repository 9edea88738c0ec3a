package observability

// Metric name prefixes
const (
	MetricPrefix = "prizepool"
)

// Metric names
const (
	// Message handling
	MessagesHandledTotal  = MetricPrefix + ".messages.handled_total"
	MessageHandleDuration = MetricPrefix + ".messages.handle_duration"
	QueriesTotal          = MetricPrefix + ".queries.total"

	// Draw metrics
	DrawsTotal      = MetricPrefix + ".draws.total"
	DrawCandidates  = MetricPrefix + ".draws.candidates"
	PrizePaidTotal  = MetricPrefix + ".draws.prize_paid_total"
	TriggerFeeTotal = MetricPrefix + ".draws.trigger_fee_total"

	// Stake flow
	TokenVolumeTotal = MetricPrefix + ".tokens.volume_total"

	// Pool lifecycle
	LifecycleChangesTotal = MetricPrefix + ".lifecycle.changes_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelType        = "type"
	LabelEventType   = "event_type"
	LabelOutcome     = "outcome"
	LabelStatus      = "status"
	LabelAction      = "action"
	LabelMessageType = "message_type"
)

// Outcomes of a handled message
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Token flow types
const (
	FlowDeposit    = "deposit"
	FlowWithdraw   = "withdraw"
	FlowRedelegate = "redelegate"
	FlowUnwind     = "unwind"
)
