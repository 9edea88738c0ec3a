package infrastructure

// Stream and subject layout
const (
	CommandStreamName    = "prizepool_commands"
	CommandSubjectPrefix = "prizepool.commands"
	EventStreamName      = "prizepool_events"
	EventSubjectPrefix   = "prizepool.events"

	SubjectYieldDeposit       = CommandSubjectPrefix + ".yield.deposit"
	SubjectYieldRedeem        = CommandSubjectPrefix + ".yield.redeem"
	SubjectYieldSetViewingKey = CommandSubjectPrefix + ".yield.set_viewing_key"
	SubjectTokenTransfer      = CommandSubjectPrefix + ".token.transfer"

	// SubjectPendingRewardQuery is served with core request/reply and lives outside every stream.
	SubjectPendingRewardQuery = "prizepool.query.pending_reward"
)
