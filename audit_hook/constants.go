package audithook

// Action constants for audit events.
const (
	// Balance actions
	ActionTransferred = "balance.transferred"
	ActionSlashed     = "balance.slashed"

	// Issuance actions
	ActionIssued = "issuance.issued"
	ActionBurned = "issuance.burned"

	// Rejections
	ActionOperationFailed = "operation.failed"
)

// Resource constants for audit events.
const (
	ResourceBalance   = "balance"
	ResourceIssuance  = "issuance"
	ResourceOperation = "operation"
)

// Category constants for audit events.
const (
	CategoryLedger      = "ledger"
	CategoryMonetary    = "monetary"
	CategoryEnforcement = "enforcement"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
