package domain

type Category string

const (
	CategorySigning       Category = "signing"
	CategoryCertification Category = "certification"
	CategoryWriteUp       Category = "write_up"
	CategoryCustomForm    Category = "custom_form"
)

// ValidCategories is the canonical set of accepted template categories.
var ValidCategories = map[Category]bool{
	CategorySigning: true, CategoryCertification: true,
	CategoryWriteUp: true, CategoryCustomForm: true,
}

type TrackingMode string

const (
	TrackingProgress   TrackingMode = "progress"
	TrackingCompliance TrackingMode = "compliance"
	TrackingIssuance   TrackingMode = "issuance"
)

var ValidTrackingModes = map[TrackingMode]bool{
	TrackingProgress: true, TrackingCompliance: true, TrackingIssuance: true,
}

// Status is the canonical lifecycle state of an assignment. Category-specific
// wording ("completed", "acknowledged", "active") is a presentation concern.
type Status string

const (
	StatusCreated             Status = "created"
	StatusScheduled           Status = "scheduled"
	StatusAwaitingAction      Status = "awaiting_action"
	StatusPendingVerification Status = "pending_verification"
	StatusResolvedPositive    Status = "resolved_positive"
	StatusResolvedNegative    Status = "resolved_negative"
	StatusExpiredNoResponse   Status = "expired_no_response"
)

// AllStatuses lists every lifecycle state in display order.
var AllStatuses = []Status{
	StatusCreated, StatusScheduled, StatusAwaitingAction, StatusPendingVerification,
	StatusResolvedPositive, StatusResolvedNegative, StatusExpiredNoResponse,
}

type Outcome string

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeCompleted Outcome = "completed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeDeclined  Outcome = "declined"
	OutcomeRefused   Outcome = "refused"
	OutcomeCancelled Outcome = "cancelled"
)

type EscalationAction string

const (
	ActionRemind        EscalationAction = "remind"
	ActionNotifyManager EscalationAction = "notify_manager"
	ActionNotifyHR      EscalationAction = "notify_hr"
	ActionMarkRefused   EscalationAction = "mark_refused"
)

var ValidEscalationActions = map[EscalationAction]bool{
	ActionRemind: true, ActionNotifyManager: true, ActionNotifyHR: true, ActionMarkRefused: true,
}

type Trigger string

const (
	TriggerHire           Trigger = "hire"
	TriggerJobChange      Trigger = "job_change"
	TriggerLocationChange Trigger = "location_change"
)

var ValidTriggers = map[Trigger]bool{
	TriggerHire: true, TriggerJobChange: true, TriggerLocationChange: true,
}

// Freshness is the Expiration Monitor's classification of a validity date.
type Freshness string

const (
	FreshnessNone         Freshness = "none"
	FreshnessValid        Freshness = "valid"
	FreshnessExpiringSoon Freshness = "expiring_soon"
	FreshnessExpired      Freshness = "expired"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

var ValidChannels = map[Channel]bool{ChannelEmail: true, ChannelSMS: true}

type Audience string

const (
	AudienceRecipient Audience = "recipient"
	AudienceManager   Audience = "manager"
	AudienceHR        Audience = "hr"
)

type InstanceSource string

const (
	SourceManual     InstanceSource = "manual"
	SourceAutoAssign InstanceSource = "auto_assign"
)

// DefaultWarnWindowDays is the expiring-soon window applied when a template
// does not configure its own.
const DefaultWarnWindowDays = 30
