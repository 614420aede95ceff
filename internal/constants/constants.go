package constants

// Organization membership roles, ordered by privilege.
const (
	OrgRoleViewer  = "viewer"
	OrgRoleManager = "manager"
	OrgRoleOwner   = "owner"
)

// OrgRoleRank maps a role to its privilege rank. Higher wins.
var OrgRoleRank = map[string]int{
	OrgRoleViewer:  1,
	OrgRoleManager: 2,
	OrgRoleOwner:   3,
}

// Organization status levels (trust tiers). Level zero is the top tier.
const (
	StatusLevelZero = "0"
	StatusLevelA    = "A"
	StatusLevelB    = "B"
	StatusLevelC    = "C"
)

// Consumer account statuses.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Review lifecycle statuses.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// QR campaign statuses.
const (
	CampaignStatusActive   = "active"
	CampaignStatusDisabled = "disabled"
)

// A/B test lifecycle statuses.
const (
	ABTestStatusDraft     = "draft"
	ABTestStatusRunning   = "running"
	ABTestStatusConcluded = "concluded"
)

// Resolution source kinds recorded with every scan.
const (
	ScanSourceCampaign = "campaign"
	ScanSourceABTest   = "ab_test"
	ScanSourceVersion  = "version"
)

// Warranty claim statuses.
const (
	ClaimStatusOpen     = "open"
	ClaimStatusInReview = "in_review"
	ClaimStatusResolved = "resolved"
	ClaimStatusRejected = "rejected"
)

// Anomaly alert kinds and statuses.
const (
	AlertKindGeoSpread = "geo_spread"
	AlertKindVelocity  = "velocity"

	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"

	AlertAckByAdmin  = "admin"
	AlertAckByMember = "member"
)

// Reward transaction kinds.
const (
	RewardKindScan           = "scan"
	RewardKindReviewApproved = "review_approved"
	RewardKindAdminAdjust    = "admin_adjust"
)

// Subscription statuses.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusCanceled = "canceled"
)

// Notification event types.
const (
	NotifyEventReviewApproved  = "review_approved"
	NotifyEventReviewRejected  = "review_rejected"
	NotifyEventClaimStatus     = "warranty_status"
	NotifyEventAnomalyAlert    = "anomaly_alert"
	NotifyEventMemberInvited   = "member_invited"
	NotifyEventSubscriptionSet = "subscription_set"
)

// Asynq queue and task names.
const (
	QueueDefault = "default"

	TaskScanRecord     = "scan:record"
	TaskNotifyEvent    = "notify:event"
	TaskAnomalyCheck   = "anomaly:check"
	TaskTrustRecompute = "trust:recompute"
)

// Supported response locales.
var SupportedLocales = []string{"ru", "en"}
