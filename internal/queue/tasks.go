package queue

import (
	"encoding/json"
	"time"

	"github.com/chestno/chestno-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskScanRecord persists one resolved scan with its analytics.
	TaskScanRecord = constants.TaskScanRecord
	// TaskNotifyEvent delivers one notification over email/Telegram.
	TaskNotifyEvent = constants.TaskNotifyEvent
	// TaskAnomalyCheck inspects one QR code for suspicious scan patterns.
	TaskAnomalyCheck = constants.TaskAnomalyCheck
	// TaskTrustRecompute recomputes one organization's trust score.
	TaskTrustRecompute = constants.TaskTrustRecompute
)

// ScanRecordPayload carries everything the redirect path learned about
// a scan. The redirect never waits on this work.
type ScanRecordPayload struct {
	QRCodeID   uint      `json:"qr_code_id"`
	SourceKind string    `json:"source_kind"`
	SourceID   uint      `json:"source_id"`
	VisitorKey string    `json:"visitor_key"`
	UserID     uint      `json:"user_id"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// NotifyEventPayload describes one notification to fan out.
type NotifyEventPayload struct {
	Event          string `json:"event"`
	UserID         uint   `json:"user_id"`
	OrganizationID uint   `json:"organization_id"`
	RefID          uint   `json:"ref_id"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// AnomalyCheckPayload points the detector at one QR code.
type AnomalyCheckPayload struct {
	QRCodeID uint `json:"qr_code_id"`
}

// TrustRecomputePayload points the scorer at one organization.
type TrustRecomputePayload struct {
	OrganizationID uint `json:"organization_id"`
}

// NewScanRecordTask builds a scan record task.
func NewScanRecordTask(payload ScanRecordPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScanRecord, body), nil
}

// NewNotifyEventTask builds a notification task.
func NewNotifyEventTask(payload NotifyEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyEvent, body), nil
}

// NewAnomalyCheckTask builds an anomaly check task.
func NewAnomalyCheckTask(payload AnomalyCheckPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnomalyCheck, body), nil
}

// NewTrustRecomputeTask builds a trust recompute task.
func NewTrustRecomputeTask(payload TrustRecomputePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrustRecompute, body), nil
}
