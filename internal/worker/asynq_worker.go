package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/provider"
	"github.com/chestno/chestno-api/internal/queue"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register hooks the handlers into the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskScanRecord, c.handleScanRecord)
	mux.HandleFunc(queue.TaskNotifyEvent, c.handleNotifyEvent)
	mux.HandleFunc(queue.TaskAnomalyCheck, c.handleAnomalyCheck)
	mux.HandleFunc(queue.TaskTrustRecompute, c.handleTrustRecompute)
}

func (c *Consumer) handleScanRecord(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.ScanRecordPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_scan_record_unmarshal_failed", "error", err)
		return err
	}
	if payload.QRCodeID == 0 {
		logger.Debugw("worker_scan_record_skip_invalid_payload")
		return nil
	}
	if c.ScanService == nil {
		logger.Warnw("worker_scan_record_skip_service_nil", "qr_code_id", payload.QRCodeID)
		return nil
	}
	if err := c.ScanService.Record(payload); err != nil {
		logger.Warnw("worker_scan_record_failed", "qr_code_id", payload.QRCodeID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleNotifyEvent(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.NotifyEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notify_event_unmarshal_failed", "error", err)
		return err
	}
	if payload.Event == "" {
		logger.Debugw("worker_notify_event_skip_empty_event")
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notify_event_skip_service_nil", "event", payload.Event)
		return nil
	}
	if err := c.NotificationService.Deliver(ctx, payload); err != nil {
		logger.Warnw("worker_notify_event_failed", "event", payload.Event, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleAnomalyCheck(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.AnomalyCheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_anomaly_check_unmarshal_failed", "error", err)
		return err
	}
	if payload.QRCodeID == 0 {
		logger.Debugw("worker_anomaly_check_skip_invalid_payload")
		return nil
	}
	if c.AnomalyService == nil {
		logger.Warnw("worker_anomaly_check_skip_service_nil", "qr_code_id", payload.QRCodeID)
		return nil
	}
	if err := c.AnomalyService.CheckQRCode(payload.QRCodeID); err != nil {
		logger.Warnw("worker_anomaly_check_failed", "qr_code_id", payload.QRCodeID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleTrustRecompute(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.TrustRecomputePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_trust_recompute_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrganizationID == 0 {
		logger.Debugw("worker_trust_recompute_skip_invalid_payload")
		return nil
	}
	if c.TrustService == nil {
		logger.Warnw("worker_trust_recompute_skip_service_nil", "org_id", payload.OrganizationID)
		return nil
	}
	if _, _, err := c.TrustService.Recompute(payload.OrganizationID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_trust_recompute_skip_org_not_found", "org_id", payload.OrganizationID)
			return nil
		}
		logger.Warnw("worker_trust_recompute_failed", "org_id", payload.OrganizationID, "error", err)
		return err
	}
	return nil
}
