package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spiral-platform/spiral-api/internal/logger"
	"github.com/spiral-platform/spiral-api/internal/provider"
	"github.com/spiral-platform/spiral-api/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer handles asynchronous tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the task consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register wires task handlers into the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskTripInviteEmail, c.handleTripInviteEmail)
	mux.HandleFunc(queue.TaskRefundStatusEmail, c.handleRefundStatusEmail)
}

func (c *Consumer) handleTripInviteEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_trip_invite_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TripInviteEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_trip_invite_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.TripID == 0 || strings.TrimSpace(payload.GuestEmail) == "" {
		logger.Debugw("worker_trip_invite_email_skip_invalid_payload", "trip_id", payload.TripID)
		return nil
	}
	trip, err := c.TripRepo.GetByID(payload.TripID)
	if err != nil {
		logger.Warnw("worker_trip_invite_email_fetch_trip_failed", "trip_id", payload.TripID, "error", err)
		return err
	}
	if trip == nil {
		logger.Debugw("worker_trip_invite_email_skip_trip_not_found", "trip_id", payload.TripID)
		return nil
	}
	hostName := ""
	if trip.HostUserID != 0 {
		host, err := c.UserRepo.GetByID(trip.HostUserID)
		if err != nil {
			logger.Warnw("worker_trip_invite_email_fetch_host_failed", "trip_id", trip.ID, "host_user_id", trip.HostUserID, "error", err)
			return err
		}
		if host != nil {
			hostName = strings.TrimSpace(host.DisplayName)
			if hostName == "" {
				hostName = strings.TrimSpace(host.Email)
			}
		}
	}
	if c.EmailService == nil || !c.EmailService.Enabled() {
		logger.Debugw("worker_trip_invite_email_skip_email_disabled", "trip_id", trip.ID, "trip_code", trip.TripCode)
		return nil
	}
	if err := c.EmailService.SendTripInvite(payload.GuestEmail, trip, hostName); err != nil {
		logger.Warnw("worker_trip_invite_email_send_failed",
			"trip_id", trip.ID,
			"trip_code", trip.TripCode,
			"guest_email", payload.GuestEmail,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleRefundStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_refund_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RefundStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_refund_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.RefundID == 0 {
		logger.Debugw("worker_refund_status_email_skip_invalid_payload", "refund_id", payload.RefundID)
		return nil
	}
	refund, err := c.RefundRepo.GetByID(payload.RefundID)
	if err != nil {
		logger.Warnw("worker_refund_status_email_fetch_refund_failed", "refund_id", payload.RefundID, "error", err)
		return err
	}
	if refund == nil {
		logger.Debugw("worker_refund_status_email_skip_refund_not_found", "refund_id", payload.RefundID)
		return nil
	}
	request, err := c.ReturnRepo.GetByID(refund.ReturnID)
	if err != nil {
		logger.Warnw("worker_refund_status_email_fetch_return_failed", "refund_id", refund.ID, "return_id", refund.ReturnID, "error", err)
		return err
	}
	if request == nil {
		logger.Debugw("worker_refund_status_email_skip_return_not_found", "refund_id", refund.ID, "return_id", refund.ReturnID)
		return nil
	}
	user, err := c.UserRepo.GetByID(request.UserID)
	if err != nil {
		logger.Warnw("worker_refund_status_email_fetch_user_failed", "refund_id", refund.ID, "user_id", request.UserID, "error", err)
		return err
	}
	receiverEmail := ""
	if user != nil {
		receiverEmail = strings.TrimSpace(user.Email)
	}
	if receiverEmail == "" {
		logger.Debugw("worker_refund_status_email_skip_empty_receiver", "refund_id", refund.ID)
		return nil
	}
	if c.EmailService == nil || !c.EmailService.Enabled() {
		logger.Debugw("worker_refund_status_email_skip_email_disabled", "refund_id", refund.ID)
		return nil
	}
	if err := c.EmailService.SendRefundStatus(receiverEmail, refund); err != nil {
		logger.Warnw("worker_refund_status_email_send_failed",
			"refund_id", refund.ID,
			"receiver_email", receiverEmail,
			"status", refund.Status,
			"error", err,
		)
		return err
	}
	return nil
}
