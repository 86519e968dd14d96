package queue

import (
	"encoding/json"

	"github.com/spiral-platform/spiral-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskTripInviteEmail delivers one trip invite email.
	TaskTripInviteEmail = constants.TaskTripInviteEmail
	// TaskRefundStatusEmail notifies a shopper their refund completed.
	TaskRefundStatusEmail = constants.TaskRefundStatusEmail
)

// TripInviteEmailPayload carries one invite delivery.
type TripInviteEmailPayload struct {
	TripID     uint   `json:"trip_id"`
	GuestEmail string `json:"guest_email"`
}

// RefundStatusEmailPayload carries one refund notification.
type RefundStatusEmailPayload struct {
	RefundID uint   `json:"refund_id"`
	Status   string `json:"status"`
}

// NewTripInviteEmailTask builds the invite email task.
func NewTripInviteEmailTask(payload TripInviteEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTripInviteEmail, body), nil
}

// NewRefundStatusEmailTask builds the refund notification task.
func NewRefundStatusEmailTask(payload RefundStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefundStatusEmail, body), nil
}
