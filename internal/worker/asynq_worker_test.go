package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/provider"
	"github.com/spiral-platform/spiral-api/internal/queue"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) *Consumer {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.ShoppingTrip{},
		&models.ReturnRequest{},
		&models.RefundTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewConsumer(&provider.Container{
		UserRepo:   repository.NewUserRepository(db),
		TripRepo:   repository.NewTripRepository(db),
		ReturnRepo: repository.NewReturnRepository(db),
		RefundRepo: repository.NewRefundRepository(db),
	})
}

func TestHandleTripInviteEmailSkipsMissingTrip(t *testing.T) {
	c := setupWorkerTest(t)
	task, err := queue.NewTripInviteEmailTask(queue.TripInviteEmailPayload{TripID: 999, GuestEmail: "guest@example.com"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	// unknown trips are skipped, not retried
	if err := c.handleTripInviteEmail(context.Background(), task); err != nil {
		t.Fatalf("expected skip, got: %v", err)
	}
}

func TestHandleTripInviteEmailSkipsInvalidPayload(t *testing.T) {
	c := setupWorkerTest(t)
	task := asynq.NewTask(queue.TaskTripInviteEmail, []byte(`{"trip_id":0}`))
	if err := c.handleTripInviteEmail(context.Background(), task); err != nil {
		t.Fatalf("expected skip, got: %v", err)
	}
}

func TestHandleTripInviteEmailBadJSON(t *testing.T) {
	c := setupWorkerTest(t)
	task := asynq.NewTask(queue.TaskTripInviteEmail, []byte(`{`))
	if err := c.handleTripInviteEmail(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestHandleRefundStatusEmailSkipsMissingRefund(t *testing.T) {
	c := setupWorkerTest(t)
	task, err := queue.NewRefundStatusEmailTask(queue.RefundStatusEmailPayload{RefundID: 12345})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := c.handleRefundStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("expected skip, got: %v", err)
	}
}

func TestRegisterNilConsumer(t *testing.T) {
	var c *Consumer
	// must not panic
	c.Register(asynq.NewServeMux())
}
