package service

import (
	"strings"
	"testing"
	"time"

	"github.com/spiral-platform/spiral-api/internal/config"
	"github.com/spiral-platform/spiral-api/internal/models"

	"github.com/shopspring/decimal"
)

func TestEmailServiceDisabledSendIsNoop(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	if svc.Enabled() {
		t.Fatalf("service should be disabled")
	}
	trip := &models.ShoppingTrip{Name: "Saturday market run", TripCode: "SPRL-X", Date: time.Now()}
	if err := svc.SendTripInvite("guest@example.com", trip, "Ada"); err != nil {
		t.Fatalf("disabled send should be a no-op, got %v", err)
	}

	// enabled flag without a host still counts as disabled
	svc = NewEmailService(&config.EmailConfig{Enabled: true, Host: "  "})
	if svc.Enabled() {
		t.Fatalf("blank host should disable the service")
	}
}

func TestBuildTripInviteHTML(t *testing.T) {
	trip := &models.ShoppingTrip{
		Name:     "Saturday market run",
		TripCode: "SPRL-DEMO-TRIP",
		Date:     time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC),
		Location: "Riverside Market",
	}

	body := buildTripInviteHTML(trip, "Ada")
	for _, want := range []string{"Ada", "Saturday market run", "SPRL-DEMO-TRIP", "Riverside Market"} {
		if !strings.Contains(body, want) {
			t.Fatalf("invite body should contain %q", want)
		}
	}

	body = buildTripInviteHTML(trip, "")
	if !strings.Contains(body, "A fellow shopper") {
		t.Fatalf("missing host name should fall back to a generic sender")
	}
}

func TestBuildRefundStatusHTML(t *testing.T) {
	refund := &models.RefundTransaction{
		Amount: models.NewMoneyFromDecimal(decimal.RequireFromString("59.50")),
		Method: "loyalty_credit",
		Status: "completed",
	}

	body := buildRefundStatusHTML(refund)
	if !strings.Contains(body, "59.5") || !strings.Contains(body, "loyalty_credit") {
		t.Fatalf("refund body should contain amount and method: %s", body)
	}
	if strings.Contains(body, "SPIRAL points") {
		t.Fatalf("zero points should not mention a points award")
	}

	refund.PointsAwarded = 297
	body = buildRefundStatusHTML(refund)
	if !strings.Contains(body, "297 SPIRAL points") {
		t.Fatalf("points award should be mentioned: %s", body)
	}
}
