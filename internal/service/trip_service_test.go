package service

import (
	"errors"
	"testing"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/queue"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"gorm.io/gorm"
)

func setupTripServiceTest(t *testing.T) (*TripService, *LoyaltyService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "trip_service_test")
	loyaltySvc := NewLoyaltyService(repository.NewLoyaltyRepository(db), 5)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	tripSvc := NewTripService(repository.NewTripRepository(db), loyaltySvc, queueClient, 50, 3)
	return tripSvc, loyaltySvc, db
}

func createTestTrip(t *testing.T, svc *TripService, hostID uint, invitees ...string) *TripCreateResult {
	t.Helper()
	result, err := svc.Create(TripCreateInput{
		HostUserID:    hostID,
		Name:          "Saturday market run",
		Date:          time.Now().AddDate(0, 0, 7),
		Location:      "Main Street Market",
		InviteeEmails: invitees,
	})
	if err != nil {
		t.Fatalf("create trip failed: %v", err)
	}
	return result
}

func TestTripServiceCreatePromoCodeScaling(t *testing.T) {
	svc, _, db := setupTripServiceTest(t)
	createTestShopper(t, db, 21)

	cases := []struct {
		invitees []string
		want     int
	}{
		{[]string{"a@example.com"}, 1},
		{[]string{"a@example.com", "b@example.com", "c@example.com"}, 1},
		{[]string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com", "f@example.com", "g@example.com"}, 2},
	}
	for _, tc := range cases {
		result := createTestTrip(t, svc, 21, tc.invitees...)
		if len(result.PromoCodes) != tc.want {
			t.Fatalf("expected %d promo codes for %d invitees, got %d", tc.want, len(tc.invitees), len(result.PromoCodes))
		}
	}
}

func TestTripServiceCreatePersistsInvites(t *testing.T) {
	svc, _, db := setupTripServiceTest(t)
	createTestShopper(t, db, 22)
	result := createTestTrip(t, svc, 22, "Guest@Example.com", "guest@example.com", "other@example.com", "")

	detail, err := svc.Get(result.Trip.TripCode)
	if err != nil {
		t.Fatalf("get trip failed: %v", err)
	}
	// duplicates and blanks are dropped, emails normalized
	if len(detail.Trip.Invites) != 2 {
		t.Fatalf("expected 2 invites, got %d", len(detail.Trip.Invites))
	}
	if result.Trip.TripCode == "" {
		t.Fatalf("expected generated trip code")
	}
}

func TestTripServiceRespondNotInvited(t *testing.T) {
	svc, _, db := setupTripServiceTest(t)
	createTestShopper(t, db, 23)
	result := createTestTrip(t, svc, 23, "friend@example.com")

	_, err := svc.Respond(TripRespondInput{
		TripCode:   result.Trip.TripCode,
		GuestEmail: "stranger@example.com",
		Response:   constants.TripResponseAccept,
	})
	if !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected not invited, got: %v", err)
	}
}

func TestTripServiceRespondUpsert(t *testing.T) {
	svc, _, db := setupTripServiceTest(t)
	createTestShopper(t, db, 24)
	result := createTestTrip(t, svc, 24, "friend@example.com")

	first, err := svc.Respond(TripRespondInput{
		TripCode:   result.Trip.TripCode,
		GuestEmail: "friend@example.com",
		Response:   constants.TripResponseMaybe,
		Message:    "depends on weather",
	})
	if err != nil {
		t.Fatalf("first respond failed: %v", err)
	}
	second, err := svc.Respond(TripRespondInput{
		TripCode:   result.Trip.TripCode,
		GuestEmail: "friend@example.com",
		Response:   constants.TripResponseDecline,
	})
	if err != nil {
		t.Fatalf("second respond failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected overwrite of the same row, got ids %d and %d", first.ID, second.ID)
	}
	if second.Response != constants.TripResponseDecline {
		t.Fatalf("expected decline, got: %s", second.Response)
	}
}

func TestTripServiceAcceptCreditsHostOnce(t *testing.T) {
	svc, loyaltySvc, db := setupTripServiceTest(t)
	createTestShopper(t, db, 25)
	result := createTestTrip(t, svc, 25, "friend@example.com")

	for _, answer := range []string{
		constants.TripResponseAccept,
		constants.TripResponseMaybe,
		constants.TripResponseAccept,
	} {
		if _, err := svc.Respond(TripRespondInput{
			TripCode:   result.Trip.TripCode,
			GuestEmail: "friend@example.com",
			Response:   answer,
		}); err != nil {
			t.Fatalf("respond %s failed: %v", answer, err)
		}
	}

	account, err := loyaltySvc.GetAccount(25)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Balance != 50 {
		t.Fatalf("expected single 50 point bonus, got balance %d", account.Balance)
	}
}

func TestTripServiceGetAcceptedCount(t *testing.T) {
	svc, _, db := setupTripServiceTest(t)
	createTestShopper(t, db, 26)
	result := createTestTrip(t, svc, 26, "a@example.com", "b@example.com", "c@example.com")

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.Respond(TripRespondInput{
			TripCode:   result.Trip.TripCode,
			GuestEmail: email,
			Response:   constants.TripResponseAccept,
		}); err != nil {
			t.Fatalf("respond failed: %v", err)
		}
	}
	if _, err := svc.Respond(TripRespondInput{
		TripCode:   result.Trip.TripCode,
		GuestEmail: "c@example.com",
		Response:   constants.TripResponseDecline,
	}); err != nil {
		t.Fatalf("respond failed: %v", err)
	}

	detail, err := svc.Get(result.Trip.TripCode)
	if err != nil {
		t.Fatalf("get trip failed: %v", err)
	}
	if detail.AcceptedCount != 2 {
		t.Fatalf("expected 2 accepted, got %d", detail.AcceptedCount)
	}
	if len(detail.Trip.Responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(detail.Trip.Responses))
	}
}
