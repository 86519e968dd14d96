package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/logger"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/queue"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TripService coordinates shopping trips and guest invites.
type TripService struct {
	tripRepo          repository.TripRepository
	loyaltySvc        *LoyaltyService
	queueClient       *queue.Client
	acceptBonusPoints int64
	inviteesPerCode   int
}

// TripCreateInput creates a trip with its invite list.
type TripCreateInput struct {
	HostUserID      uint
	Name            string
	Date            time.Time
	Location        string
	StoreID         *uint
	MaxParticipants int
	InviteeEmails   []string
}

// TripCreateResult is the created trip plus its promotional codes.
type TripCreateResult struct {
	Trip       *models.ShoppingTrip `json:"trip"`
	PromoCodes []string             `json:"promo_codes"`
}

// TripRespondInput is a guest RSVP.
type TripRespondInput struct {
	TripCode   string
	GuestEmail string
	Response   string
	Message    string
}

// TripDetail is a trip with its invites, responses and accepted count.
type TripDetail struct {
	Trip          *models.ShoppingTrip `json:"trip"`
	AcceptedCount int64                `json:"accepted_count"`
}

// NewTripService creates the trip service.
func NewTripService(
	tripRepo repository.TripRepository,
	loyaltySvc *LoyaltyService,
	queueClient *queue.Client,
	acceptBonusPoints int,
	inviteesPerCode int,
) *TripService {
	if acceptBonusPoints < 0 {
		acceptBonusPoints = 0
	}
	if inviteesPerCode <= 0 {
		inviteesPerCode = 3
	}
	return &TripService{
		tripRepo:          tripRepo,
		loyaltySvc:        loyaltySvc,
		queueClient:       queueClient,
		acceptBonusPoints: int64(acceptBonusPoints),
		inviteesPerCode:   inviteesPerCode,
	}
}

// Create persists the trip and its invite list, queues one invite email
// per guest (best-effort), and hands back promotional codes scaled by
// invitee count: one per three invitees, at least one.
func (s *TripService) Create(input TripCreateInput) (*TripCreateResult, error) {
	if input.HostUserID == 0 || strings.TrimSpace(input.Name) == "" || input.Date.IsZero() {
		return nil, ErrTripInvalidInput
	}
	invitees := normalizeEmails(input.InviteeEmails)

	now := time.Now()
	trip := &models.ShoppingTrip{
		TripCode:        buildTripCode(),
		HostUserID:      input.HostUserID,
		Name:            strings.TrimSpace(input.Name),
		Date:            input.Date,
		Location:        strings.TrimSpace(input.Location),
		StoreID:         input.StoreID,
		MaxParticipants: input.MaxParticipants,
		Status:          constants.TripStatusOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.tripRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.tripRepo.WithTx(tx)
		if err := repo.CreateTrip(trip); err != nil {
			return err
		}
		invites := make([]models.TripInvite, 0, len(invitees))
		for _, email := range invitees {
			invites = append(invites, models.TripInvite{
				TripID:     trip.ID,
				GuestEmail: email,
				InvitedAt:  now,
				CreatedAt:  now,
			})
		}
		return repo.CreateInvites(invites)
	}); err != nil {
		return nil, err
	}

	for _, email := range invitees {
		if err := s.queueClient.EnqueueTripInviteEmail(queue.TripInviteEmailPayload{
			TripID:     trip.ID,
			GuestEmail: email,
		}); err != nil {
			logger.Warnw("trip_invite_email_enqueue_failed",
				"trip_id", trip.ID,
				"guest_email", email,
				"error", err,
			)
		}
	}

	promoCodes := buildPromoCodes(len(invitees), s.inviteesPerCode)
	logger.Infow("trip_created",
		"trip_id", trip.ID,
		"trip_code", trip.TripCode,
		"host_user_id", trip.HostUserID,
		"invitees", len(invitees),
		"promo_codes", len(promoCodes),
	)
	return &TripCreateResult{Trip: trip, PromoCodes: promoCodes}, nil
}

// Respond upserts a guest RSVP. Only invited emails may respond. The
// first accept from a guest credits the host's participation bonus;
// later edits never credit it again.
func (s *TripService) Respond(input TripRespondInput) (*models.TripResponse, error) {
	answer := strings.ToLower(strings.TrimSpace(input.Response))
	switch answer {
	case constants.TripResponseAccept, constants.TripResponseDecline, constants.TripResponseMaybe:
	default:
		return nil, ErrTripInvalidResponse
	}
	email := strings.ToLower(strings.TrimSpace(input.GuestEmail))
	if email == "" {
		return nil, ErrTripInvalidResponse
	}

	trip, err := s.tripRepo.GetByCode(input.TripCode)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if trip.Status != constants.TripStatusOpen {
		return nil, ErrTripClosed
	}
	invite, err := s.tripRepo.GetInvite(trip.ID, email)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrNotInvited
	}

	var result *models.TripResponse
	if err := s.tripRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.tripRepo.WithTx(tx)
		now := time.Now()
		response, err := repo.GetResponse(trip.ID, email)
		if err != nil {
			return err
		}
		if response == nil {
			response = &models.TripResponse{
				TripID:     trip.ID,
				GuestEmail: email,
				CreatedAt:  now,
			}
		}
		response.Response = answer
		response.Message = strings.TrimSpace(input.Message)
		response.RespondedAt = now
		response.UpdatedAt = now

		if answer == constants.TripResponseAccept && !response.BonusAwarded && s.acceptBonusPoints > 0 {
			tripID := trip.ID
			if _, err := s.loyaltySvc.CreditTx(tx, LoyaltyCreditInput{
				UserID:    trip.HostUserID,
				Points:    s.acceptBonusPoints,
				TxnType:   constants.LoyaltyTxnTypeTripBonus,
				TripID:    &tripID,
				Reference: fmt.Sprintf("trip:%d:accept:%s", trip.ID, email),
				Remark:    "trip invite accepted",
			}); err != nil {
				return err
			}
			response.BonusAwarded = true
		}

		if response.ID == 0 {
			if err := repo.CreateResponse(response); err != nil {
				return err
			}
		} else if err := repo.UpdateResponse(response); err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return nil, err
	}

	logger.Infow("trip_response_recorded",
		"trip_id", trip.ID,
		"guest_email", email,
		"response", answer,
	)
	return result, nil
}

// Get fetches a trip with invites, responses and the accepted count.
func (s *TripService) Get(tripCode string) (*TripDetail, error) {
	trip, err := s.tripRepo.GetByCodeWithDetails(tripCode)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	accepted, err := s.tripRepo.CountAccepted(trip.ID)
	if err != nil {
		return nil, err
	}
	return &TripDetail{Trip: trip, AcceptedCount: accepted}, nil
}

// CloseExpired closes open trips whose date has passed. Responses for
// closed trips are rejected, so this stops RSVP edits after the fact.
func (s *TripService) CloseExpired(now time.Time) (int64, error) {
	closed, err := s.tripRepo.CloseExpired(now)
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		logger.Infow("trips_closed_expired", "count", closed)
	}
	return closed, nil
}

// ListByHost pages through a host's trips.
func (s *TripService) ListByHost(hostUserID uint, page, pageSize int) ([]models.ShoppingTrip, int64, error) {
	if hostUserID == 0 {
		return []models.ShoppingTrip{}, 0, nil
	}
	return s.tripRepo.List(repository.TripListFilter{
		Page:       page,
		PageSize:   pageSize,
		HostUserID: hostUserID,
	})
}

func normalizeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	result := make([]string, 0, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		result = append(result, email)
	}
	return result
}

func buildTripCode() string {
	return "TRIP-" + strings.ToUpper(uuid.NewString()[:8])
}

// buildPromoCodes issues one code per codeDivisor invitees, minimum one.
func buildPromoCodes(inviteeCount, codeDivisor int) []string {
	count := inviteeCount / codeDivisor
	if count < 1 {
		count = 1
	}
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		codes = append(codes, "SPIRAL-"+strings.ToUpper(uuid.NewString()[:8]))
	}
	return codes
}
