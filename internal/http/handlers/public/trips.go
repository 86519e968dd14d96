package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/service"

	"github.com/gin-gonic/gin"
)

// TripCreateRequest plans a shopping trip with its invite list.
type TripCreateRequest struct {
	Name            string   `json:"name" binding:"required"`
	Date            string   `json:"date" binding:"required"`
	Location        string   `json:"location"`
	StoreID         *uint    `json:"store_id"`
	MaxParticipants int      `json:"max_participants"`
	InviteeEmails   []string `json:"invitee_emails"`
}

// CreateTrip creates a trip, queues invite emails and returns the
// promotional codes for the host.
func (h *Handler) CreateTrip(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req TripCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid trip date", err)
		return
	}

	result, err := h.TripService.Create(service.TripCreateInput{
		HostUserID:      uid,
		Name:            req.Name,
		Date:            date,
		Location:        req.Location,
		StoreID:         req.StoreID,
		MaxParticipants: req.MaxParticipants,
		InviteeEmails:   req.InviteeEmails,
	})
	if err != nil {
		if errors.Is(err, service.ErrTripInvalidInput) {
			respondError(c, response.CodeBadRequest, "invalid trip", nil)
			return
		}
		respondError(c, response.CodeInternal, "create trip failed", err)
		return
	}
	response.Success(c, result)
}

// ListMyTrips pages through the shopper's hosted trips.
func (h *Handler) ListMyTrips(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	trips, total, err := h.TripService.ListByHost(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "list trips failed", err)
		return
	}
	response.SuccessWithPage(c, trips, response.BuildPagination(page, pageSize, total))
}

// GetTrip fetches a trip by its shareable code. Guests use this link
// without an account.
func (h *Handler) GetTrip(c *gin.Context) {
	tripCode := strings.TrimSpace(c.Param("trip_code"))
	if tripCode == "" {
		respondError(c, response.CodeBadRequest, "invalid trip code", nil)
		return
	}
	detail, err := h.TripService.Get(tripCode)
	if err != nil {
		if errors.Is(err, service.ErrTripNotFound) {
			respondError(c, response.CodeNotFound, "trip not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch trip failed", err)
		return
	}
	response.Success(c, detail)
}

// TripRespondRequest is a guest RSVP.
type TripRespondRequest struct {
	GuestEmail string `json:"guest_email" binding:"required"`
	Response   string `json:"response" binding:"required"`
	Message    string `json:"message"`
}

// RespondToTrip records a guest RSVP against the trip code. No account
// is required, only an invited email.
func (h *Handler) RespondToTrip(c *gin.Context) {
	tripCode := strings.TrimSpace(c.Param("trip_code"))
	if tripCode == "" {
		respondError(c, response.CodeBadRequest, "invalid trip code", nil)
		return
	}
	var req TripRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	rsvp, err := h.TripService.Respond(service.TripRespondInput{
		TripCode:   tripCode,
		GuestEmail: req.GuestEmail,
		Response:   req.Response,
		Message:    req.Message,
	})
	if err != nil {
		respondWithMappedError(c, err, tripRespondErrorRules, response.CodeInternal, "record response failed")
		return
	}
	response.Success(c, rsvp)
}
