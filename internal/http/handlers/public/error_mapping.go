package public

import (
	"errors"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a service sentinel to an API error response.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var returnCreateErrorRules = []mappedHandlerError{
	{target: service.ErrReturnInvalidInput, code: response.CodeBadRequest, msg: "invalid return request"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderItemNotFound, code: response.CodeNotFound, msg: "order item not found"},
	{target: service.ErrOrderNotOwned, code: response.CodeForbidden, msg: "order does not belong to you"},
	{target: service.ErrOrderNotCompleted, code: response.CodeBadRequest, msg: "order is not completed"},
	{target: service.ErrReturnWindowExpired, code: response.CodeBadRequest, msg: "return window has expired"},
	{target: service.ErrReturnAlreadyRequested, code: response.CodeConflict, msg: "item already has an active return"},
}

var refundProcessErrorRules = []mappedHandlerError{
	{target: service.ErrReturnNotFound, code: response.CodeNotFound, msg: "return not found"},
	{target: service.ErrReturnNotApproved, code: response.CodeBadRequest, msg: "return is not approved"},
	{target: service.ErrRefundAlreadyExists, code: response.CodeConflict, msg: "refund already exists"},
	{target: service.ErrRefundInvalidMethod, code: response.CodeBadRequest, msg: "invalid refund method"},
	{target: service.ErrRefundProviderFailed, code: response.CodeInternal, msg: "refund provider failed"},
}

var perkApplyErrorRules = []mappedHandlerError{
	{target: service.ErrPerkNotFound, code: response.CodeNotFound, msg: "perk not found"},
	{target: service.ErrPerkInactive, code: response.CodeBadRequest, msg: "perk is inactive"},
	{target: service.ErrPerkNotEligible, code: response.CodeBadRequest, msg: "cart does not qualify for this perk"},
	{target: service.ErrPerkExhausted, code: response.CodeConflict, msg: "perk usage limit reached"},
}

var tripRespondErrorRules = []mappedHandlerError{
	{target: service.ErrTripNotFound, code: response.CodeNotFound, msg: "trip not found"},
	{target: service.ErrTripClosed, code: response.CodeBadRequest, msg: "trip is closed"},
	{target: service.ErrNotInvited, code: response.CodeForbidden, msg: "this email was not invited"},
	{target: service.ErrTripInvalidResponse, code: response.CodeBadRequest, msg: "invalid response"},
}
