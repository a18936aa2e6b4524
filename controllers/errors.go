package controllers

import (
	"errors"
	"net/http"

	"hotel-booking-api/services"
	"hotel-booking-api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusForKind maps engine rejection kinds to distinguishable HTTP responses.
func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindPastDate, services.KindInvalidRange, services.KindCapacityExceeded,
		services.KindRoomUnavailable, services.KindCancellationWindowExpired,
		services.KindPaymentNotCompleted, services.KindValidation:
		return http.StatusBadRequest
	case services.KindRoomNotFound, services.KindBookingNotFound:
		return http.StatusNotFound
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindDateConflict, services.KindDuplicateConfirmation, services.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes a structured rejection, or a 500 for transient
// persistence/gateway failures (which are logged, not leaked).
func respondError(c *gin.Context, err error) {
	var be *services.BookingError
	if errors.As(err, &be) {
		utils.JSONError(c, statusForKind(be.Kind), be.Message)
		return
	}
	zap.L().Error("internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Internal server error")
}
