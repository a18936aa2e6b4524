package controllers

import (
	"net/http"
	"strconv"
	"time"

	"hotel-booking-api/middleware"
	"hotel-booking-api/services"
	"hotel-booking-api/utils"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{Bookings: bookings}
}

type bookingRequestPayload struct {
	RoomID          uint   `json:"roomId" binding:"required"`
	CheckInDate     string `json:"checkInDate" binding:"required"`
	CheckOutDate    string `json:"checkOutDate" binding:"required"`
	Guests          int    `json:"guests" binding:"required,min=1,max=10"`
	GuestName       string `json:"guestName" binding:"required,min=2,max=100"`
	GuestEmail      string `json:"guestEmail" binding:"required,email"`
	GuestPhone      string `json:"guestPhone" binding:"required"`
	SpecialRequests string `json:"specialRequests" binding:"omitempty,max=500"`
}

type confirmPayload struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	RoomID          uint   `json:"roomId" binding:"required"`
	CheckInDate     string `json:"checkInDate" binding:"required"`
	CheckOutDate    string `json:"checkOutDate" binding:"required"`
	Guests          int    `json:"guests" binding:"required,min=1,max=10"`
	GuestName       string `json:"guestName" binding:"required,min=2,max=100"`
	GuestEmail      string `json:"guestEmail" binding:"required,email"`
	GuestPhone      string `json:"guestPhone" binding:"required"`
	SpecialRequests string `json:"specialRequests" binding:"omitempty,max=500"`
}

func parseBookingDates(checkIn, checkOut string) (time.Time, time.Time, bool) {
	ci, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		if ci, err = time.Parse(time.RFC3339, checkIn); err != nil {
			return time.Time{}, time.Time{}, false
		}
	}
	co, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		if co, err = time.Parse(time.RFC3339, checkOut); err != nil {
			return time.Time{}, time.Time{}, false
		}
	}
	return ci, co, true
}

// GetBookings handles GET /api/bookings: the caller's bookings, or all
// bookings for an admin.
func (bc *BookingController) GetBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	user := middleware.CurrentUser(c)
	bookings, pagination, err := bc.Bookings.ListBookings(user, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"bookings":   bookings,
		"pagination": pagination,
	})
}

// GetBooking handles GET /api/bookings/:id (owner or admin).
func (bc *BookingController) GetBooking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking id")
		return
	}

	booking, err := bc.Bookings.GetBooking(uint(id), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"booking": booking})
}

// CreatePaymentIntent handles POST /api/bookings/create-payment-intent.
func (bc *BookingController) CreatePaymentIntent(c *gin.Context) {
	var payload bookingRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	checkIn, checkOut, ok := parseBookingDates(payload.CheckInDate, payload.CheckOutDate)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "Valid check-in and check-out dates required")
		return
	}

	user := middleware.CurrentUser(c)
	result, err := bc.Bookings.CreatePaymentIntent(user.ID, services.PaymentIntentInput{
		RoomID:          payload.RoomID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Guests:          payload.Guests,
		GuestName:       payload.GuestName,
		GuestEmail:      payload.GuestEmail,
		GuestPhone:      payload.GuestPhone,
		SpecialRequests: payload.SpecialRequests,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, result)
}

// ConfirmBooking handles POST /api/bookings/confirm after a successful payment.
func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	var payload confirmPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	checkIn, checkOut, ok := parseBookingDates(payload.CheckInDate, payload.CheckOutDate)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "Valid check-in and check-out dates required")
		return
	}

	user := middleware.CurrentUser(c)
	booking, err := bc.Bookings.ConfirmBooking(user.ID, services.ConfirmBookingInput{
		PaymentIntentID: payload.PaymentIntentID,
		RoomID:          payload.RoomID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Guests:          payload.Guests,
		GuestName:       payload.GuestName,
		GuestEmail:      payload.GuestEmail,
		GuestPhone:      payload.GuestPhone,
		SpecialRequests: payload.SpecialRequests,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccessMessage(c, http.StatusCreated, "Booking confirmed successfully", gin.H{"booking": booking})
}

// CancelBooking handles PUT /api/bookings/:id/cancel (owner or admin). A
// failed refund is reported as a warning on an otherwise successful
// cancellation.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking id")
		return
	}

	booking, warning, err := bc.Bookings.CancelBooking(uint(id), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	data := gin.H{"booking": booking}
	if warning != nil {
		data["warning"] = warning.Message
	}
	utils.JSONSuccessMessage(c, http.StatusOK, "Booking cancelled successfully", data)
}
