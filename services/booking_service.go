package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"hotel-booking-api/models"
	"hotel-booking-api/payments"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingService is the admission engine: it decides whether a booking may
// proceed, at what price, and keeps room availability consistent under
// concurrent requests.
type BookingService struct {
	DB       *gorm.DB
	Payments payments.Gateway
	Logger   *zap.Logger
	Currency string
}

func NewBookingService(db *gorm.DB, gateway payments.Gateway, logger *zap.Logger, currency string) *BookingService {
	if currency == "" {
		currency = "usd"
	}
	return &BookingService{DB: db, Payments: gateway, Logger: logger, Currency: currency}
}

// lockForUpdate takes a row lock on MySQL. sqlite has no FOR UPDATE; its
// single-writer transactions already serialize competing writers.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// hasOverlap reports whether any Pending or Confirmed booking on the room
// intersects [checkIn, checkOut). Half-open intervals: a stay that checks out
// on another's check-in day does not conflict.
func hasOverlap(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time) (bool, error) {
	var count int64
	err := tx.Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("payment_status IN ?", []string{models.PaymentStatusPending, models.PaymentStatusConfirmed}).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query conflicting bookings: %w", err)
	}
	return count > 0, nil
}

func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckAvailability validates a booking request against room state and
// existing reservations. Preconditions run in order; the first failure wins.
// A nil error means the room is bookable for the window, but only
// ConfirmBooking (or the Pending insert in CreatePaymentIntent) serializes
// the final decision.
func (s *BookingService) CheckAvailability(roomID uint, checkIn, checkOut time.Time, guests int) (*models.Room, error) {
	return s.checkAvailabilityTx(s.DB, roomID, checkIn, checkOut, guests)
}

func (s *BookingService) checkAvailabilityTx(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, guests int) (*models.Room, error) {
	if checkIn.Before(todayUTC()) {
		return nil, NewBookingError(KindPastDate, "Check-in date cannot be in the past")
	}
	if !checkOut.After(checkIn) {
		return nil, NewBookingError(KindInvalidRange, "Check-out date must be after check-in date")
	}

	var room models.Room
	if err := tx.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewBookingError(KindRoomNotFound, "Room not found")
		}
		return nil, fmt.Errorf("db error checking room %d: %w", roomID, err)
	}
	if room.Status != models.RoomStatusAvailable {
		return nil, NewBookingError(KindRoomUnavailable, "Room is not available")
	}

	if guests > room.Capacity {
		return nil, NewBookingError(KindCapacityExceeded, "Room capacity is %d guests maximum", room.Capacity)
	}

	conflict, err := hasOverlap(tx, roomID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, NewBookingError(KindDateConflict, "Room is not available for selected dates")
	}

	return &room, nil
}

type PaymentIntentInput struct {
	RoomID          uint
	CheckInDate     time.Time
	CheckOutDate    time.Time
	Guests          int
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	SpecialRequests string
}

type PaymentIntentResult struct {
	ClientSecret    string  `json:"clientSecret"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	BookingID       uint    `json:"bookingId"`
	TotalPrice      float64 `json:"totalPrice"`
}

// CreatePaymentIntent quotes the stay, opens a payment intent with the
// gateway, and records a Pending booking carrying the intent ID. The Pending
// row is what makes the quote visible to competing quoters: it is inserted
// inside a transaction that re-runs the overlap test under a room row lock.
func (s *BookingService) CreatePaymentIntent(userID uint, in PaymentIntentInput) (*PaymentIntentResult, error) {
	room, err := s.CheckAvailability(in.RoomID, in.CheckInDate, in.CheckOutDate, in.Guests)
	if err != nil {
		return nil, err
	}

	quote := QuoteStay(room, in.CheckInDate, in.CheckOutDate)

	intent, err := s.Payments.CreateIntent(quote.AmountMinorUnits(), s.Currency, map[string]string{
		"roomId":       strconv.FormatUint(uint64(in.RoomID), 10),
		"userId":       strconv.FormatUint(uint64(userID), 10),
		"checkInDate":  in.CheckInDate.Format("2006-01-02"),
		"checkOutDate": in.CheckOutDate.Format("2006-01-02"),
		"guests":       strconv.Itoa(in.Guests),
		"guestName":    in.GuestName,
		"guestEmail":   in.GuestEmail,
		"guestPhone":   in.GuestPhone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	booking := models.Booking{
		UserID:          userID,
		RoomID:          in.RoomID,
		CheckInDate:     in.CheckInDate,
		CheckOutDate:    in.CheckOutDate,
		TotalPrice:      quote.Total,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentIntentID: &intent.ID,
		GuestName:       in.GuestName,
		GuestEmail:      in.GuestEmail,
		GuestPhone:      in.GuestPhone,
		Guests:          in.Guests,
		SpecialRequests: in.SpecialRequests,
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var lockedRoom models.Room
		if err := lockForUpdate(tx).First(&lockedRoom, in.RoomID).Error; err != nil {
			return fmt.Errorf("failed to lock room %d: %w", in.RoomID, err)
		}

		// Re-check under the lock: another quoter may have won since the
		// availability check above.
		conflict, err := hasOverlap(tx, in.RoomID, in.CheckInDate, in.CheckOutDate)
		if err != nil {
			return err
		}
		if conflict {
			return NewBookingError(KindDateConflict, "Room is not available for selected dates")
		}

		return tx.Create(&booking).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          quote.AmountMinorUnits(),
		Currency:        s.Currency,
		BookingID:       booking.ID,
		TotalPrice:      quote.Total,
	}, nil
}

type ConfirmBookingInput struct {
	PaymentIntentID string
	RoomID          uint
	CheckInDate     time.Time
	CheckOutDate    time.Time
	Guests          int
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	SpecialRequests string
}

// ConfirmBooking is the serialization point of the booking flow. It requires
// a succeeded payment, then inside one transaction: promotes the Pending
// booking carrying the intent ID, revives a swept (Cancelled) quote after
// re-validating its window, or, for a quote-less confirm, re-validates the
// overlap condition at write time and inserts a Confirmed booking. The room
// is marked Occupied. A booking already confirmed under the same intent ID
// is rejected as a duplicate; the store's unique index on the intent ID
// backstops that check.
func (s *BookingService) ConfirmBooking(userID uint, in ConfirmBookingInput) (*models.Booking, error) {
	intent, err := s.Payments.RetrieveIntent(in.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	if intent.Status != payments.IntentSucceeded {
		return nil, NewBookingError(KindPaymentNotCompleted, "Payment not completed")
	}

	var bookingID uint

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := lockForUpdate(tx).First(&room, in.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewBookingError(KindRoomNotFound, "Room not found")
			}
			return fmt.Errorf("failed to lock room %d: %w", in.RoomID, err)
		}

		var existing models.Booking
		err := tx.Where("payment_intent_id = ?", in.PaymentIntentID).First(&existing).Error
		switch {
		case err == nil && existing.PaymentStatus == models.PaymentStatusPending:
			// Normal path: the quote's Pending booking becomes Confirmed.
			if err := tx.Model(&existing).Update("payment_status", models.PaymentStatusConfirmed).Error; err != nil {
				return fmt.Errorf("failed to confirm booking %d: %w", existing.ID, err)
			}
			bookingID = existing.ID

		case err == nil && existing.PaymentStatus == models.PaymentStatusCancelled:
			// The sweeper reclaimed the quote before the payment landed. The
			// payment is real, so re-validate the quoted window and revive
			// the booking rather than strand a paid customer.
			conflict, oErr := hasOverlap(tx, existing.RoomID, existing.CheckInDate, existing.CheckOutDate)
			if oErr != nil {
				return oErr
			}
			if conflict {
				return NewBookingError(KindDateConflict, "Room is not available for selected dates")
			}
			if err := tx.Model(&existing).Update("payment_status", models.PaymentStatusConfirmed).Error; err != nil {
				return fmt.Errorf("failed to confirm booking %d: %w", existing.ID, err)
			}
			bookingID = existing.ID

		case err == nil:
			return NewBookingError(KindDuplicateConfirmation, "Booking already exists for this payment")

		case errors.Is(err, gorm.ErrRecordNotFound):
			// Quote-less confirm: time has passed since the availability
			// check, so the overlap condition must hold at write time.
			if !in.CheckOutDate.After(in.CheckInDate) {
				return NewBookingError(KindInvalidRange, "Check-out date must be after check-in date")
			}
			conflict, oErr := hasOverlap(tx, in.RoomID, in.CheckInDate, in.CheckOutDate)
			if oErr != nil {
				return oErr
			}
			if conflict {
				return NewBookingError(KindDateConflict, "Room is not available for selected dates")
			}

			quote := QuoteStay(&room, in.CheckInDate, in.CheckOutDate)
			booking := models.Booking{
				UserID:          userID,
				RoomID:          in.RoomID,
				CheckInDate:     in.CheckInDate,
				CheckOutDate:    in.CheckOutDate,
				TotalPrice:      quote.Total,
				PaymentStatus:   models.PaymentStatusConfirmed,
				PaymentIntentID: &in.PaymentIntentID,
				GuestName:       in.GuestName,
				GuestEmail:      in.GuestEmail,
				GuestPhone:      in.GuestPhone,
				Guests:          in.Guests,
				SpecialRequests: in.SpecialRequests,
			}
			if err := tx.Create(&booking).Error; err != nil {
				return fmt.Errorf("failed to create booking: %w", err)
			}
			bookingID = booking.ID

		default:
			return fmt.Errorf("failed to look up booking by payment intent: %w", err)
		}

		if err := tx.Model(&models.Room{}).Where("id = ?", in.RoomID).
			Update("status", models.RoomStatusOccupied).Error; err != nil {
			return fmt.Errorf("failed to update room %d status: %w", in.RoomID, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	var confirmed models.Booking
	if err := s.DB.Preload("Room").First(&confirmed, bookingID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload booking %d: %w", bookingID, err)
	}
	return &confirmed, nil
}

// CancellationWindow is the minimum lead time before check-in for a
// cancellation to be accepted.
const CancellationWindow = 24 * time.Hour

// CancelBooking cancels a booking on behalf of its owner or an admin and
// frees the room. A refund is attempted for paid bookings; refund failure is
// logged and returned as a warning but never rolls back the cancellation,
// so the room does not stay Occupied over a provider outage.
func (s *BookingService) CancelBooking(bookingID uint, requester *models.User) (*models.Booking, *BookingError, error) {
	var booking models.Booking
	if err := s.DB.Preload("Room").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewBookingError(KindBookingNotFound, "Booking not found")
		}
		return nil, nil, fmt.Errorf("failed to find booking %d: %w", bookingID, err)
	}

	if booking.UserID != requester.ID && !requester.IsAdmin() {
		return nil, nil, NewBookingError(KindForbidden, "Access denied")
	}

	// Terminal states admit no transitions; a repeated cancel is a no-op.
	if booking.IsTerminal() {
		return &booking, nil, nil
	}

	if time.Until(booking.CheckInDate) < CancellationWindow {
		return nil, nil, NewBookingError(KindCancellationWindowExpired,
			"Cannot cancel booking less than 24 hours before check-in")
	}

	wasConfirmed := booking.PaymentStatus == models.PaymentStatusConfirmed

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&booking).Update("payment_status", models.PaymentStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel booking %d: %w", booking.ID, err)
		}
		if err := tx.Model(&models.Room{}).Where("id = ?", booking.RoomID).
			Update("status", models.RoomStatusAvailable).Error; err != nil {
			return fmt.Errorf("failed to release room %d: %w", booking.RoomID, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}
	booking.PaymentStatus = models.PaymentStatusCancelled

	var warning *BookingError
	if wasConfirmed && booking.PaymentIntentID != nil {
		if err := s.Payments.Refund(*booking.PaymentIntentID); err != nil {
			s.Logger.Warn("refund failed after cancellation",
				zap.Uint("bookingId", booking.ID),
				zap.String("paymentIntentId", *booking.PaymentIntentID),
				zap.Error(err))
			warning = NewBookingError(KindRefundFailed,
				"Booking cancelled, but the refund could not be processed; it will be retried manually")
		} else {
			if err := s.DB.Model(&booking).Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
				s.Logger.Warn("failed to record refund", zap.Uint("bookingId", booking.ID), zap.Error(err))
			} else {
				booking.PaymentStatus = models.PaymentStatusRefunded
			}
		}
	}

	return &booking, warning, nil
}

// ListBookings returns the requester's bookings, or every booking for an
// admin, newest first.
func (s *BookingService) ListBookings(requester *models.User, page, limit int) ([]models.Booking, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := s.DB.Model(&models.Booking{})
	if !requester.IsAdmin() {
		query = query.Where("user_id = ?", requester.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count bookings: %w", err)
	}

	var bookings []models.Booking
	if err := query.
		Preload("Room").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to retrieve bookings: %w", err)
	}

	return bookings, NewPagination(page, limit, total), nil
}

// GetBooking returns a booking visible to the requester (owner or admin).
func (s *BookingService) GetBooking(bookingID uint, requester *models.User) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.Preload("Room").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewBookingError(KindBookingNotFound, "Booking not found")
		}
		return nil, fmt.Errorf("failed to retrieve booking %d: %w", bookingID, err)
	}
	if booking.UserID != requester.ID && !requester.IsAdmin() {
		return nil, NewBookingError(KindForbidden, "Access denied")
	}
	return &booking, nil
}
