package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"hotel-booking-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func insertBooking(t *testing.T, db *gorm.DB, userID, roomID uint, checkIn, checkOut time.Time, status string, intentID *string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		UserID:          userID,
		RoomID:          roomID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		TotalPrice:      495.00,
		PaymentStatus:   status,
		PaymentIntentID: intentID,
		GuestName:       "John Doe",
		GuestEmail:      "john@example.com",
		GuestPhone:      "+1-555-0100",
		Guests:          2,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func paymentInput(roomID uint, checkIn, checkOut time.Time, guests int) PaymentIntentInput {
	return PaymentIntentInput{
		RoomID:       roomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Guests:       guests,
		GuestName:    "John Doe",
		GuestEmail:   "john@example.com",
		GuestPhone:   "+1-555-0100",
	}
}

func TestCheckAvailabilityPreconditions(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	t.Run("past check-in", func(t *testing.T) {
		_, err := svc.CheckAvailability(room.ID, futureDate(-1), futureDate(2), 2)
		assert.True(t, IsKind(err, KindPastDate))
	})

	t.Run("check-out not after check-in", func(t *testing.T) {
		_, err := svc.CheckAvailability(room.ID, futureDate(3), futureDate(3), 2)
		assert.True(t, IsKind(err, KindInvalidRange))

		_, err = svc.CheckAvailability(room.ID, futureDate(3), futureDate(2), 2)
		assert.True(t, IsKind(err, KindInvalidRange))
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := svc.CheckAvailability(9999, futureDate(3), futureDate(5), 2)
		assert.True(t, IsKind(err, KindRoomNotFound))
	})

	t.Run("room being cleaned", func(t *testing.T) {
		closed := createTestRoom(t, db, "102", 150.00, 2)
		require.NoError(t, db.Model(closed).Update("status", models.RoomStatusCleaning).Error)

		_, err := svc.CheckAvailability(closed.ID, futureDate(3), futureDate(5), 2)
		assert.True(t, IsKind(err, KindRoomUnavailable))
	})

	t.Run("too many guests", func(t *testing.T) {
		_, err := svc.CheckAvailability(room.ID, futureDate(3), futureDate(5), 3)
		require.True(t, IsKind(err, KindCapacityExceeded))
		assert.Contains(t, err.Error(), "2")
	})

	t.Run("overlapping confirmed booking", func(t *testing.T) {
		insertBooking(t, db, user.ID, room.ID, futureDate(3), futureDate(5), models.PaymentStatusConfirmed, nil)

		_, err := svc.CheckAvailability(room.ID, futureDate(4), futureDate(6), 2)
		assert.True(t, IsKind(err, KindDateConflict))
	})

	t.Run("ok", func(t *testing.T) {
		got, err := svc.CheckAvailability(room.ID, futureDate(10), futureDate(12), 2)
		require.NoError(t, err)
		assert.Equal(t, room.ID, got.ID)
	})
}

func TestOverlapIsHalfOpen(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	// Existing stay occupies nights [d+5, d+8).
	insertBooking(t, db, user.ID, room.ID, futureDate(5), futureDate(8), models.PaymentStatusConfirmed, nil)

	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		conflict bool
	}{
		{"checks out on existing check-in day", futureDate(3), futureDate(5), false},
		{"checks in on existing check-out day", futureDate(8), futureDate(10), false},
		{"same window", futureDate(5), futureDate(8), true},
		{"starts inside", futureDate(6), futureDate(10), true},
		{"ends inside", futureDate(4), futureDate(6), true},
		{"fully contains", futureDate(4), futureDate(9), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CheckAvailability(room.ID, tc.checkIn, tc.checkOut, 2)
			if tc.conflict {
				assert.True(t, IsKind(err, KindDateConflict))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelledBookingsDoNotBlock(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	insertBooking(t, db, user.ID, room.ID, futureDate(5), futureDate(8), models.PaymentStatusCancelled, nil)

	_, err := svc.CheckAvailability(room.ID, futureDate(5), futureDate(8), 2)
	assert.NoError(t, err)
}

func TestCreatePaymentIntent(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	result, err := svc.CreatePaymentIntent(user.ID, paymentInput(room.ID, futureDate(5), futureDate(8), 2))
	require.NoError(t, err)

	// 3 nights at 150.00 plus 10% tax.
	assert.InDelta(t, 495.00, result.TotalPrice, 0.001)
	assert.Equal(t, int64(49500), result.Amount)
	assert.Equal(t, "usd", result.Currency)
	assert.NotEmpty(t, result.ClientSecret)
	assert.NotEmpty(t, result.PaymentIntentID)

	var booking models.Booking
	require.NoError(t, db.First(&booking, result.BookingID).Error)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	require.NotNil(t, booking.PaymentIntentID)
	assert.Equal(t, result.PaymentIntentID, *booking.PaymentIntentID)
	assert.InDelta(t, 495.00, booking.TotalPrice, 0.001)
}

func TestPendingQuoteHoldsTheDates(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	alice := createTestUser(t, db, "alice@example.com", models.RoleCustomer)
	bob := createTestUser(t, db, "bob@example.com", models.RoleCustomer)

	_, err := svc.CreatePaymentIntent(alice.ID, paymentInput(room.ID, futureDate(5), futureDate(8), 2))
	require.NoError(t, err)

	_, err = svc.CreatePaymentIntent(bob.ID, paymentInput(room.ID, futureDate(6), futureDate(9), 2))
	assert.True(t, IsKind(err, KindDateConflict))
}

func TestConfirmBookingPromotesPending(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	result, err := svc.CreatePaymentIntent(user.ID, paymentInput(room.ID, futureDate(5), futureDate(8), 2))
	require.NoError(t, err)

	booking, err := svc.ConfirmBooking(user.ID, ConfirmBookingInput{
		PaymentIntentID: result.PaymentIntentID,
		RoomID:          room.ID,
		CheckInDate:     futureDate(5),
		CheckOutDate:    futureDate(8),
		Guests:          2,
		GuestName:       "John Doe",
		GuestEmail:      "john@example.com",
		GuestPhone:      "+1-555-0100",
	})
	require.NoError(t, err)

	assert.Equal(t, result.BookingID, booking.ID)
	assert.Equal(t, models.PaymentStatusConfirmed, booking.PaymentStatus)
	assert.Equal(t, room.ID, booking.Room.ID)

	var updatedRoom models.Room
	require.NoError(t, db.First(&updatedRoom, room.ID).Error)
	assert.Equal(t, models.RoomStatusOccupied, updatedRoom.Status)
}

func TestConfirmBookingDuplicateRejected(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	result, err := svc.CreatePaymentIntent(user.ID, paymentInput(room.ID, futureDate(5), futureDate(8), 2))
	require.NoError(t, err)

	in := ConfirmBookingInput{
		PaymentIntentID: result.PaymentIntentID,
		RoomID:          room.ID,
		CheckInDate:     futureDate(5),
		CheckOutDate:    futureDate(8),
		Guests:          2,
		GuestName:       "John Doe",
		GuestEmail:      "john@example.com",
		GuestPhone:      "+1-555-0100",
	}

	_, err = svc.ConfirmBooking(user.ID, in)
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(user.ID, in)
	assert.True(t, IsKind(err, KindDuplicateConfirmation))

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).
		Where("payment_intent_id = ?", result.PaymentIntentID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConfirmBookingRequiresSucceededPayment(t *testing.T) {
	svc, gateway, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	gateway.status = "requires_payment_method"
	intent, err := gateway.CreateIntent(49500, "usd", nil)
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(user.ID, ConfirmBookingInput{
		PaymentIntentID: intent.ID,
		RoomID:          room.ID,
		CheckInDate:     futureDate(5),
		CheckOutDate:    futureDate(8),
		Guests:          2,
	})
	assert.True(t, IsKind(err, KindPaymentNotCompleted))

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConfirmBookingRevivesSweptQuote(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	result, err := svc.CreatePaymentIntent(user.ID, paymentInput(room.ID, futureDate(5), futureDate(8), 2))
	require.NoError(t, err)

	// The payment is slow; the sweeper reclaims the quote in the meantime.
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", result.BookingID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	sweeper := NewPendingSweeper(db, zap.NewNop(), 30*time.Minute, time.Minute)
	reclaimed, err := sweeper.SweepOnce()
	require.NoError(t, err)
	require.Equal(t, int64(1), reclaimed)

	booking, err := svc.ConfirmBooking(user.ID, ConfirmBookingInput{
		PaymentIntentID: result.PaymentIntentID,
		RoomID:          room.ID,
		CheckInDate:     futureDate(5),
		CheckOutDate:    futureDate(8),
		Guests:          2,
	})
	require.NoError(t, err)
	assert.Equal(t, result.BookingID, booking.ID)
	assert.Equal(t, models.PaymentStatusConfirmed, booking.PaymentStatus)
}

func TestConfirmBookingSweptQuoteWindowTaken(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	alice := createTestUser(t, db, "alice@example.com", models.RoleCustomer)
	bob := createTestUser(t, db, "bob@example.com", models.RoleCustomer)

	result, err := svc.CreatePaymentIntent(alice.ID, paymentInput(room.ID, futureDate(5), futureDate(8), 2))
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", result.BookingID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	sweeper := NewPendingSweeper(db, zap.NewNop(), 30*time.Minute, time.Minute)
	_, err = sweeper.SweepOnce()
	require.NoError(t, err)

	// Someone else takes the freed window before the late payment confirms.
	insertBooking(t, db, bob.ID, room.ID, futureDate(5), futureDate(8), models.PaymentStatusConfirmed, nil)

	_, err = svc.ConfirmBooking(alice.ID, ConfirmBookingInput{
		PaymentIntentID: result.PaymentIntentID,
		RoomID:          room.ID,
		CheckInDate:     futureDate(5),
		CheckOutDate:    futureDate(8),
		Guests:          2,
	})
	assert.True(t, IsKind(err, KindDateConflict))
}

func TestConfirmBookingWithoutPriorQuote(t *testing.T) {
	svc, gateway, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	user := createTestUser(t, db, "guest@example.com", models.RoleCustomer)

	// A succeeded payment with no booking row behind it, e.g. an intent
	// opened outside the quote flow. Confirm must validate the window
	// again and insert.
	intent, err := gateway.CreateIntent(49500, "usd", nil)
	require.NoError(t, err)

	booking, err := svc.ConfirmBooking(user.ID, ConfirmBookingInput{
		PaymentIntentID: intent.ID,
		RoomID:          room.ID,
		CheckInDate:     futureDate(5),
		CheckOutDate:    futureDate(8),
		Guests:          2,
		GuestName:       "John Doe",
		GuestEmail:      "john@example.com",
		GuestPhone:      "+1-555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusConfirmed, booking.PaymentStatus)
	assert.InDelta(t, 495.00, booking.TotalPrice, 0.001)
}

func TestConfirmBookingWithoutPriorQuoteConflict(t *testing.T) {
	svc, gateway, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	alice := createTestUser(t, db, "alice@example.com", models.RoleCustomer)
	bob := createTestUser(t, db, "bob@example.com", models.RoleCustomer)

	insertBooking(t, db, alice.ID, room.ID, futureDate(5), futureDate(8), models.PaymentStatusConfirmed, nil)

	intent, err := gateway.CreateIntent(49500, "usd", nil)
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(bob.ID, ConfirmBookingInput{
		PaymentIntentID: intent.ID,
		RoomID:          room.ID,
		CheckInDate:     futureDate(6),
		CheckOutDate:    futureDate(9),
		Guests:          2,
	})
	assert.True(t, IsKind(err, KindDateConflict))
}

func TestCancelBooking(t *testing.T) {
	svc, gateway, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	owner := createTestUser(t, db, "owner@example.com", models.RoleCustomer)
	stranger := createTestUser(t, db, "stranger@example.com", models.RoleCustomer)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	t.Run("unknown booking", func(t *testing.T) {
		_, _, err := svc.CancelBooking(9999, owner)
		assert.True(t, IsKind(err, KindBookingNotFound))
	})

	t.Run("not the owner", func(t *testing.T) {
		intentID := "pi_cancel_forbidden"
		booking := insertBooking(t, db, owner.ID, room.ID, futureDate(5), futureDate(8), models.PaymentStatusConfirmed, &intentID)

		_, _, err := svc.CancelBooking(booking.ID, stranger)
		assert.True(t, IsKind(err, KindForbidden))
	})

	t.Run("inside the 24h window", func(t *testing.T) {
		soon := time.Now().UTC().Add(10 * time.Hour)
		booking := insertBooking(t, db, owner.ID, room.ID, soon, soon.AddDate(0, 0, 2), models.PaymentStatusConfirmed, nil)

		_, _, err := svc.CancelBooking(booking.ID, owner)
		assert.True(t, IsKind(err, KindCancellationWindowExpired))
	})

	t.Run("owner cancels and is refunded", func(t *testing.T) {
		intentID := "pi_cancel_ok"
		booking := insertBooking(t, db, owner.ID, room.ID, futureDate(10), futureDate(12), models.PaymentStatusConfirmed, &intentID)
		require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).
			Update("status", models.RoomStatusOccupied).Error)

		cancelled, warning, err := svc.CancelBooking(booking.ID, owner)
		require.NoError(t, err)
		assert.Nil(t, warning)
		assert.Equal(t, models.PaymentStatusRefunded, cancelled.PaymentStatus)
		assert.Contains(t, gateway.refunds, intentID)

		var freed models.Room
		require.NoError(t, db.First(&freed, room.ID).Error)
		assert.Equal(t, models.RoomStatusAvailable, freed.Status)
	})

	t.Run("repeat cancel is a no-op", func(t *testing.T) {
		intentID := "pi_cancel_repeat"
		booking := insertBooking(t, db, owner.ID, room.ID, futureDate(20), futureDate(22), models.PaymentStatusConfirmed, &intentID)

		_, _, err := svc.CancelBooking(booking.ID, owner)
		require.NoError(t, err)
		refundsSoFar := len(gateway.refunds)

		again, warning, err := svc.CancelBooking(booking.ID, owner)
		require.NoError(t, err)
		assert.Nil(t, warning)
		assert.Equal(t, models.PaymentStatusRefunded, again.PaymentStatus)
		assert.Len(t, gateway.refunds, refundsSoFar, "terminal booking must not be refunded twice")
	})

	t.Run("admin can cancel any booking", func(t *testing.T) {
		booking := insertBooking(t, db, owner.ID, room.ID, futureDate(30), futureDate(32), models.PaymentStatusPending, nil)

		cancelled, warning, err := svc.CancelBooking(booking.ID, admin)
		require.NoError(t, err)
		assert.Nil(t, warning)
		assert.Equal(t, models.PaymentStatusCancelled, cancelled.PaymentStatus)
	})
}

func TestCancelBookingRefundFailureIsNotFatal(t *testing.T) {
	svc, gateway, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	owner := createTestUser(t, db, "owner@example.com", models.RoleCustomer)

	intentID := "pi_refund_down"
	booking := insertBooking(t, db, owner.ID, room.ID, futureDate(10), futureDate(12), models.PaymentStatusConfirmed, &intentID)

	gateway.failRefund = true
	cancelled, warning, err := svc.CancelBooking(booking.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, warning)
	assert.Equal(t, KindRefundFailed, warning.Kind)

	// The cancellation itself sticks even though the refund did not.
	assert.Equal(t, models.PaymentStatusCancelled, cancelled.PaymentStatus)
	var stored models.Booking
	require.NoError(t, db.First(&stored, booking.ID).Error)
	assert.Equal(t, models.PaymentStatusCancelled, stored.PaymentStatus)

	var freed models.Room
	require.NoError(t, db.First(&freed, room.ID).Error)
	assert.Equal(t, models.RoomStatusAvailable, freed.Status)
}

func TestConcurrentQuotesSingleWinner(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)

	const quoters = 8
	users := make([]*models.User, quoters)
	for i := range users {
		users[i] = createTestUser(t, db, fmt.Sprintf("guest%d@example.com", i), models.RoleCustomer)
	}

	var wg sync.WaitGroup
	errs := make([]error, quoters)
	for i := 0; i < quoters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreatePaymentIntent(users[i].ID, paymentInput(room.ID, futureDate(5), futureDate(8), 2))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, IsKind(err, KindDateConflict), "loser must fail with a date conflict, got %v", err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one quoter may hold the window")

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).
		Where("room_id = ? AND payment_status = ?", room.ID, models.PaymentStatusPending).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListBookings(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	alice := createTestUser(t, db, "alice@example.com", models.RoleCustomer)
	bob := createTestUser(t, db, "bob@example.com", models.RoleCustomer)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	insertBooking(t, db, alice.ID, room.ID, futureDate(5), futureDate(8), models.PaymentStatusConfirmed, nil)
	insertBooking(t, db, bob.ID, room.ID, futureDate(10), futureDate(12), models.PaymentStatusConfirmed, nil)

	own, pagination, err := svc.ListBookings(alice, 1, 10)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, alice.ID, own[0].UserID)
	assert.Equal(t, int64(1), pagination.Total)

	all, pagination, err := svc.ListBookings(admin, 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(2), pagination.Total)
}

func TestGetBookingVisibility(t *testing.T) {
	svc, _, db := newTestBookingService(t)
	room := createTestRoom(t, db, "101", 150.00, 2)
	alice := createTestUser(t, db, "alice@example.com", models.RoleCustomer)
	bob := createTestUser(t, db, "bob@example.com", models.RoleCustomer)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	booking := insertBooking(t, db, alice.ID, room.ID, futureDate(5), futureDate(8), models.PaymentStatusConfirmed, nil)

	got, err := svc.GetBooking(booking.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = svc.GetBooking(booking.ID, bob)
	assert.True(t, IsKind(err, KindForbidden))

	_, err = svc.GetBooking(booking.ID, admin)
	assert.NoError(t, err)

	_, err = svc.GetBooking(9999, alice)
	assert.True(t, IsKind(err, KindBookingNotFound))
}
