package services

import (
	"math"
	"testing"
	"time"

	"hotel-booking-api/models"

	"github.com/stretchr/testify/assert"
)

func TestNights(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, Nights(base, base.AddDate(0, 0, 1)))
	assert.Equal(t, 3, Nights(base, base.AddDate(0, 0, 3)))

	// Partial days round up.
	assert.Equal(t, 2, Nights(base, base.AddDate(0, 0, 1).Add(6*time.Hour)))
}

func TestQuoteStay(t *testing.T) {
	room := &models.Room{Price: 150.00}
	checkIn := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	quote := QuoteStay(room, checkIn, checkOut)

	assert.Equal(t, 3, quote.Nights)
	assert.InDelta(t, 450.00, quote.Subtotal, 0.001)
	assert.InDelta(t, 45.00, quote.Tax, 0.001)
	assert.InDelta(t, 495.00, quote.Total, 0.001)
	assert.Equal(t, int64(49500), quote.AmountMinorUnits())
}

func TestQuoteMonotonicInNights(t *testing.T) {
	room := &models.Room{Price: 199.99}
	checkIn := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	prev := 0.0
	for nights := 1; nights <= 14; nights++ {
		quote := QuoteStay(room, checkIn, checkIn.AddDate(0, 0, nights))
		assert.Greater(t, quote.Total, prev, "total must grow with nights")
		prev = quote.Total
	}
}

func TestTaxApplicationOrderEquivalence(t *testing.T) {
	room := &models.Room{Price: 157.37}
	checkIn := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	quote := QuoteStay(room, checkIn, checkIn.AddDate(0, 0, 5))

	// subtotal*1.10 and subtotal + subtotal*0.10 must agree to the cent.
	multiplied := quote.Subtotal * (1 + TaxRate)
	assert.Less(t, math.Abs(multiplied-quote.Total), 0.005)
}
