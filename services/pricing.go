package services

import (
	"math"
	"time"

	"hotel-booking-api/models"
)

// TaxRate applied on top of the nightly subtotal.
const TaxRate = 0.10

// Nights returns the number of nights between check-in and check-out,
// rounding partial days up.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// Quote is the price breakdown for a stay.
type Quote struct {
	Nights   int     `json:"nights"`
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// QuoteStay prices a stay in the given room. The total keeps full decimal
// precision; this is what the booking record stores.
func QuoteStay(room *models.Room, checkIn, checkOut time.Time) Quote {
	nights := Nights(checkIn, checkOut)
	subtotal := float64(nights) * room.Price
	tax := subtotal * TaxRate
	return Quote{
		Nights:   nights,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// AmountMinorUnits rounds the total to integer minor currency units (cents).
// Payment providers only accept integer amounts on the wire, so quote-time
// amounts are rounded while the stored booking total keeps full precision.
func (q Quote) AmountMinorUnits() int64 {
	return int64(math.Round(q.Total * 100))
}
