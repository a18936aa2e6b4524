package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses. Pending and Confirmed bookings hold their room's dates;
// Cancelled and Refunded are terminal.
const (
	PaymentStatusPending   = "Pending"
	PaymentStatusConfirmed = "Confirmed"
	PaymentStatusCancelled = "Cancelled"
	PaymentStatusRefunded  = "Refunded"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"index;column:user_id" json:"userId"`
	RoomID uint `gorm:"index;column:room_id" json:"roomId"`

	CheckInDate  time.Time `gorm:"column:check_in_date" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"column:check_out_date" json:"checkOutDate"`

	TotalPrice    float64 `gorm:"column:total_price" json:"totalPrice"`
	PaymentStatus string  `gorm:"column:payment_status;size:32;default:Pending;index" json:"paymentStatus"`

	// Nullable so the unique index does not collide on bookings without a
	// payment reference.
	PaymentIntentID *string `gorm:"column:payment_intent_id;uniqueIndex;size:255" json:"paymentIntentId,omitempty"`

	GuestName       string `gorm:"size:100" json:"guestName"`
	GuestEmail      string `gorm:"size:255" json:"guestEmail"`
	GuestPhone      string `gorm:"size:32" json:"guestPhone"`
	Guests          int    `json:"guests"`
	SpecialRequests string `gorm:"type:text" json:"specialRequests,omitempty"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	User User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

// IsActive reports whether the booking still holds its date range.
func (b *Booking) IsActive() bool {
	return b.PaymentStatus == PaymentStatusPending || b.PaymentStatus == PaymentStatusConfirmed
}

// IsTerminal reports whether the payment status admits no further transitions.
func (b *Booking) IsTerminal() bool {
	return b.PaymentStatus == PaymentStatusCancelled || b.PaymentStatus == PaymentStatusRefunded
}
