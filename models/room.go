package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room types offered by the hotel.
const (
	RoomTypeDeluxe       = "Deluxe"
	RoomTypeSuite        = "Suite"
	RoomTypeExecutive    = "Executive"
	RoomTypePresidential = "Presidential"
)

// Room statuses. Only Available rooms accept new bookings.
const (
	RoomStatusAvailable = "Available"
	RoomStatusOccupied  = "Occupied"
	RoomStatusCleaning  = "Cleaning"
)

type Room struct {
	gorm.Model

	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`

	Type        string         `json:"type" gorm:"size:32;index"`
	Price       float64        `json:"price"`
	Status      string         `json:"status" gorm:"size:32;default:Available;index"`
	Images      datatypes.JSON `json:"images,omitempty"`
	Amenities   datatypes.JSON `json:"amenities,omitempty"`
	Description string         `json:"description" gorm:"type:text"`
	Capacity    int            `json:"capacity"`
	Size        string         `json:"size" gorm:"size:50"`
}

func IsValidRoomType(t string) bool {
	switch t {
	case RoomTypeDeluxe, RoomTypeSuite, RoomTypeExecutive, RoomTypePresidential:
		return true
	}
	return false
}

func IsValidRoomStatus(s string) bool {
	switch s {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusCleaning:
		return true
	}
	return false
}
