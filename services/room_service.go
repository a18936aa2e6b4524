package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-booking-api/models"

	"gorm.io/gorm"
)

// RoomService handles room inventory queries and admin CRUD.
type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

// RoomFilter narrows a room listing. CheckIn/CheckOut, when both set,
// exclude rooms with a conflicting Pending or Confirmed booking using the
// same half-open overlap predicate as the admission engine.
type RoomFilter struct {
	Type     string
	Status   string
	Capacity int
	MinPrice float64
	MaxPrice float64
	CheckIn  *time.Time
	CheckOut *time.Time
	Page     int
	Limit    int
}

func (s *RoomService) ListRooms(f RoomFilter) ([]models.Room, Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 12
	}

	query := s.DB.Model(&models.Room{})
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Capacity > 0 {
		query = query.Where("capacity >= ?", f.Capacity)
	}
	if f.MinPrice > 0 {
		query = query.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		query = query.Where("price <= ?", f.MaxPrice)
	}

	if f.CheckIn != nil && f.CheckOut != nil {
		sub := s.DB.Model(&models.Booking{}).
			Select("room_id").
			Where("payment_status IN ?", []string{models.PaymentStatusPending, models.PaymentStatusConfirmed}).
			Where("check_in_date < ? AND check_out_date > ?", *f.CheckOut, *f.CheckIn)
		query = query.Where("id NOT IN (?)", sub)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count rooms: %w", err)
	}

	var rooms []models.Room
	if err := query.
		Order("room_number ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&rooms).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to retrieve rooms: %w", err)
	}

	return rooms, NewPagination(f.Page, f.Limit, total), nil
}

func (s *RoomService) GetRoom(roomID uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewBookingError(KindRoomNotFound, "Room not found")
		}
		return nil, fmt.Errorf("failed to retrieve room %d: %w", roomID, err)
	}
	return &room, nil
}

func (s *RoomService) CreateRoom(room *models.Room) error {
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.RoomNumber == "" {
		return NewBookingError(KindValidation, "Room number is required")
	}
	if !models.IsValidRoomType(room.Type) {
		return NewBookingError(KindValidation, "Invalid room type")
	}
	if room.Status == "" {
		room.Status = models.RoomStatusAvailable
	}
	if !models.IsValidRoomStatus(room.Status) {
		return NewBookingError(KindValidation, "Invalid room status")
	}
	if room.Price < 0 {
		return NewBookingError(KindValidation, "Price must be non-negative")
	}
	if room.Capacity < 1 || room.Capacity > 10 {
		return NewBookingError(KindValidation, "Capacity must be 1-10")
	}

	if err := s.DB.Create(room).Error; err != nil {
		lc := strings.ToLower(err.Error())
		if strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") {
			return NewBookingError(KindConflict, "Room number '%s' already exists", room.RoomNumber)
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// UpdateRoom applies a partial update. Identity and timestamp fields are
// stripped so clients cannot rewrite them.
func (s *RoomService) UpdateRoom(roomID uint, updates map[string]interface{}) (*models.Room, error) {
	delete(updates, "id")
	delete(updates, "created_at")
	delete(updates, "updated_at")
	delete(updates, "deleted_at")

	if t, ok := updates["type"].(string); ok && !models.IsValidRoomType(t) {
		return nil, NewBookingError(KindValidation, "Invalid room type")
	}
	if st, ok := updates["status"].(string); ok && !models.IsValidRoomStatus(st) {
		return nil, NewBookingError(KindValidation, "Invalid room status")
	}

	// Existence is checked separately: RowsAffected is 0 both for a missing
	// room and for an update that changes nothing.
	if _, err := s.GetRoom(roomID); err != nil {
		return nil, err
	}

	if err := s.DB.Model(&models.Room{}).Where("id = ?", roomID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update room %d: %w", roomID, err)
	}
	return s.GetRoom(roomID)
}

func (s *RoomService) DeleteRoom(roomID uint) error {
	result := s.DB.Where("id = ?", roomID).Delete(&models.Room{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete room %d: %w", roomID, result.Error)
	}
	if result.RowsAffected == 0 {
		return NewBookingError(KindRoomNotFound, "Room not found")
	}
	return nil
}
