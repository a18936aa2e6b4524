package controllers

import (
	"net/http"
	"strconv"
	"time"

	"hotel-booking-api/models"
	"hotel-booking-api/services"
	"hotel-booking-api/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Rooms *services.RoomService
}

func NewRoomController(rooms *services.RoomService) *RoomController {
	return &RoomController{Rooms: rooms}
}

const dateLayout = "2006-01-02"

func parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, raw); err2 == nil {
			return &t2, true
		}
		return nil, false
	}
	return &t, true
}

// GetRooms handles GET /api/rooms with filtering and pagination.
func (rc *RoomController) GetRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	capacity, _ := strconv.Atoi(c.DefaultQuery("capacity", "0"))
	minPrice, _ := strconv.ParseFloat(c.DefaultQuery("minPrice", "0"), 64)
	maxPrice, _ := strconv.ParseFloat(c.DefaultQuery("maxPrice", "0"), 64)

	checkIn, ok := parseDateQuery(c, "checkIn")
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "Invalid check-in date")
		return
	}
	checkOut, ok := parseDateQuery(c, "checkOut")
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "Invalid check-out date")
		return
	}

	if t := c.Query("type"); t != "" && !models.IsValidRoomType(t) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid room type")
		return
	}
	if st := c.Query("status"); st != "" && !models.IsValidRoomStatus(st) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid status")
		return
	}

	rooms, pagination, err := rc.Rooms.ListRooms(services.RoomFilter{
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Capacity: capacity,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"rooms":      rooms,
		"pagination": pagination,
	})
}

// GetRoom handles GET /api/rooms/:id.
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid room id")
		return
	}

	room, err := rc.Rooms.GetRoom(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"room": room})
}

// CreateRoom handles POST /api/rooms (admin only).
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := rc.Rooms.CreateRoom(&room); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccessMessage(c, http.StatusCreated, "Room created successfully", gin.H{"room": room})
}

// UpdateRoom handles PUT/PATCH /api/rooms/:id (admin only).
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid room id")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	room, err := rc.Rooms.UpdateRoom(uint(id), updates)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccessMessage(c, http.StatusOK, "Room updated successfully", gin.H{"room": room})
}

// DeleteRoom handles DELETE /api/rooms/:id (admin only).
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid room id")
		return
	}

	if err := rc.Rooms.DeleteRoom(uint(id)); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccessMessage(c, http.StatusOK, "Room deleted successfully", nil)
}
