package services

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hotel-booking-api/config"
	"hotel-booking-api/models"
	"hotel-booking-api/payments"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a file-backed sqlite database. _txlock=immediate makes
// transactions take the write lock at BEGIN, which stands in for the MySQL
// row lock in concurrency tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "bookings.db") + "?_txlock=immediate&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

// fakeGateway is an in-memory payments.Gateway.
type fakeGateway struct {
	mu         sync.Mutex
	intents    map[string]*payments.Intent
	status     string
	refunds    []string
	failRefund bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intents: make(map[string]*payments.Intent),
		status:  payments.IntentSucceeded,
	}
}

func (g *fakeGateway) CreateIntent(amount int64, currency string, metadata map[string]string) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := "pi_" + uuid.New().String()
	intent := &payments.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       g.status,
		Amount:       amount,
		Currency:     currency,
	}
	g.intents[id] = intent
	return intent, nil
}

func (g *fakeGateway) RetrieveIntent(id string) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if intent, ok := g.intents[id]; ok {
		return intent, nil
	}
	return &payments.Intent{ID: id, Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) Refund(intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failRefund {
		return errors.New("provider unavailable")
	}
	g.refunds = append(g.refunds, intentID)
	return nil
}

func newTestBookingService(t *testing.T) (*BookingService, *fakeGateway, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	gateway := newFakeGateway()
	return NewBookingService(db, gateway, zap.NewNop(), "usd"), gateway, db
}

func createTestRoom(t *testing.T, db *gorm.DB, number string, price float64, capacity int) *models.Room {
	t.Helper()
	room := &models.Room{
		RoomNumber:  number,
		Type:        models.RoomTypeDeluxe,
		Price:       price,
		Status:      models.RoomStatusAvailable,
		Capacity:    capacity,
		Size:        "350 sq ft",
		Description: "test room",
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

// futureDate returns a UTC midnight date the given number of days from now.
func futureDate(days int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
}
