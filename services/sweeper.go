package services

import (
	"time"

	"hotel-booking-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PendingSweeper reclaims Pending bookings whose payment never arrived, so an
// abandoned checkout does not hold a room's dates forever.
type PendingSweeper struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	TTL      time.Duration
	Interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewPendingSweeper(db *gorm.DB, logger *zap.Logger, ttl, interval time.Duration) *PendingSweeper {
	return &PendingSweeper{
		DB:       db,
		Logger:   logger,
		TTL:      ttl,
		Interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SweepOnce cancels Pending bookings older than the TTL and returns how many
// were reclaimed. Pending -> Cancelled is the abandoned pre-payment
// transition; room status is untouched since Pending never occupied the room.
func (w *PendingSweeper) SweepOnce() (int64, error) {
	cutoff := time.Now().UTC().Add(-w.TTL)
	result := w.DB.Model(&models.Booking{}).
		Where("payment_status = ?", models.PaymentStatusPending).
		Where("created_at < ?", cutoff).
		Update("payment_status", models.PaymentStatusCancelled)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Start runs the sweep loop until Stop is called.
func (w *PendingSweeper) Start() {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				reclaimed, err := w.SweepOnce()
				if err != nil {
					w.Logger.Warn("pending booking sweep failed", zap.Error(err))
					continue
				}
				if reclaimed > 0 {
					w.Logger.Info("reclaimed stale pending bookings", zap.Int64("count", reclaimed))
				}
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to finish.
func (w *PendingSweeper) Stop() {
	close(w.stop)
	<-w.done
}
