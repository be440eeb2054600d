package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stayflow/booking-pipeline/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Migrate() error {
	return r.db.AutoMigrate(&domain.Booking{})
}

// Insert persists the booking and fills in the store-assigned id. The id is
// strictly increasing; the creation timestamp is set here unless the caller
// already fixed one.
func (r *BookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// List returns bookings newest first, optionally filtered by user.
func (r *BookingRepository) List(ctx context.Context, userID string) ([]domain.Booking, error) {
	qb := r.db.WithContext(ctx).Model(&domain.Booking{})
	if userID != "" {
		qb = qb.Where("user_id = ?", userID)
	}
	var out []domain.Booking
	if err := qb.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}
