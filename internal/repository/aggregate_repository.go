package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stayflow/booking-pipeline/internal/domain"
)

var ErrStatsNotFound = errors.New("stats not found")

// AggregateRepository owns the booking ledger and the three materialized
// aggregates. ApplyBookingCreated is the only write path; nothing else may
// touch these four tables.
type AggregateRepository struct {
	db *gorm.DB
}

func NewAggregateRepository(db *gorm.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

func (r *AggregateRepository) Migrate() error {
	return r.db.AutoMigrate(
		&domain.LedgerEntry{},
		&domain.UserStats{},
		&domain.HotelStats{},
		&domain.DayStats{},
	)
}

// ApplyBookingCreated applies one booking event in a single transaction:
// ledger insert plus the user, hotel and day increments. A ledger conflict
// means the booking was already applied, in which case the aggregates are
// left untouched. Safe to call again after a failure: either everything
// committed or nothing did.
func (r *AggregateRepository) ApplyBookingCreated(ctx context.Context, entry domain.LedgerEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Duplicate delivery, nothing to do.
			return nil
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_bookings": gorm.Expr("user_stats.total_bookings + 1"),
				"total_spent":    gorm.Expr("user_stats.total_spent + ?", entry.Price),
			}),
		}).Create(&domain.UserStats{
			UserID:        entry.UserID,
			TotalBookings: 1,
			TotalSpent:    entry.Price,
		}).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "hotel_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_bookings": gorm.Expr("hotel_stats.total_bookings + 1"),
				"total_revenue":  gorm.Expr("hotel_stats.total_revenue + ?", entry.Price),
			}),
		}).Create(&domain.HotelStats{
			HotelID:       entry.HotelID,
			TotalBookings: 1,
			TotalRevenue:  entry.Price,
		}).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_bookings": gorm.Expr("day_stats.total_bookings + 1"),
				"total_revenue":  gorm.Expr("day_stats.total_revenue + ?", entry.Price),
			}),
		}).Create(&domain.DayStats{
			Day:           domain.DayKey(entry.CreatedAt),
			TotalBookings: 1,
			TotalRevenue:  entry.Price,
		}).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("apply booking %s: %w", entry.BookingID, err)
	}
	return nil
}

func (r *AggregateRepository) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	var s domain.UserStats
	if err := r.db.WithContext(ctx).First(&s, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return &s, nil
}

func (r *AggregateRepository) GetHotelStats(ctx context.Context, hotelID string) (*domain.HotelStats, error) {
	var s domain.HotelStats
	if err := r.db.WithContext(ctx).First(&s, "hotel_id = ?", hotelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("get hotel stats: %w", err)
	}
	return &s, nil
}

func (r *AggregateRepository) GetDayStats(ctx context.Context, day string) (*domain.DayStats, error) {
	var s domain.DayStats
	if err := r.db.WithContext(ctx).First(&s, "day = ?", day).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("get day stats: %w", err)
	}
	return &s, nil
}
