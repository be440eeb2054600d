package domain

import "time"

// LedgerEntry records every booking event the aggregator has applied.
// The booking id primary key is what makes duplicate delivery a no-op.
type LedgerEntry struct {
	BookingID string    `gorm:"primaryKey" json:"booking_id"`
	UserID    string    `gorm:"not null" json:"user_id"`
	HotelID   string    `gorm:"not null" json:"hotel_id"`
	PromoCode *string   `json:"promo_code,omitempty"`
	Discount  float64   `gorm:"not null" json:"discount"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LedgerEntry) TableName() string { return "booking_ledger" }

type UserStats struct {
	UserID        string  `gorm:"primaryKey" json:"user_id"`
	TotalBookings int64   `gorm:"not null" json:"total_bookings"`
	TotalSpent    float64 `gorm:"not null" json:"total_spent"`
}

func (UserStats) TableName() string { return "user_stats" }

type HotelStats struct {
	HotelID       string  `gorm:"primaryKey" json:"hotel_id"`
	TotalBookings int64   `gorm:"not null" json:"total_bookings"`
	TotalRevenue  float64 `gorm:"not null" json:"total_revenue"`
}

func (HotelStats) TableName() string { return "hotel_stats" }

// DayStats is keyed by the UTC calendar day in YYYY-MM-DD form.
type DayStats struct {
	Day           string  `gorm:"primaryKey" json:"day"`
	TotalBookings int64   `gorm:"not null" json:"total_bookings"`
	TotalRevenue  float64 `gorm:"not null" json:"total_revenue"`
}

func (DayStats) TableName() string { return "day_stats" }

// DayKey truncates a timestamp to its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
