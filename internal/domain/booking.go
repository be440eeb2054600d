package domain

import (
	"time"
)

// Booking is the durable record of a created booking. Rows are immutable
// once written; the store assigns the id and the creation timestamp.
type Booking struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	HotelID   string    `gorm:"not null" json:"hotel_id"`
	PromoCode *string   `json:"promo_code,omitempty"`
	Discount  float64   `gorm:"not null" json:"discount"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (Booking) TableName() string { return "bookings" }

type CreateBookingRequest struct {
	UserID    string `json:"user_id"`
	HotelID   string `json:"hotel_id"`
	PromoCode string `json:"promo_code"`
}

type CreateBookingResponse struct {
	BookingID int64   `json:"booking_id"`
	Price     float64 `json:"price"`
	Message   string  `json:"message"`
}
