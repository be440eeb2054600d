package events

import (
	"time"

	"github.com/stayflow/booking-pipeline/internal/domain"
)

// BookingCreatedEvent is the wire schema carried on the booking topic.
// The id field is the string form of the booking id and doubles as the
// dedup key on the consuming side. Field names are frozen; consumers in
// other services parse them.
type BookingCreatedEvent struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	HotelID   string  `json:"hotel_id"`
	PromoCode *string `json:"promo_code,omitempty"`
	Discount  float64 `json:"discount_percent"`
	Price     float64 `json:"price"`
	CreatedAt string  `json:"created_at"`
}

// LedgerEntry converts the decoded event into the row the aggregator
// persists. Fails when the timestamp is not RFC 3339.
func (e BookingCreatedEvent) LedgerEntry() (domain.LedgerEntry, error) {
	createdAt, err := time.Parse(time.RFC3339, e.CreatedAt)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	return domain.LedgerEntry{
		BookingID: e.ID,
		UserID:    e.UserID,
		HotelID:   e.HotelID,
		PromoCode: e.PromoCode,
		Discount:  e.Discount,
		Price:     e.Price,
		CreatedAt: createdAt.UTC(),
	}, nil
}
