package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/stayflow/booking-pipeline/internal/domain"
	"github.com/stayflow/booking-pipeline/internal/policy"
	"github.com/stayflow/booking-pipeline/internal/repository"
)

const (
	basePriceStandard = 100.0
	basePriceVIP      = 80.0
)

// ValidationError is a booking rejected before any write. Reason is safe to
// show to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func reject(reason string) error { return &ValidationError{Reason: reason} }

// EventPublisher hands a committed booking to the event log.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, b domain.Booking) error
}

type BookingService struct {
	repo    *repository.BookingRepository
	gateway policy.Gateway
	pub     EventPublisher
	logger  *zap.Logger
}

func NewBookingService(repo *repository.BookingRepository, gateway policy.Gateway, pub EventPublisher, logger *zap.Logger) *BookingService {
	return &BookingService{
		repo:    repo,
		gateway: gateway,
		pub:     pub,
		logger:  logger,
	}
}

// Create validates the request against the policy gateway, prices it, writes
// the booking and publishes the created event. Checks run in a fixed order
// and the first failure wins. An unreachable gateway denies the booking
// (fail closed); only promo validation fails open, to zero discount.
func (s *BookingService) Create(ctx context.Context, userID, hotelID, promoCode string) (*domain.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, reject("UserId is required")
	}
	if strings.TrimSpace(hotelID) == "" {
		return nil, reject("HotelId is required")
	}

	if active, err := s.gateway.IsUserActive(ctx, userID); err != nil || !active {
		s.logPolicyError("user active", err)
		return nil, reject("User is inactive")
	}
	if blacklisted, err := s.gateway.IsUserBlacklisted(ctx, userID); err != nil || blacklisted {
		s.logPolicyError("user blacklisted", err)
		return nil, reject("User is blacklisted")
	}
	if operational, err := s.gateway.IsHotelOperational(ctx, hotelID); err != nil || !operational {
		s.logPolicyError("hotel operational", err)
		return nil, reject("Hotel is not operational")
	}
	if trusted, err := s.gateway.IsHotelTrusted(ctx, hotelID); err != nil || !trusted {
		s.logPolicyError("hotel trusted", err)
		return nil, reject("Hotel is not trusted based on reviews")
	}
	if full, err := s.gateway.IsHotelFullyBooked(ctx, hotelID); err != nil || full {
		s.logPolicyError("hotel fully booked", err)
		return nil, reject("Hotel is fully booked")
	}

	status, err := s.gateway.UserStatus(ctx, userID)
	if err != nil {
		s.logPolicyError("user status", err)
		status = ""
	}
	basePrice := basePriceStandard
	if strings.EqualFold(status, "VIP") {
		basePrice = basePriceVIP
	}

	discount := 0.0
	var promo *string
	if strings.TrimSpace(promoCode) != "" {
		promo = &promoCode
		amount, valid, err := s.gateway.ValidatePromo(ctx, promoCode, userID)
		if err != nil || !valid {
			// Invalid or unreachable promo validation never fails the
			// booking, it just yields no discount.
			s.logger.Info("Promo code rejected, booking without discount",
				zap.String("promo_code", promoCode),
				zap.String("user_id", userID),
				zap.Error(err))
		} else {
			discount = amount
		}
	}

	booking := &domain.Booking{
		UserID:    userID,
		HotelID:   hotelID,
		PromoCode: promo,
		Discount:  discount,
		Price:     basePrice - discount,
	}

	if err := s.repo.Insert(ctx, booking); err != nil {
		s.logger.Error("Failed to save booking",
			zap.String("user_id", userID),
			zap.String("hotel_id", hotelID),
			zap.Error(err))
		return nil, err
	}

	// The booking is durable from here on; a publish failure loses the
	// event but never the booking.
	// TODO: persist the event in the same transaction as the booking and
	// relay it from an outbox table instead of this dual write.
	if err := s.pub.PublishBookingCreated(ctx, *booking); err != nil {
		s.logger.Error("Failed to publish booking event",
			zap.Int64("booking_id", booking.ID),
			zap.Error(err))
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.String("user_id", booking.UserID),
		zap.String("hotel_id", booking.HotelID),
		zap.Float64("price", booking.Price))

	return booking, nil
}

// List returns bookings newest first, optionally scoped to one user.
func (s *BookingService) List(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.repo.List(ctx, userID)
}

func (s *BookingService) logPolicyError(check string, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("Policy gateway unreachable, denying booking",
			zap.String("check", check),
			zap.Error(err))
	}
}
