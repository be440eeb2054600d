// Package policy talks to the monolith that still owns user, hotel and promo
// data. The booking service only ever asks it narrow yes/no and pricing
// questions, so the surface is a small capability interface that tests can
// replace with a deterministic fake.
package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Gateway answers the eligibility and pricing questions behind a booking.
// Errors are returned to the caller so it can decide the failure policy;
// every check in the booking service denies on error except promo
// validation, which falls back to no discount.
type Gateway interface {
	IsUserActive(ctx context.Context, userID string) (bool, error)
	IsUserBlacklisted(ctx context.Context, userID string) (bool, error)
	UserStatus(ctx context.Context, userID string) (string, error)
	IsHotelOperational(ctx context.Context, hotelID string) (bool, error)
	IsHotelTrusted(ctx context.Context, hotelID string) (bool, error)
	IsHotelFullyBooked(ctx context.Context, hotelID string) (bool, error)
	// ValidatePromo returns the discount amount and whether the code was
	// accepted at all.
	ValidatePromo(ctx context.Context, code, userID string) (float64, bool, error)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) IsUserActive(ctx context.Context, userID string) (bool, error) {
	return c.getBool(ctx, fmt.Sprintf("/api/users/%s/active", url.PathEscape(userID)))
}

func (c *Client) IsUserBlacklisted(ctx context.Context, userID string) (bool, error) {
	return c.getBool(ctx, fmt.Sprintf("/api/users/%s/blacklisted", url.PathEscape(userID)))
}

func (c *Client) UserStatus(ctx context.Context, userID string) (string, error) {
	return c.getString(ctx, fmt.Sprintf("/api/users/%s/status", url.PathEscape(userID)))
}

func (c *Client) IsHotelOperational(ctx context.Context, hotelID string) (bool, error) {
	return c.getBool(ctx, fmt.Sprintf("/api/hotels/%s/operational", url.PathEscape(hotelID)))
}

func (c *Client) IsHotelTrusted(ctx context.Context, hotelID string) (bool, error) {
	return c.getBool(ctx, fmt.Sprintf("/api/reviews/hotel/%s/trusted", url.PathEscape(hotelID)))
}

func (c *Client) IsHotelFullyBooked(ctx context.Context, hotelID string) (bool, error) {
	return c.getBool(ctx, fmt.Sprintf("/api/hotels/%s/fully-booked", url.PathEscape(hotelID)))
}

// ValidatePromo POSTs the code for validation. The monolith answers with
// either a "discount" or a "discountPercent" field depending on its version.
func (c *Client) ValidatePromo(ctx context.Context, code, userID string) (float64, bool, error) {
	u := fmt.Sprintf("%s/api/promos/validate?code=%s&userId=%s",
		c.baseURL, url.QueryEscape(code), url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return 0, false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("validate promo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false, nil
	}

	var body struct {
		Discount        *float64 `json:"discount"`
		DiscountPercent *float64 `json:"discountPercent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, false, fmt.Errorf("validate promo: decode response: %w", err)
	}
	switch {
	case body.Discount != nil:
		return *body.Discount, true, nil
	case body.DiscountPercent != nil:
		return *body.DiscountPercent, true, nil
	default:
		return 0, false, nil
	}
}

func (c *Client) getBool(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("policy call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("policy call %s: status %d", path, resp.StatusCode)
	}
	var v bool
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return false, fmt.Errorf("policy call %s: decode response: %w", path, err)
	}
	return v, nil
}

func (c *Client) getString(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("policy call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("policy call %s: status %d", path, resp.StatusCode)
	}
	var v string
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return "", fmt.Errorf("policy call %s: decode response: %w", path, err)
	}
	return v, nil
}
