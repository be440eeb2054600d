package policy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatewayServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func jsonBody(v string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, v)
	}
}

func TestBooleanChecks_HitExpectedPaths(t *testing.T) {
	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		fmt.Fprint(w, "true")
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	checks := []func() (bool, error){
		func() (bool, error) { return c.IsUserActive(ctx, "u1") },
		func() (bool, error) { return c.IsUserBlacklisted(ctx, "u1") },
		func() (bool, error) { return c.IsHotelOperational(ctx, "h1") },
		func() (bool, error) { return c.IsHotelTrusted(ctx, "h1") },
		func() (bool, error) { return c.IsHotelFullyBooked(ctx, "h1") },
	}
	for _, check := range checks {
		ok, err := check()
		require.NoError(t, err)
		assert.True(t, ok)
	}

	assert.Equal(t, []string{
		"/api/users/u1/active",
		"/api/users/u1/blacklisted",
		"/api/hotels/h1/operational",
		"/api/reviews/hotel/h1/trusted",
		"/api/hotels/h1/fully-booked",
	}, gotPaths)
}

func TestBooleanCheck_NonOKStatusIsError(t *testing.T) {
	srv := newGatewayServer(t, map[string]http.HandlerFunc{
		"/api/hotels/h1/operational": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})

	c := NewClient(srv.URL, time.Second)
	_, err := c.IsHotelOperational(context.Background(), "h1")
	require.Error(t, err)
}

func TestBooleanCheck_UnreachableIsError(t *testing.T) {
	// Nothing listening here: the caller gets an error and fails closed.
	c := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := c.IsUserActive(context.Background(), "u1")
	require.Error(t, err)
}

func TestUserStatus(t *testing.T) {
	srv := newGatewayServer(t, map[string]http.HandlerFunc{
		"/api/users/u1/status": jsonBody(`"VIP"`),
	})

	c := NewClient(srv.URL, time.Second)
	status, err := c.UserStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "VIP", status)
}

func TestValidatePromo_DiscountField(t *testing.T) {
	srv := newGatewayServer(t, map[string]http.HandlerFunc{
		"/api/promos/validate": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "SPRING15", r.URL.Query().Get("code"))
			assert.Equal(t, "u1", r.URL.Query().Get("userId"))
			fmt.Fprint(w, `{"discount": 15.0}`)
		},
	})

	c := NewClient(srv.URL, time.Second)
	amount, valid, err := c.ValidatePromo(context.Background(), "SPRING15", "u1")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.InDelta(t, 15.0, amount, 1e-9)
}

func TestValidatePromo_DiscountPercentField(t *testing.T) {
	srv := newGatewayServer(t, map[string]http.HandlerFunc{
		"/api/promos/validate": jsonBody(`{"discountPercent": 20.0}`),
	})

	c := NewClient(srv.URL, time.Second)
	amount, valid, err := c.ValidatePromo(context.Background(), "X", "u1")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.InDelta(t, 20.0, amount, 1e-9)
}

func TestValidatePromo_RejectionIsNotAnError(t *testing.T) {
	srv := newGatewayServer(t, map[string]http.HandlerFunc{
		"/api/promos/validate": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		},
	})

	c := NewClient(srv.URL, time.Second)
	amount, valid, err := c.ValidatePromo(context.Background(), "BOGUS", "u1")
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Zero(t, amount)
}

func TestValidatePromo_EmptyBodyMeansInvalid(t *testing.T) {
	srv := newGatewayServer(t, map[string]http.HandlerFunc{
		"/api/promos/validate": jsonBody(`{}`),
	})

	c := NewClient(srv.URL, time.Second)
	_, valid, err := c.ValidatePromo(context.Background(), "X", "u1")
	require.NoError(t, err)
	assert.False(t, valid)
}
