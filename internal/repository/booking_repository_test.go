package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stayflow/booking-pipeline/internal/domain"
)

func newBookingRepo(t *testing.T) *BookingRepository {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := NewBookingRepository(gdb)
	require.NoError(t, repo.Migrate())
	return repo
}

func TestInsert_AssignsIncreasingIDsAndTimestamp(t *testing.T) {
	repo := newBookingRepo(t)
	ctx := context.Background()

	first := &domain.Booking{UserID: "u1", HotelID: "h1", Price: 100}
	second := &domain.Booking{UserID: "u2", HotelID: "h2", Price: 80}

	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	assert.Positive(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.WithinDuration(t, time.Now().UTC(), first.CreatedAt, 5*time.Second)
}

func TestInsert_KeepsCallerTimestamp(t *testing.T) {
	repo := newBookingRepo(t)
	ctx := context.Background()

	fixed := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	b := &domain.Booking{UserID: "u1", HotelID: "h1", Price: 100, CreatedAt: fixed}
	require.NoError(t, repo.Insert(ctx, b))

	got, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].CreatedAt.Equal(fixed))
}

func TestList_NewestFirstAndFiltered(t *testing.T) {
	repo := newBookingRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, &domain.Booking{UserID: "u1", HotelID: "h1", Price: 100, CreatedAt: base}))
	require.NoError(t, repo.Insert(ctx, &domain.Booking{UserID: "u2", HotelID: "h1", Price: 100, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Insert(ctx, &domain.Booking{UserID: "u1", HotelID: "h2", Price: 80, CreatedAt: base.Add(2 * time.Minute)}))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "h2", all[0].HotelID)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
	assert.True(t, all[1].CreatedAt.After(all[2].CreatedAt))

	mine, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, "u1", b.UserID)
	}
	assert.Equal(t, "h2", mine[0].HotelID)
}
