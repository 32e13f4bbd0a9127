package identity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "identity.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&APIKey{}, &User{}, &CompanySetting{}))

	require.NoError(t, db.Create(&[]User{
		{ID: "u1", CompanyID: "c-home", StateID: "ACTIVE"},
		{ID: "u2", CompanyID: "c1", StateID: "DELETED"},
	}).Error)
	require.NoError(t, db.Create(&[]APIKey{
		{ID: "k1", Key: "abc123", CompanyID: "c1", UserID: "u1", StateID: "ACTIVE"},
		{ID: "k2", Key: "revoked", CompanyID: "c1", UserID: "u1", StateID: "DELETED"},
		{ID: "k3", Key: "gone-user", CompanyID: "c1", UserID: "u2", StateID: "ACTIVE"},
	}).Error)
	require.NoError(t, db.Create(&CompanySetting{CompanyID: "c1", FiscalYearStartMonth: 2}).Error)
	return db
}

func TestStoreLookupAPIKey(t *testing.T) {
	s := NewStore(openTestDB(t))
	ctx := context.Background()

	id, err := s.LookupAPIKey(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, Identity{CompanyID: "c1", UserID: "u1"}, id)

	for _, key := range []string{"revoked", "gone-user", "missing"} {
		_, err := s.LookupAPIKey(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestStoreFiscalYearStart(t *testing.T) {
	s := NewStore(openTestDB(t))

	m, err := s.FiscalYearStart(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, time.February, m)

	m, err = s.FiscalYearStart(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, time.January, m)
}

type countingLookup struct {
	calls []string
	id    Identity
}

func (c *countingLookup) LookupAPIKey(_ context.Context, key string) (Identity, error) {
	c.calls = append(c.calls, key)
	return c.id, nil
}

func (c *countingLookup) FiscalYearStart(context.Context, string) (time.Month, error) {
	return time.April, nil
}

func TestResolverCachesByOriginalKey(t *testing.T) {
	lookup := &countingLookup{id: Identity{CompanyID: "c1", UserID: "u1"}}
	r := NewResolver(lookup, "suc_api_", 8, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, err := r.Resolve(ctx, "suc_api_abc123")
		require.NoError(t, err)
		assert.Equal(t, "c1", id.CompanyID)
	}
	assert.Equal(t, []string{"abc123"}, lookup.calls)

	_, err := r.Resolve(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123", "abc123"}, lookup.calls, "stripped form is a different cache key")
}

func TestResolverUnavailable(t *testing.T) {
	r := NewResolver(nil, "suc_api_", 0, 0)
	assert.False(t, r.Available())

	_, err := r.Resolve(context.Background(), "suc_api_x")
	assert.ErrorIs(t, err, ErrUnavailable)

	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), r.QuarterEnd(context.Background(), "c1", now))
}

func TestResolverQuarterEndUsesFiscalYear(t *testing.T) {
	r := NewResolver(&countingLookup{}, "", 1, time.Minute)
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), r.QuarterEnd(context.Background(), "c1", now))

	now = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), r.QuarterEnd(context.Background(), "c1", now))
}

func TestQuarterBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		start     time.Month
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"calendar q2", date(2025, 5, 10), time.January, date(2025, 4, 1), date(2025, 6, 30)},
		{"calendar q4", date(2025, 12, 31), time.January, date(2025, 10, 1), date(2025, 12, 31)},
		{"february fiscal wraps year", date(2025, 1, 15), time.February, date(2024, 11, 1), date(2025, 1, 31)},
		{"july fiscal", date(2025, 7, 1), time.July, date(2025, 7, 1), date(2025, 9, 30)},
		{"leap february end", date(2024, 2, 10), time.December, date(2023, 12, 1), date(2024, 2, 29)},
		{"invalid start month", date(2025, 8, 20), 0, date(2025, 7, 1), date(2025, 9, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStart, QuarterStart(tt.now, tt.start))
			assert.Equal(t, tt.wantEnd, QuarterEnd(tt.now, tt.start))
		})
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
