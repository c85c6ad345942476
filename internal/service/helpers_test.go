package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/geocode"
)

type fakeGeocoder struct {
	mu    sync.Mutex
	calls []string
	loc   geocode.Location
	err   error
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (geocode.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, address)
	if f.err != nil {
		return geocode.Location{}, f.err
	}
	return f.loc, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	conn, err := db.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return conn
}

func newTestService(t *testing.T) (*General, *fakeGeocoder) {
	t.Helper()
	geo := &fakeGeocoder{loc: geocode.Location{Latitude: 35.6812, Longitude: 139.7671}}
	s := NewGeneral(newTestDB(t), geo, &config.Config{TokenTTL: 24 * time.Hour}, zap.NewNop().Sugar())
	s.bcryptCost = bcrypt.MinCost
	return s, geo
}

func mustCreateShop(t *testing.T, s *General, name string) *ShopView {
	t.Helper()
	shop, err := s.ShopCreate(context.Background(), ShopCreate{
		Name:    name,
		Address: name + " street 1",
	})
	require.NoError(t, err)
	return shop
}

func mustReview(t *testing.T, s *General, shopID uint64, rating int, brands ...string) *db.Review {
	t.Helper()
	in := ReviewCreate{UserName: "reviewer", Rating: rating}
	if len(brands) > 0 {
		in.Brands = brands
	}
	review, err := s.ReviewCreate(context.Background(), shopID, in)
	require.NoError(t, err)
	return review
}

func mustRegister(t *testing.T, s *General, email string) *AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), "Taro", email, "password123")
	require.NoError(t, err)
	return res
}

func strPtr(v string) *string {
	return &v
}
