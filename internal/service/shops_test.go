package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/geocode"
)

func TestShopCreate(t *testing.T) {
	s, geo := newTestService(t)
	ctx := context.Background()

	shop, err := s.ShopCreate(ctx, ShopCreate{
		Name:        "Select Shop",
		Address:     "Jingumae 4-26",
		Description: strPtr("menswear"),
		Brands:      []string{"COMOLI", "COMOLI", "AURALEE"},
	})
	require.NoError(t, err)

	assert.NotZero(t, shop.ID)
	assert.Equal(t, 35.6812, shop.Latitude)
	assert.Equal(t, 139.7671, shop.Longitude)
	assert.Equal(t, db.StringList{"COMOLI", "AURALEE"}, shop.ListedBrands)
	assert.Equal(t, []string{"Jingumae 4-26"}, geo.calls)
	assert.Equal(t, 0.0, shop.AverageRating)
}

func TestShopCreateGeocodingFailureStoresNothing(t *testing.T) {
	s, geo := newTestService(t)
	ctx := context.Background()

	geo.err = apperr.New(apperr.CodeAddressNotFound, "geocoding failed: ZERO_RESULTS")
	_, err := s.ShopCreate(ctx, ShopCreate{Name: "Nowhere", Address: "???"})
	assert.Equal(t, apperr.CodeAddressNotFound, apperr.CodeOf(err))

	var count int64
	require.NoError(t, s.db.Model(&db.Shop{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestShopBlankNameOrAddressRejected(t *testing.T) {
	s, geo := newTestService(t)
	ctx := context.Background()

	_, err := s.ShopCreate(ctx, ShopCreate{Name: "   ", Address: "Sapporo"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	_, err = s.ShopCreate(ctx, ShopCreate{Name: "Shop", Address: " \t"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Empty(t, geo.calls)

	var count int64
	require.NoError(t, s.db.Model(&db.Shop{}).Count(&count).Error)
	assert.Zero(t, count)

	shop := mustCreateShop(t, s, "Named")
	_, err = s.ShopUpdate(ctx, shop.ID, ShopPatch{Name: strPtr("  ")})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	_, err = s.ShopUpdate(ctx, shop.ID, ShopPatch{Address: strPtr("  ")})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	got, err := s.ShopGet(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, "Named", got.Name)
	assert.Equal(t, shop.Address, got.Address)
}

func TestShopUpdate(t *testing.T) {
	s, geo := newTestService(t)
	ctx := context.Background()

	shop := mustCreateShop(t, s, "Before")
	geo.calls = nil

	t.Run("name only keeps coordinates", func(t *testing.T) {
		got, err := s.ShopUpdate(ctx, shop.ID, ShopPatch{Name: strPtr("After")})
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, shop.Address, got.Address)
		assert.Empty(t, geo.calls)
	})

	t.Run("same address is not geocoded", func(t *testing.T) {
		_, err := s.ShopUpdate(ctx, shop.ID, ShopPatch{Address: strPtr(shop.Address)})
		require.NoError(t, err)
		assert.Empty(t, geo.calls)
	})

	t.Run("new address is geocoded", func(t *testing.T) {
		geo.loc = geocode.Location{Latitude: 34.7025, Longitude: 135.4959}
		got, err := s.ShopUpdate(ctx, shop.ID, ShopPatch{Address: strPtr("Umeda 1-1")})
		require.NoError(t, err)
		assert.Equal(t, "Umeda 1-1", got.Address)
		assert.Equal(t, 34.7025, got.Latitude)
		assert.Equal(t, 135.4959, got.Longitude)
		assert.Equal(t, []string{"Umeda 1-1"}, geo.calls)
	})

	t.Run("geocoding failure aborts update", func(t *testing.T) {
		geo.err = apperr.New(apperr.CodeAddressNotFound, "geocoding failed: ZERO_RESULTS")
		defer func() { geo.err = nil }()

		_, err := s.ShopUpdate(ctx, shop.ID, ShopPatch{Name: strPtr("Ignored"), Address: strPtr("???")})
		assert.Equal(t, apperr.CodeAddressNotFound, apperr.CodeOf(err))

		got, err := s.ShopGet(ctx, shop.ID)
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, "Umeda 1-1", got.Address)
	})

	t.Run("unknown shop", func(t *testing.T) {
		_, err := s.ShopUpdate(ctx, 9999, ShopPatch{Name: strPtr("x")})
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	})
}

func TestShopDeleteCascades(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	shop := mustCreateShop(t, s, "Gone")
	mustReview(t, s, shop.ID, 3)
	auth := mustRegister(t, s, "fav@example.com")
	require.NoError(t, s.FavoriteAdd(ctx, &auth.User, shop.ID))

	require.NoError(t, s.ShopDelete(ctx, shop.ID))

	_, err := s.ShopGet(ctx, shop.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	var reviews, favorites int64
	require.NoError(t, s.db.Model(&db.Review{}).Count(&reviews).Error)
	require.NoError(t, s.db.Model(&db.FavoriteShop{}).Count(&favorites).Error)
	assert.Zero(t, reviews)
	assert.Zero(t, favorites)

	err = s.ShopDelete(ctx, shop.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestShopListBrandFilter(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreateShop(t, s, "A")
	b := mustCreateShop(t, s, "B")
	mustCreateShop(t, s, "C")
	mustReview(t, s, a.ID, 4, "COMOLI")
	mustReview(t, s, b.ID, 5, "AURALEE", "comoli")
	mustReview(t, s, b.ID, 2, "Graphpaper")

	got, err := s.ShopList(ctx, "Comoli")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	got, err = s.ShopList(ctx, "Graphpaper")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3.5, got[0].AverageRating)

	got, err = s.ShopList(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}
