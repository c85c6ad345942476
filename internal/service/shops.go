package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
)

var (
	errShopNameRequired    = apperr.New(apperr.CodeValidation, "name is required")
	errShopAddressRequired = apperr.New(apperr.CodeValidation, "address is required")
)

type (
	ShopCreate struct {
		Name        string
		Address     string
		Description *string
		Brands      []string
	}

	// ShopPatch holds a partial update, nil fields are left untouched.
	ShopPatch struct {
		Name        *string
		Address     *string
		Description *string
		Brands      *[]string
	}
)

// ShopList returns every shop ordered by id. A non-empty brand keeps only
// shops whose derived brands contain it, compared case-insensitively.
func (s *General) ShopList(ctx context.Context, brand string) ([]ShopView, error) {
	shops := make([]db.Shop, 0)
	res := s.db.WithContext(ctx).Order("id").Find(&shops)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "list shops")
	}

	views, err := withDerived(s.db.WithContext(ctx), shops)
	if err != nil {
		return nil, err
	}

	brand = strings.TrimSpace(brand)
	if brand == "" {
		return views, nil
	}
	filtered := make([]ShopView, 0, len(views))
	for _, v := range views {
		for _, b := range v.Brands {
			if strings.EqualFold(b, brand) {
				filtered = append(filtered, v)
				break
			}
		}
	}
	return filtered, nil
}

func (s *General) ShopGet(ctx context.Context, id uint64) (*ShopView, error) {
	shop, err := s.findShop(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, shop)
}

// ShopCreate geocodes the address first, nothing is stored when that fails.
func (s *General) ShopCreate(ctx context.Context, in ShopCreate) (*ShopView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errShopNameRequired
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, errShopAddressRequired
	}

	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.Warnw("geocoding failed", "address", address, "error", err)
		return nil, err
	}

	model := db.Shop{
		Name:         name,
		Address:      address,
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		Description:  in.Description,
		ListedBrands: listedBrands(in.Brands),
	}
	res := s.db.WithContext(ctx).Create(&model)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "create shop")
	}

	return s.view(ctx, &model)
}

// ShopUpdate re-geocodes only when the address actually changes.
func (s *General) ShopUpdate(ctx context.Context, id uint64, patch ShopPatch) (*ShopView, error) {
	conn := s.db.WithContext(ctx)
	shop, err := s.findShop(conn, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, errShopNameRequired
		}
		updates["name"] = name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Brands != nil {
		updates["listed_brands"] = listedBrands(*patch.Brands)
	}
	if patch.Address != nil {
		address := strings.TrimSpace(*patch.Address)
		if address == "" {
			return nil, errShopAddressRequired
		}
		if address != shop.Address {
			loc, err := s.geocoder.Geocode(ctx, address)
			if err != nil {
				s.logger.Warnw("geocoding failed", "shop_id", id, "address", address, "error", err)
				return nil, err
			}
			updates["address"] = address
			updates["latitude"] = loc.Latitude
			updates["longitude"] = loc.Longitude
		}
	}

	if len(updates) != 0 {
		res := conn.Model(shop).Updates(updates)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "update shop")
		}
	}

	shop, err = s.findShop(conn, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, shop)
}

// ShopDelete removes the shop together with its reviews and favorites.
func (s *General) ShopDelete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findShop(tx, id); err != nil {
			return err
		}
		if err := tx.Where("shop_id = ?", id).Delete(&db.Review{}).Error; err != nil {
			return errors.Wrap(err, "delete reviews")
		}
		if err := tx.Where("shop_id = ?", id).Delete(&db.FavoriteShop{}).Error; err != nil {
			return errors.Wrap(err, "delete favorites")
		}
		if err := tx.Delete(&db.Shop{}, id).Error; err != nil {
			return errors.Wrap(err, "delete shop")
		}
		return nil
	})
}

func (s *General) findShop(conn *gorm.DB, id uint64) (*db.Shop, error) {
	model := db.Shop{}
	res := conn.First(&model, id)
	if res.Error != nil {
		return nil, notFound(res.Error, "shop not found")
	}
	return &model, nil
}

func (s *General) view(ctx context.Context, shop *db.Shop) (*ShopView, error) {
	views, err := withDerived(s.db.WithContext(ctx), []db.Shop{*shop})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func listedBrands(brands []string) db.StringList {
	if brands == nil {
		return nil
	}
	return db.StringList(MergeBrands(brands))
}
