package service

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
)

var ErrAlreadyFavorite = apperr.New(apperr.CodeConflict, "shop is already in favorites")

// FavoriteList returns the user's favorite shops in the order they were added.
func (s *General) FavoriteList(ctx context.Context, user *db.User) ([]ShopView, error) {
	shops := make([]db.Shop, 0)
	res := s.db.WithContext(ctx).
		Joins("JOIN favorite_shops fs ON fs.shop_id = shops.id").
		Where("fs.user_id = ?", user.ID).
		Order("fs.id").
		Find(&shops)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "list favorite shops")
	}
	return withDerived(s.db.WithContext(ctx), shops)
}

// FavoriteAdd fails with ErrAlreadyFavorite when the pair exists.
func (s *General) FavoriteAdd(ctx context.Context, user *db.User, shopID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findShop(tx, shopID); err != nil {
			return err
		}

		var count int64
		res := tx.Model(&db.FavoriteShop{}).
			Where("user_id = ? AND shop_id = ?", user.ID, shopID).
			Count(&count)
		if res.Error != nil {
			return errors.Wrap(res.Error, "count favorites")
		}
		if count > 0 {
			return ErrAlreadyFavorite
		}

		res = tx.Create(&db.FavoriteShop{
			UserID: user.ID,
			ShopID: shopID,
		})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return ErrAlreadyFavorite
			}
			return errors.Wrap(res.Error, "create favorite")
		}
		return nil
	})
}

// FavoriteRemove succeeds whether or not the pair existed.
func (s *General) FavoriteRemove(ctx context.Context, user *db.User, shopID uint64) error {
	conn := s.db.WithContext(ctx)
	if _, err := s.findShop(conn, shopID); err != nil {
		return err
	}
	res := conn.Where("user_id = ? AND shop_id = ?", user.ID, shopID).Delete(&db.FavoriteShop{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete favorite")
	}
	return nil
}
