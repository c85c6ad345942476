package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
)

const (
	minRating = 1
	maxRating = 5
)

type ReviewCreate struct {
	UserName    string
	Rating      int
	Comment     *string
	Brands      []string
	Description *string
}

// ReviewList returns the reviews of a shop, most recent first.
func (s *General) ReviewList(ctx context.Context, shopID uint64) ([]db.Review, error) {
	conn := s.db.WithContext(ctx)
	if _, err := s.findShop(conn, shopID); err != nil {
		return nil, err
	}

	reviews := make([]db.Review, 0)
	res := conn.Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "list reviews")
	}
	return reviews, nil
}

// ReviewCreate appends a review, reviews are never edited afterwards.
func (s *General) ReviewCreate(ctx context.Context, shopID uint64, in ReviewCreate) (*db.Review, error) {
	if in.Rating < minRating || in.Rating > maxRating {
		return nil, apperr.New(apperr.CodeValidation, "rating must be an integer between 1 and 5")
	}
	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		return nil, apperr.New(apperr.CodeValidation, "user_name is required")
	}

	conn := s.db.WithContext(ctx)
	if _, err := s.findShop(conn, shopID); err != nil {
		return nil, err
	}

	var brands db.StringList
	if in.Brands != nil {
		brands = db.StringList(in.Brands)
	}
	model := db.Review{
		ShopID:      shopID,
		UserName:    userName,
		Rating:      in.Rating,
		Comment:     in.Comment,
		Brands:      brands,
		Description: in.Description,
	}
	res := conn.Create(&model)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "create review")
	}
	return &model, nil
}
