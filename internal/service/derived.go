package service

import (
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
)

// reviewBatchSize caps the shop ids in one aggregate query,
// well under the 65535 parameters postgres accepts.
var reviewBatchSize = 1000

type (
	// ShopView is a shop together with the attributes derived from its reviews.
	ShopView struct {
		db.Shop
		AverageRating float64
		Brands        []string
	}

	reviewAggregateRow struct {
		ShopID uint64
		Rating int
		Brands db.StringList
	}
)

// AverageRating is the mean rating rounded to one decimal place, 0 without ratings.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := int64(0)
	for _, r := range ratings {
		sum += int64(r)
	}
	avg, _ := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(ratings)))).
		Round(1).
		Float64()
	return avg
}

// MergeBrands returns the union of the lists in first-seen order.
func MergeBrands(lists ...[]string) []string {
	seen := make(map[string]struct{})
	merged := make([]string, 0)
	for _, list := range lists {
		for _, brand := range list {
			if brand == "" {
				continue
			}
			if _, ok := seen[brand]; ok {
				continue
			}
			seen[brand] = struct{}{}
			merged = append(merged, brand)
		}
	}
	return merged
}

// withDerived loads review aggregates for the shops, reviewBatchSize ids per query.
func withDerived(conn *gorm.DB, shops []db.Shop) ([]ShopView, error) {
	views := make([]ShopView, len(shops))
	if len(shops) == 0 {
		return views, nil
	}

	ids := make([]uint64, len(shops))
	for i := range shops {
		ids[i] = shops[i].ID
	}

	rows := make([]reviewAggregateRow, 0)
	for start := 0; start < len(ids); start += reviewBatchSize {
		end := start + reviewBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		sql, args, err := squirrel.
			Select("r.shop_id", "r.rating", "r.brands").From("reviews r").
			Where(squirrel.Eq{"r.shop_id": ids[start:end]}).
			OrderBy("r.id").
			ToSql()
		if err != nil {
			return nil, errors.Wrap(err, "build sql")
		}

		batch := make([]reviewAggregateRow, 0)
		res := conn.Raw(sql, args...).Scan(&batch)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "scan review aggregates")
		}
		rows = append(rows, batch...)
	}

	ratings := make(map[uint64][]int)
	brands := make(map[uint64][][]string)
	for _, row := range rows {
		ratings[row.ShopID] = append(ratings[row.ShopID], row.Rating)
		if row.Brands != nil {
			brands[row.ShopID] = append(brands[row.ShopID], row.Brands)
		}
	}

	for i := range shops {
		views[i] = ShopView{
			Shop:          shops[i],
			AverageRating: AverageRating(ratings[shops[i].ID]),
			Brands:        MergeBrands(brands[shops[i].ID]...),
		}
	}
	return views, nil
}
