package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/service"
	"github.com/Rogue-Bear-Innovations/shopmap-back/pkg/models"
)

func (s *HTTPServer) ReviewList(c echo.Context) error {
	shopID, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	reviews, err := s.svc.ReviewList(c.Request().Context(), shopID)
	if err != nil {
		return err
	}

	resp := make([]models.ReviewResp, len(reviews))
	for i := range reviews {
		resp[i] = reviewResp(&reviews[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) ReviewCreate(c echo.Context) error {
	shopID, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := models.ReviewCreateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	review, err := s.svc.ReviewCreate(c.Request().Context(), shopID, service.ReviewCreate{
		UserName:    req.UserName,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Brands:      req.Brands,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, reviewResp(review))
}

func reviewResp(review *db.Review) models.ReviewResp {
	return models.ReviewResp{
		ID:          review.ID,
		ShopID:      review.ShopID,
		UserName:    review.UserName,
		Rating:      review.Rating,
		Comment:     review.Comment,
		Brands:      nonNil(review.Brands),
		Description: review.Description,
		CreatedAt:   review.CreatedAt,
		UpdatedAt:   review.UpdatedAt,
	}
}
