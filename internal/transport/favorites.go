package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/shopmap-back/pkg/models"
)

func (s *HTTPServer) FavoriteList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	views, err := s.svc.FavoriteList(c.Request().Context(), user)
	if err != nil {
		return err
	}

	resp := make([]models.ShopResp, len(views))
	for i := range views {
		resp[i] = shopResp(&views[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) FavoriteAdd(c echo.Context) error {
	shopID, err := GetAndParseParam(c, "shopId")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.svc.FavoriteAdd(c.Request().Context(), user, shopID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.MessageResp{Message: "shop added to favorites"})
}

func (s *HTTPServer) FavoriteRemove(c echo.Context) error {
	shopID, err := GetAndParseParam(c, "shopId")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.svc.FavoriteRemove(c.Request().Context(), user, shopID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.MessageResp{Message: "shop removed from favorites"})
}
