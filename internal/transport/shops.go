package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/service"
	"github.com/Rogue-Bear-Innovations/shopmap-back/pkg/models"
)

func (s *HTTPServer) ShopList(c echo.Context) error {
	views, err := s.svc.ShopList(c.Request().Context(), c.QueryParam("brand"))
	if err != nil {
		return err
	}

	resp := make([]models.ShopResp, len(views))
	for i := range views {
		resp[i] = shopResp(&views[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) ShopGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	view, err := s.svc.ShopGet(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shopResp(view))
}

func (s *HTTPServer) ShopCreate(c echo.Context) error {
	req := models.ShopCreateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := s.svc.ShopCreate(c.Request().Context(), service.ShopCreate{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Brands:      req.Brands,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, shopResp(view))
}

// ShopUpdate serves both PUT and PATCH, only the fields present in the body change.
func (s *HTTPServer) ShopUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := models.ShopUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := s.svc.ShopUpdate(c.Request().Context(), id, service.ShopPatch{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Brands:      req.Brands,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shopResp(view))
}

func (s *HTTPServer) ShopDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.svc.ShopDelete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func shopResp(view *service.ShopView) models.ShopResp {
	return models.ShopResp{
		ID:            view.ID,
		Name:          view.Name,
		Address:       view.Address,
		Latitude:      view.Latitude,
		Longitude:     view.Longitude,
		Description:   view.Description,
		ListedBrands:  nonNil(view.ListedBrands),
		AverageRating: view.AverageRating,
		Brands:        nonNil(view.Brands),
	}
}

func nonNil[T ~[]string](list T) []string {
	if list == nil {
		return []string{}
	}
	return []string(list)
}
