package transport

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/service"
	"github.com/Rogue-Bear-Innovations/shopmap-back/pkg/models"
)

const (
	headerToken = "X-Token"
	ctxUserKey  = "user"
)

var errTooManyAttempts = apperr.New(apperr.CodeRateLimit, "too many login attempts, try again later")

// AuthMiddleware attaches the caller to the context when a valid token is
// sent. Anonymous requests pass through; RequireUser guards private routes.
func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromRequest(c.Request())
		if token == "" {
			return next(c)
		}

		user, err := s.svc.Authenticate(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return next(c)
			}
			return err
		}

		c.Set(ctxUserKey, user)
		return next(c)
	}
}

func (s *HTTPServer) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := GetUserFromContext(c); err != nil {
			return err
		}
		return next(c)
	}
}

func GetUserFromContext(c echo.Context) (*db.User, error) {
	user, ok := c.Get(ctxUserKey).(*db.User)
	if !ok || user == nil {
		return nil, service.ErrUnauthenticated
	}
	return user, nil
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get(echo.HeaderAuthorization); auth != "" {
		scheme, value, found := strings.Cut(auth, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
	}
	return strings.TrimSpace(r.Header.Get(headerToken))
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := models.LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	allowed, err := s.limiter.Allow(c.Request().Context(), c.RealIP(), req.Email)
	if err != nil {
		s.logger.Warnw("login rate limiter unavailable", "error", err)
	} else if !allowed {
		return errTooManyAttempts
	}

	result, err := s.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResp(result))
}

func (s *HTTPServer) Register(c echo.Context) error {
	req := models.RegisterReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := s.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResp(result))
}

func (s *HTTPServer) Logout(c echo.Context) error {
	user, _ := GetUserFromContext(c)
	if err := s.svc.Logout(c.Request().Context(), user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.MessageResp{Message: "logged out"})
}

func authResp(result *service.AuthResult) models.AuthResp {
	return models.AuthResp{
		Token:     result.Token,
		User:      userResp(&result.User),
		ExpiresAt: result.ExpiresAt,
	}
}

func userResp(user *db.User) models.UserResp {
	return models.UserResp{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
