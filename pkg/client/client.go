// Package client is a typed HTTP client for the shopmap API.
//
// Authorization is explicit: Login and Register return a Session, and every
// call that needs a user takes that Session as an argument. A Session past its
// expiry is rejected locally with ErrSessionExpired before any request is sent.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/shopmap-back/pkg/models"
)

const defaultTimeout = 15 * time.Second

var (
	ErrSessionExpired = errors.New("session expired, log in again")
	ErrNoSession      = errors.New("no session")
)

type (
	Client struct {
		http *resty.Client
		now  func() time.Time
	}

	Option func(*Client)

	Session struct {
		Token     string
		ExpiresAt time.Time
		User      models.UserResp
	}

	// APIError is a non-2xx answer decoded from the API error body.
	APIError struct {
		Status  int
		Code    string
		Message string
	}
)

func (e *APIError) Error() string {
	return fmt.Sprintf("shopmap api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Valid reports whether the session can still authorize requests at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks liveness; any answer but "pong" is an error.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).SetHeader("Accept", "text/plain").Get("/ping")
	if err != nil {
		return errors.Wrap(err, "GET /ping")
	}
	if body := resp.String(); resp.IsError() || body != "pong" {
		return errors.Errorf("unexpected ping answer: %d %q", resp.StatusCode(), body)
	}
	return nil
}

// WaitReady pings until the API answers or ctx is done.
func (c *Client) WaitReady(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := c.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(err, "api not ready")
		case <-ticker.C:
		}
	}
}

func (c *Client) Register(ctx context.Context, req models.RegisterReq) (*Session, error) {
	resp := models.AuthResp{}
	if err := c.do(ctx, c.http.R().SetBody(req).SetResult(&resp), http.MethodPost, "/auth/register"); err != nil {
		return nil, err
	}
	return newSession(resp), nil
}

func (c *Client) Login(ctx context.Context, req models.LoginReq) (*Session, error) {
	resp := models.AuthResp{}
	if err := c.do(ctx, c.http.R().SetBody(req).SetResult(&resp), http.MethodPost, "/auth/login"); err != nil {
		return nil, err
	}
	return newSession(resp), nil
}

func (c *Client) Logout(ctx context.Context, session *Session) error {
	r, err := c.authorized(session)
	if err != nil {
		return err
	}
	return c.do(ctx, r, http.MethodPost, "/auth/logout")
}

// ListShops returns every shop; a non-empty brand filters by derived brand.
func (c *Client) ListShops(ctx context.Context, brand string) ([]models.ShopResp, error) {
	resp := make([]models.ShopResp, 0)
	r := c.http.R().SetResult(&resp)
	if brand != "" {
		r.SetQueryParam("brand", brand)
	}
	if err := c.do(ctx, r, http.MethodGet, "/shops"); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetShop(ctx context.Context, id uint64) (*models.ShopResp, error) {
	resp := models.ShopResp{}
	if err := c.do(ctx, c.http.R().SetResult(&resp), http.MethodGet, shopPath(id)); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateShop(ctx context.Context, req models.ShopCreateReq) (*models.ShopResp, error) {
	resp := models.ShopResp{}
	if err := c.do(ctx, c.http.R().SetBody(req).SetResult(&resp), http.MethodPost, "/shops"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateShop(ctx context.Context, session *Session, id uint64, req models.ShopUpdateReq) (*models.ShopResp, error) {
	r, err := c.authorized(session)
	if err != nil {
		return nil, err
	}
	resp := models.ShopResp{}
	if err := c.do(ctx, r.SetBody(req).SetResult(&resp), http.MethodPatch, shopPath(id)); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteShop(ctx context.Context, session *Session, id uint64) error {
	r, err := c.authorized(session)
	if err != nil {
		return err
	}
	return c.do(ctx, r, http.MethodDelete, shopPath(id))
}

func (c *Client) ListReviews(ctx context.Context, shopID uint64) ([]models.ReviewResp, error) {
	resp := make([]models.ReviewResp, 0)
	if err := c.do(ctx, c.http.R().SetResult(&resp), http.MethodGet, shopPath(shopID)+"/reviews"); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) CreateReview(ctx context.Context, shopID uint64, req models.ReviewCreateReq) (*models.ReviewResp, error) {
	resp := models.ReviewResp{}
	if err := c.do(ctx, c.http.R().SetBody(req).SetResult(&resp), http.MethodPost, shopPath(shopID)+"/reviews"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListFavorites(ctx context.Context, session *Session) ([]models.ShopResp, error) {
	r, err := c.authorized(session)
	if err != nil {
		return nil, err
	}
	resp := make([]models.ShopResp, 0)
	if err := c.do(ctx, r.SetResult(&resp), http.MethodGet, "/favorite-shops"); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) AddFavorite(ctx context.Context, session *Session, shopID uint64) error {
	r, err := c.authorized(session)
	if err != nil {
		return err
	}
	return c.do(ctx, r, http.MethodPost, favoritePath(shopID))
}

func (c *Client) RemoveFavorite(ctx context.Context, session *Session, shopID uint64) error {
	r, err := c.authorized(session)
	if err != nil {
		return err
	}
	return c.do(ctx, r, http.MethodDelete, favoritePath(shopID))
}

func (c *Client) authorized(session *Session) (*resty.Request, error) {
	if session == nil || session.Token == "" {
		return nil, ErrNoSession
	}
	if !session.Valid(c.now()) {
		return nil, ErrSessionExpired
	}
	return c.http.R().SetAuthToken(session.Token), nil
}

func (c *Client) do(ctx context.Context, r *resty.Request, method, path string) error {
	apiErr := models.ErrorResp{}
	resp, err := r.SetContext(ctx).SetError(&apiErr).Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsError() {
		if apiErr.Code == "" {
			apiErr.Code = "UNKNOWN"
			apiErr.Message = strings.TrimSpace(resp.String())
		}
		return &APIError{
			Status:  resp.StatusCode(),
			Code:    apiErr.Code,
			Message: apiErr.Message,
		}
	}
	return nil
}

func newSession(resp models.AuthResp) *Session {
	return &Session{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		User:      resp.User,
	}
}

func shopPath(id uint64) string {
	return "/shops/" + strconv.FormatUint(id, 10)
}

func favoritePath(shopID uint64) string {
	return "/favorite-shops/" + strconv.FormatUint(shopID, 10)
}
