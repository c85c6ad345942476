package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	statusOK       = "OK"
)

type (
	Location struct {
		Latitude  float64
		Longitude float64
	}

	// Client resolves free-text addresses through the Google Geocoding API.
	Client struct {
		http   *resty.Client
		apiKey string
	}

	Option func(*Client)

	geocodeResponse struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Results      []struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.http.SetBaseURL(strings.TrimRight(trimmed, "/"))
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

// NewClient never fails on a missing key; Geocode reports it per call instead.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(10 * time.Second),
		apiKey: strings.TrimSpace(apiKey),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(cfg.GeocodingAPIKey, WithBaseURL(cfg.GeocodingBaseURL), WithTimeout(cfg.GeocodingTimeout))
}

func (c *Client) Geocode(ctx context.Context, address string) (Location, error) {
	if c == nil || c.apiKey == "" {
		return Location{}, apperr.New(apperr.CodeConfiguration, "geocoding API key is not configured")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return Location{}, apperr.New(apperr.CodeValidation, "address is required")
	}

	out := geocodeResponse{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address": address,
			"key":     c.apiKey,
		}).
		SetResult(&out).
		Get("/geocode/json")
	if err != nil {
		return Location{}, apperr.Wrap(apperr.CodeUpstreamUnavailable, err, "failed to connect to geocoding service")
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return Location{}, apperr.Wrap(apperr.CodeUpstreamUnavailable,
			fmt.Errorf("status %d", resp.StatusCode()), "geocoding service unavailable")
	}

	if out.Status != statusOK || len(out.Results) == 0 {
		status := out.Status
		if status == "" {
			status = "UNKNOWN_ERROR"
		}
		return Location{}, apperr.New(apperr.CodeAddressNotFound, "geocoding failed: "+status)
	}

	loc := out.Results[0].Geometry.Location
	return Location{
		Latitude:  loc.Lat,
		Longitude: loc.Lng,
	}, nil
}
