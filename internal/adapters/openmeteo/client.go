// Package openmeteo fetches current surface wind from the Open-Meteo
// forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/fasthttp"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// Station is a fixed point the feed asks about.
type Station struct {
	ID    string
	Coord domain.GeoPoint
}

// Client queries the forecast endpoint.
type Client struct {
	baseURL    string
	http       *fasthttp.Client
	timeout    time.Duration
	maxRetries uint64
}

// New creates a client for baseURL, e.g. https://api.open-meteo.com/v1/forecast.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http: &fasthttp.Client{
			Name:         "flightpath-windfeed",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		timeout:    timeout,
		maxRetries: 3,
	}
}

type forecastResponse struct {
	Current struct {
		Time          string  `json:"time"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindDirection float64 `json:"wind_direction_10m"`
	} `json:"current"`
	CurrentUnits struct {
		WindSpeed string `json:"wind_speed_10m"`
	} `json:"current_units"`
	Reason string `json:"reason"`
}

// Current returns the latest wind observation at the station. Server errors
// and transport failures are retried with exponential backoff.
func (c *Client) Current(ctx context.Context, st Station) (domain.WeatherSample, error) {
	var body []byte
	op := func() error {
		b, status, err := c.get(ctx, c.forecastURL(st.Coord))
		if err != nil {
			return err
		}
		if status >= 500 || status == fasthttp.StatusTooManyRequests {
			return fmt.Errorf("HTTP %d", status)
		}
		if status != fasthttp.StatusOK {
			return backoff.Permanent(fmt.Errorf("HTTP %d: %s", status, errorReason(b)))
		}
		body = b
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return domain.WeatherSample{}, fmt.Errorf("station %s: %w", st.ID, err)
	}
	return parseForecast(st, body)
}

func (c *Client) forecastURL(p domain.GeoPoint) string {
	q := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(q)
	q.Set("latitude", strconv.FormatFloat(p.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(p.Lon, 'f', 4, 64))
	q.Set("current", "wind_speed_10m,wind_direction_10m")
	q.Set("wind_speed_unit", "kmh")
	q.Set("timezone", "GMT")
	return c.baseURL + "?" + q.String()
}

func (c *Client) get(ctx context.Context, uri string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", uri, err)
	}

	// The body is owned by resp, which is released on return.
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

func parseForecast(st Station, body []byte) (domain.WeatherSample, error) {
	var fr forecastResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return domain.WeatherSample{}, fmt.Errorf("station %s: decode forecast: %w", st.ID, err)
	}
	if fr.CurrentUnits.WindSpeed != "" && fr.CurrentUnits.WindSpeed != "km/h" {
		return domain.WeatherSample{}, fmt.Errorf("station %s: unexpected wind unit %q", st.ID, fr.CurrentUnits.WindSpeed)
	}

	observed, err := time.Parse("2006-01-02T15:04", fr.Current.Time)
	if err != nil {
		observed = time.Now().UTC().Truncate(time.Minute)
	}

	return domain.WeatherSample{
		Station:       st.ID,
		Coord:         st.Coord,
		WindDirection: NormalizeDirection(fr.Current.WindDirection),
		WindSpeed:     math.Max(0, fr.Current.WindSpeed),
		ObservedAt:    observed.UTC(),
	}, nil
}

// NormalizeDirection folds a direction in degrees into [0, 360).
func NormalizeDirection(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

func errorReason(body []byte) string {
	var fr forecastResponse
	if err := json.Unmarshal(body, &fr); err == nil && fr.Reason != "" {
		return fr.Reason
	}
	return "no reason given"
}
