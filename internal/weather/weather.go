// Package weather fetches METAR observations from the AVWX REST API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/resilience"
)

const (
	DefaultBaseURL = "https://avwx.rest"
	// NotAvailable renders a missing observation field.
	NotAvailable = "N/A"
)

type valueField struct {
	Value any `json:"value"`
}

type timeField struct {
	DT string `json:"dt"`
}

// Observation is the subset of an AVWX METAR report that flinsight uses.
type Observation struct {
	Station       string      `json:"station"`
	Raw           string      `json:"raw"`
	Time          *timeField  `json:"time"`
	Temperature   *valueField `json:"temperature"`
	WindSpeed     *valueField `json:"wind_speed"`
	WindDirection *valueField `json:"wind_direction"`
	Visibility    *valueField `json:"visibility"`
}

// Client talks to AVWX.
type Client struct {
	baseURL    string
	token      string
	policy     resilience.Policy
	httpClient *http.Client
}

// NewClient creates an AVWX client. baseURL defaults to https://avwx.rest.
func NewClient(baseURL, token string, policy resilience.Policy) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		policy:     policy,
		httpClient: &http.Client{},
	}
}

// Metar fetches the latest observation for an ICAO station code.
func (c *Client) Metar(ctx context.Context, station string) (*Observation, error) {
	station = strings.ToUpper(strings.TrimSpace(station))
	if station == "" {
		return nil, fmt.Errorf("station code is required")
	}

	endpoint := fmt.Sprintf("%s/api/metar/%s?token=%s", c.baseURL, url.PathEscape(station), url.QueryEscape(c.token))

	var obs Observation
	err := resilience.Do(ctx, c.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create avwx request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "flinsight")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read avwx response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return &resilience.StatusError{Service: "avwx", StatusCode: resp.StatusCode, Body: string(body)}
		}
		if err := json.Unmarshal(body, &obs); err != nil {
			return fmt.Errorf("decode avwx response for %s: %w", station, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &obs, nil
}

// Report fetches and formats the observation at station. Failures are
// logged and rendered with every field N/A.
func (c *Client) Report(ctx context.Context, station string) string {
	obs, err := c.Metar(ctx, station)
	if err != nil {
		logger.Component("weather").Warn().Err(err).Str("station", station).Msg("metar lookup failed")
	}
	return Format(obs)
}

// Format renders an observation as one line. A nil observation or a missing
// field renders as N/A.
func Format(obs *Observation) string {
	var t, temp, speed, dir, vis = NotAvailable, NotAvailable, NotAvailable, NotAvailable, NotAvailable
	if obs != nil {
		if obs.Time != nil && obs.Time.DT != "" {
			t = obs.Time.DT
		}
		temp = value(obs.Temperature)
		speed = value(obs.WindSpeed)
		dir = value(obs.WindDirection)
		vis = value(obs.Visibility)
	}
	return fmt.Sprintf("observation time: %s, temperature: %s C, wind speed: %s knots, wind direction: %s, visibility: %s",
		t, temp, speed, dir, vis)
}

func value(f *valueField) string {
	if f == nil || f.Value == nil {
		return NotAvailable
	}
	return fmt.Sprint(f.Value)
}
