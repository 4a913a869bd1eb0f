// Package locate finds the user's approximate position so the map can be
// centred on it.
package locate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "http://ip-api.com/json/?fields=status,message,lat,lon"
	DefaultTimeout  = 5 * time.Second

	maxBody = 64 << 10
)

var (
	ErrUnavailable = errors.New("locate: position unavailable")
	ErrOutOfRange  = errors.New("locate: coordinate out of range")
)

// Position is a located coordinate and the provider that produced it.
type Position struct {
	Lat    float64
	Lng    float64
	Source string
}

func (p Position) valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Locator resolves the current position. Implementations must honour ctx.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// Static always answers with a configured coordinate.
type Static struct {
	pos Position
}

func NewStatic(lat, lng float64) (*Static, error) {
	p := Position{Lat: lat, Lng: lng, Source: "static"}
	if !p.valid() {
		return nil, fmt.Errorf("%w: %v,%v", ErrOutOfRange, lat, lng)
	}
	return &Static{pos: p}, nil
}

func (s *Static) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return s.pos, nil
}

// IPLocator asks an HTTP geolocation service for the caller's position.
// Both the ip-api.com shape (lat/lon) and the ipapi.co shape
// (latitude/longitude) are understood.
type IPLocator struct {
	endpoint   string
	httpClient *http.Client
}

func NewIPLocator(endpoint string, timeout time.Duration) *IPLocator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &IPLocator{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ipResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

func (c *IPLocator) Locate(ctx context.Context) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Position{}, fmt.Errorf("locate: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Position{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Position{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var r ipResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Position{}, fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}
	if r.Error || (r.Status != "" && !strings.EqualFold(r.Status, "success")) {
		msg := r.Message
		if msg == "" {
			msg = r.Reason
		}
		return Position{}, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}

	lat, lng := r.Lat, r.Lon
	if lat == nil || lng == nil {
		lat, lng = r.Latitude, r.Longitude
	}
	if lat == nil || lng == nil {
		return Position{}, fmt.Errorf("%w: response has no coordinate", ErrUnavailable)
	}
	p := Position{Lat: *lat, Lng: *lng, Source: "ip"}
	if !p.valid() {
		return Position{}, fmt.Errorf("%w: %v,%v", ErrOutOfRange, p.Lat, p.Lng)
	}
	return p, nil
}

// Options selects and configures a Locator.
type Options struct {
	Provider string // "static", "ip" or "none"
	Lat, Lng float64
	Endpoint string
	Timeout  time.Duration
}

// New builds the Locator named by o.Provider. "none" and "" yield nil.
func New(o Options) (Locator, error) {
	switch strings.ToLower(strings.TrimSpace(o.Provider)) {
	case "", "none", "off":
		return nil, nil
	case "static":
		s, err := NewStatic(o.Lat, o.Lng)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "ip":
		return NewIPLocator(o.Endpoint, o.Timeout), nil
	default:
		return nil, fmt.Errorf("locate: unknown provider %q", o.Provider)
	}
}
