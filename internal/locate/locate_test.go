package locate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestStatic(t *testing.T) {
	s, err := NewStatic(-12.97, -38.5)
	require.NoError(t, err)
	p, err := s.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Position{Lat: -12.97, Lng: -38.5, Source: "static"}, p)

	_, err = NewStatic(91, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Locate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIPLocator(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    Position
		wantErr error
	}{
		{"ip-api", 200, `{"status":"success","lat":14.69,"lon":-17.44}`, Position{14.69, -17.44, "ip"}, nil},
		{"ipapi.co", 200, `{"latitude":-18.14,"longitude":178.44}`, Position{-18.14, 178.44, "ip"}, nil},
		{"failed lookup", 200, `{"status":"fail","message":"private range"}`, Position{}, ErrUnavailable},
		{"error flag", 200, `{"error":true,"reason":"RateLimited"}`, Position{}, ErrUnavailable},
		{"no coordinate", 200, `{"status":"success"}`, Position{}, ErrUnavailable},
		{"bad json", 200, `<html>`, Position{}, ErrUnavailable},
		{"server error", 503, `{}`, Position{}, ErrUnavailable},
		{"out of range", 200, `{"lat":100,"lon":0}`, Position{}, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewIPLocator(serve(t, tt.status, tt.body), time.Second)
			got, err := l.Locate(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIPLocatorTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	_, err := NewIPLocator(srv.URL, 50*time.Millisecond).Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNew(t *testing.T) {
	l, err := New(Options{})
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = New(Options{Provider: "Static", Lat: 1, Lng: 2})
	require.NoError(t, err)
	assert.IsType(t, &Static{}, l)

	l, err = New(Options{Provider: "ip"})
	require.NoError(t, err)
	ip, ok := l.(*IPLocator)
	require.True(t, ok)
	assert.Equal(t, DefaultEndpoint, ip.endpoint)
	assert.Equal(t, DefaultTimeout, ip.httpClient.Timeout)

	l, err = New(Options{Provider: "static", Lat: 200})
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Nil(t, l)

	_, err = New(Options{Provider: "gps"})
	assert.Error(t, err)
}
