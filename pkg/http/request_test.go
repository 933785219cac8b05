package http_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	trusted := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8", "::1/128"}}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		config     *pkghttp.IPConfig
		want       string
	}{
		{
			name:       "direct client ignores spoofed headers",
			remoteAddr: "203.0.113.10:54321",
			xff:        "1.2.3.4",
			xri:        "5.6.7.8",
			config:     trusted,
			want:       "203.0.113.10",
		},
		{
			name:       "trusted proxy forwards first valid hop",
			remoteAddr: "10.0.0.5:443",
			xff:        "garbage, 203.0.113.42, 10.0.0.5",
			config:     trusted,
			want:       "203.0.113.42",
		},
		{
			name:       "trusted proxy falls back to X-Real-IP",
			remoteAddr: "10.1.2.3:443",
			xri:        "198.51.100.7",
			config:     trusted,
			want:       "198.51.100.7",
		},
		{
			name:       "ipv6 trusted proxy",
			remoteAddr: "[::1]:8080",
			xff:        "2001:db8::1",
			config:     trusted,
			want:       "2001:db8::1",
		},
		{
			name:       "nil config only trusts peer",
			remoteAddr: "10.0.0.5:443",
			xff:        "203.0.113.42",
			config:     nil,
			want:       "10.0.0.5",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.1",
			config:     trusted,
			want:       "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, pkghttp.ExtractClientIP(req, tt.config))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"focus"}`))
	require.NoError(t, pkghttp.DecodeJSON(req, &body))
	assert.Equal(t, "focus", body.Name)

	req = httptest.NewRequest("POST", "/", strings.NewReader(""))
	err := pkghttp.DecodeJSON(req, &body)
	assert.True(t, errors.Is(err, io.EOF))

	req = httptest.NewRequest("POST", "/", strings.NewReader("{not json"))
	err = pkghttp.DecodeJSON(req, &body)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}
