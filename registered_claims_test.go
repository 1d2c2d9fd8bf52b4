package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestValidateRegisteredClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		claims jwt.MapClaims
		cfg    Config
		want   map[string]string
	}{
		{
			name:   "should pass when nothing is configured",
			claims: jwt.MapClaims{"exp": "garbage"},
			cfg:    Config{},
		},
		{
			name:   "should pass a future expiration",
			claims: jwt.MapClaims{"exp": float64(now.Add(time.Hour).Unix())},
			cfg:    Config{ClaimsToVerify: []string{"exp"}},
		},
		{
			name:   "should fail an expired token",
			claims: jwt.MapClaims{"exp": float64(now.Add(-time.Minute).Unix())},
			cfg:    Config{ClaimsToVerify: []string{"exp"}},
			want:   map[string]string{"exp": "token expired"},
		},
		{
			name:   "should fail when exp equals now exactly",
			claims: jwt.MapClaims{"exp": float64(now.Unix())},
			cfg:    Config{ClaimsToVerify: []string{"exp"}},
			want:   map[string]string{"exp": "token expired"},
		},
		{
			name:   "should fail a missing configured exp",
			claims: jwt.MapClaims{},
			cfg:    Config{ClaimsToVerify: []string{"exp"}},
			want:   map[string]string{"exp": "must be a number"},
		},
		{
			name:   "should fail a non-numeric exp",
			claims: jwt.MapClaims{"exp": "tomorrow"},
			cfg:    Config{ClaimsToVerify: []string{"exp"}},
			want:   map[string]string{"exp": "must be a number"},
		},
		{
			name:   "should cap expiration at the configured maximum",
			claims: jwt.MapClaims{"exp": float64(now.Add(2 * time.Hour).Unix())},
			cfg: Config{
				ClaimsToVerify:    []string{"exp"},
				MaximumExpiration: 3600,
			},
			want: map[string]string{"exp": "exceeds maximum allowed expiration"},
		},
		{
			name:   "should accept expiration inside the configured maximum",
			claims: jwt.MapClaims{"exp": float64(now.Add(30 * time.Minute).Unix())},
			cfg: Config{
				ClaimsToVerify:    []string{"exp"},
				MaximumExpiration: 3600,
			},
		},
		{
			name:   "should ignore the maximum when exp is not verified",
			claims: jwt.MapClaims{"exp": float64(now.Add(48 * time.Hour).Unix())},
			cfg:    Config{MaximumExpiration: 60},
		},
		{
			name:   "should pass a satisfied nbf",
			claims: jwt.MapClaims{"nbf": float64(now.Add(-time.Minute).Unix())},
			cfg:    Config{ClaimsToVerify: []string{"nbf"}},
		},
		{
			name:   "should fail a future nbf",
			claims: jwt.MapClaims{"nbf": float64(now.Add(time.Minute).Unix())},
			cfg:    Config{ClaimsToVerify: []string{"nbf"}},
			want:   map[string]string{"nbf": "token not valid yet"},
		},
		{
			name:   "should fail a missing configured nbf",
			claims: jwt.MapClaims{},
			cfg:    Config{ClaimsToVerify: []string{"nbf"}},
			want:   map[string]string{"nbf": "must be a number"},
		},
		{
			name: "should accumulate every failing claim",
			claims: jwt.MapClaims{
				"exp": float64(now.Add(-time.Minute).Unix()),
				"nbf": float64(now.Add(time.Minute).Unix()),
			},
			cfg: Config{ClaimsToVerify: []string{"exp", "nbf"}},
			want: map[string]string{
				"exp": "token expired",
				"nbf": "token not valid yet",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateRegisteredClaims(tt.claims, tt.cfg, now)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
