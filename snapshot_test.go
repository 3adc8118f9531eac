package auth_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-chat-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewSnapshot(t *testing.T) {
	snapshot := newSnapshot(t)

	assert.Equal(t, []byte(testSigningKey), snapshot.SigningKey())
	assert.Equal(t, 24*time.Hour, snapshot.TokenTTL())
	assert.Equal(t, "test-issuer", snapshot.Issuer())
	assert.Equal(t, []string{"test:audience"}, snapshot.Audience())
	assert.Equal(t, bcrypt.MinCost, snapshot.BcryptCost())
	assert.NotEmpty(t, snapshot.DecoyHash())
}

func TestNewSnapshotReturnsCopies(t *testing.T) {
	snapshot := newSnapshot(t)

	key := snapshot.SigningKey()
	key[0] = 'X'
	aud := snapshot.Audience()
	aud[0] = "mutated"

	assert.Equal(t, []byte(testSigningKey), snapshot.SigningKey())
	assert.Equal(t, []string{"test:audience"}, snapshot.Audience())
}

func TestNewSnapshotDefaultsCost(t *testing.T) {
	cfg := new(MockConfig)
	cfg.On("GetSigningKey").Return(testSigningKey)
	cfg.On("GetTokenExpiration").Return(time.Hour)
	cfg.On("GetIssuer").Return("")
	cfg.On("GetAudience").Return(nil)
	cfg.On("GetBcryptCost").Return(0)

	snapshot, err := auth.NewSnapshot(cfg)
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultBcryptCost, snapshot.BcryptCost())
	assert.Nil(t, snapshot.Audience())
}

func TestNewSnapshotFailsFast(t *testing.T) {
	tests := []struct {
		name string
		key  string
		ttl  time.Duration
		cost int
	}{
		{"missing key", "", time.Hour, bcrypt.MinCost},
		{"short key", "short", time.Hour, bcrypt.MinCost},
		{"missing ttl", testSigningKey, 0, bcrypt.MinCost},
		{"cost too high", testSigningKey, time.Hour, bcrypt.MaxCost + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := new(MockConfig)
			cfg.On("GetSigningKey").Return(tt.key)
			cfg.On("GetTokenExpiration").Return(tt.ttl)
			cfg.On("GetIssuer").Return("")
			cfg.On("GetAudience").Return(nil)
			cfg.On("GetBcryptCost").Return(tt.cost)

			snapshot, err := auth.NewSnapshot(cfg)
			assert.Nil(t, snapshot)
			require.Error(t, err)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, auth.TextCodeInvalidConfig, richErr.TextCode)
		})
	}

	_, err := auth.NewSnapshot(nil)
	assert.ErrorIs(t, err, auth.ErrInvalidConfig)
}
