package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-chat-auth"
	"github.com/goliatone/go-chat-auth/config"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnvironment() map[string]string {
	return map[string]string{
		"AUTH_SECRET":          "0123456789abcdef0123456789abcdef",
		"GOOGLE_CLIENT_ID":     "client-id",
		"GOOGLE_CLIENT_SECRET": "client-secret",
	}
}

func TestFromEnvironmentDefaults(t *testing.T) {
	s, err := config.FromEnvironment(validEnvironment())
	require.NoError(t, err)

	assert.Equal(t, 720*time.Hour, s.GetTokenExpiration())
	assert.Equal(t, "chat-auth", s.GetIssuer())
	assert.Equal(t, 10, s.GetBcryptCost())
	assert.Equal(t, "chat_session", s.CookieName)
	assert.True(t, s.CookieSecure)
	assert.Equal(t, ":3000", s.HTTPAddr)
	assert.Equal(t, []string{
		"openid",
		"email",
		"profile",
		"https://www.googleapis.com/auth/meetings.space.created",
		"https://www.googleapis.com/auth/drive.meet.readonly",
		"https://www.googleapis.com/auth/calendar.app.created",
	}, s.GoogleScopes)
	assert.Empty(t, s.GetAudience())
}

func TestFromEnvironmentOverrides(t *testing.T) {
	environ := validEnvironment()
	environ["AUTH_TOKEN_TTL"] = "2h"
	environ["AUTH_AUDIENCE"] = "chat,api"
	environ["GOOGLE_SCOPES"] = "openid email"
	environ["AUTH_BCRYPT_COST"] = "12"

	s, err := config.FromEnvironment(environ)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, s.TokenTTL)
	assert.Equal(t, []string{"chat", "api"}, s.GetAudience())
	assert.Equal(t, []string{"openid", "email"}, s.GoogleScopes)
	assert.Equal(t, 12, s.BcryptCost)
}

func TestFromEnvironmentFailsFast(t *testing.T) {
	for _, missing := range []string{"AUTH_SECRET", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET"} {
		t.Run(missing, func(t *testing.T) {
			environ := validEnvironment()
			delete(environ, missing)

			s, err := config.FromEnvironment(environ)
			assert.Nil(t, s)
			require.Error(t, err)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, auth.TextCodeInvalidConfig, richErr.TextCode)
		})
	}
}

func TestValidateListsFieldsInStableOrder(t *testing.T) {
	environ := validEnvironment()
	delete(environ, "GOOGLE_CLIENT_SECRET")
	delete(environ, "AUTH_SECRET")
	delete(environ, "GOOGLE_CLIENT_ID")

	for i := 0; i < 20; i++ {
		_, err := config.FromEnvironment(environ)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, []string{"AuthSecret", "GoogleClientID", "GoogleClientSecret"}, richErr.Metadata["fields"])
	}
}

func TestFromEnvironmentRejectsShortSecret(t *testing.T) {
	environ := validEnvironment()
	environ["AUTH_SECRET"] = "short"

	_, err := config.FromEnvironment(environ)
	assert.Error(t, err)
}

func TestSettingsBuildSnapshot(t *testing.T) {
	environ := validEnvironment()
	environ["AUTH_BCRYPT_COST"] = "4"

	s, err := config.FromEnvironment(environ)
	require.NoError(t, err)

	snapshot, err := auth.NewSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t, 4, snapshot.BcryptCost())
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env.test")
	content := "AUTH_SECRET=0123456789abcdef0123456789abcdef\n" +
		"GOOGLE_CLIENT_ID=file-client\n" +
		"GOOGLE_CLIENT_SECRET=file-secret\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	for _, k := range []string{"AUTH_SECRET", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET"} {
		prev, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, prev)
			} else {
				_ = os.Unsetenv(k)
			}
		})
	}

	s, err := config.Load(file, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "file-client", s.GoogleClientID)
}
