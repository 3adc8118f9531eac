package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-chat-auth"
	"github.com/goliatone/go-chat-auth/config"
	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	settings, err := config.FromEnvironment(map[string]string{
		"AUTH_SECRET":          "0123456789abcdef0123456789abcdef",
		"AUTH_BCRYPT_COST":     "4",
		"GOOGLE_CLIENT_ID":     "client-id",
		"GOOGLE_CLIENT_SECRET": "client-secret",
		"DATABASE_DSN":         ":memory:",
	})
	require.NoError(t, err)
	return settings
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := newAppWithSettings(context.Background(), testSettings(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	require.NoError(t, app.repo.CreateSchema(context.Background()))
	return app
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://u:p@localhost:5432/chat"))
	assert.True(t, isPostgres("postgresql://localhost/chat"))
	assert.False(t, isPostgres("file:chat.db?cache=shared"))
	assert.False(t, isPostgres(":memory:"))
}

func TestReadPassword(t *testing.T) {
	pw, err := readPassword(strings.NewReader("s3cret\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	pw, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)

	pw, err = readPassword(strings.NewReader("windows\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "windows", pw)

	_, err = readPassword(strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestRegisterThenSignIn(t *testing.T) {
	app := newTestApp(t)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetIn(strings.NewReader("hunter22\n"))
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, runRegister(cmd, app, "Alice@Example.com"))
	assert.Contains(t, out.String(), "registered alice@example.com")

	cmd.SetIn(strings.NewReader("other\n"))
	err := runRegister(cmd, app, "alice@example.com")
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, auth.TextCodeEmailTaken, rich.TextCode)

	res, err := app.Auther().SignIn(context.Background(), auth.PasswordAttempt{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.Session.User.Email)
	assert.Equal(t, auth.AccountTypeRegular, res.Session.User.Type)
}

func TestRootCommandLayout(t *testing.T) {
	root := rootCmd()

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "register"}, names)
}
