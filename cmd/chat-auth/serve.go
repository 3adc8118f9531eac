package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/goliatone/go-chat-auth/fiberauth"
	"github.com/goliatone/go-chat-auth/social"
	"github.com/goliatone/go-chat-auth/social/providers/google"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const (
	stateTTL        = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP auth service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if migrate {
				if err := app.repo.CreateSchema(ctx); err != nil {
					return err
				}
			}

			server, cleanup, err := app.HTTPServer()
			if err != nil {
				return err
			}
			defer cleanup()

			return serve(ctx, app, server)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Create the schema before serving")
	return cmd
}

// HTTPServer builds the fiber app with the auth routes and /metrics.
func (a *App) HTTPServer() (*fiber.App, func(), error) {
	logger := a.GetLogger("http")
	auther := a.Auther()

	states, err := social.NewSealedStateCodec(a.snapshot.SigningKey(), stateTTL)
	if err != nil {
		return nil, nil, err
	}

	googleCfg := google.Config{
		ClientID:     a.settings.GoogleClientID,
		ClientSecret: a.settings.GoogleClientSecret,
		CallbackURL:  a.settings.GoogleRedirectURL,
		Scopes:       a.settings.GoogleScopes,
	}

	cleanup := func() {}
	keyfunc, stopKeys, err := google.NewJWKSKeyfunc(a.settings.GoogleJWKSURL)
	if err != nil {
		// userinfo still works without the key set
		logger.Warn("google jwks unavailable, using userinfo", "error", err)
	} else {
		googleCfg.IDTokenKeyfunc = keyfunc
		cleanup = stopKeys
	}

	flow := social.NewAuthenticator(auther, states,
		social.WithProvider(google.New(googleCfg)),
		social.WithLogger(a.GetLogger("social")),
	)

	ctrl := fiberauth.NewController(auther, flow, fiberauth.Config{
		CookieName:   a.settings.CookieName,
		CookieSecure: a.settings.CookieSecure,
	}).WithLogger(logger)

	server := fiber.New(fiber.Config{
		AppName:               "chat-auth",
		DisableStartupMessage: true,
	})

	ctrl.Register(server)
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	server.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return server, cleanup, nil
}

func serve(ctx context.Context, app *App, server *fiber.App) error {
	logger := app.GetLogger("http")
	errCh := make(chan error, 1)

	go func() {
		logger.Info("listening", "addr", app.settings.HTTPAddr)
		errCh <- server.Listen(app.settings.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.ShutdownWithContext(shutdownCtx)
}
