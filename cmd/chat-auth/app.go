package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-chat-auth"
	"github.com/goliatone/go-chat-auth/activitymap"
	"github.com/goliatone/go-chat-auth/config"
	"github.com/goliatone/go-chat-auth/metrics"
	"github.com/goliatone/go-chat-auth/repository"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// App holds the wired services shared by the commands.
type App struct {
	settings *config.Settings
	logger   *glog.BaseLogger
	db       *bun.DB
	repo     *repository.Manager
	snapshot *auth.Snapshot
	registry *prometheus.Registry
}

func newApp(ctx context.Context) (*App, error) {
	settings, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	return newAppWithSettings(ctx, settings)
}

func newAppWithSettings(ctx context.Context, settings *config.Settings) (*App, error) {
	app := &App{
		settings: settings,
		logger:   newLogger(settings.Verbose),
		registry: prometheus.NewRegistry(),
	}

	snapshot, err := auth.NewSnapshot(settings)
	if err != nil {
		return nil, err
	}
	app.snapshot = snapshot

	db, err := openDB(settings.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.repo = repository.NewManager(db)

	if err := app.repo.Validate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "database unreachable")
	}

	return app, nil
}

// GetLogger returns a named logger.
func (a *App) GetLogger(name string) auth.Logger {
	return a.logger.GetLogger(name)
}

// Auther builds the sign in core wired to the user store, the metrics sink
// and the activity log.
func (a *App) Auther() *auth.Auther {
	sink := auth.MultiSink{
		metrics.NewSink(a.registry),
		activitymap.LogSink(a.GetLogger("activity")),
	}

	return auth.NewAuthenticator(a.repo.Users(), a.snapshot).
		WithLogger(a.GetLogger("auth")).
		WithActivitySink(sink).
		WithDeterministicIDs(a.settings.HashIDs)
}

// Close releases the database handle.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func newLogger(verbose bool) *glog.BaseLogger {
	if verbose {
		return glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithLevel(glog.Trace),
			glog.WithName("chat-auth"),
			glog.WithAddSource(true),
			glog.WithRichErrorHandler(errors.ToSlogAttributes),
		)
	}
	return glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithName("chat-auth"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func openDB(dsn string) (*bun.DB, error) {
	if isPostgres(dsn) {
		pgcfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid postgres dsn")
		}
		return bun.NewDB(stdlib.OpenDB(*pgcfg), pgdialect.New()), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows a single writer
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
