package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-corpus/internal/config"
	"github.com/thywilljoshua/pdf-corpus/internal/hashcache"
	"github.com/thywilljoshua/pdf-corpus/internal/logger"
	"github.com/thywilljoshua/pdf-corpus/internal/metrics"
	"github.com/thywilljoshua/pdf-corpus/internal/objstore"
	"github.com/thywilljoshua/pdf-corpus/internal/pipeline"
	"github.com/thywilljoshua/pdf-corpus/internal/store"
)

// app carries what every subcommand needs.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func newApp(verbose bool) (*app, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, verbose)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) openStore(ctx context.Context) (*store.Postgres, error) {
	if err := a.cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	return store.Open(ctx, a.cfg.DatabaseURL)
}

func (a *app) objects(ctx context.Context) (objstore.Store, error) {
	if err := a.cfg.RequireStorage(); err != nil {
		return nil, err
	}
	if a.cfg.StorageBackend == config.StorageLocal {
		return objstore.Dir{Root: a.cfg.LocalStorageDir}, nil
	}
	return objstore.NewS3(ctx, objstore.S3Options{
		Endpoint:  a.cfg.S3Endpoint,
		AccessKey: a.cfg.S3AccessKey,
		SecretKey: a.cfg.S3SecretKey,
		Bucket:    a.cfg.S3Bucket,
		UseSSL:    a.cfg.S3UseSSL,
	})
}

// hashCache returns nil when Redis is not configured or unreachable.
func (a *app) hashCache(ctx context.Context) (pipeline.HashCache, func()) {
	if a.cfg.RedisAddr == "" {
		return nil, func() {}
	}
	c := hashcache.New(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err := c.Ping(ctx); err != nil {
		a.log.Warn("hash cache disabled", zap.Error(err))
		c.Close()
		return nil, func() {}
	}
	return c, func() { c.Close() }
}

func (a *app) push(ctx context.Context, run *metrics.Run) {
	if err := run.Push(ctx, a.cfg.PushgatewayURL); err != nil {
		a.log.Warn("push metrics", zap.Error(err))
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
