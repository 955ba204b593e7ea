package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/repairdesk/dashboard-state/internal/api"
	"github.com/repairdesk/dashboard-state/internal/api/accounts"
	"github.com/repairdesk/dashboard-state/internal/api/handler"
	"github.com/repairdesk/dashboard-state/internal/infrastructure/config"
	mongodb "github.com/repairdesk/dashboard-state/internal/infrastructure/db/mongo"
	"github.com/repairdesk/dashboard-state/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "dashboard-devapi",
	})

	if err := serve(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("dev API stopped")
	}
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var dir accounts.Directory = accounts.NewMemoryDirectory()
	health := map[string]handler.Pinger{}

	if cfg.DevAPI.Directory == config.BackendMongo {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		mdir := mongodb.NewAccountDirectory(db)
		if err := mdir.EnsureIndexes(ctx); err != nil {
			return err
		}
		dir = mdir
		health["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	}

	svc := accounts.NewService(dir, cfg.DevAPI.JWTSecret, cfg.DevAPI.TokenTTL)
	if cfg.DevAPI.Seed {
		if err := accounts.Seed(ctx, svc, accounts.DevUsers); err != nil {
			return err
		}
		log.Info().Int("users", len(accounts.DevUsers)).Msg("dev users seeded")
	}

	e := api.NewRouter(api.RouterDeps{
		Accounts:  svc,
		Health:    health,
		Log:       log,
		AccessLog: cfg.Env == "development",
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.DevAPI.Port).Str("directory", cfg.DevAPI.Directory).Msg("dev API listening")
		if err := e.Start(":" + cfg.DevAPI.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
