package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/repairdesk/dashboard-state/internal/core/ports"
	"github.com/repairdesk/dashboard-state/internal/core/service"
	"github.com/repairdesk/dashboard-state/internal/infrastructure/config"
	"github.com/repairdesk/dashboard-state/internal/infrastructure/db/memory"
	mongodb "github.com/repairdesk/dashboard-state/internal/infrastructure/db/mongo"
	redisdb "github.com/repairdesk/dashboard-state/internal/infrastructure/db/redis"
	"github.com/repairdesk/dashboard-state/internal/infrastructure/http/authclient"
	"github.com/repairdesk/dashboard-state/internal/infrastructure/navigation"
	"github.com/repairdesk/dashboard-state/internal/infrastructure/queue"
	"github.com/repairdesk/dashboard-state/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// app is one CLI invocation's worth of wiring.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	session *service.SessionStore
	ui      *service.InteractionStore
	client  *authclient.Client
	nav     *navigation.Recorder

	closers []func()
}

// run builds the app, hands it to fn and tears everything down afterwards.
func run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "dashctl",
		Output:  cmd.ErrOrStderr(),
	})

	a, err := newApp(ctx, cfg, log, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, log: log}

	repo, err := a.openRepository(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.client = authclient.New(cfg.API.BaseURL, cfg.API.Timeout, log)
	a.nav = navigation.NewRecorder(log, "")

	a.ui = service.NewInteractionStore(
		service.InteractionDeps{Clock: clockwork.NewRealClock(), Log: log},
		service.WithLoadingText(cfg.UI.LoadingText),
		service.WithNotificationDuration(cfg.UI.NotificationDuration),
	)
	printer := newPrinter(out)
	cancelPrinter := a.ui.Subscribe(printer.render)
	a.closers = append(a.closers, cancelPrinter, a.ui.Close)

	a.session = service.NewSessionStore(ctx, service.SessionDeps{
		Gateway:      a.client,
		Repository:   repo,
		Navigator:    a.nav,
		Unauthorized: a.client,
		Log:          log,
	},
		service.WithLoginRoute(cfg.UI.LoginRoute),
		service.WithLoginErrorText(cfg.UI.LoginErrorText),
	)
	a.client.SetTokenSource(a.session.Token)
	a.closers = append(a.closers, a.session.Close)

	return a, nil
}

// openRepository connects the configured backend, optionally behind the
// write-behind queue.
func (a *app) openRepository(ctx context.Context) (ports.SessionRepository, error) {
	var repo ports.SessionRepository

	switch a.cfg.Storage.Backend {
	case config.BackendMemory:
		a.log.Warn().Msg("memory storage does not survive this process")
		return memory.NewSessionRepository(), nil

	case config.BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     a.cfg.Redis.Addr,
			DB:       a.cfg.Redis.DB,
			Password: a.cfg.Redis.Password,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		repo = redisdb.NewSessionRepository(client, a.cfg.Storage.Name)

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		})
		repo = mongodb.NewSessionRepository(db, a.cfg.Storage.Name)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}

	if !a.cfg.Storage.Async {
		return repo, nil
	}

	writer := queue.NewSnapshotWriter(repo, a.log)
	writer.Start(ctx)
	a.closers = append(a.closers, func() {
		fctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := writer.Flush(fctx); err != nil {
			a.log.Warn().Err(err).Msg("snapshot flush incomplete")
		}
		writer.Close()
	})
	return writer, nil
}

// close runs closers in reverse registration order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
