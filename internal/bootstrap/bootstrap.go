// Package bootstrap wires storage, services and the effect bus from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/config"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/confirm"
	pkgcrypto "github.com/sachu255/CRAFTY-notes--sub000/internal/crypto"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/events"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/limiter"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/metrics"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/migrate"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository/file"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository/memory"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository/postgres"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository/rediskv"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository/sealed"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/service"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/textproc"
)

// App is the wired daemon.
type App struct {
	Workspace *service.WorkspaceServiceImpl
	Sessions  *service.SessionServiceImpl
	Metrics   *metrics.Metrics
	// PubSub carries effects to in-process consumers.
	PubSub *gochannel.GoChannel

	closers []func() error
}

// Storage is an opened gateway with the limiter matching its backend.
type Storage struct {
	Gateway repository.Gateway
	Limiter limiter.Limiter
	closers []func() error
}

// Build opens storage and assembles the services of craftyd.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := config.Location(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	st, err := OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	confirmKey, err := pkgcrypto.RandBytes(32)
	if err != nil {
		_ = closeAll(st.closers)
		return nil, err
	}

	m := metrics.New()
	ps := events.NewGoChannel(log)
	ws := service.NewWorkspaceService(repository.NewStateStore(st.Gateway), service.Options{
		Limiter:   st.Limiter,
		Confirm:   confirm.NewIssuer(confirmKey, cfg.ConfirmTTL),
		Processor: textproc.NewLocal(),
		Publisher: events.NewBus(ps),
		Observer:  m,
		Log:       log.Named("workspace"),
		Location:  loc,
		AITimeout: cfg.AITimeout,
	})
	sessions := service.NewSessionService(ws, []byte(cfg.SessionKey), cfg.SessionTTL)

	return &App{
		Workspace: ws,
		Sessions:  sessions,
		Metrics:   m,
		PubSub:    ps,
		closers:   append([]func() error{ps.Close}, st.closers...),
	}, nil
}

// Close stops the bus and releases storage.
func (a *App) Close() error { return closeAll(a.closers) }

// OpenStorage opens the configured backend, running migrations for postgres
// and sealing values when a passphrase is set.
func OpenStorage(ctx context.Context, cfg config.Config, log *zap.Logger) (*Storage, error) {
	st := &Storage{}
	var err error
	switch cfg.Backend {
	case config.BackendMemory:
		st.Gateway = memory.New()
	case config.BackendFile:
		st.Gateway, err = file.New(cfg.DataDir)
	case config.BackendPostgres:
		var ver int64
		if ver, err = migrate.Up(ctx, cfg.DSN, log.Named("migrate")); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("schema ready", zap.Int64("version", ver))
		var db *postgres.DB
		if db, err = postgres.New(ctx, cfg.DSN); err == nil {
			st.Gateway = postgres.NewKV(db)
			st.Limiter = limiter.NewPG(db.Pool, cfg.UnlockWindow, cfg.UnlockMaxFails, cfg.UnlockBlock)
			st.closers = append(st.closers, func() error { db.Close(); return nil })
		}
	case config.BackendRedis:
		var rg *rediskv.Gateway
		if rg, err = rediskv.Connect(ctx, cfg.RedisURL); err == nil {
			st.Gateway = rg
			st.closers = append(st.closers, rg.Close)
		}
	default:
		err = fmt.Errorf("validation: unknown backend %q: %w", cfg.Backend, errs.ErrInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	if st.Limiter == nil {
		st.Limiter = limiter.NewMemory(cfg.UnlockWindow, cfg.UnlockMaxFails, cfg.UnlockBlock)
	}

	if cfg.Passphrase != "" {
		sg, err := sealed.New(ctx, st.Gateway, cfg.Passphrase)
		if err != nil {
			_ = closeAll(st.closers)
			return nil, fmt.Errorf("unseal storage: %w", err)
		}
		st.Gateway = sg
	}
	log.Info("storage ready",
		zap.String("backend", cfg.Backend),
		zap.Bool("sealed", cfg.Passphrase != ""))
	return st, nil
}

func closeAll(fns []func() error) error {
	var errList []error
	for _, fn := range fns {
		if err := fn(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
