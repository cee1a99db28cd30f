package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/proctor/internal/app"
	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/config"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/logging"
	"github.com/abhisek/proctor/internal/metrics"
	"github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/store"
)

// env is everything a front end needs, built from config.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	svc    *exam.Service

	closers []func()
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// bootstrap loads config and builds the logger, history store, test bank,
// session manager and exam service. console receives human-readable logs.
func bootstrap(cmd *cobra.Command, console io.Writer) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, console)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger}
	e.closers = append(e.closers, func() { _ = logger.Sync() })

	repo, err := openRepo(cmd.Context(), e)
	if err != nil {
		e.Close()
		return nil, err
	}

	b, err := bank.Load(cfg.TestsDir, cfg.PDFDir, logger)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("load tests: %w", err)
	}
	logger.Info("test bank loaded", zap.Int("tests", b.Len()), zap.String("dir", cfg.TestsDir))

	mgr := session.NewManager(b, repo, session.Config{
		TimeLimit: cfg.TimeLimit,
		Logger:    logger.Named("session"),
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
	})
	e.closers = append(e.closers, mgr.Shutdown)

	e.svc = exam.NewService(b, mgr, repo, cfg.Admins, logger)
	return e, nil
}

// openRepo opens the configured history backend wrapped with retries.
func openRepo(ctx context.Context, e *env) (store.HistoryRepo, error) {
	sc := e.cfg.Store
	var repo store.HistoryRepo
	switch sc.Driver {
	case config.DriverFile:
		fr, err := store.NewFileRepo(sc.StatsDir)
		if err != nil {
			return nil, fmt.Errorf("open stats dir: %w", err)
		}
		repo = fr
	default:
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		st, err := store.Open(openCtx, sc.Driver, sc.DSN)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		e.closers = append(e.closers, func() { _ = st.Close() })
		repo = st.HistoryRepo()
	}
	e.logger.Info("history store ready", zap.String("driver", sc.Driver))

	return store.WithRetry(repo, store.RetryConfig{
		MaxAttempts: sc.Retry.MaxAttempts,
		InitialWait: sc.Retry.InitialWait,
		MaxWait:     sc.Retry.MaxWait,
		Multiplier:  sc.Retry.Multiplier,
	}, e.logger.Named("store")), nil
}

// runTerminal launches the TUI for the configured local user.
func runTerminal(cmd *cobra.Command) error {
	// Console logging would tear the alt-screen; only the log file is kept.
	e, err := bootstrap(cmd, io.Discard)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(e.svc, e.cfg.LocalUserID, e.logger)
}
