package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"

	"onchainavalon/internal/app"
	"onchainavalon/internal/config"
	"onchainavalon/internal/indexer"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			return runStart(cmd, cfg)
		},
	}
	config.AddFlags(cmd)
	return cmd
}

func newLogger(level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stdout)), opt), nil
}

func runStart(cmd *cobra.Command, cfg config.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []app.Option{app.WithLogger(logger)}
	if cfg.IndexerDB != "" {
		idx, err := indexer.Open(ctx, cfg.IndexerDB)
		if err != nil {
			return fmt.Errorf("open event index: %w", err)
		}
		defer func() { _ = idx.Close() }()
		opts = append(opts, app.WithEventIndex(idx))
		logger.Info("event index enabled", "path", cfg.IndexerDB)
	}

	a, err := app.New(cfg.Home, opts...)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	if lag, err := a.IndexLag(ctx); err != nil {
		logger.Error("failed to read event index height", "err", err)
	} else if lag > 0 {
		logger.Info("event index is behind state", "heights", lag)
	}

	srv, err := server.NewServer(cfg.Addr, cfg.Transport, a)
	if err != nil {
		return fmt.Errorf("start abci server: %w", err)
	}
	srv.SetLogger(logger.With("module", "abci-server"))
	if err := srv.Start(); err != nil {
		return fmt.Errorf("abci server start: %w", err)
	}
	defer func() { _ = srv.Stop() }()

	logger.Info("avalond started", "addr", cfg.Addr, "transport", cfg.Transport, "home", cfg.Home)
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
