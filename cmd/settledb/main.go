package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/settledb/settle-db/internal/config"
	"github.com/settledb/settle-db/internal/executor"
	"github.com/settledb/settle-db/internal/repl"
	"github.com/settledb/settle-db/internal/server"
	"github.com/settledb/settle-db/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "settledb",
		Short:         "A small file-backed relational database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), consoleCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			store, err := storage.New(afero.NewOsFs(), cfg.DataDir)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			exec := executor.New(store)
			server.EnsureSampleTables(exec, store, log)

			handler := &server.Handler{
				Exec:        exec,
				Store:       store,
				Log:         log,
				SnapshotDir: cfg.SnapshotDir,
			}
			srv := server.New(handler, cfg.Addr(), log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			group, ctx := errgroup.WithContext(ctx)
			group.Go(srv.Run)
			group.Go(func() error {
				<-ctx.Done()
				log.Infow("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Close(shutdownCtx)
			})

			return group.Wait()
		},
	}
}

func consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive SQL console",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := storage.New(afero.NewOsFs(), cfg.DataDir)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			return repl.New(executor.New(store), store, cfg.SnapshotDir).Run()
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write a parquet snapshot of every table",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := storage.New(afero.NewOsFs(), cfg.DataDir)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			if err := store.ExportParquet(cfg.SnapshotDir); err != nil {
				return fmt.Errorf("export snapshot: %w", err)
			}
			fmt.Println("Snapshot written to", cfg.SnapshotDir)
			return nil
		},
	}
}

func newLogger(cfg config.Config) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Dev() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}
