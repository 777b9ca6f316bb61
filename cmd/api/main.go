package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"charforge/internal/config"
	"charforge/internal/infra/db"
	"charforge/internal/server"
	"charforge/internal/usecase"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	root := &cobra.Command{
		Use:           "charforge",
		Short:         "Charforge character gallery API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), workerCmd(), createAdminCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var withWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.wire(ctx); err != nil {
				return err
			}
			e := server.New(a.handlers, a.mw, a.logger)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.Start(ctx, e, ":"+a.cfg.Server.Port, a.logger)
			})
			// redisモードでは同じプロセスでワーカーも動かせる
			if withWorker && a.cfg.Notification.Mode == config.NotificationModeRedis {
				w, err := a.newWorker(ctx)
				if err != nil {
					return err
				}
				g.Go(func() error { return w.Run(ctx) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&withWorker, "with-worker", true, "run the notification worker in-process when notification.mode=redis")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and seed character classes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := db.Migrate(a.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			a.logger.Info("migration completed")
			return nil
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued notifications from Redis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Notification.Mode != config.NotificationModeRedis {
				return errors.New("worker requires notification.mode=redis")
			}
			w, err := a.newWorker(cmd.Context())
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.wire(cmd.Context()); err != nil {
				return err
			}
			admin, err := a.staff.BootstrapAdmin(cmd.Context(), usecase.CreateEmployeeInput{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			a.logger.Info("admin ready", zap.Int64("user_id", admin.ID), zap.String("pseudo", admin.Pseudo))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
