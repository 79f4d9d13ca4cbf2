package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/vmctrl/pkg/app"
	"github.com/cuemby/vmctrl/pkg/auth"
	"github.com/cuemby/vmctrl/pkg/config"
	"github.com/cuemby/vmctrl/pkg/httpapi"
	"github.com/cuemby/vmctrl/pkg/hypervisor"
	"github.com/cuemby/vmctrl/pkg/log"
	"github.com/cuemby/vmctrl/pkg/store"
)

var (
	// Version information, set via ldflags during build.
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "vmctrl",
	Short:   "vmctrl is the VM self-service control plane",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("vmctrl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", true, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config-dir", "configs", "Directory holding base.yaml and the environment overlay")
	rootCmd.PersistentFlags().String("env", "local", "Environment overlay to load (local, production)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, _ := cmd.Flags().GetString("config-dir")
		env, _ := cmd.Flags().GetString("env")

		cfg, err := config.Load(configDir, env)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := store.Migrate(cfg.Database.DSN()); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		st, err := store.Open(cmd.Context(), store.Config{
			DSN:             cfg.Database.DSN(),
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		})
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		cluster := hypervisor.NewHTTPClient(hypervisor.Config{
			BaseURL:    cfg.Cluster.URL,
			AuthHeader: cfg.Cluster.AuthHeader,
		})
		tokens := auth.NewTokenService(cfg.Token.Secret, cfg.Token.Duration())
		handle := app.New(cfg, st, cluster, tokens)

		addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
		server := &http.Server{
			Addr:    addr,
			Handler: httpapi.NewRouter(*handle),
		}

		errCh := make(chan error, 1)
		go func() {
			log.Logger.Info().Str("addr", addr).Msg("starting server")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			log.Logger.Info().Msg("shutting down")
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Logger.Info().Msg("shutdown complete")
		return nil
	},
}
