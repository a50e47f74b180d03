// snake-server is the authoritative arena server: it accepts 2 to 4 players
// over TCP, simulates their snakes on a shared grid, and streams frame
// snapshots back over the binary wire protocol.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"snakearena/internal/config"
	"snakearena/internal/metrics"
	"snakearena/internal/session"
	"snakearena/internal/spectator"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		listenAddr string
		httpAddr   string
		players    int
		noDeath    bool
	)

	cmd := &cobra.Command{
		Use:           "snake-server",
		Short:         "Authoritative server for the snake arena game",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("http") {
				cfg.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("players") {
				cfg.Players = players
			}
			if cmd.Flags().Changed("no-death") {
				cfg.NoDeath = noDeath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config (optional)")
	cmd.Flags().StringVar(&listenAddr, "listen", ":4000", "TCP game listen address")
	cmd.Flags().StringVar(&httpAddr, "http", ":8080", "metrics and spectator listen address (empty disables)")
	cmd.Flags().IntVar(&players, "players", 2, "players per session (2-4)")
	cmd.Flags().BoolVar(&noDeath, "no-death", false, "developer mode: log kills without applying them")
	return cmd
}

func runServer(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := session.NewServer(cfg)

	if cfg.HTTPAddr != "" {
		r := chi.NewRouter()
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok\n"))
		})
		r.Handle("/metrics", metrics.Handler())
		r.Get("/spectate", spectator.NewServer(srv).Handler())

		httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
		go func() {
			log.Printf("http endpoint on %s (/metrics, /spectate)", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
	}

	err := srv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Printf("shutting down")
		return nil
	}
	return err
}
