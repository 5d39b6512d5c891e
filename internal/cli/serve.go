package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/packsafe/previewcore/internal/config"
	"github.com/packsafe/previewcore/internal/metrics"
	"github.com/packsafe/previewcore/internal/regulation"
	"github.com/packsafe/previewcore/internal/server"
)

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.yaml (env: "+config.EnvVar+")")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the preview HTTP server",
	Long:  "Runs previewcore as an HTTP server handling /v1/preview requests.\nSupports hot-reload of the regulation directory and serves /healthz and /metrics.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := buildStack(ctx, serveConfigPath)
	if err != nil {
		return fmt.Errorf("build stack: %w", err)
	}

	reloadState := "hot-reload disabled"
	watcher, err := regulation.NewWatcher(st.store, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: regulation hot-reload disabled: %v\n", err)
	} else {
		reloadState = "hot-reload enabled"
		go watcher.Run(ctx)
	}

	m := metrics.New()
	m.RegulationRules.Set(float64(st.store.RuleCount()))

	srv := server.New(st.orchestrator, st.store, m, slog.Default(), st.cfg.Server.MetricsPath)

	httpSrv := &http.Server{
		Addr:    st.cfg.Server.ListenAddr,
		Handler: srv,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down preview server...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "previewcore listening on %s\n", st.cfg.Server.ListenAddr)
	fmt.Fprintf(os.Stderr, "Regulations: %s (%s)\n", st.cfg.Resolver.RegulationDir, reloadState)
	fmt.Fprintln(os.Stderr)

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
