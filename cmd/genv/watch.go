package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/genv-lang/genv/internal/watch"
)

var watchFlags struct {
	metricsAddr string
	quiet       time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-parse a file whenever a source changes",
	Long: `Parse FILE, then parse it again every time a source file next to it or
next to one of its modules changes.

With --metrics-addr the parse metrics are served in the Prometheus format
at /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	watchCmd.Flags().DurationVar(&watchFlags.quiet, "debounce", 100*time.Millisecond, "wait this long after the last change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	path := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchFlags.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", e.metrics.Handler())
		srv := &http.Server{Addr: watchFlags.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.log.Error("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()
		e.log.Info("serving metrics on %s", watchFlags.metricsAddr)
	}

	w, err := watch.New(e.cfg.Extension)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	parseOnce := func() {
		res, err := e.parseFile(path)
		_ = e.report(cmd.ErrOrStderr(), res)
		status := "ok"
		if err != nil {
			status = "FAIL"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", time.Now().Format("15:04:05"), status, path)

		if res == nil {
			return
		}
		for _, file := range res.Files.Paths() {
			if err := w.Add(file); err != nil {
				e.log.Warn("cannot watch %s: %v", file, err)
			}
		}
	}

	if err := w.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	parseOnce()

	err = w.Run(ctx, watchFlags.quiet, func(batch []watch.Event) {
		e.log.Debug("%d changes, first %s", len(batch), batch[0].Path)
		parseOnce()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
