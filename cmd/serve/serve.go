// Package serve is a subcommand of the root command. It exports the decoded
// registers as Prometheus metrics.
package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cpuleaf/internal/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const cmdName = "serve"

var examples = []string{
	fmt.Sprintf("  Serve on the default address:     $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Serve on port 9200, refresh 10s:  $ %s %s --listen :9200 --interval 10s", common.AppName, cmdName),
	fmt.Sprintf("  Serve a captured snapshot:        $ %s %s --input host.yaml", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Export the feature flags as Prometheus metrics",
	Long:          "Serves the decoded registers on /metrics in the Prometheus text format. The registers are read again every interval.",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "other",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagListen   string
	flagInterval time.Duration
)

// flag names
const (
	flagListenName   = "listen"
	flagIntervalName = "interval"
)

func init() {
	Cmd.Flags().StringVar(&flagListen, flagListenName, "localhost:9101", "")
	Cmd.Flags().DurationVar(&flagInterval, flagIntervalName, time.Minute, "")

	common.AddSourceFlags(Cmd)

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: flagListenName,
			Help: "address to serve /metrics on",
		},
		{
			Name: flagIntervalName,
			Help: "time between register reads",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Server Options",
		Flags:     flags,
	})
	groups = append(groups, common.GetSourceFlagGroup())
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if _, _, err := net.SplitHostPort(flagListen); err != nil {
		err = fmt.Errorf("--%s: %v", flagListenName, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if flagInterval < time.Second {
		err := fmt.Errorf("--%s must be at least 1s", flagIntervalName)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	// common source flags
	if err := common.ValidateSourceFlags(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	src, err := common.GetSource(cmd)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	registry := prometheus.NewRegistry()
	exp, err := newExporter(src, registry)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	// a source that cannot be read at startup will not recover
	if err := exp.refresh(); err != nil {
		err = fmt.Errorf("failed to read registers: %w", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cmd.SilenceUsage = true
		return err
	}
	cmd.SilenceUsage = true
	listener, err := net.Listen("tcp", flagListen)
	if err != nil {
		err = fmt.Errorf("failed to listen on %s: %w", flagListen, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(cmd.OutOrStdout(), "serving metrics on http://%s/metrics\n", listener.Addr())
	return serve(ctx, listener, newHandler(registry), exp, flagInterval)
}

// serve runs the HTTP server and the refresh loop until ctx is done or the
// server fails.
func serve(ctx context.Context, listener net.Listener, handler http.Handler, exp *exporter, interval time.Duration) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.Info("starting Prometheus metrics server", slog.String("address", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("stopping Prometheus metrics server")
		return server.Shutdown(shutdownCtx)
	})
	eg.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-egCtx.Done():
				return nil
			case <-ticker.C:
				if err := exp.refresh(); err != nil {
					slog.Warn("failed to refresh registers", slog.String("error", err.Error()))
				}
			}
		}
	})
	return eg.Wait()
}
