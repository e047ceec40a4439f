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

	"github.com/launchdarkly/ld-openfeature-bridge/bridge"
	"github.com/launchdarkly/ld-openfeature-bridge/config"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/application"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/logging"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/version"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	_ "github.com/kardianos/minwinsvc"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	loggers := logging.MakeDefaultLoggers()

	opts, err := application.ReadOptions(os.Args[1:])
	if err != nil {
		loggers.Errorf("Error: %s", err)
		return 1
	}

	loggers.Infof("Starting LaunchDarkly OpenFeature bridge version %s with %s",
		application.DescribeVersion(version.Version), opts.DescribeConfigSource())

	c := config.DefaultConfig
	if opts.ConfigFile != "" {
		if err := config.LoadConfigFile(&c, opts.ConfigFile, loggers); err != nil {
			loggers.Errorf("Error loading config file: %s", err)
			return 1
		}
	}
	if opts.UseEnvironment {
		if err := config.LoadConfigFromEnvironment(&c, loggers); err != nil {
			loggers.Errorf("Configuration error: %s", err)
			return 1
		}
	}
	loggers = logging.MakeLoggersWithLevel(c.Main.LogLevel.GetOrElse(ldlog.Info))

	b, err := bridge.NewBridge(c, loggers, nil)
	if err != nil {
		loggers.Errorf("Unable to create bridge: %s", err)
		return 1
	}
	defer b.Close() //nolint:errcheck

	if err := b.Start(); err != nil {
		loggers.Errorf("%s", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, serverErrs := application.StartHTTPServer(c.Main, b, loggers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := <-serverErrs
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server stopped: %w", err)
	})
	g.Go(func() error {
		<-gctx.Done()
		loggers.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		loggers.Errorf("%s", err)
		return 1
	}
	return 0
}
