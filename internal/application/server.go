package application

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/launchdarkly/ld-openfeature-bridge/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const readHeaderTimeout = 10 * time.Second

// StartHTTPServer starts the server, with or without TLS. It returns immediately, starting the server
// on a separate goroutine; if the server fails to start up or stops, it sends the error to the error
// channel. The error is http.ErrServerClosed after a Shutdown.
func StartHTTPServer(
	mainConfig config.MainConfig,
	handler http.Handler,
	loggers ldlog.Loggers,
) (*http.Server, <-chan error) {
	port := mainConfig.Port.GetOrElse(config.DefaultPort)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	tlsMinVersion := mainConfig.TLSMinVersion
	if mainConfig.TLSEnabled && tlsMinVersion.IsDefined() {
		srv.TLSConfig = &tls.Config{ //nolint:gosec // linter doesn't want to see MinVersion being set to a variable
			MinVersion: tlsMinVersion.Get(),
		}
	}

	errCh := make(chan error, 1)

	go func() {
		var err error
		loggers.Infof("Starting server listening on port %d", port)
		if mainConfig.TLSEnabled {
			message := "TLS enabled for server"
			if tlsMinVersion.IsDefined() {
				message += fmt.Sprintf(" (minimum TLS version: %s)", tlsMinVersion)
			}
			loggers.Info(message)
			err = srv.ListenAndServeTLS(mainConfig.TLSCert, mainConfig.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	return srv, errCh
}
