package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/launchdarkly/ld-openfeature-bridge/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats/view"
)

var prometheusExporterType exporterType = prometheusExporterTypeImpl{} //nolint:gochecknoglobals

type prometheusExporterTypeImpl struct{}

type prometheusExporterImpl struct {
	exporter *prometheus.Exporter
	server   *http.Server
	loggers  ldlog.Loggers
}

func (p prometheusExporterTypeImpl) getName() string {
	return "Prometheus"
}

func (p prometheusExporterTypeImpl) createExporterIfEnabled(
	mc config.MetricsConfig,
	loggers ldlog.Loggers,
) (exporter, error) {
	if !mc.Prometheus.Enabled {
		return nil, nil
	}

	port := mc.Prometheus.Port.GetOrElse(config.DefaultPrometheusPort)

	options := prometheus.Options{
		Namespace: getPrefix(mc.Prometheus.Prefix),
		OnError: func(err error) {
			loggers.Errorf("Prometheus exporter error: %s", err)
		},
	}
	e, err := prometheus.NewExporter(options)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e)

	return &prometheusExporterImpl{
		exporter: e,
		server:   &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}, //nolint:gosec
		loggers:  loggers,
	}, nil
}

func (p *prometheusExporterImpl) register() error {
	go func() {
		p.loggers.Infof("Prometheus exporter listening on %s", p.server.Addr)
		if err := p.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			p.loggers.Errorf("Failed to start Prometheus listener: %s", err)
		}
	}()

	// The Prometheus agent scrapes our endpoint, so there is nothing to do with traces here.
	view.RegisterExporter(p.exporter)
	return nil
}

func (p *prometheusExporterImpl) close() error {
	view.UnregisterExporter(p.exporter)
	return p.server.Close()
}
