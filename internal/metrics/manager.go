// Package metrics records OpenCensus measurements about flag evaluations, configuration changes, and
// API traffic, and exports them to Datadog, Prometheus, or Stackdriver.
package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/launchdarkly/ld-openfeature-bridge/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/pborman/uuid"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	registerViewsOnce sync.Once //nolint:gochecknoglobals
	errRegisterViews  error     //nolint:gochecknoglobals

	errManagerClosed = errors.New("metrics manager has been closed")
)

// Manager registers the OpenCensus views and exporters for the lifetime of the service.
type Manager struct {
	instanceID string
	openCensus context.Context
	exporters  map[exporterType]exporter
	loggers    ldlog.Loggers
	closed     bool
	lock       sync.Mutex
}

// NewManager registers the metrics views and creates every exporter that is enabled in the
// configuration. A non-zero reportingPeriod overrides OpenCensus's default reporting interval.
func NewManager(mc config.MetricsConfig, reportingPeriod time.Duration, loggers ldlog.Loggers) (*Manager, error) {
	return newManagerWithExporterTypes(mc, reportingPeriod, allExporterTypes(), loggers)
}

func newManagerWithExporterTypes(
	mc config.MetricsConfig,
	reportingPeriod time.Duration,
	exporterTypes []exporterType,
	loggers ldlog.Loggers,
) (*Manager, error) {
	if err := registerViews(); err != nil {
		return nil, err
	}
	if reportingPeriod > 0 {
		view.SetReportingPeriod(reportingPeriod)
	}

	exporters, err := registerExporters(exporterTypes, mc, loggers)
	if err != nil {
		return nil, err
	}

	instanceID := uuid.New()
	ctx, err := tag.New(context.Background(), tag.Insert(instanceIDTagKey, instanceID))
	if err != nil {
		closeExporters(exporters, loggers)
		return nil, err
	}

	return &Manager{
		instanceID: instanceID,
		openCensus: ctx,
		exporters:  exporters,
		loggers:    loggers,
	}, nil
}

func registerViews() error {
	registerViewsOnce.Do(func() {
		errRegisterViews = view.Register(getViews()...)
	})
	return errRegisterViews
}

// InstanceID returns the unique identifier that tags every measurement from this process.
func (m *Manager) InstanceID() string {
	return m.instanceID
}

// OpenCensusContext returns a context carrying this instance's tags, to be passed to the recording
// functions.
func (m *Manager) OpenCensusContext() context.Context {
	return m.openCensus
}

// Recorder returns a Recorder that records measurements for this instance.
func (m *Manager) Recorder() *Recorder {
	return &Recorder{openCensus: m.openCensus, loggers: m.loggers}
}

// Close unregisters and closes all exporters. It returns an error if the Manager was already closed.
func (m *Manager) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return errManagerClosed
	}
	m.closed = true
	closeExporters(m.exporters, m.loggers)
	m.exporters = nil
	return nil
}
