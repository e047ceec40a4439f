package metrics

import (
	"testing"
	"time"

	"github.com/launchdarkly/ld-openfeature-bridge/config"
	st "github.com/launchdarkly/ld-openfeature-bridge/internal/sharedtest"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"

	"github.com/stretchr/testify/require"
)

type testWithExporterParams struct {
	exporter *st.TestMetricsExporter
	manager  *Manager
	mockLog  *ldlogtest.MockLog
}

// testWithExporter creates a Manager with no real exporters. Since the global OpenCensus state
// accumulates metrics from all tests, every Manager's unique instance ID isolates this test's data.
func testWithExporter(t *testing.T, action func(testWithExporterParams)) {
	mockLog := ldlogtest.NewMockLog()
	defer mockLog.DumpIfTestFailed(t)

	manager, err := NewManager(config.MetricsConfig{}, time.Millisecond*10, mockLog.Loggers)
	require.NoError(t, err)
	defer manager.Close() //nolint:errcheck

	exporter := st.NewTestMetricsExporter()
	exporter.WithExporter(func() {
		action(testWithExporterParams{
			exporter: exporter,
			manager:  manager,
			mockLog:  mockLog,
		})
	})
}

type testExporterTypeImpl struct {
	name            string
	checkEnabled    func(config.MetricsConfig) bool
	errorOnCreate   error
	errorOnRegister error
	errorOnClose    error
	created         []*testExporterImpl
}

type testExporterImpl struct {
	exporterType *testExporterTypeImpl
	registered   bool
	closed       bool
}

func (t *testExporterTypeImpl) getName() string {
	if t.name == "" {
		return "testExporter"
	}
	return t.name
}

func (t *testExporterTypeImpl) createExporterIfEnabled(
	mc config.MetricsConfig,
	loggers ldlog.Loggers,
) (exporter, error) {
	if t.errorOnCreate != nil {
		return nil, t.errorOnCreate
	}
	if t.checkEnabled != nil && !t.checkEnabled(mc) {
		return nil, nil
	}
	impl := &testExporterImpl{exporterType: t}
	t.created = append(t.created, impl)
	return impl, nil
}

func (t *testExporterImpl) register() error {
	if t.exporterType.errorOnRegister == nil {
		t.registered = true
	}
	return t.exporterType.errorOnRegister
}

func (t *testExporterImpl) close() error {
	if t.exporterType.errorOnClose == nil {
		t.closed = true
	}
	return t.exporterType.errorOnClose
}
