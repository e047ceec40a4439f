package application

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/launchdarkly/ld-openfeature-bridge/config"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	helpers "github.com/launchdarkly/go-test-helpers/v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getAvailablePort(t *testing.T) int {
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer listener.Close() //nolint:errcheck
	return listener.Addr().(*net.TCPAddr).Port
}

func TestStartHTTPServer(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	defer mockLog.DumpIfTestFailed(t)

	port := getAvailablePort(t)
	optPort, err := ct.NewOptIntGreaterThanZero(port)
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	srv, errCh := StartHTTPServer(config.MainConfig{Port: optPort}, handler, mockLog.Loggers)

	url := fmt.Sprintf("http://localhost:%d/", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close() //nolint:errcheck
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "hello"
	}, time.Second*2, time.Millisecond*20)

	mockLog.AssertMessageMatch(t, true, ldlog.Info, fmt.Sprintf("Starting server listening on port %d", port))

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Equal(t, http.ErrServerClosed, helpers.RequireValue(t, errCh, time.Second))
}

func TestStartHTTPServerReportsListenError(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer listener.Close() //nolint:errcheck
	optPort, err := ct.NewOptIntGreaterThanZero(listener.Addr().(*net.TCPAddr).Port)
	require.NoError(t, err)

	_, errCh := StartHTTPServer(config.MainConfig{Port: optPort}, http.NotFoundHandler(), ldlog.NewDisabledLoggers())
	err = helpers.RequireValue(t, errCh, time.Second)
	assert.Error(t, err)
	assert.NotEqual(t, http.ErrServerClosed, err)
}

func TestStartHTTPServerWithTLSMinVersion(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	port := getAvailablePort(t)
	optPort, err := ct.NewOptIntGreaterThanZero(port)
	require.NoError(t, err)
	tlsVersion, err := config.NewOptTLSVersionFromString("1.2")
	require.NoError(t, err)

	mainConfig := config.MainConfig{
		Port:          optPort,
		TLSEnabled:    true,
		TLSCert:       "/not/a/real/cert",
		TLSKey:        "/not/a/real/key",
		TLSMinVersion: tlsVersion,
	}
	srv, errCh := StartHTTPServer(mainConfig, http.NotFoundHandler(), mockLog.Loggers)

	// the certificate files do not exist, so the server stops immediately
	assert.Error(t, helpers.RequireValue(t, errCh, time.Second))
	require.NotNil(t, srv.TLSConfig)
	assert.Equal(t, tlsVersion.Get(), srv.TLSConfig.MinVersion)
	mockLog.AssertMessageMatch(t, true, ldlog.Info, `TLS enabled for server \(minimum TLS version: 1\.2\)`)
}
