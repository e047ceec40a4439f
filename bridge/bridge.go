// Package bridge assembles the ld-openfeature-bridge service: a LaunchDarkly-backed OpenFeature
// provider, the HTTP API that evaluates flags through it, a stream of flag configuration changes,
// and metrics.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/launchdarkly/ld-openfeature-bridge/config"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/api"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/metrics"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/sdks"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/streams"
	"github.com/launchdarkly/ld-openfeature-bridge/provider"

	"github.com/launchdarkly/eventsource"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/open-feature/go-sdk/openfeature"
)

var errBridgeClosed = errors.New("bridge has been closed")

func errNewMetricsManagerFailed(err error) error {
	return fmt.Errorf("unable to create metrics manager: %w", err)
}

func errSDKConfigFailed(err error) error {
	return fmt.Errorf("unable to configure LaunchDarkly SDK: %w", err)
}

func errProviderInitFailed(err error) error {
	return fmt.Errorf("OpenFeature provider failed to initialize: %w", err)
}

// Bridge represents the overall bridge application. It serves the HTTP API through its embedded
// Handler.
type Bridge struct {
	http.Handler
	provider       *provider.Provider
	client         *openfeature.Client
	metricsManager *metrics.Manager
	publisher      *eventsource.Server
	changes        *streams.ConfigChangePublisher
	onConfigChange func(openfeature.EventDetails)
	initTimeout    time.Duration
	closed         bool
	lock           sync.Mutex
	loggers        ldlog.Loggers
}

// NewBridge creates a Bridge from a configuration. The clientFactory parameter can be nil; it is
// only needed to customize how the LaunchDarkly client is created.
//
// The provider is not registered with OpenFeature until Start is called.
func NewBridge(c config.Config, loggers ldlog.Loggers, clientFactory provider.ClientFactoryFunc) (*Bridge, error) {
	if err := config.ValidateConfig(&c, loggers); err != nil { // in case a not-yet-validated Config was passed
		return nil, err
	}

	if c.Main.LogLevel.IsDefined() {
		loggers.SetMinLevel(c.Main.LogLevel.GetOrElse(ldlog.Info))
	}

	sdkConfig, dataStoreInfo, err := sdks.MakeSDKConfig(c, loggers)
	if err != nil {
		return nil, errSDKConfigFailed(err)
	}

	metricsManager, err := metrics.NewManager(c.MetricsConfig, 0, loggers)
	if err != nil {
		return nil, errNewMetricsManagerFailed(err)
	}
	recorder := metricsManager.Recorder()

	if c.Main.SDKKey != "" {
		loggers.Infof("Using SDK key %s", sdks.ObscureKey(string(c.Main.SDKKey)))
	}

	options := []provider.Option{
		provider.WithConfig(sdkConfig),
		provider.WithLoggers(loggers),
		provider.WithEvaluationRecorder(recorder),
	}
	if c.Main.ProviderName != "" {
		options = append(options, provider.WithProviderName(c.Main.ProviderName))
	}
	if clientFactory != nil {
		options = append(options, provider.WithClientFactory(clientFactory))
	}
	p := provider.New(string(c.Main.SDKKey), options...)

	publisher := streams.NewPublisher(0)
	changes := streams.NewConfigChangePublisher(publisher,
		c.Main.HeartbeatInterval.GetOrElse(config.DefaultHeartbeatInterval), loggers)

	b := &Bridge{
		provider:       p,
		client:         openfeature.NewClient(p.Metadata().Name),
		metricsManager: metricsManager,
		publisher:      publisher,
		changes:        changes,
		initTimeout:    c.Main.InitTimeout.GetOrElse(config.DefaultInitTimeout),
		loggers:        loggers,
	}
	b.onConfigChange = b.handleConfigChange

	b.Handler = api.NewServer(api.ServerParams{
		Provider:      p,
		Client:        b.client,
		Changes:       changes,
		Recorder:      recorder,
		DataStoreInfo: dataStoreInfo,
		MaxBodyBytes:  int64(c.Main.MaxRequestBodyBytes.GetOrElse(config.DefaultMaxRequestBodyBytes)),
		Loggers:       loggers,
	}).Router()

	return b, nil
}

// Start registers the provider as the OpenFeature default provider and waits for it to initialize,
// for at most the configured init timeout. An initialization error is returned; a timeout is only
// logged, since the provider keeps initializing in the background.
func (b *Bridge) Start() error {
	b.lock.Lock()
	if b.closed {
		b.lock.Unlock()
		return errBridgeClosed
	}
	b.lock.Unlock()

	openfeature.AddHandler(openfeature.ProviderConfigChange, &b.onConfigChange)

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- openfeature.SetProviderAndWait(b.provider)
	}()

	timer := time.NewTimer(b.initTimeout)
	defer timer.Stop()
	select {
	case err := <-resultCh:
		if err != nil {
			return errProviderInitFailed(err)
		}
		return nil
	case <-timer.C:
		b.loggers.Warnf("Provider was not ready after %s; it will keep initializing in the background", b.initTimeout)
		return nil
	}
}

// Status returns the provider's current state.
func (b *Bridge) Status() openfeature.State {
	return b.provider.Status()
}

// Client returns the OpenFeature client that the API evaluates flags with.
func (b *Bridge) Client() *openfeature.Client {
	return b.client
}

func (b *Bridge) handleConfigChange(details openfeature.EventDetails) {
	if details.ProviderName != b.provider.Metadata().Name || len(details.FlagChanges) == 0 {
		return
	}
	b.changes.PublishFlagsChanged(details.FlagChanges)
	b.metricsManager.Recorder().RecordConfigChange(len(details.FlagChanges))
}

// Close shuts down the provider, the change stream, and the metrics exporters.
func (b *Bridge) Close() error {
	b.lock.Lock()
	if b.closed {
		b.lock.Unlock()
		return nil
	}
	b.closed = true
	b.lock.Unlock()

	openfeature.RemoveHandler(openfeature.ProviderConfigChange, &b.onConfigChange)

	err := b.provider.ShutdownWithContext(context.Background())
	b.changes.Close()
	b.publisher.Close()
	if mErr := b.metricsManager.Close(); mErr != nil && err == nil {
		err = mErr
	}
	return err
}
