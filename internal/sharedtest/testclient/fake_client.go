// Package testclient contains a fake LaunchDarkly client for testing code that uses the provider
// package without network access or a real SDK instance.
package testclient

import (
	"sync"
	"testing"
	"time"

	"github.com/launchdarkly/ld-openfeature-bridge/provider"

	helpers "github.com/launchdarkly/go-test-helpers/v3"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/launchdarkly/go-sdk-common/v3/ldreason"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/launchdarkly/go-server-sdk/v7/interfaces"
)

// Evaluation is a captured call to one of the fake client's VariationDetail methods.
type Evaluation struct {
	Method       string
	FlagKey      string
	Context      ldcontext.Context
	DefaultValue ldvalue.Value
}

// FakeLDClient implements provider.LDClient. Every evaluation returns Result and Detail, and is
// recorded in Evaluations.
type FakeLDClient struct {
	SDKKey  string
	Config  ld.Config
	Result  ldvalue.Value
	Detail  ldreason.EvaluationDetail
	Err     error
	Offline bool
	CloseCh chan struct{}

	statusProvider *fakeStatusProvider
	flagTracker    *fakeFlagTracker
	evaluations    []Evaluation
	closeOnce      sync.Once
	lock           sync.Mutex
}

// NewFakeLDClient creates a fake client whose data source is in the given state.
func NewFakeLDClient(state interfaces.DataSourceState) *FakeLDClient {
	return &FakeLDClient{
		CloseCh:        make(chan struct{}),
		statusProvider: &fakeStatusProvider{status: interfaces.DataSourceStatus{State: state}},
		flagTracker:    &fakeFlagTracker{},
	}
}

// SetResult sets the value and detail returned by subsequent evaluations.
func (c *FakeLDClient) SetResult(value ldvalue.Value, detail ldreason.EvaluationDetail, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.Result, c.Detail, c.Err = value, detail, err
}

// Evaluations returns all evaluations so far.
func (c *FakeLDClient) Evaluations() []Evaluation {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]Evaluation(nil), c.evaluations...)
}

func (c *FakeLDClient) evaluate(method, key string, context ldcontext.Context, defaultVal ldvalue.Value) (
	ldvalue.Value, ldreason.EvaluationDetail, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.evaluations = append(c.evaluations, Evaluation{Method: method, FlagKey: key, Context: context, DefaultValue: defaultVal})
	if c.Detail.Reason.GetKind() == ldreason.EvalReasonError {
		return defaultVal, c.Detail, c.Err
	}
	return c.Result, c.Detail, c.Err
}

func (c *FakeLDClient) BoolVariationDetail(key string, context ldcontext.Context, defaultVal bool) (
	bool, ldreason.EvaluationDetail, error) {
	v, d, err := c.evaluate("BoolVariationDetail", key, context, ldvalue.Bool(defaultVal))
	return v.BoolValue(), d, err
}

func (c *FakeLDClient) IntVariationDetail(key string, context ldcontext.Context, defaultVal int) (
	int, ldreason.EvaluationDetail, error) {
	v, d, err := c.evaluate("IntVariationDetail", key, context, ldvalue.Int(defaultVal))
	return v.IntValue(), d, err
}

func (c *FakeLDClient) Float64VariationDetail(key string, context ldcontext.Context, defaultVal float64) (
	float64, ldreason.EvaluationDetail, error) {
	v, d, err := c.evaluate("Float64VariationDetail", key, context, ldvalue.Float64(defaultVal))
	return v.Float64Value(), d, err
}

func (c *FakeLDClient) StringVariationDetail(key string, context ldcontext.Context, defaultVal string) (
	string, ldreason.EvaluationDetail, error) {
	v, d, err := c.evaluate("StringVariationDetail", key, context, ldvalue.String(defaultVal))
	return v.StringValue(), d, err
}

func (c *FakeLDClient) JSONVariationDetail(key string, context ldcontext.Context, defaultVal ldvalue.Value) (
	ldvalue.Value, ldreason.EvaluationDetail, error) {
	return c.evaluate("JSONVariationDetail", key, context, defaultVal)
}

func (c *FakeLDClient) GetDataSourceStatusProvider() interfaces.DataSourceStatusProvider {
	return c.statusProvider
}

func (c *FakeLDClient) GetFlagTracker() interfaces.FlagTracker {
	return c.flagTracker
}

func (c *FakeLDClient) IsOffline() bool {
	return c.Offline
}

func (c *FakeLDClient) Close() error {
	c.closeOnce.Do(func() { close(c.CloseCh) })
	return nil
}

// SetDataSourceStatus changes the data source status and notifies status listeners.
func (c *FakeLDClient) SetDataSourceStatus(newStatus interfaces.DataSourceStatus) {
	c.statusProvider.update(newStatus)
}

// FireFlagChange notifies flag change listeners that a flag changed.
func (c *FakeLDClient) FireFlagChange(key string) {
	c.flagTracker.fire(interfaces.FlagChangeEvent{Key: key})
}

// FlagChangeListenerCount returns the number of active flag change listeners.
func (c *FakeLDClient) FlagChangeListenerCount() int {
	c.flagTracker.lock.Lock()
	defer c.flagTracker.lock.Unlock()
	return len(c.flagTracker.listeners)
}

func (c *FakeLDClient) AwaitClose(t *testing.T, timeout time.Duration) {
	if !helpers.AssertChannelClosed(t, c.CloseCh, timeout, "timed out waiting for SDK client to be closed") {
		t.FailNow()
	}
}

// FakeLDClientFactory returns a factory that always produces the given client, recording the
// SDK key and configuration it was called with.
func FakeLDClientFactory(client *FakeLDClient) provider.ClientFactoryFunc {
	return func(sdkKey string, config ld.Config) (provider.LDClient, error) {
		client.SDKKey = sdkKey
		client.Config = config
		return client, nil
	}
}

// ClientFactoryThatFails returns a factory that always returns the given error.
func ClientFactoryThatFails(err error) provider.ClientFactoryFunc {
	return func(sdkKey string, config ld.Config) (provider.LDClient, error) {
		return nil, err
	}
}

type fakeStatusProvider struct {
	status    interfaces.DataSourceStatus
	listeners []chan interfaces.DataSourceStatus
	lock      sync.Mutex
}

func (s *fakeStatusProvider) GetStatus() interfaces.DataSourceStatus {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.status
}

func (s *fakeStatusProvider) AddStatusListener() <-chan interfaces.DataSourceStatus {
	s.lock.Lock()
	defer s.lock.Unlock()
	ch := make(chan interfaces.DataSourceStatus, 10)
	s.listeners = append(s.listeners, ch)
	return ch
}

func (s *fakeStatusProvider) RemoveStatusListener(listener <-chan interfaces.DataSourceStatus) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, ch := range s.listeners {
		if ch == listener {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

func (s *fakeStatusProvider) WaitFor(desiredState interfaces.DataSourceState, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.GetStatus().State == desiredState {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond * 5)
	}
}

func (s *fakeStatusProvider) update(newStatus interfaces.DataSourceStatus) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.status = newStatus
	for _, ch := range s.listeners {
		ch <- newStatus
	}
}

type fakeFlagTracker struct {
	listeners []chan interfaces.FlagChangeEvent
	lock      sync.Mutex
}

func (f *fakeFlagTracker) AddFlagChangeListener() <-chan interfaces.FlagChangeEvent {
	f.lock.Lock()
	defer f.lock.Unlock()
	ch := make(chan interfaces.FlagChangeEvent, 10)
	f.listeners = append(f.listeners, ch)
	return ch
}

func (f *fakeFlagTracker) RemoveFlagChangeListener(listener <-chan interfaces.FlagChangeEvent) {
	f.lock.Lock()
	defer f.lock.Unlock()
	for i, ch := range f.listeners {
		if ch == listener {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

func (f *fakeFlagTracker) AddFlagValueChangeListener(
	flagKey string,
	context ldcontext.Context,
	defaultValue ldvalue.Value,
) <-chan interfaces.FlagValueChangeEvent {
	return make(chan interfaces.FlagValueChangeEvent)
}

func (f *fakeFlagTracker) RemoveFlagValueChangeListener(listener <-chan interfaces.FlagValueChangeEvent) {}

func (f *fakeFlagTracker) fire(event interfaces.FlagChangeEvent) {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, ch := range f.listeners {
		ch <- event
	}
}
