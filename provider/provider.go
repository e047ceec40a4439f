package provider

import (
	"context"
	"sync"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldreason"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/launchdarkly/go-server-sdk/v7/interfaces"
	"github.com/launchdarkly/go-server-sdk/v7/ldcomponents"
	"github.com/open-feature/go-sdk/openfeature"
)

// Provider is an OpenFeature provider backed by a LaunchDarkly client.
//
// It implements openfeature.FeatureProvider, openfeature.StateHandler and openfeature.EventHandler.
// All methods are safe for concurrent use.
type Provider struct {
	name            string
	loggers         ldlog.Loggers
	client          LDClient
	constructionErr error
	recorder        EvaluationRecorder

	events      chan openfeature.Event
	flagChanges <-chan interfaces.FlagChangeEvent
	closeCh     chan struct{}
	closeOnce   sync.Once
	relayDone   chan struct{}

	status openfeature.State
	lock   sync.RWMutex
}

// New creates a Provider and its LaunchDarkly client.
//
// New never fails. If the client cannot be created, the error is logged, the provider's status is
// ERROR, and the same error is returned by Init. The client is not usable until Init succeeds.
func New(sdkKey string, options ...Option) *Provider {
	o := defaultOptions()
	for _, opt := range options {
		opt(&o)
	}

	p := &Provider{
		name:     o.name,
		loggers:  o.loggers,
		recorder: o.recorder,
		events:   make(chan openfeature.Event, o.eventBufferSize),
		closeCh:  make(chan struct{}),
		status:   openfeature.NotReadyState,
	}

	sdkConfig := o.sdkConfig
	if sdkConfig.Logging == nil {
		sdkConfig.Logging = ldcomponents.Logging().Loggers(sdkLoggers(o.loggers))
	}

	client, err := o.clientFactory(sdkKey, sdkConfig)
	if err != nil || client == nil {
		if client != nil {
			_ = client.Close()
		}
		p.constructionErr = err
		p.loggers.Errorf("Encountered unrecoverable initialization error, %s", err)
		p.status = openfeature.ErrorState
		return p
	}

	p.client = client
	p.flagChanges = client.GetFlagTracker().AddFlagChangeListener()
	p.relayDone = make(chan struct{})
	go p.relayFlagChanges()

	return p
}

// sdkLoggers returns the loggers the SDK inherits from the provider. The SDK's own startup lines are
// Info messages, so at the default level only its warnings and errors are passed on.
func sdkLoggers(loggers ldlog.Loggers) ldlog.Loggers {
	if loggers.GetMinLevel() == ldlog.Info {
		loggers.SetMinLevel(ldlog.Warn)
	}
	return loggers
}

// Metadata returns the provider's name.
func (p *Provider) Metadata() openfeature.Metadata {
	return openfeature.Metadata{Name: p.name}
}

// Hooks returns the provider's hooks. There are none.
func (p *Provider) Hooks() []openfeature.Hook {
	return []openfeature.Hook{}
}

// Client returns the underlying LaunchDarkly client, or nil if it could not be created. Unless a
// custom client factory was used, this is a *ld.LDClient.
func (p *Provider) Client() LDClient {
	return p.client
}

// Status returns the provider's current state: NOT_READY until Init completes, then READY or ERROR.
// Callers that read this while Init is still running may see NOT_READY.
func (p *Provider) Status() openfeature.State {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.status
}

// EventChannel returns the channel on which the provider publishes configuration change events.
func (p *Provider) EventChannel() <-chan openfeature.Event {
	return p.events
}

// Init is the same as InitWithContext with a background context.
func (p *Provider) Init(evalCtx openfeature.EvaluationContext) error {
	return p.InitWithContext(context.Background(), evalCtx)
}

// InitWithContext waits until the LaunchDarkly client has received its flag data. It returns an
// error if the client could not be created, if the client gave up on connecting (for instance
// because the SDK key was rejected), or if ctx is done first. There is no other timeout.
func (p *Provider) InitWithContext(ctx context.Context, _ openfeature.EvaluationContext) error {
	if p.client == nil {
		if p.constructionErr != nil {
			return p.constructionErr
		}
		return errUnknownInitProblem
	}

	if p.client.IsOffline() {
		p.loggers.Info("Offline mode enabled. No streaming or polling will occur.")
	}

	if err := p.awaitDataSource(ctx); err != nil {
		p.setStatus(openfeature.ErrorState)
		return err
	}

	p.setStatus(openfeature.ReadyState)
	p.loggers.Info("LaunchDarkly client started successfully.")
	return nil
}

func (p *Provider) awaitDataSource(ctx context.Context) error {
	statusProvider := p.client.GetDataSourceStatusProvider()
	statusCh := statusProvider.AddStatusListener()
	defer statusProvider.RemoveStatusListener(statusCh)

	// The listener is added before reading the current status so that no transition is missed.
	status := statusProvider.GetStatus()
	for {
		switch status.State {
		case interfaces.DataSourceStateValid:
			return nil
		case interfaces.DataSourceStateOff:
			return initializationError(status)
		}
		select {
		case newStatus, ok := <-statusCh:
			if !ok {
				return ErrInitializationFailed
			}
			status = newStatus
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// setStatus applies a state transition. ERROR is terminal.
func (p *Provider) setStatus(status openfeature.State) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.status != openfeature.ErrorState {
		p.status = status
	}
}

// Shutdown is the same as ShutdownWithContext with a background context; errors are logged.
func (p *Provider) Shutdown() {
	if err := p.ShutdownWithContext(context.Background()); err != nil {
		p.loggers.Warnf("Error closing LaunchDarkly client: %s", err)
	}
}

// ShutdownWithContext stops relaying events and closes the LaunchDarkly client, which flushes any
// pending analytics events. Calling it more than once relies on the client's own handling of
// repeated Close calls.
func (p *Provider) ShutdownWithContext(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	p.closeOnce.Do(func() {
		close(p.closeCh)
		p.client.GetFlagTracker().RemoveFlagChangeListener(p.flagChanges)
	})

	result := make(chan error, 1)
	go func() {
		result <- p.client.Close()
	}()
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BooleanEvaluation evaluates a boolean flag.
func (p *Provider) BooleanEvaluation(
	ctx context.Context,
	flag string,
	defaultValue bool,
	evalCtx openfeature.FlattenedContext,
) openfeature.BoolResolutionDetail {
	res := evaluate(ctx, p, FlagTypeBoolean, defaultValue, evalCtx,
		func(c LDClient, ldc ldcontext.Context) (bool, ldreason.EvaluationDetail, error) {
			return c.BoolVariationDetail(flag, ldc, defaultValue)
		})
	return openfeature.BoolResolutionDetail{Value: res.Value, ProviderResolutionDetail: res.ProviderDetail()}
}

// StringEvaluation evaluates a string flag.
func (p *Provider) StringEvaluation(
	ctx context.Context,
	flag string,
	defaultValue string,
	evalCtx openfeature.FlattenedContext,
) openfeature.StringResolutionDetail {
	res := evaluate(ctx, p, FlagTypeString, defaultValue, evalCtx,
		func(c LDClient, ldc ldcontext.Context) (string, ldreason.EvaluationDetail, error) {
			return c.StringVariationDetail(flag, ldc, defaultValue)
		})
	return openfeature.StringResolutionDetail{Value: res.Value, ProviderResolutionDetail: res.ProviderDetail()}
}

// FloatEvaluation evaluates a numeric flag as a float64.
func (p *Provider) FloatEvaluation(
	ctx context.Context,
	flag string,
	defaultValue float64,
	evalCtx openfeature.FlattenedContext,
) openfeature.FloatResolutionDetail {
	res := evaluate(ctx, p, FlagTypeFloat, defaultValue, evalCtx,
		func(c LDClient, ldc ldcontext.Context) (float64, ldreason.EvaluationDetail, error) {
			return c.Float64VariationDetail(flag, ldc, defaultValue)
		})
	return openfeature.FloatResolutionDetail{Value: res.Value, ProviderResolutionDetail: res.ProviderDetail()}
}

// IntEvaluation evaluates a numeric flag as an integer. Non-integer values are truncated.
func (p *Provider) IntEvaluation(
	ctx context.Context,
	flag string,
	defaultValue int64,
	evalCtx openfeature.FlattenedContext,
) openfeature.IntResolutionDetail {
	res := evaluate(ctx, p, FlagTypeInt, defaultValue, evalCtx,
		func(c LDClient, ldc ldcontext.Context) (int64, ldreason.EvaluationDetail, error) {
			value, detail, err := c.IntVariationDetail(flag, ldc, int(defaultValue))
			return int64(value), detail, err
		})
	return openfeature.IntResolutionDetail{Value: res.Value, ProviderResolutionDetail: res.ProviderDetail()}
}

// ObjectEvaluation evaluates a flag of any JSON type. The default value must be convertible to
// JSON; if the evaluation fails, it is returned as is.
func (p *Provider) ObjectEvaluation(
	ctx context.Context,
	flag string,
	defaultValue interface{},
	evalCtx openfeature.FlattenedContext,
) openfeature.InterfaceResolutionDetail {
	res := evaluate(ctx, p, FlagTypeObject, defaultValue, evalCtx,
		func(c LDClient, ldc ldcontext.Context) (interface{}, ldreason.EvaluationDetail, error) {
			value, detail, err := c.JSONVariationDetail(flag, ldc, ldvalue.CopyArbitraryValue(defaultValue))
			if detail.Reason.GetKind() == ldreason.EvalReasonError {
				return defaultValue, detail, err
			}
			return value.AsArbitraryValue(), detail, err
		})
	return openfeature.InterfaceResolutionDetail{Value: res.Value, ProviderResolutionDetail: res.ProviderDetail()}
}

func evaluate[T any](
	ctx context.Context,
	p *Provider,
	flagType string,
	defaultValue T,
	evalCtx openfeature.FlattenedContext,
	variation func(LDClient, ldcontext.Context) (T, ldreason.EvaluationDetail, error),
) ResolutionDetails[T] {
	var res ResolutionDetails[T]
	if p.client == nil {
		res = errorResult(defaultValue, openfeature.ProviderNotReadyCode, "LaunchDarkly client could not be created")
	} else {
		value, detail, err := variation(p.client, TranslateContext(p.loggers, evalCtx).LDContext())
		res = TranslateResult(value, detail, err)
	}
	if p.recorder != nil {
		p.recorder.RecordEvaluation(ctx, flagType, res.Reason, res.ErrorCode)
	}
	return res
}
