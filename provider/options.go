package provider

import (
	"context"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/open-feature/go-sdk/openfeature"
)

const (
	// DefaultProviderName is the name reported in the provider's metadata and events.
	DefaultProviderName = "launchdarkly-openfeature-provider"

	// DefaultEventBufferSize is the capacity of the channel returned by EventChannel.
	DefaultEventBufferSize = 100
)

// Flag types passed to EvaluationRecorder.
const (
	FlagTypeBoolean = "boolean"
	FlagTypeString  = "string"
	FlagTypeInt     = "int"
	FlagTypeFloat   = "float"
	FlagTypeObject  = "object"
)

// EvaluationRecorder receives a notification after every evaluation, for instance to update metrics.
// It is called synchronously on the evaluating goroutine and must not block.
type EvaluationRecorder interface {
	RecordEvaluation(ctx context.Context, flagType string, reason openfeature.Reason, errorCode openfeature.ErrorCode)
}

// Option is a configuration option for New.
type Option func(*options)

type options struct {
	name            string
	sdkConfig       ld.Config
	loggers         ldlog.Loggers
	clientFactory   ClientFactoryFunc
	eventBufferSize int
	recorder        EvaluationRecorder
}

func defaultOptions() options {
	return options{
		name:            DefaultProviderName,
		loggers:         ldlog.NewDefaultLoggers(),
		clientFactory:   DefaultClientFactory(),
		eventBufferSize: DefaultEventBufferSize,
	}
}

// WithConfig sets the LaunchDarkly SDK configuration. If config.Logging is nil, the SDK logs
// through the provider's loggers, at Warn level unless they are at Debug level.
func WithConfig(config ld.Config) Option {
	return func(o *options) {
		o.sdkConfig = config
	}
}

// WithLoggers sets the loggers used by the provider itself.
func WithLoggers(loggers ldlog.Loggers) Option {
	return func(o *options) {
		o.loggers = loggers
	}
}

// WithClientFactory replaces the function that creates the LaunchDarkly client.
func WithClientFactory(factory ClientFactoryFunc) Option {
	return func(o *options) {
		if factory != nil {
			o.clientFactory = factory
		}
	}
}

// WithEventBufferSize sets the capacity of the event channel. Once it is full, a flag change
// notification waits briefly for the OpenFeature SDK to consume earlier events and is then dropped
// with a warning.
func WithEventBufferSize(size int) Option {
	return func(o *options) {
		if size >= 0 {
			o.eventBufferSize = size
		}
	}
}

// WithEvaluationRecorder registers an observer of evaluation results.
func WithEvaluationRecorder(recorder EvaluationRecorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// WithProviderName overrides DefaultProviderName.
func WithProviderName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
