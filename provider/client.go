package provider

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/launchdarkly/go-sdk-common/v3/ldreason"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/launchdarkly/go-server-sdk/v7/interfaces"
)

// LDClient is the subset of the LaunchDarkly client's methods that the provider uses. It is
// normally a *ld.LDClient; the interface exists so test code can substitute a fake client.
type LDClient interface {
	BoolVariationDetail(key string, context ldcontext.Context, defaultVal bool) (bool, ldreason.EvaluationDetail, error)
	IntVariationDetail(key string, context ldcontext.Context, defaultVal int) (int, ldreason.EvaluationDetail, error)
	Float64VariationDetail(
		key string,
		context ldcontext.Context,
		defaultVal float64,
	) (float64, ldreason.EvaluationDetail, error)
	StringVariationDetail(
		key string,
		context ldcontext.Context,
		defaultVal string,
	) (string, ldreason.EvaluationDetail, error)
	JSONVariationDetail(
		key string,
		context ldcontext.Context,
		defaultVal ldvalue.Value,
	) (ldvalue.Value, ldreason.EvaluationDetail, error)
	GetDataSourceStatusProvider() interfaces.DataSourceStatusProvider
	GetFlagTracker() interfaces.FlagTracker
	IsOffline() bool
	Close() error
}

// ClientFactoryFunc creates the LaunchDarkly client for a provider. It must not block waiting for
// the client to initialize; the provider does that itself in Init.
type ClientFactoryFunc func(sdkKey string, config ld.Config) (LDClient, error)

// DefaultClientFactory creates a real LaunchDarkly client without waiting for it to initialize.
func DefaultClientFactory() ClientFactoryFunc {
	return func(sdkKey string, config ld.Config) (LDClient, error) {
		client, err := ld.MakeCustomClient(sdkKey, config, 0)
		if client == nil {
			// avoid returning a non-nil interface that wraps a nil pointer
			return nil, err
		}
		return client, err
	}
}
