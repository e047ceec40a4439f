package sdks

import (
	"github.com/launchdarkly/ld-openfeature-bridge/config"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/httpconfig"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	ldevents "github.com/launchdarkly/go-sdk-events/v3"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/launchdarkly/go-server-sdk/v7/interfaces"
	"github.com/launchdarkly/go-server-sdk/v7/ldcomponents"
	"github.com/launchdarkly/go-server-sdk/v7/ldfiledata"
	"github.com/launchdarkly/go-server-sdk/v7/ldfilewatch"
	"github.com/launchdarkly/go-server-sdk/v7/subsystems"
)

// MakeSDKConfig creates the LaunchDarkly SDK configuration for the provider. The SDK logs through the
// given loggers at the configured log level.
func MakeSDKConfig(c config.Config, loggers ldlog.Loggers) (ld.Config, DataStoreInfo, error) {
	var ret ld.Config

	ret.Logging = ldcomponents.Logging().
		Loggers(loggers).
		MinLevel(c.Main.LogLevel.GetOrElse(ldlog.Info))

	if c.Main.Offline {
		ret.Offline = true
		return ret, DataStoreInfo{}, nil
	}

	httpConfig, err := httpconfig.NewHTTPConfig(c.Proxy, c.Main.SDKKey, loggers)
	if err != nil {
		return ret, DataStoreInfo{}, err
	}
	ret.HTTP = httpConfig.SDKHTTPConfigurer

	ret.ServiceEndpoints = makeServiceEndpoints(c)
	ret.DataSource = makeDataSource(c, loggers)
	ret.Events = makeEvents(c)

	if c.IsFileDataEnabled() {
		// flag data comes only from the files, so there is nothing to persist
		return ret, DataStoreInfo{}, nil
	}

	dataStore, info, err := ConfigureDataStore(c, loggers)
	if err != nil {
		return ret, DataStoreInfo{}, err
	}
	ret.DataStore = dataStore

	bigSegments, err := ConfigureBigSegments(c, loggers)
	if err != nil {
		return ret, DataStoreInfo{}, err
	}
	ret.BigSegments = bigSegments
	return ret, info, nil
}

func makeServiceEndpoints(c config.Config) interfaces.ServiceEndpoints {
	if c.Main.RelayProxyURI.IsDefined() {
		return ldcomponents.RelayProxyEndpoints(c.Main.RelayProxyURI.String())
	}
	return interfaces.ServiceEndpoints{
		Streaming: c.Main.StreamURI.String(),
		Polling:   c.Main.BaseURI.String(),
		Events:    c.Events.EventsURI.String(),
	}
}

func makeDataSource(c config.Config, loggers ldlog.Loggers) subsystems.ComponentConfigurer[subsystems.DataSource] {
	if c.IsFileDataEnabled() {
		paths := c.FileData.Paths.Values()
		loggers.Infof("Reading flag data from files: %v", paths)
		builder := ldfiledata.DataSource().FilePaths(paths...)
		if c.FileData.AutoReload {
			builder.Reloader(ldfilewatch.WatchFiles)
		}
		return builder
	}
	if c.Main.Polling {
		return ldcomponents.PollingDataSource().
			PollInterval(c.Main.PollInterval.GetOrElse(config.MinimumPollInterval))
	}
	return ldcomponents.StreamingDataSource()
}

func makeEvents(c config.Config) subsystems.ComponentConfigurer[ldevents.EventProcessor] {
	if !c.Events.SendEvents || c.IsFileDataEnabled() {
		return ldcomponents.NoEvents()
	}
	return ldcomponents.SendEvents().
		Capacity(c.Events.Capacity.GetOrElse(ldcomponents.DefaultEventsCapacity)).
		FlushInterval(c.Events.FlushInterval.GetOrElse(config.DefaultEventsFlushInterval))
}
