// Package config contains the configuration of the ld-openfeature-bridge service: the settings for the
// LaunchDarkly SDK behind the OpenFeature provider, its optional persistent data store, the HTTP API,
// and the metrics exporters.
package config

import (
	"time"

	ct "github.com/launchdarkly/go-configtypes"
)

const (
	// DefaultPort is the default port for the HTTP API.
	DefaultPort = 8030

	// DefaultInitTimeout is the default value for MainConfig.InitTimeout if not specified.
	DefaultInitTimeout = time.Second * 10

	// DefaultHeartbeatInterval is the default value for MainConfig.HeartbeatInterval if not specified.
	DefaultHeartbeatInterval = time.Minute * 3

	// DefaultEventsFlushInterval is the default value for EventsConfig.FlushInterval if not specified.
	DefaultEventsFlushInterval = time.Second * 5

	// DefaultDatabaseCacheTTL is the default value for the LocalTTL parameter for databases if not specified.
	DefaultDatabaseCacheTTL = time.Second * 30

	// MinimumPollInterval is the shortest polling interval that the LaunchDarkly SDK allows.
	MinimumPollInterval = time.Second * 30

	// DefaultMaxRequestBodyBytes is the default value for MainConfig.MaxRequestBodyBytes if not specified.
	DefaultMaxRequestBodyBytes = 1 << 20
)

const (
	defaultEventCapacity = 1000
	defaultRedisHost     = "localhost"
	defaultRedisPort     = 6379
	defaultConsulHost    = "localhost"
)

// DefaultPrometheusPort is the default value for PrometheusConfig.Port if not specified.
const DefaultPrometheusPort = 8031

var defaultRedisURL = newOptURLAbsoluteMustBeValid("redis://localhost:6379")

// SDKKey is a type tag to indicate when a string is used as a server-side SDK key for a LaunchDarkly
// environment.
type SDKKey string

// Config describes the configuration for the service.
//
// Programmatic configuration should start from a copy of DefaultConfig.
type Config struct {
	Main     MainConfig
	Events   EventsConfig
	FileData FileDataConfig
	Redis    RedisConfig
	Consul   ConsulConfig
	DynamoDB DynamoDBConfig
	Proxy    ProxyConfig

	// Unlike the other fields, MetricsConfig is not the name of a configuration file section; the
	// actual sections are the structs within it (Datadog, etc.).
	MetricsConfig
}

// MainConfig contains global configuration options.
//
// This corresponds to the [Main] section in the configuration file.
type MainConfig struct {
	SDKKey              SDKKey                   // LD_SDK_KEY
	ProviderName        string                   `conf:"PROVIDER_NAME"`
	Offline             bool                     `conf:"OFFLINE"`
	Port                ct.OptIntGreaterThanZero `conf:"PORT"`
	BaseURI             ct.OptURLAbsolute        `conf:"BASE_URI"`
	StreamURI           ct.OptURLAbsolute        `conf:"STREAM_URI"`
	RelayProxyURI       ct.OptURLAbsolute        `conf:"RELAY_PROXY_URI"`
	Polling             bool                     `conf:"POLLING"`
	PollInterval        ct.OptDuration           `conf:"POLL_INTERVAL"`
	InitTimeout         ct.OptDuration           `conf:"INIT_TIMEOUT"`
	HeartbeatInterval   ct.OptDuration           `conf:"HEARTBEAT_INTERVAL"`
	TLSEnabled          bool                     `conf:"TLS_ENABLED"`
	TLSCert             string                   `conf:"TLS_CERT"`
	TLSKey              string                   `conf:"TLS_KEY"`
	TLSMinVersion       OptTLSVersion            `conf:"TLS_MIN_VERSION"`
	LogLevel            OptLogLevel              `conf:"LOG_LEVEL"`
	MaxRequestBodyBytes ct.OptIntGreaterThanZero `conf:"MAX_REQUEST_BODY_BYTES"`
}

// EventsConfig contains configuration parameters for analytics events sent by the SDK.
type EventsConfig struct {
	SendEvents    bool                     `conf:"USE_EVENTS"`
	EventsURI     ct.OptURLAbsolute        `conf:"EVENTS_HOST"`
	FlushInterval ct.OptDuration           `conf:"EVENTS_FLUSH_INTERVAL"`
	Capacity      ct.OptIntGreaterThanZero `conf:"EVENTS_CAPACITY"`
}

// FileDataConfig configures flag data loaded from local files instead of LaunchDarkly. It is used
// only if Paths is non-empty.
//
// This corresponds to the [FileData] section in the configuration file.
type FileDataConfig struct {
	Paths      ct.OptStringList `conf:"FILE_DATA_PATHS"`
	AutoReload bool             `conf:"FILE_DATA_AUTO_RELOAD"`
}

// RedisConfig configures the optional Redis integration.
//
// Redis is enabled if URL or Host is non-empty or if Port is defined. If only Host or Port is set,
// the other value is set to defaultRedisPort or defaultRedisHost. It is an error to set Host or
// Port if URL is also set.
//
// This corresponds to the [Redis] section in the configuration file.
type RedisConfig struct {
	Host     string                   `conf:"REDIS_HOST"`
	Port     ct.OptIntGreaterThanZero // handled separately in LoadConfigFromEnvironment
	URL      ct.OptURLAbsolute        `conf:"REDIS_URL"`
	Prefix   string                   `conf:"REDIS_PREFIX"`
	LocalTTL ct.OptDuration           `conf:"CACHE_TTL"`
	TLS      bool                     `conf:"REDIS_TLS"`
	Password string                   `conf:"REDIS_PASSWORD"`
}

// ConsulConfig configures the optional Consul integration.
//
// Consul is enabled if Host is non-empty.
//
// This corresponds to the [Consul] section in the configuration file.
type ConsulConfig struct {
	Host      string         `conf:"CONSUL_HOST"`
	Prefix    string         `conf:"CONSUL_PREFIX"`
	Token     string         `conf:"CONSUL_TOKEN"`
	TokenFile string         `conf:"CONSUL_TOKEN_FILE"`
	LocalTTL  ct.OptDuration `conf:"CACHE_TTL"`
}

// DynamoDBConfig configures the optional DynamoDB integration, which is used only if Enabled is true.
//
// This corresponds to the [DynamoDB] section in the configuration file.
type DynamoDBConfig struct {
	Enabled   bool              `conf:"USE_DYNAMODB"`
	TableName string            `conf:"DYNAMODB_TABLE"`
	Prefix    string            `conf:"DYNAMODB_PREFIX"`
	URL       ct.OptURLAbsolute `conf:"DYNAMODB_URL"`
	Region    string            `conf:"DYNAMODB_REGION"`
	AccessKey string            `conf:"DYNAMODB_ACCESS_KEY"`
	SecretKey string            `conf:"DYNAMODB_SECRET_KEY"`
	LocalTTL  ct.OptDuration    `conf:"CACHE_TTL"`
}

// ProxyConfig configures an outbound HTTP proxy for the SDK's connections to LaunchDarkly.
type ProxyConfig struct {
	URL        ct.OptURLAbsolute `conf:"PROXY_URL"`
	User       string            `conf:"PROXY_AUTH_USER"`
	Password   string            `conf:"PROXY_AUTH_PASSWORD"`
	CACertFile string            `conf:"PROXY_CA_CERT"`
}

// MetricsConfig contains configurations for optional metrics integrations.
//
// This corresponds to the [Datadog], [Stackdriver], and [Prometheus] sections in the configuration file.
type MetricsConfig struct {
	Datadog     DatadogConfig
	Stackdriver StackdriverConfig
	Prometheus  PrometheusConfig
}

// DatadogConfig configures the optional Datadog integration, which is used only if Enabled is true.
type DatadogConfig struct {
	Enabled   bool   `conf:"USE_DATADOG"`
	Prefix    string `conf:"DATADOG_PREFIX"`
	TraceAddr string `conf:"DATADOG_TRACE_ADDR"`
	StatsAddr string `conf:"DATADOG_STATSD_ADDR"`
	Tag       []string
}

// StackdriverConfig configures the optional Stackdriver integration, which is used only if Enabled is true.
type StackdriverConfig struct {
	Enabled   bool   `conf:"USE_STACKDRIVER"`
	Prefix    string `conf:"STACKDRIVER_PREFIX"`
	ProjectID string `conf:"STACKDRIVER_PROJECT_ID"`
}

// PrometheusConfig configures the optional Prometheus integration, which is used only if Enabled is true.
type PrometheusConfig struct {
	Enabled bool                     `conf:"USE_PROMETHEUS"`
	Prefix  string                   `conf:"PROMETHEUS_PREFIX"`
	Port    ct.OptIntGreaterThanZero `conf:"PROMETHEUS_PORT"`
}

// DefaultConfig contains defaults for all configuration sections.
var DefaultConfig = Config{
	Main: MainConfig{
		Port:                mustOptIntGreaterThanZero(DefaultPort),
		InitTimeout:         ct.NewOptDuration(DefaultInitTimeout),
		HeartbeatInterval:   ct.NewOptDuration(DefaultHeartbeatInterval),
		MaxRequestBodyBytes: mustOptIntGreaterThanZero(DefaultMaxRequestBodyBytes),
	},
	Events: EventsConfig{
		Capacity:      mustOptIntGreaterThanZero(defaultEventCapacity),
		FlushInterval: ct.NewOptDuration(DefaultEventsFlushInterval),
	},
	MetricsConfig: MetricsConfig{
		Prometheus: PrometheusConfig{
			Port: mustOptIntGreaterThanZero(DefaultPrometheusPort),
		},
	},
}

// IsFileDataEnabled returns true if flag data is read from local files.
func (c Config) IsFileDataEnabled() bool {
	return len(c.FileData.Paths.Values()) != 0
}

func mustOptIntGreaterThanZero(n int) ct.OptIntGreaterThanZero {
	o, err := ct.NewOptIntGreaterThanZero(n)
	if err != nil {
		panic(err)
	}
	return o
}

func newOptURLAbsoluteMustBeValid(urlString string) ct.OptURLAbsolute {
	o, err := ct.NewOptURLAbsoluteFromString(urlString)
	if err != nil {
		panic(err)
	}
	return o
}
