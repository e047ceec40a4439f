package config

import (
	"crypto/tls"
	"testing"
	"time"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"

	"github.com/stretchr/testify/assert"
)

type testDataValidConfig struct {
	name        string
	makeConfig  func(c *Config)
	envVars     map[string]string
	fileContent string
	assertLog   func(t *testing.T, mockLog *ldlogtest.MockLog)
}

type testDataInvalidConfig struct {
	name         string
	envVarsError string
	fileError    string
	envVars      map[string]string
	fileContent  string
}

func (tdc testDataValidConfig) assertResult(t *testing.T, actualConfig Config, mockLog *ldlogtest.MockLog) {
	var expectedConfig Config
	tdc.makeConfig(&expectedConfig)
	assert.Equal(t, expectedConfig, actualConfig)
	if tdc.assertLog != nil {
		tdc.assertLog(t, mockLog)
	}
}

func makeValidConfigs() []testDataValidConfig {
	return []testDataValidConfig{
		makeValidConfigAllBaseProperties(),
		makeValidConfigOffline(),
		makeValidConfigOfflineWithEvents(),
		makeValidConfigFileData(),
		makeValidConfigRelayProxy(),
		makeValidConfigPolling(),
		makeValidConfigRedisMinimal(),
		makeValidConfigRedisAll(),
		makeValidConfigRedisURL(),
		makeValidConfigRedisPortOnly(),
		makeValidConfigRedisDockerPort(),
		makeValidConfigConsulMinimal(),
		makeValidConfigConsulAll(),
		makeValidConfigDynamoDB(),
		makeValidConfigDatadog(),
		makeValidConfigStackdriver(),
		makeValidConfigPrometheus(),
		makeValidConfigProxy(),
	}
}

func makeInvalidConfigs() []testDataInvalidConfig {
	return []testDataInvalidConfig{
		makeInvalidConfigMissingSDKKey(),
		makeInvalidConfigTLSWithNoCertOrKey(),
		makeInvalidConfigFileDataWithOffline(),
		makeInvalidConfigFileDataWithPolling(),
		makeInvalidConfigFileDataWithRelayProxy(),
		makeInvalidConfigRelayProxyWithBaseURI(),
		makeInvalidConfigPollIntervalTooShort(),
		makeInvalidConfigRedisInvalidHostname(),
		makeInvalidConfigRedisInvalidDockerPort(),
		makeInvalidConfigRedisConflictingParams(),
		makeInvalidConfigMultipleDatabases(),
		makeInvalidConfigConsulTokenAndTokenFile(),
		makeInvalidConfigDynamoDBWithoutTable(),
		makeInvalidConfigDynamoDBPartialCredentials(),
	}
}

func withSDKKey(c *Config) {
	c.Main.SDKKey = SDKKey("my-key")
}

func makeValidConfigAllBaseProperties() testDataValidConfig {
	c := testDataValidConfig{name: "all base properties"}
	c.makeConfig = func(c *Config) {
		c.Main = MainConfig{
			SDKKey:              SDKKey("my-key"),
			ProviderName:        "my-provider",
			Port:                mustOptIntGreaterThanZero(8333),
			BaseURI:             newOptURLAbsoluteMustBeValid("http://base"),
			StreamURI:           newOptURLAbsoluteMustBeValid("http://stream"),
			InitTimeout:         ct.NewOptDuration(5 * time.Second),
			HeartbeatInterval:   ct.NewOptDuration(90 * time.Second),
			TLSEnabled:          true,
			TLSCert:             "cert",
			TLSKey:              "key",
			TLSMinVersion:       NewOptTLSVersion(tls.VersionTLS12),
			LogLevel:            NewOptLogLevel(ldlog.Warn),
			MaxRequestBodyBytes: mustOptIntGreaterThanZero(4096),
		}
		c.Events = EventsConfig{
			SendEvents:    true,
			EventsURI:     newOptURLAbsoluteMustBeValid("http://events"),
			FlushInterval: ct.NewOptDuration(time.Second),
			Capacity:      mustOptIntGreaterThanZero(500),
		}
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":             "my-key",
		"PROVIDER_NAME":          "my-provider",
		"PORT":                   "8333",
		"BASE_URI":               "http://base",
		"STREAM_URI":             "http://stream",
		"INIT_TIMEOUT":           "5s",
		"HEARTBEAT_INTERVAL":     "90s",
		"TLS_ENABLED":            "1",
		"TLS_CERT":               "cert",
		"TLS_KEY":                "key",
		"TLS_MIN_VERSION":        "1.2",
		"LOG_LEVEL":              "warn",
		"MAX_REQUEST_BODY_BYTES": "4096",
		"USE_EVENTS":             "1",
		"EVENTS_HOST":            "http://events",
		"EVENTS_FLUSH_INTERVAL":  "1s",
		"EVENTS_CAPACITY":        "500",
	}
	c.fileContent = `
[Main]
SDKKey = "my-key"
ProviderName = "my-provider"
Port = 8333
BaseUri = "http://base"
StreamUri = "http://stream"
InitTimeout = 5s
HeartbeatInterval = 90s
TLSEnabled = 1
TLSCert = "cert"
TLSKey = "key"
TLSMinVersion = "1.2"
LogLevel = "warn"
MaxRequestBodyBytes = 4096

[Events]
SendEvents = 1
EventsUri = "http://events"
FlushInterval = 1s
Capacity = 500
`
	return c
}

func makeValidConfigOffline() testDataValidConfig {
	c := testDataValidConfig{name: "offline"}
	c.makeConfig = func(c *Config) {
		c.Main.Offline = true
	}
	c.envVars = map[string]string{"OFFLINE": "1"}
	c.fileContent = `
[Main]
Offline = true
`
	return c
}

func makeValidConfigOfflineWithEvents() testDataValidConfig {
	c := testDataValidConfig{name: "offline with events"}
	c.makeConfig = func(c *Config) {
		c.Main.Offline = true
		c.Events.SendEvents = true
	}
	c.envVars = map[string]string{"OFFLINE": "1", "USE_EVENTS": "1"}
	c.fileContent = `
[Main]
Offline = true

[Events]
SendEvents = true
`
	c.assertLog = func(t *testing.T, mockLog *ldlogtest.MockLog) {
		mockLog.AssertMessageMatch(t, true, ldlog.Warn, "not sent in offline mode")
	}
	return c
}

func makeValidConfigFileData() testDataValidConfig {
	c := testDataValidConfig{name: "file data"}
	c.makeConfig = func(c *Config) {
		c.FileData = FileDataConfig{
			Paths:      ct.NewOptStringList([]string{"flags1.json", "flags2.yaml"}),
			AutoReload: true,
		}
	}
	c.envVars = map[string]string{
		"FILE_DATA_PATHS":       "flags1.json,flags2.yaml",
		"FILE_DATA_AUTO_RELOAD": "true",
	}
	c.fileContent = `
[FileData]
Paths = flags1.json
Paths = flags2.yaml
AutoReload = true
`
	return c
}

func makeValidConfigRelayProxy() testDataValidConfig {
	c := testDataValidConfig{name: "relay proxy"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Main.RelayProxyURI = newOptURLAbsoluteMustBeValid("http://relay:8030")
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":      "my-key",
		"RELAY_PROXY_URI": "http://relay:8030",
	}
	c.fileContent = `
[Main]
SDKKey = my-key
RelayProxyUri = "http://relay:8030"
`
	return c
}

func makeValidConfigPolling() testDataValidConfig {
	c := testDataValidConfig{name: "polling"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Main.Polling = true
		c.Main.PollInterval = ct.NewOptDuration(time.Minute)
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":    "my-key",
		"POLLING":       "true",
		"POLL_INTERVAL": "1m",
	}
	c.fileContent = `
[Main]
SDKKey = my-key
Polling = true
PollInterval = 1m
`
	return c
}

func makeValidConfigRedisMinimal() testDataValidConfig {
	c := testDataValidConfig{name: "Redis - minimal parameters"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Redis.URL = newOptURLAbsoluteMustBeValid("redis://localhost:6379")
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_REDIS":  "1",
	}
	return c
}

func makeValidConfigRedisAll() testDataValidConfig {
	c := testDataValidConfig{name: "Redis - all parameters"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Redis = RedisConfig{
			URL:      newOptURLAbsoluteMustBeValid("redis://redishost:6400"),
			Prefix:   "pre",
			LocalTTL: ct.NewOptDuration(3 * time.Second),
			TLS:      true,
			Password: "pass",
		}
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":     "my-key",
		"USE_REDIS":      "1",
		"REDIS_HOST":     "redishost",
		"REDIS_PORT":     "6400",
		"REDIS_PREFIX":   "pre",
		"REDIS_TLS":      "1",
		"REDIS_PASSWORD": "pass",
		"CACHE_TTL":      "3s",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Redis]
Host = "redishost"
Port = 6400
Prefix = "pre"
TLS = 1
Password = "pass"
LocalTTL = 3s
`
	return c
}

func makeValidConfigRedisURL() testDataValidConfig {
	c := testDataValidConfig{name: "Redis - URL instead of host/port"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Redis.URL = newOptURLAbsoluteMustBeValid("rediss://redishost:6400")
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_REDIS":  "1",
		"REDIS_URL":  "rediss://redishost:6400",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Redis]
URL = "rediss://redishost:6400"
`
	return c
}

func makeValidConfigRedisPortOnly() testDataValidConfig {
	c := testDataValidConfig{name: "Redis - port only"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Redis.URL = newOptURLAbsoluteMustBeValid("redis://localhost:9999")
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_REDIS":  "1",
		"REDIS_PORT": "9999",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Redis]
Port = 9999
`
	return c
}

func makeValidConfigRedisDockerPort() testDataValidConfig {
	c := testDataValidConfig{name: "Redis - special Docker port syntax"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Redis.URL = newOptURLAbsoluteMustBeValid("redis://redishost:6400")
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_REDIS":  "1",
		"REDIS_PORT": "tcp://redishost:6400",
	}
	return c
}

func makeValidConfigConsulMinimal() testDataValidConfig {
	c := testDataValidConfig{name: "Consul - minimal parameters"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Consul.Host = "localhost"
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_CONSUL": "1",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Consul]
Host = "localhost"
`
	return c
}

func makeValidConfigConsulAll() testDataValidConfig {
	c := testDataValidConfig{name: "Consul - all parameters"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Consul = ConsulConfig{
			Host:     "consulhost",
			Prefix:   "pre",
			Token:    "abc",
			LocalTTL: ct.NewOptDuration(3 * time.Second),
		}
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":    "my-key",
		"USE_CONSUL":    "1",
		"CONSUL_HOST":   "consulhost",
		"CONSUL_PREFIX": "pre",
		"CONSUL_TOKEN":  "abc",
		"CACHE_TTL":     "3s",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Consul]
Host = "consulhost"
Prefix = "pre"
Token = "abc"
LocalTTL = 3s
`
	return c
}

func makeValidConfigDynamoDB() testDataValidConfig {
	c := testDataValidConfig{name: "DynamoDB - all parameters"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.DynamoDB = DynamoDBConfig{
			Enabled:   true,
			TableName: "table",
			Prefix:    "pre",
			URL:       newOptURLAbsoluteMustBeValid("http://localhost:8000"),
			Region:    "us-west-2",
			AccessKey: "access",
			SecretKey: "secret",
			LocalTTL:  ct.NewOptDuration(3 * time.Second),
		}
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":          "my-key",
		"USE_DYNAMODB":        "1",
		"DYNAMODB_TABLE":      "table",
		"DYNAMODB_PREFIX":     "pre",
		"DYNAMODB_URL":        "http://localhost:8000",
		"DYNAMODB_REGION":     "us-west-2",
		"DYNAMODB_ACCESS_KEY": "access",
		"DYNAMODB_SECRET_KEY": "secret",
		"CACHE_TTL":           "3s",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[DynamoDB]
Enabled = true
TableName = "table"
Prefix = "pre"
URL = "http://localhost:8000"
Region = "us-west-2"
AccessKey = "access"
SecretKey = "secret"
LocalTTL = 3s
`
	return c
}

func makeValidConfigDatadog() testDataValidConfig {
	c := testDataValidConfig{name: "Datadog"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.MetricsConfig.Datadog = DatadogConfig{
			Enabled:   true,
			Prefix:    "pre",
			TraceAddr: "trace",
			StatsAddr: "stats",
			Tag:       []string{"tag1:value1", "tag2:value2"},
		}
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":          "my-key",
		"USE_DATADOG":         "1",
		"DATADOG_PREFIX":      "pre",
		"DATADOG_TRACE_ADDR":  "trace",
		"DATADOG_STATSD_ADDR": "stats",
		"DATADOG_TAG_tag1":    "value1",
		"DATADOG_TAG_tag2":    "value2",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Datadog]
Enabled = true
Prefix = "pre"
TraceAddr = "trace"
StatsAddr = "stats"
Tag = tag1:value1
Tag = tag2:value2
`
	return c
}

func makeValidConfigStackdriver() testDataValidConfig {
	c := testDataValidConfig{name: "Stackdriver"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.MetricsConfig.Stackdriver = StackdriverConfig{
			Enabled:   true,
			Prefix:    "pre",
			ProjectID: "proj",
		}
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":             "my-key",
		"USE_STACKDRIVER":        "1",
		"STACKDRIVER_PREFIX":     "pre",
		"STACKDRIVER_PROJECT_ID": "proj",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Stackdriver]
Enabled = true
Prefix = "pre"
ProjectID = "proj"
`
	return c
}

func makeValidConfigPrometheus() testDataValidConfig {
	c := testDataValidConfig{name: "Prometheus"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.MetricsConfig.Prometheus = PrometheusConfig{
			Enabled: true,
			Prefix:  "pre",
			Port:    mustOptIntGreaterThanZero(8333),
		}
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":        "my-key",
		"USE_PROMETHEUS":    "1",
		"PROMETHEUS_PREFIX": "pre",
		"PROMETHEUS_PORT":   "8333",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Prometheus]
Enabled = true
Prefix = "pre"
Port = 8333
`
	return c
}

func makeValidConfigProxy() testDataValidConfig {
	c := testDataValidConfig{name: "proxy"}
	c.makeConfig = func(c *Config) {
		withSDKKey(c)
		c.Proxy = ProxyConfig{
			URL:        newOptURLAbsoluteMustBeValid("http://proxy"),
			User:       "user",
			Password:   "pass",
			CACertFile: "cert",
		}
	}
	c.envVars = map[string]string{
		"LD_SDK_KEY":          "my-key",
		"PROXY_URL":           "http://proxy",
		"PROXY_AUTH_USER":     "user",
		"PROXY_AUTH_PASSWORD": "pass",
		"PROXY_CA_CERT":       "cert",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Proxy]
URL = "http://proxy"
User = "user"
Password = "pass"
CACertFile = "cert"
`
	return c
}

func makeInvalidConfigMissingSDKKey() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "missing SDK key"}
	c.envVarsError = errNoSDKKey.Error()
	c.envVars = map[string]string{"PORT": "8333"}
	c.fileContent = `
[Main]
Port = 8333
`
	return c
}

func makeInvalidConfigTLSWithNoCertOrKey() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "TLS without cert/key"}
	c.envVarsError = errTLSEnabledWithoutCertOrKey.Error()
	c.envVars = map[string]string{"LD_SDK_KEY": "my-key", "TLS_ENABLED": "1"}
	c.fileContent = `
[Main]
SDKKey = my-key
TLSEnabled = true
`
	return c
}

func makeInvalidConfigFileDataWithOffline() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "file data with offline mode"}
	c.envVarsError = errFileDataWithOffline.Error()
	c.envVars = map[string]string{"OFFLINE": "1", "FILE_DATA_PATHS": "flags.json"}
	c.fileContent = `
[Main]
Offline = true

[FileData]
Paths = flags.json
`
	return c
}

func makeInvalidConfigFileDataWithPolling() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "file data with polling"}
	c.envVarsError = errFileDataWithPolling.Error()
	c.envVars = map[string]string{"POLLING": "1", "FILE_DATA_PATHS": "flags.json"}
	c.fileContent = `
[Main]
Polling = true

[FileData]
Paths = flags.json
`
	return c
}

func makeInvalidConfigFileDataWithRelayProxy() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "file data with relay proxy"}
	c.envVarsError = errFileDataWithRelayProxy.Error()
	c.envVars = map[string]string{"RELAY_PROXY_URI": "http://relay", "FILE_DATA_PATHS": "flags.json"}
	c.fileContent = `
[Main]
RelayProxyUri = "http://relay"

[FileData]
Paths = flags.json
`
	return c
}

func makeInvalidConfigRelayProxyWithBaseURI() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "relay proxy with base URI"}
	c.envVarsError = errRelayProxyWithBaseURIs.Error()
	c.envVars = map[string]string{
		"LD_SDK_KEY":      "my-key",
		"RELAY_PROXY_URI": "http://relay",
		"BASE_URI":        "http://base",
	}
	c.fileContent = `
[Main]
SDKKey = my-key
RelayProxyUri = "http://relay"
BaseUri = "http://base"
`
	return c
}

func makeInvalidConfigPollIntervalTooShort() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "poll interval too short"}
	c.envVarsError = errPollIntervalTooShort().Error()
	c.envVars = map[string]string{"LD_SDK_KEY": "my-key", "POLL_INTERVAL": "5s"}
	c.fileContent = `
[Main]
SDKKey = my-key
PollInterval = 5s
`
	return c
}

func makeInvalidConfigRedisInvalidHostname() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "Redis - invalid hostname"}
	c.envVarsError = errRedisBadHostname.Error()
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_REDIS":  "1",
		"REDIS_HOST": "\\",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Redis]
Host = "\\"
`
	return c
}

func makeInvalidConfigRedisInvalidDockerPort() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "Redis - Docker port syntax with invalid port"}
	c.envVarsError = "REDIS_PORT: not a valid integer"
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_REDIS":  "1",
		"REDIS_PORT": "tcp://redishost:xxx",
	}
	return c
}

func makeInvalidConfigRedisConflictingParams() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "Redis - conflicting parameters"}
	c.envVarsError = errRedisURLWithHostAndPort.Error()
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_REDIS":  "1",
		"REDIS_URL":  "redis://localhost:6379",
		"REDIS_HOST": "localhost",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Redis]
URL = "redis://localhost:6379"
Host = "localhost"
`
	return c
}

func makeInvalidConfigMultipleDatabases() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "multiple databases"}
	c.envVarsError = "multiple databases are enabled (Redis, Consul); only one is allowed"
	c.envVars = map[string]string{
		"LD_SDK_KEY": "my-key",
		"USE_REDIS":  "1",
		"USE_CONSUL": "1",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Redis]
Host = "localhost"

[Consul]
Host = "localhost"
`
	return c
}

func makeInvalidConfigConsulTokenAndTokenFile() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "Consul - token and token file"}
	c.envVarsError = errConsulTokenAndTokenFile.Error()
	c.envVars = map[string]string{
		"LD_SDK_KEY":        "my-key",
		"USE_CONSUL":        "1",
		"CONSUL_TOKEN":      "abc",
		"CONSUL_TOKEN_FILE": "abc.txt",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[Consul]
Host = "localhost"
Token = "abc"
TokenFile = "abc.txt"
`
	return c
}

func makeInvalidConfigDynamoDBWithoutTable() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "DynamoDB without table"}
	c.envVarsError = errDynamoDBWithoutTableName.Error()
	c.envVars = map[string]string{
		"LD_SDK_KEY":   "my-key",
		"USE_DYNAMODB": "1",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[DynamoDB]
Enabled = true
`
	return c
}

func makeInvalidConfigDynamoDBPartialCredentials() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "DynamoDB access key without secret key"}
	c.envVarsError = errDynamoDBPartialCredentials.Error()
	c.envVars = map[string]string{
		"LD_SDK_KEY":          "my-key",
		"USE_DYNAMODB":        "1",
		"DYNAMODB_TABLE":      "table",
		"DYNAMODB_ACCESS_KEY": "access",
	}
	c.fileContent = `
[Main]
SDKKey = my-key

[DynamoDB]
Enabled = true
TableName = table
AccessKey = access
`
	return c
}
