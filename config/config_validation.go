package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

var (
	errTLSEnabledWithoutCertOrKey = errors.New("TLS cert and key are required if TLS is enabled")
	errNoSDKKey                   = errors.New("SDK key is required unless offline mode or file data is used")
	errFileDataWithOffline        = errors.New("file data cannot be used in offline mode")
	errFileDataWithPolling        = errors.New("file data cannot be combined with polling")
	errFileDataWithRelayProxy     = errors.New("file data cannot be combined with a Relay Proxy URI")
	errRelayProxyWithBaseURIs     = errors.New("please specify a Relay Proxy URI or base/stream URIs, but not both")
	errRedisURLWithHostAndPort    = errors.New("please specify Redis URL or host/port, but not both")
	errRedisBadHostname           = errors.New("invalid Redis hostname")
	errConsulTokenAndTokenFile    = errors.New("Consul token must be specified as either an inline value or a file, but not both") //nolint:stylecheck
	errConsulTokenFileNotFound    = errors.New("Consul token file not found")                                                      //nolint:stylecheck
	errDynamoDBWithoutTableName   = errors.New("DynamoDB table name is required if DynamoDB is enabled")
	errDynamoDBPartialCredentials = errors.New("DynamoDB access key and secret key must be specified together")
)

func errMultipleDatabases(databases []string) error {
	return fmt.Errorf("multiple databases are enabled (%s); only one is allowed", strings.Join(databases, ", "))
}

func errPollIntervalTooShort() error {
	return fmt.Errorf("poll interval must be at least %s", MinimumPollInterval)
}

// ValidateConfig ensures that the configuration does not contain contradictory properties.
//
// This method covers validation rules that can't be enforced on a per-field basis (for instance, if
// either field A or field B can be specified but it's invalid to specify both). It is allowed to modify
// the Config struct in order to canonicalize settings (for instance, converting Redis host/port
// settings into a Redis URL).
//
// LoadConfigFromEnvironment and LoadConfigFile both call this method as a last step.
func ValidateConfig(c *Config, loggers ldlog.Loggers) error {
	var result ct.ValidationResult

	validateConfigTLS(&result, c)
	validateConfigDataSource(&result, c, loggers)
	validateConfigDatabases(&result, c)

	return result.GetError()
}

func validateConfigTLS(result *ct.ValidationResult, c *Config) {
	if c.Main.TLSEnabled && (c.Main.TLSCert == "" || c.Main.TLSKey == "") {
		result.AddError(nil, errTLSEnabledWithoutCertOrKey)
	}
}

func validateConfigDataSource(result *ct.ValidationResult, c *Config, loggers ldlog.Loggers) {
	if c.Main.SDKKey == "" && !c.Main.Offline && !c.IsFileDataEnabled() {
		result.AddError(nil, errNoSDKKey)
	}

	if c.IsFileDataEnabled() {
		if c.Main.Offline {
			result.AddError(nil, errFileDataWithOffline)
		}
		if c.Main.Polling {
			result.AddError(nil, errFileDataWithPolling)
		}
		if c.Main.RelayProxyURI.IsDefined() {
			result.AddError(nil, errFileDataWithRelayProxy)
		}
	}

	if c.Main.RelayProxyURI.IsDefined() && (c.Main.BaseURI.IsDefined() || c.Main.StreamURI.IsDefined()) {
		result.AddError(nil, errRelayProxyWithBaseURIs)
	}

	if c.Main.PollInterval.IsDefined() && c.Main.PollInterval.GetOrElse(0) < MinimumPollInterval {
		result.AddError(nil, errPollIntervalTooShort())
	}

	if c.Main.Offline && c.Events.SendEvents {
		loggers.Warn("Analytics events are not sent in offline mode; the events configuration will be ignored")
	}
}

func validateConfigDatabases(result *ct.ValidationResult, c *Config) {
	normalizeRedisConfig(result, c)

	databases := []string{}
	if c.Redis.URL.IsDefined() {
		databases = append(databases, "Redis")
	}
	if c.Consul.Host != "" {
		databases = append(databases, "Consul")
	}
	if c.DynamoDB.Enabled {
		databases = append(databases, "DynamoDB")
	}

	if len(databases) == 0 {
		return
	}
	if len(databases) > 1 {
		result.AddError(nil, errMultipleDatabases(databases))
		return // no point doing further database config validation if it's in this state
	}

	if c.Consul.Host != "" {
		switch {
		case c.Consul.Token != "" && c.Consul.TokenFile != "":
			result.AddError(nil, errConsulTokenAndTokenFile)
		case c.Consul.TokenFile != "":
			if _, err := os.Stat(c.Consul.TokenFile); os.IsNotExist(err) {
				result.AddError(nil, errConsulTokenFileNotFound)
			}
		}
	}

	if c.DynamoDB.Enabled {
		if c.DynamoDB.TableName == "" {
			result.AddError(nil, errDynamoDBWithoutTableName)
		}
		if (c.DynamoDB.AccessKey == "") != (c.DynamoDB.SecretKey == "") {
			result.AddError(nil, errDynamoDBPartialCredentials)
		}
	}
}

func normalizeRedisConfig(result *ct.ValidationResult, c *Config) {
	if c.Redis.URL.IsDefined() {
		if c.Redis.Host != "" || c.Redis.Port.IsDefined() {
			result.AddError(nil, errRedisURLWithHostAndPort)
		}
	} else if c.Redis.Host != "" || c.Redis.Port.IsDefined() {
		host := c.Redis.Host
		if host == "" {
			host = defaultRedisHost
		}
		port := c.Redis.Port.GetOrElse(defaultRedisPort)
		url, err := ct.NewOptURLAbsoluteFromString(fmt.Sprintf("redis://%s:%d", host, port))
		if err != nil {
			result.AddError(nil, errRedisBadHostname)
		}
		c.Redis.URL = url
		c.Redis.Host = ""
		c.Redis.Port = ct.OptIntGreaterThanZero{}
	}
}
