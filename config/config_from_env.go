package config

import (
	"sort"
	"strconv"
	"strings"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// LoadConfigFromEnvironment sets parameters in a Config struct from environment variables.
//
// The Config parameter should be initialized with default values first.
func LoadConfigFromEnvironment(c *Config, loggers ldlog.Loggers) error {
	reader := ct.NewVarReaderFromEnvironment()

	reader.ReadStruct(&c.Main, false)
	sdkKey := string(c.Main.SDKKey)
	reader.Read("LD_SDK_KEY", &sdkKey) // SDKKey is a named type, so it is not read by ReadStruct
	c.Main.SDKKey = SDKKey(sdkKey)
	reader.ReadStruct(&c.Events, false)
	reader.ReadStruct(&c.FileData, false)

	useRedis := false
	reader.Read("USE_REDIS", &useRedis)
	if useRedis || c.Redis.Host != "" || c.Redis.URL.IsDefined() {
		portStr := ""
		if c.Redis.Port.IsDefined() {
			portStr = strconv.Itoa(c.Redis.Port.GetOrElse(0))
		}
		reader.ReadStruct(&c.Redis, false)
		reader.Read("REDIS_PORT", &portStr) // handled separately because it could be a string or a number

		if portStr != "" {
			if strings.HasPrefix(portStr, "tcp://") {
				// REDIS_PORT gets set to tcp://$docker_ip:6379 when linking to a Redis container
				hostAndPort := strings.TrimPrefix(portStr, "tcp://")
				fields := strings.Split(hostAndPort, ":")
				c.Redis.Host = fields[0]
				if len(fields) > 1 {
					if err := c.Redis.Port.UnmarshalText([]byte(fields[1])); err != nil {
						reader.AddError(ct.ValidationPath{"REDIS_PORT"}, err)
					}
				}
			} else {
				if c.Redis.Host == "" {
					c.Redis.Host = defaultRedisHost
				}
				reader.Read("REDIS_PORT", &c.Redis.Port)
			}
		}
		if !c.Redis.URL.IsDefined() && c.Redis.Host == "" && !c.Redis.Port.IsDefined() {
			// all they specified was USE_REDIS
			c.Redis.URL = defaultRedisURL
		}
	}

	useConsul := false
	reader.Read("USE_CONSUL", &useConsul)
	if useConsul {
		c.Consul.Host = defaultConsulHost
		reader.ReadStruct(&c.Consul, false)
	}

	reader.Read("USE_DYNAMODB", &c.DynamoDB.Enabled)
	if c.DynamoDB.Enabled {
		reader.ReadStruct(&c.DynamoDB, false)
	}

	reader.ReadStruct(&c.MetricsConfig.Datadog, false)
	if c.MetricsConfig.Datadog.Enabled {
		for tagName, tagVal := range reader.FindPrefixedValues("DATADOG_TAG_") {
			c.MetricsConfig.Datadog.Tag = append(c.MetricsConfig.Datadog.Tag, tagName+":"+tagVal)
		}
		sort.Strings(c.MetricsConfig.Datadog.Tag) // for test determinacy
	}

	reader.ReadStruct(&c.MetricsConfig.Stackdriver, false)
	reader.ReadStruct(&c.MetricsConfig.Prometheus, false)

	reader.ReadStruct(&c.Proxy, false)

	if !reader.Result().OK() {
		return reader.Result().GetError()
	}

	return ValidateConfig(c, loggers)
}
