package sdks

import (
	"github.com/launchdarkly/ld-openfeature-bridge/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	lddynamodb "github.com/launchdarkly/go-server-sdk-dynamodb/v4"
	ldredis "github.com/launchdarkly/go-server-sdk-redis-redigo/v3"
	"github.com/launchdarkly/go-server-sdk/v7/ldcomponents"
	"github.com/launchdarkly/go-server-sdk/v7/subsystems"
)

// ConfigureBigSegments returns the SDK's big segments configuration, which reads from the same Redis
// or DynamoDB database and prefix as the flag data. It returns nil if neither is configured, since
// Consul has no big segment store.
func ConfigureBigSegments(
	c config.Config,
	loggers ldlog.Loggers,
) (subsystems.ComponentConfigurer[subsystems.BigSegmentsConfiguration], error) {
	if c.Redis.URL.IsDefined() {
		loggers.Info("Big segments will be read from Redis")
		return ldcomponents.BigSegments(configureRedisBuilder(ldredis.BigSegmentStore(), c.Redis)), nil
	}

	if c.DynamoDB.Enabled {
		builder, err := configureDynamoDBBuilder(lddynamodb.BigSegmentStore(c.DynamoDB.TableName), c.DynamoDB)
		if err != nil {
			return nil, err
		}
		loggers.Info("Big segments will be read from DynamoDB")
		return ldcomponents.BigSegments(builder), nil
	}

	return nil, nil
}
