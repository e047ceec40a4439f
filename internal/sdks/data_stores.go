package sdks

import (
	"context"
	"strings"

	"github.com/launchdarkly/ld-openfeature-bridge/config"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/util"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	ldconsul "github.com/launchdarkly/go-server-sdk-consul/v3"
	lddynamodb "github.com/launchdarkly/go-server-sdk-dynamodb/v4"
	ldredis "github.com/launchdarkly/go-server-sdk-redis-redigo/v3"
	"github.com/launchdarkly/go-server-sdk/v7/ldcomponents"
	"github.com/launchdarkly/go-server-sdk/v7/subsystems"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	redigo "github.com/gomodule/redigo/redis"
	consul "github.com/hashicorp/consul/api"
)

// DataStoreInfo describes the persistent data store, if any, for the status resource.
type DataStoreInfo struct {
	// DBType is "redis", "consul", "dynamodb", or "" for the default in-memory storage.
	DBType string

	// DBServer is the URL or host address of the database server, if applicable. Passwords, if any,
	// are redacted in this string.
	DBServer string

	// DBPrefix is the key prefix used to distinguish this service's data from other data in the
	// same database.
	DBPrefix string

	// DBTable is the table name if using DynamoDB, or "" otherwise.
	DBTable string
}

// ConfigureDataStore provides the appropriate Go SDK data store (in-memory, Redis, etc.) based on the
// configuration. It assumes that config.ValidateConfig has already been called, so at most one database
// is enabled and Redis host/port settings have been turned into a URL.
func ConfigureDataStore(
	c config.Config,
	loggers ldlog.Loggers,
) (subsystems.ComponentConfigurer[subsystems.DataStore], DataStoreInfo, error) {
	if c.Redis.URL.IsDefined() {
		redisURL, prefix := GetRedisBasicProperties(c.Redis)
		builder := configureRedisBuilder(ldredis.DataStore(), c.Redis)
		redactedURL := util.RedactURL(redisURL)

		loggers.Infof("Using Redis data store: %s with prefix: %s", redactedURL, prefix)

		info := DataStoreInfo{DBType: "redis", DBServer: redactedURL, DBPrefix: prefix}
		return ldcomponents.PersistentDataStore(builder).
			CacheTime(c.Redis.LocalTTL.GetOrElse(config.DefaultDatabaseCacheTTL)), info, nil
	}

	if c.Consul.Host != "" {
		dbConfig := c.Consul
		prefix := dbConfig.Prefix
		if prefix == "" {
			prefix = ldconsul.DefaultPrefix
		}
		loggers.Infof("Using Consul data store: %s with prefix: %s", dbConfig.Host, prefix)

		builder := ldconsul.DataStore()
		if dbConfig.Prefix != "" {
			builder.Prefix(dbConfig.Prefix)
		}
		if dbConfig.Token != "" {
			builder.Config(consul.Config{Token: dbConfig.Token})
		} else if dbConfig.TokenFile != "" {
			builder.Config(consul.Config{TokenFile: dbConfig.TokenFile})
		}
		builder.Address(dbConfig.Host) // must come after Config(), which replaces the whole consul.Config

		info := DataStoreInfo{DBType: "consul", DBServer: dbConfig.Host, DBPrefix: prefix}
		return ldcomponents.PersistentDataStore(builder).
			CacheTime(dbConfig.LocalTTL.GetOrElse(config.DefaultDatabaseCacheTTL)), info, nil
	}

	if c.DynamoDB.Enabled {
		builder, err := configureDynamoDBBuilder(lddynamodb.DataStore(c.DynamoDB.TableName), c.DynamoDB)
		if err != nil {
			return nil, DataStoreInfo{}, err
		}

		loggers.Infof("Using DynamoDB data store: %s with prefix: %s", c.DynamoDB.TableName, c.DynamoDB.Prefix)

		info := DataStoreInfo{
			DBType:   "dynamodb",
			DBServer: c.DynamoDB.URL.String(),
			DBPrefix: c.DynamoDB.Prefix,
			DBTable:  c.DynamoDB.TableName,
		}
		return ldcomponents.PersistentDataStore(builder).
			CacheTime(c.DynamoDB.LocalTTL.GetOrElse(config.DefaultDatabaseCacheTTL)), info, nil
	}

	return ldcomponents.InMemoryDataStore(), DataStoreInfo{}, nil
}

// GetRedisBasicProperties returns the Redis URL, with the scheme changed to rediss: if TLS is enabled,
// and the key prefix.
func GetRedisBasicProperties(dbConfig config.RedisConfig) (redisURL, prefix string) {
	redisURL = dbConfig.URL.String()
	if dbConfig.TLS && strings.HasPrefix(redisURL, "redis:") {
		// Redigo's DialUseTLS option will not work if you're specifying a URL.
		redisURL = "rediss:" + strings.TrimPrefix(redisURL, "redis:")
	}

	prefix = dbConfig.Prefix
	if prefix == "" {
		prefix = ldredis.DefaultPrefix
	}
	return
}

// configureRedisBuilder applies the connection properties shared by the Redis data store and the
// Redis big segment store.
func configureRedisBuilder[T any](
	builder *ldredis.StoreBuilder[T],
	dbConfig config.RedisConfig,
) *ldredis.StoreBuilder[T] {
	redisURL, prefix := GetRedisBasicProperties(dbConfig)

	var dialOptions []redigo.DialOption
	if dbConfig.Password != "" {
		dialOptions = append(dialOptions, redigo.DialPassword(dbConfig.Password))
	}

	return builder.
		URL(redisURL).
		Prefix(prefix).
		DialOptions(dialOptions...)
}

func configureDynamoDBBuilder[T any](
	builder *lddynamodb.StoreBuilder[T],
	dbConfig config.DynamoDBConfig,
) (*lddynamodb.StoreBuilder[T], error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background(), dynamoDBConfigOptions(dbConfig)...)
	if err != nil {
		return nil, err
	}

	var clientOptions []func(*dynamodb.Options)
	if dbConfig.URL.IsDefined() {
		endpoint := aws.String(dbConfig.URL.String())
		clientOptions = append(clientOptions, func(o *dynamodb.Options) {
			o.EndpointResolver = dynamodb.EndpointResolverFromURL(*endpoint)
		})
	}

	return builder.
		Prefix(dbConfig.Prefix).
		ClientConfig(awsConfig, clientOptions...), nil
}

func dynamoDBConfigOptions(dbConfig config.DynamoDBConfig) []func(*awsconfig.LoadOptions) error {
	var options []func(*awsconfig.LoadOptions) error
	if dbConfig.Region != "" {
		options = append(options, awsconfig.WithRegion(dbConfig.Region))
	}
	if dbConfig.AccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(dbConfig.AccessKey, dbConfig.SecretKey, ""),
		))
	}
	return options
}
