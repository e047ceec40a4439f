package metrics

import (
	"go.opencensus.io/tag"
)

const (
	defaultMetricsPrefix = "launchdarkly_openfeature"

	noErrorTagValue = "NONE"
)

var (
	instanceIDTagKey, _ = tag.NewKey("instanceId") //nolint:gochecknoglobals
	flagTypeTagKey, _   = tag.NewKey("flagType")   //nolint:gochecknoglobals
	reasonTagKey, _     = tag.NewKey("reason")     //nolint:gochecknoglobals
	errorCodeTagKey, _  = tag.NewKey("errorCode")  //nolint:gochecknoglobals
	routeTagKey, _      = tag.NewKey("route")      //nolint:gochecknoglobals
	methodTagKey, _     = tag.NewKey("method")     //nolint:gochecknoglobals
)
