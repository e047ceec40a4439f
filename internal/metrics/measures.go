package metrics

import (
	"go.opencensus.io/stats"
)

var (
	evaluationsMeasure   = stats.Int64("evaluations", "number of flag evaluations", stats.UnitDimensionless)
	configChangesMeasure = stats.Int64("configChanges", "number of flag configuration changes", stats.UnitDimensionless)
	requestMeasure       = stats.Int64("requests", "number of hits to a route", stats.UnitDimensionless)
	streamConnMeasure    = stats.Int64("streamConnections", "current number of change stream connections", stats.UnitDimensionless)
)
