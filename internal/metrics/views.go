package metrics

import (
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	evaluationsView = &view.View{ //nolint:gochecknoglobals
		Measure:     evaluationsMeasure,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{instanceIDTagKey, flagTypeTagKey, reasonTagKey, errorCodeTagKey},
	}
	configChangesView = &view.View{ //nolint:gochecknoglobals
		Measure:     configChangesMeasure,
		Aggregation: view.Sum(),
		TagKeys:     []tag.Key{instanceIDTagKey},
	}
	requestView = &view.View{ //nolint:gochecknoglobals
		Measure:     requestMeasure,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{instanceIDTagKey, routeTagKey, methodTagKey},
	}
	streamConnView = &view.View{ //nolint:gochecknoglobals
		Measure:     streamConnMeasure,
		Aggregation: view.Sum(),
		TagKeys:     []tag.Key{instanceIDTagKey},
	}
)

func getViews() []*view.View {
	return []*view.View{evaluationsView, configChangesView, requestView, streamConnView}
}
