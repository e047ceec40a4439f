package metrics

import (
	"context"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/open-feature/go-sdk/openfeature"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.opencensus.io/trace"
)

// Recorder records measurements tagged with the Manager's instance ID. Its methods are safe for
// concurrent use.
type Recorder struct {
	openCensus context.Context
	loggers    ldlog.Loggers
}

// RecordEvaluation counts one flag evaluation. It satisfies provider.EvaluationRecorder. The caller's
// context is not used for tags, since OpenFeature passes whatever context the application used.
func (r *Recorder) RecordEvaluation(
	_ context.Context,
	flagType string,
	reason openfeature.Reason,
	errorCode openfeature.ErrorCode,
) {
	errorTag := string(errorCode)
	if errorTag == "" {
		errorTag = noErrorTagValue
	}
	ctx, err := tag.New(r.openCensus,
		tag.Insert(flagTypeTagKey, sanitizeTagValue(flagType)),
		tag.Insert(reasonTagKey, sanitizeTagValue(string(reason))),
		tag.Insert(errorCodeTagKey, sanitizeTagValue(errorTag)),
	)
	if err != nil {
		r.loggers.Errorf("Failed to create evaluation tags: %s", err)
		return
	}
	stats.Record(ctx, evaluationsMeasure.M(1))
}

// RecordConfigChange adds the number of flags that changed in one configuration change event.
func (r *Recorder) RecordConfigChange(flagCount int) {
	stats.Record(r.openCensus, configChangesMeasure.M(int64(flagCount)))
}

// WithRouteCount counts a request to a route and runs f inside a trace span named after the route.
func (r *Recorder) WithRouteCount(ctx context.Context, route, method string, f func(ctx context.Context)) {
	tagCtx, err := tag.New(r.openCensus,
		tag.Insert(routeTagKey, sanitizeTagValue(route)),
		tag.Insert(methodTagKey, sanitizeTagValue(method)),
	)
	if err != nil {
		r.loggers.Errorf(`Failed to create tags for route "%s %s": %s`, method, route, err)
	} else {
		stats.Record(tagCtx, requestMeasure.M(1))
	}
	ctx, span := trace.StartSpan(ctx, route)
	defer span.End()
	f(ctx)
}

// WithStreamConnection increments the stream connection gauge while f runs.
func (r *Recorder) WithStreamConnection(f func()) {
	stats.Record(r.openCensus, streamConnMeasure.M(1))
	defer stats.Record(r.openCensus, streamConnMeasure.M(-1))
	f()
}

// Pad empty values to keep the tag key set the same, since empty tag values are dropped.
func sanitizeTagValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return "_"
	}
	return strings.ReplaceAll(v, "/", "_")
}
