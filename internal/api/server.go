// Package api implements the HTTP API of the bridge service: a status endpoint, flag evaluation
// through the OpenFeature client, and a stream of flag configuration changes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/launchdarkly/ld-openfeature-bridge/internal/logging"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/metrics"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/middleware"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/sdks"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/streams"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/util"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/version"
	"github.com/launchdarkly/ld-openfeature-bridge/provider"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/gorilla/mux"
	"github.com/open-feature/go-sdk/openfeature"
)

const (
	// StatusPath is the route of the status endpoint.
	StatusPath = "/status"

	// FlagsPath is the route template of the flag evaluation endpoint.
	FlagsPath = "/flags/{key}"

	// StreamPath is the route of the configuration change stream.
	StreamPath = "/stream"
)

// ProviderStatus is the subset of *provider.Provider that the status endpoint uses.
type ProviderStatus interface {
	Metadata() openfeature.Metadata
	Status() openfeature.State
	Client() provider.LDClient
}

// ServerParams contains the dependencies of a Server. Changes and Recorder are optional.
type ServerParams struct {
	Provider      ProviderStatus
	Client        *openfeature.Client
	Changes       *streams.ConfigChangePublisher
	Recorder      *metrics.Recorder
	DataStoreInfo sdks.DataStoreInfo
	MaxBodyBytes  int64
	Loggers       ldlog.Loggers
}

// Server handles requests to the HTTP API.
type Server struct {
	params ServerParams
}

// NewServer creates a Server.
func NewServer(params ServerParams) *Server {
	return &Server{params: params}
}

// Router returns the handler for all of the API's routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(logging.GlobalContextLoggersMiddleware(s.params.Loggers))
	router.Use(logging.RequestLoggerMiddleware(s.params.Loggers))
	router.Use(middleware.RequestCount(s.params.Recorder))

	router.HandleFunc(StatusPath, s.getStatus).Methods("GET")
	router.HandleFunc(FlagsPath, s.evaluateFlag).Methods("POST")
	if s.params.Changes != nil {
		router.Handle(StreamPath, middleware.CountStreamConns(s.params.Recorder)(s.params.Changes.Handler())).
			Methods("GET")
	}
	return router
}

func (s *Server) getStatus(w http.ResponseWriter, req *http.Request) {
	state := s.params.Provider.Status()
	rep := StatusRep{
		Status:        statusDegraded,
		ProviderName:  s.params.Provider.Metadata().Name,
		ProviderState: string(state),
		DataStore: DataStoreRep{
			Type:   s.params.DataStoreInfo.DBType,
			Server: s.params.DataStoreInfo.DBServer,
			Prefix: s.params.DataStoreInfo.DBPrefix,
			Table:  s.params.DataStoreInfo.DBTable,
		},
		Version:       version.Version,
		ClientVersion: ld.Version,
	}
	if rep.DataStore.Type == "" {
		rep.DataStore.Type = "memory"
	}
	if state == openfeature.ReadyState {
		rep.Status = statusHealthy
	}
	if client := s.params.Provider.Client(); client != nil {
		rep.ConnectionStatus = makeConnectionStatusRep(client.GetDataSourceStatusProvider().GetStatus())
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) evaluateFlag(w http.ResponseWriter, req *http.Request) {
	loggers := logging.GetGlobalContextLoggers(req.Context())
	flagKey := mux.Vars(req)["key"]

	body, err := util.NewBodyReader(req.Body, req.Header.Get("Content-Encoding") == "gzip", s.params.MaxBodyBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body: "+err.Error())
		return
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		if errors.Is(err, util.ErrBodyTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "unable to read request body: "+err.Error())
		return
	}

	var evalReq EvaluationRequestRep
	if err := json.Unmarshal(data, &evalReq); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not a valid evaluation request: "+err.Error())
		return
	}
	defaultValue, err := evalReq.decodeDefault()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.evaluate(req.Context(), flagKey, defaultValue, evalReq.evaluationContext())
	if err != nil {
		loggers.Debugf("Evaluation of flag %q returned an error: %s", flagKey, err)
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) evaluate(
	ctx context.Context,
	flagKey string,
	defaultValue interface{},
	evalCtx openfeature.EvaluationContext,
) (EvaluationResultRep, error) {
	client := s.params.Client
	switch v := defaultValue.(type) {
	case bool:
		details, err := client.BooleanValueDetails(ctx, flagKey, v, evalCtx)
		return makeEvaluationResultRep(details.Value, details.EvaluationDetails), err
	case string:
		details, err := client.StringValueDetails(ctx, flagKey, v, evalCtx)
		return makeEvaluationResultRep(details.Value, details.EvaluationDetails), err
	case int64:
		details, err := client.IntValueDetails(ctx, flagKey, v, evalCtx)
		return makeEvaluationResultRep(details.Value, details.EvaluationDetails), err
	case float64:
		details, err := client.FloatValueDetails(ctx, flagKey, v, evalCtx)
		return makeEvaluationResultRep(details.Value, details.EvaluationDetails), err
	default:
		details, err := client.ObjectValueDetails(ctx, flagKey, v, evalCtx)
		return makeEvaluationResultRep(details.Value, details.EvaluationDetails), err
	}
}

func writeJSON(w http.ResponseWriter, status int, rep interface{}) {
	data, err := json.Marshal(rep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(util.ErrorJSONMsg(message))
}
