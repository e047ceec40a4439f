package api

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldtime"
	"github.com/launchdarkly/go-server-sdk/v7/interfaces"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// StatusRep is the JSON representation returned by the status endpoint.
//
// This is exported for use in integration test code.
type StatusRep struct {
	Status           string               `json:"status"`
	ProviderName     string               `json:"providerName"`
	ProviderState    string               `json:"providerState"`
	ConnectionStatus *ConnectionStatusRep `json:"connectionStatus,omitempty"`
	DataStore        DataStoreRep         `json:"dataStore"`
	Version          string               `json:"version"`
	ClientVersion    string               `json:"clientVersion"`
}

// ConnectionStatusRep is the data source status representation returned by the status endpoint.
//
// This is exported for use in integration test code.
type ConnectionStatusRep struct {
	State      interfaces.DataSourceState `json:"state"`
	StateSince ldtime.UnixMillisecondTime `json:"stateSince"`
	LastError  *ConnectionErrorRep        `json:"lastError,omitempty"`
}

// ConnectionErrorRep is the optional error information in ConnectionStatusRep.
//
// This is exported for use in integration test code.
type ConnectionErrorRep struct {
	Kind       interfaces.DataSourceErrorKind `json:"kind"`
	StatusCode int                            `json:"statusCode,omitempty"`
	Time       ldtime.UnixMillisecondTime     `json:"time"`
}

// DataStoreRep describes the configured data store.
type DataStoreRep struct {
	Type   string `json:"type"`
	Server string `json:"server,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Table  string `json:"table,omitempty"`
}

func makeConnectionStatusRep(status interfaces.DataSourceStatus) *ConnectionStatusRep {
	rep := &ConnectionStatusRep{
		State:      status.State,
		StateSince: ldtime.UnixMillisFromTime(status.StateSince),
	}
	if status.LastError.Kind != "" {
		rep.LastError = &ConnectionErrorRep{
			Kind:       status.LastError.Kind,
			StatusCode: status.LastError.StatusCode,
			Time:       ldtime.UnixMillisFromTime(status.LastError.Time),
		}
	}
	return rep
}
