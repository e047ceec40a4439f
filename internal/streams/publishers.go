// Package streams publishes flag configuration changes to HTTP clients as Server-Sent Events.
package streams

import (
	"net/http"
	"time"

	"github.com/launchdarkly/eventsource"
)

// Publisher defines the interface for publishing SSE events. This interface exists so test code does
// not have to use a real eventsource.Server.
type Publisher interface {
	Handler(channel string) http.HandlerFunc
	Publish(channels []string, event eventsource.Event)
	PublishComment(channels []string, text string)
	Register(channel string, repo eventsource.Repository)
	Unregister(channel string, forceDisconnect bool)
	Close()
}

// NewPublisher creates the eventsource.Server used for the configuration change stream. A non-zero
// maxConnTime makes the server disconnect clients after that long, so that they reconnect.
func NewPublisher(maxConnTime time.Duration) *eventsource.Server {
	s := eventsource.NewServer()
	s.Gzip = false
	s.AllowCORS = true
	s.ReplayAll = true
	s.MaxConnTime = maxConnTime
	return s
}
