package streams

import (
	"net/http"
	"sync"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const (
	// FlagsChannel is the eventsource channel that carries configuration changes.
	FlagsChannel = "flags"

	replayCapacity = 100
)

// ConfigChangePublisher publishes flag configuration changes to all clients of the change stream, and
// sends periodic heartbeat comments to keep idle connections open.
type ConfigChangePublisher struct {
	publisher  Publisher
	repo       *recentEventsRepository
	channels   []string
	lastID     uint64
	heartbeats *time.Ticker
	closeCh    chan struct{}
	closeOnce  sync.Once
	loggers    ldlog.Loggers
	lock       sync.Mutex
}

// NewConfigChangePublisher registers the flags channel with the publisher. If heartbeatInterval is
// zero, no heartbeats are sent.
func NewConfigChangePublisher(
	publisher Publisher,
	heartbeatInterval time.Duration,
	loggers ldlog.Loggers,
) *ConfigChangePublisher {
	p := &ConfigChangePublisher{
		publisher: publisher,
		repo:      newRecentEventsRepository(replayCapacity),
		channels:  []string{FlagsChannel},
		closeCh:   make(chan struct{}),
		loggers:   loggers,
	}
	publisher.Register(FlagsChannel, p.repo)

	if heartbeatInterval > 0 {
		p.heartbeats = time.NewTicker(heartbeatInterval)
		go p.sendHeartbeats()
	}
	return p
}

// PublishFlagsChanged sends one "flags-changed" event. Events get increasing IDs in the order of the
// calls.
func (p *ConfigChangePublisher) PublishFlagsChanged(flagKeys []string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.lastID++
	event := MakeFlagsChangedEvent(p.lastID, flagKeys).(flagsChangedEvent)
	p.repo.add(event)
	p.loggers.Debugf("Publishing flags-changed event %d: %v", event.id, flagKeys)
	p.publisher.Publish(p.channels, event)
}

// Handler returns the HTTP handler for the change stream.
func (p *ConfigChangePublisher) Handler() http.HandlerFunc {
	return p.publisher.Handler(FlagsChannel)
}

// Close stops the heartbeats and disconnects all stream clients.
func (p *ConfigChangePublisher) Close() {
	p.closeOnce.Do(func() {
		if p.heartbeats != nil {
			p.heartbeats.Stop()
		}
		close(p.closeCh)
		p.publisher.Unregister(FlagsChannel, true)
	})
}

func (p *ConfigChangePublisher) sendHeartbeats() {
	for {
		select {
		case <-p.closeCh:
			return
		case <-p.heartbeats.C:
			p.publisher.PublishComment(p.channels, "")
		}
	}
}
