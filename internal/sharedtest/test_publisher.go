package sharedtest

import (
	"net/http"
	"sync"

	"github.com/launchdarkly/eventsource"
)

// PublishedEvent is an event captured by TestPublisher.
type PublishedEvent struct {
	Channel string
	Event   eventsource.Event
}

// PublishedComment is a comment captured by TestPublisher.
type PublishedComment struct {
	Channel string
	Text    string
}

// TestPublisher is a stand-in for eventsource.Server that records everything published to it.
type TestPublisher struct {
	Events   []PublishedEvent
	Comments []PublishedComment
	Repos    map[string]eventsource.Repository
	Closed   bool
	lock     sync.Mutex
}

func (p *TestPublisher) Publish(channels []string, event eventsource.Event) { //nolint:revive
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, c := range channels {
		p.Events = append(p.Events, PublishedEvent{c, event})
	}
}

func (p *TestPublisher) PublishComment(channels []string, text string) { //nolint:revive
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, c := range channels {
		p.Comments = append(p.Comments, PublishedComment{c, text})
	}
}

func (p *TestPublisher) Register(channel string, repo eventsource.Repository) { //nolint:revive
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.Repos == nil {
		p.Repos = make(map[string]eventsource.Repository)
	}
	p.Repos[channel] = repo
}

func (p *TestPublisher) Unregister(channel string, forceDisconnect bool) { //nolint:revive
	p.lock.Lock()
	defer p.lock.Unlock()
	delete(p.Repos, channel)
}

func (p *TestPublisher) Close() { //nolint:revive
	p.lock.Lock()
	defer p.lock.Unlock()
	p.Closed = true
}

func (p *TestPublisher) Handler(string) http.HandlerFunc { return nil } //nolint:revive

// GetEvents returns a copy of the events published so far.
func (p *TestPublisher) GetEvents() []PublishedEvent {
	p.lock.Lock()
	defer p.lock.Unlock()
	ret := make([]PublishedEvent, len(p.Events))
	copy(ret, p.Events)
	return ret
}

// GetComments returns a copy of the comments published so far.
func (p *TestPublisher) GetComments() []PublishedComment {
	p.lock.Lock()
	defer p.lock.Unlock()
	ret := make([]PublishedComment, len(p.Comments))
	copy(ret, p.Comments)
	return ret
}
