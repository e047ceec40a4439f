package streams

import (
	"strconv"
	"sync"

	"github.com/launchdarkly/eventsource"
)

// recentEventsRepository keeps the last few events so that a client reconnecting with a Last-Event-ID
// header receives the changes it missed. New clients receive nothing.
type recentEventsRepository struct {
	events   []flagsChangedEvent
	capacity int
	lock     sync.Mutex
}

func newRecentEventsRepository(capacity int) *recentEventsRepository {
	return &recentEventsRepository{capacity: capacity}
}

func (r *recentEventsRepository) add(e flagsChangedEvent) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.capacity <= 0 {
		return
	}
	if len(r.events) == r.capacity {
		r.events = r.events[1:]
	}
	r.events = append(r.events, e)
}

// Replay implements eventsource.Repository.
func (r *recentEventsRepository) Replay(channel, id string) chan eventsource.Event {
	r.lock.Lock()
	var missed []flagsChangedEvent
	if lastID, err := strconv.ParseUint(id, 10, 64); err == nil {
		for _, e := range r.events {
			if e.id > lastID {
				missed = append(missed, e)
			}
		}
	}
	r.lock.Unlock()

	out := make(chan eventsource.Event, len(missed))
	for _, e := range missed {
		out <- e
	}
	close(out)
	return out
}
