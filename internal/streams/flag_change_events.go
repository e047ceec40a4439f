package streams

import (
	"strconv"

	"github.com/launchdarkly/eventsource"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// FlagsChangedEventName is the SSE event name for a configuration change.
const FlagsChangedEventName = "flags-changed"

type flagsChangedEvent struct {
	id   uint64
	data string
}

func (e flagsChangedEvent) Event() string { return FlagsChangedEventName }
func (e flagsChangedEvent) Id() string    { return strconv.FormatUint(e.id, 10) } //nolint:revive,stylecheck
func (e flagsChangedEvent) Data() string  { return e.data }

// MakeFlagsChangedEvent creates a "flags-changed" event whose data is {"flagsChanged":[keys...]}.
func MakeFlagsChangedEvent(id uint64, flagKeys []string) eventsource.Event {
	w := jwriter.NewWriter()
	obj := w.Object()
	arr := obj.Name("flagsChanged").Array()
	for _, key := range flagKeys {
		arr.String(key)
	}
	arr.End()
	obj.End()
	return flagsChangedEvent{id: id, data: string(w.Bytes())}
}
