package provider

import (
	"time"

	"github.com/open-feature/go-sdk/openfeature"
)

// eventSendTimeout is how long the relay waits for room in a full event channel before dropping
// an event.
const eventSendTimeout = time.Second

// relayFlagChanges forwards each LaunchDarkly flag change as a PROVIDER_CONFIGURATION_CHANGED
// event, one event per changed flag, until the provider is shut down.
func (p *Provider) relayFlagChanges() {
	defer close(p.relayDone)
	timer := time.NewTimer(eventSendTimeout)
	timer.Stop()
	for {
		select {
		case <-p.closeCh:
			return
		case change, ok := <-p.flagChanges:
			if !ok {
				return
			}
			event := openfeature.Event{
				ProviderName: p.name,
				EventType:    openfeature.ProviderConfigChange,
				ProviderEventDetails: openfeature.ProviderEventDetails{
					Message:     "Flag configuration changed",
					FlagChanges: []string{change.Key},
				},
			}
			select {
			case p.events <- event:
				continue
			default:
			}
			timer.Reset(eventSendTimeout)
			select {
			case p.events <- event:
				if !timer.Stop() {
					<-timer.C
				}
			case <-timer.C:
				p.loggers.Warnf("Dropped change event for flag %q because the event channel is full", change.Key)
			case <-p.closeCh:
				timer.Stop()
				return
			}
		}
	}
}
