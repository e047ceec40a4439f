package streams

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/ld-openfeature-bridge/internal/sharedtest"

	"github.com/launchdarkly/eventsource"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	helpers "github.com/launchdarkly/go-test-helpers/v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisher(t *testing.T) {
	s := NewPublisher(time.Minute)
	defer s.Close()

	assert.False(t, s.Gzip)
	assert.True(t, s.AllowCORS)
	assert.True(t, s.ReplayAll)
	assert.Equal(t, time.Minute, s.MaxConnTime)
}

func TestMakeFlagsChangedEvent(t *testing.T) {
	e := MakeFlagsChangedEvent(3, []string{"flagA", "flagB"})
	assert.Equal(t, "flags-changed", e.Event())
	assert.Equal(t, "3", e.Id())
	assert.Equal(t, `{"flagsChanged":["flagA","flagB"]}`, e.Data())

	empty := MakeFlagsChangedEvent(4, nil)
	assert.Equal(t, `{"flagsChanged":[]}`, empty.Data())
}

func TestConfigChangePublisherRegistersChannel(t *testing.T) {
	testPub := &sharedtest.TestPublisher{}
	p := NewConfigChangePublisher(testPub, 0, ldlog.NewDisabledLoggers())

	assert.NotNil(t, testPub.Repos[FlagsChannel])

	p.Close()
	assert.Len(t, testPub.Repos, 0)
	p.Close() // second call does nothing
}

func TestConfigChangePublisherPublishesInOrder(t *testing.T) {
	testPub := &sharedtest.TestPublisher{}
	p := NewConfigChangePublisher(testPub, 0, ldlog.NewDisabledLoggers())
	defer p.Close()

	p.PublishFlagsChanged([]string{"flagA"})
	p.PublishFlagsChanged([]string{"flagB"})

	assert.Equal(t, []sharedtest.PublishedEvent{
		{Channel: FlagsChannel, Event: MakeFlagsChangedEvent(1, []string{"flagA"})},
		{Channel: FlagsChannel, Event: MakeFlagsChangedEvent(2, []string{"flagB"})},
	}, testPub.GetEvents())
}

func TestConfigChangePublisherSendsHeartbeats(t *testing.T) {
	testPub := &sharedtest.TestPublisher{}
	p := NewConfigChangePublisher(testPub, time.Millisecond*10, ldlog.NewDisabledLoggers())
	defer p.Close()

	require.Eventually(t, func() bool {
		return len(testPub.GetComments()) >= 2
	}, time.Second, time.Millisecond*5)
	assert.Equal(t, sharedtest.PublishedComment{Channel: FlagsChannel, Text: ""}, testPub.GetComments()[0])
}

func TestRecentEventsRepositoryReplaysOnlyMissedEvents(t *testing.T) {
	repo := newRecentEventsRepository(2)
	for i := uint64(1); i <= 3; i++ {
		repo.add(MakeFlagsChangedEvent(i, []string{"f"}).(flagsChangedEvent))
	}

	collect := func(id string) []string {
		var ids []string
		for e := range repo.Replay(FlagsChannel, id) {
			ids = append(ids, e.Id())
		}
		return ids
	}

	assert.Nil(t, collect(""))
	assert.Equal(t, []string{"2", "3"}, collect("0"))
	assert.Equal(t, []string{"3"}, collect("2"))
	assert.Nil(t, collect("3"))
	assert.Nil(t, collect("not-a-number"))
}

func TestConfigChangeStreamEndToEnd(t *testing.T) {
	server := NewPublisher(0)
	p := NewConfigChangePublisher(server, 0, ldlog.NewDisabledLoggers())
	defer server.Close()
	defer p.Close()

	httpServer := httptest.NewServer(p.Handler())
	defer httpServer.Close()

	// the client is registered asynchronously, so keep publishing until an event arrives
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(time.Millisecond * 20)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p.PublishFlagsChanged([]string{"flagA"})
			}
		}
	}()

	resp, err := http.Get(httpServer.URL) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := make(chan string, 100)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	deadline := time.After(time.Second)
	for {
		var line string
		select {
		case l, ok := <-lines:
			require.True(t, ok, "stream closed unexpectedly")
			line = l
		case <-deadline:
			require.Fail(t, "timed out waiting for stream event")
		}
		if strings.HasPrefix(line, "event:") {
			assert.Equal(t, "event: flags-changed", line)
			data := helpers.RequireValue(t, lines, time.Second)
			assert.Equal(t, `data: {"flagsChanged":["flagA"]}`, data)
			return
		}
	}
}

var _ Publisher = (*eventsource.Server)(nil)
