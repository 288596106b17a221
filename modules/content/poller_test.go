package content

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence-scheduler-server/modules/common/model"
)

// recordingSink records every update delivered by the poller.
type recordingSink struct {
	mu      sync.Mutex
	updates []sinkUpdate
}

type sinkUpdate struct {
	contentItemID string
	item          *model.ContentItem
	err           error
}

func (s *recordingSink) ContentUpdate(contentItemID string, item *model.ContentItem, fetchErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, sinkUpdate{contentItemID, item, fetchErr})
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *recordingSink) last() sinkUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates[len(s.updates)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func TestPollerWatchUnwatch(t *testing.T) {
	service, _, _ := newTestService(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(combinedReadBody))
	})
	poller := NewPoller(service, &recordingSink{}, time.Hour)

	assert.False(t, poller.IsWatching("item-1"))

	poller.Watch("item-1")
	assert.True(t, poller.IsWatching("item-1"))

	// Watching twice is a no-op.
	poller.Watch("item-1")
	assert.True(t, poller.IsWatching("item-1"))

	poller.Unwatch("item-1")
	assert.False(t, poller.IsWatching("item-1"))

	// Unwatching an unknown item does nothing.
	poller.Unwatch("item-2")

	// Empty ids are never watched.
	poller.Watch("")
	assert.False(t, poller.IsWatching(""))
}

func TestPollerDeliversImmediateSnapshot(t *testing.T) {
	service, _, _ := newTestService(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(combinedReadBody))
	})
	sink := &recordingSink{}
	poller := NewPoller(service, sink, time.Hour)

	poller.Watch("item-1")
	defer poller.Unwatch("item-1")

	// The first poll fires immediately, before the first tick.
	waitFor(t, func() bool { return sink.count() >= 1 })

	update := sink.last()
	assert.Equal(t, "item-1", update.contentItemID)
	require.NoError(t, update.err)
	require.NotNil(t, update.item)
	assert.Equal(t, "item-1", update.item.ID)
}

func TestPollerObservesProgressDespiteFreshCache(t *testing.T) {
	// Staleness window far longer than the poll interval: only a
	// cache-bypassing poll can see the backend move on.
	var polls atomic.Int64
	service, requests, _ := newTestService(t, time.Hour, func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			w.Write([]byte(combinedReadBody))
			return
		}
		w.Write([]byte(strings.Replace(combinedReadBody, `"video_status": "processing"`, `"video_status": "completed"`, 1)))
	})
	sink := &recordingSink{}
	poller := NewPoller(service, sink, 20*time.Millisecond)

	poller.Watch("item-1")
	defer poller.Unwatch("item-1")

	waitFor(t, func() bool {
		return sink.count() >= 2 && sink.last().item != nil && sink.last().item.VideoStatus == "completed"
	})

	assert.GreaterOrEqual(t, requests.Load(), int64(2), "every poll cycle must re-issue the read")

	// The poller also refreshed the cache for manual readers.
	poller.Unwatch("item-1")
	time.Sleep(50 * time.Millisecond) // let an in-flight poll drain
	before := requests.Load()
	item, err := service.Fetch(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", item.VideoStatus)
	assert.Equal(t, before, requests.Load(), "the manual read right after a poll is served from cache")
}

func TestPollerKeepsPollingAfterFailure(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	service, _, _ := newTestService(t, 0, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		failing := calls == 1
		mu.Unlock()
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(combinedReadBody))
	})
	sink := &recordingSink{}
	poller := NewPoller(service, sink, 20*time.Millisecond)

	poller.Watch("item-1")
	defer poller.Unwatch("item-1")

	// First attempt fails, later cycles recover on their own.
	waitFor(t, func() bool { return sink.count() >= 2 })

	last := sink.last()
	assert.NoError(t, last.err)
	require.NotNil(t, last.item)
}
