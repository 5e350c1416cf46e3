package orchestrator

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/ShayCichocki/flotilla/internal/executor"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

// fanout forwards each event to every registered observer in order. The
// observer set is fixed at construction, so delivery needs no locking.
type fanout struct {
	observers []executor.Observer
}

func (f *fanout) OnEvent(ev models.StreamEvent) {
	for _, obs := range f.observers {
		obs.OnEvent(ev)
	}
}

// ChannelObserver buffers events on a channel for a consumer such as a CLI
// progress view. Delivery is best-effort: a full buffer gets a short grace
// period to drain, then the event is dropped and counted.
type ChannelObserver struct {
	events  chan models.StreamEvent
	dropped atomic.Uint64
}

// NewChannelObserver creates a ChannelObserver with the given buffer size.
func NewChannelObserver(bufferSize int) *ChannelObserver {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &ChannelObserver{events: make(chan models.StreamEvent, bufferSize)}
}

// OnEvent enqueues the event, dropping it if the buffer stays full past the
// grace period.
func (c *ChannelObserver) OnEvent(ev models.StreamEvent) {
	select {
	case c.events <- ev:
		return
	default:
	}

	select {
	case c.events <- ev:
	case <-time.After(100 * time.Millisecond):
		count := c.dropped.Add(1)
		if count%10 == 1 { // Log every 10th drop to avoid spam
			log.Printf("[orchestrator] event buffer full, dropped %s (total dropped: %d)", ev.Type, count)
		}
	}
}

// Events returns the read side of the buffer.
func (c *ChannelObserver) Events() <-chan models.StreamEvent {
	return c.events
}

// Dropped returns how many events have been dropped so far.
func (c *ChannelObserver) Dropped() uint64 {
	return c.dropped.Load()
}

// Close closes the event channel. Call only after the run has returned.
func (c *ChannelObserver) Close() {
	close(c.events)
}

// LogObserver writes every event to the standard logger. The zero value is
// ready to use.
type LogObserver struct{}

// OnEvent logs the event with its correlating identifiers.
func (LogObserver) OnEvent(ev models.StreamEvent) {
	switch {
	case ev.SubTaskID != "":
		log.Printf("[event] %s subtask=%s tier=%s attempt=%d %s", ev.Type, ev.SubTaskID, ev.Tier, ev.Attempt, ev.Message)
	case ev.Tier != "":
		log.Printf("[event] %s tier=%s %s", ev.Type, ev.Tier, ev.Message)
	default:
		log.Printf("[event] %s %s", ev.Type, ev.Message)
	}
}
