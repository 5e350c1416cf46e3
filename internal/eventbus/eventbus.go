// Package eventbus publishes the orchestrator's event stream to NATS so
// external consumers can follow runs in real time.
package eventbus

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/ShayCichocki/flotilla/pkg/models"
)

// Publisher is the portion of a NATS connection the sink needs. *nats.Conn
// satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subject returns the per-run event subject.
func Subject(runID string) string {
	return fmt.Sprintf("flotilla.run.%s.events", runID)
}

// SubjectAllRuns matches the event subjects of every run.
const SubjectAllRuns = "flotilla.run.*.events"

// Connect opens a NATS connection for publishing run events.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("flotilla"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return conn, nil
}

// Sink forwards each stream event to NATS as a JSON message. Publishing is
// best-effort: failures are counted and logged, never surfaced to the run.
type Sink struct {
	pub    Publisher
	failed atomic.Uint64
}

// NewSink creates a Sink over an established publisher. The caller owns the
// connection lifecycle.
func NewSink(pub Publisher) *Sink {
	return &Sink{pub: pub}
}

// OnEvent publishes the event to the run's subject.
func (s *Sink) OnEvent(ev models.StreamEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.fail(ev, err)
		return
	}
	if err := s.pub.Publish(Subject(ev.RunID), data); err != nil {
		s.fail(ev, err)
	}
}

// Failed returns how many events could not be published.
func (s *Sink) Failed() uint64 {
	return s.failed.Load()
}

func (s *Sink) fail(ev models.StreamEvent, err error) {
	count := s.failed.Add(1)
	if count%10 == 1 { // Log every 10th failure to avoid spam
		log.Printf("[eventbus] publish %s failed (total failed: %d): %v", ev.Type, count, err)
	}
}
