package eventbus

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/flotilla/pkg/models"
)

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestSubject(t *testing.T) {
	if got := Subject("run-42"); got != "flotilla.run.run-42.events" {
		t.Errorf("Subject() = %q", got)
	}
}

func TestSink_PublishesEventAsJSON(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewSink(pub)

	sent := models.StreamEvent{
		Type:      models.EventSubTaskCompleted,
		RunID:     "run-1",
		SubTaskID: "st-7",
		Tier:      models.TierWorker,
		Attempt:   2,
		Message:   "subtask done",
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	sink.OnEvent(sent)

	if len(pub.payloads) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.payloads))
	}
	if pub.subjects[0] != "flotilla.run.run-1.events" {
		t.Errorf("subject = %q", pub.subjects[0])
	}

	var got models.StreamEvent
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if got.Type != sent.Type || got.SubTaskID != sent.SubTaskID || got.Attempt != sent.Attempt {
		t.Errorf("round-tripped event = %+v, want %+v", got, sent)
	}
	if !got.Timestamp.Equal(sent.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, sent.Timestamp)
	}
	if sink.Failed() != 0 {
		t.Errorf("failed = %d, want 0", sink.Failed())
	}
}

func TestSink_RoutesByRunID(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewSink(pub)

	sink.OnEvent(models.StreamEvent{Type: models.EventRunStarted, RunID: "run-a"})
	sink.OnEvent(models.StreamEvent{Type: models.EventRunStarted, RunID: "run-b"})

	if pub.subjects[0] != "flotilla.run.run-a.events" || pub.subjects[1] != "flotilla.run.run-b.events" {
		t.Errorf("subjects = %v", pub.subjects)
	}
}

func TestSink_CountsPublishFailures(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection closed")}
	sink := NewSink(pub)

	for i := 0; i < 3; i++ {
		sink.OnEvent(models.StreamEvent{Type: models.EventRunStarted, RunID: "run-1"})
	}

	if sink.Failed() != 3 {
		t.Errorf("failed = %d, want 3", sink.Failed())
	}
}
