package notify

import (
	"log"
	"sync"
)

// Topics emitted after a widget mutation. Subscribers reload the matching
// collection when they see one.
const (
	TopicTasks     = "tasks-updated"
	TopicKanban    = "kanban-updated"
	TopicSchedules = "schedules-updated"
	TopicTimer     = "timer-updated"
	TopicAlarms    = "alarms-updated"
	TopicOpenPage  = "open-page"
	TopicYouTube   = "play-youtube-video"
	TopicToast     = "toast"
)

// Toast severities.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Event is one notification. Detail is optional free-form payload (a page
// name, a video URL, a toast message).
type Event struct {
	Topic  string `json:"topic"`
	Level  string `json:"level,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Bus is a fan-out pub/sub for domain change events. Publishing never
// blocks: a subscriber that stops draining loses events, it does not stall
// the handlers that mutate state.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 32)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			log.Printf("[Notify] subscriber backlog full, dropping %s", event.Topic)
		}
	}
}

// Changed publishes a bare state-change notification for a topic.
func (b *Bus) Changed(topic string) {
	b.Publish(Event{Topic: topic})
}

// Toast publishes a user-facing toast with the given severity.
func (b *Bus) Toast(level, message string) {
	b.Publish(Event{Topic: TopicToast, Level: level, Detail: message})
}
