package notify

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	first, cancelFirst := bus.Subscribe()
	second, cancelSecond := bus.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	bus.Changed(TopicKanban)

	for _, ch := range []<-chan Event{first, second} {
		select {
		case event := <-ch:
			if event.Topic != TopicKanban {
				t.Fatalf("unexpected topic: %s", event.Topic)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Changed(TopicTasks)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a subscriber that never drains")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	bus.Toast(LevelSuccess, "Cronograma criado!")

	if _, open := <-ch; open {
		t.Fatal("expected closed channel after cancel")
	}
}

func TestToastCarriesLevelAndMessage(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Toast(LevelWarning, "Cronograma criado, mas erro ao sincronizar com Google Agenda.")

	event := <-ch
	if event.Topic != TopicToast || event.Level != LevelWarning {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Detail == "" {
		t.Fatal("expected toast message")
	}
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *Bus
	bus.Changed(TopicTimer)
	bus.Toast(LevelError, "x")
}
