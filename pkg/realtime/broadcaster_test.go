package realtime

import (
	"testing"
)

func TestNewBroadcaster(t *testing.T) {
	b := NewBroadcaster[string]()
	if b == nil {
		t.Fatal("NewBroadcaster returned nil")
	}
	if b.Len() != 0 {
		t.Errorf("Len %d, want 0", b.Len())
	}
}

func TestBroadcaster_Subscribe(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe returned nil channel")
	}
	if cap(ch) != DefaultDepth {
		t.Errorf("cap %d, want %d", cap(ch), DefaultDepth)
	}
	b.Unsubscribe(ch)
}

func TestBroadcaster_PublishDeliversToSubscriber(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish("timer")
	got := <-ch
	if got != "timer" {
		t.Errorf("got event %q, want %q", got, "timer")
	}
}

func TestBroadcaster_PublishDeliversToMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster[int]()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	b.Publish(7)
	if got := <-ch1; got != 7 {
		t.Errorf("ch1 got %d, want 7", got)
	}
	if got := <-ch2; got != 7 {
		t.Errorf("ch2 got %d, want 7", got)
	}
}

func TestBroadcaster_PublishDropsWhenFull(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.SubscribeDepth(1)
	defer b.Unsubscribe(ch)

	if dropped := b.Publish("first"); dropped != 0 {
		t.Fatalf("dropped %d on empty buffer", dropped)
	}
	if dropped := b.Publish("second"); dropped != 1 {
		t.Fatalf("dropped %d, want 1", dropped)
	}
	if got := <-ch; got != "first" {
		t.Errorf("got %q, want first", got)
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	_, open := <-ch
	if open {
		t.Error("channel should be closed after Unsubscribe")
	}
	// second unsubscribe must not panic on a closed channel
	b.Unsubscribe(ch)
}

func TestBroadcaster_UnsubscribeRemovesFromDelivery(t *testing.T) {
	b := NewBroadcaster[string]()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	b.Unsubscribe(ch1)
	b.Publish("presets")
	if got := <-ch2; got != "presets" {
		t.Errorf("ch2 got %q, want presets", got)
	}
	if b.Len() != 1 {
		t.Errorf("Len %d, want 1", b.Len())
	}
	b.Unsubscribe(ch2)
}
