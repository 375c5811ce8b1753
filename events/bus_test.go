package events

import (
	"testing"
	"time"
)

func receiveOne(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case event, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case event, ok := <-sub.C:
		if ok {
			t.Fatalf("unexpected event on %s: %+v", event.Topic, event.Payload)
		}
	default:
	}
}

func TestPublish_BroadcastsToAllSubscribers(t *testing.T) {
	bus := NewBus()
	first := bus.Subscribe(TopicProjectUpdated)
	second := bus.Subscribe(TopicProjectUpdated)

	bus.Publish(TopicProjectUpdated, "payload")

	for _, sub := range []*Subscription{first, second} {
		event := receiveOne(t, sub)
		if event.Topic != TopicProjectUpdated || event.Payload != "payload" {
			t.Fatalf("unexpected event: %+v", event)
		}
	}
}

func TestPublish_BeforeSubscribeIsNotDelivered(t *testing.T) {
	bus := NewBus()
	bus.Publish(TopicInvitationReceived, "early")

	sub := bus.Subscribe(TopicInvitationReceived)
	assertNoEvent(t, sub)

	bus.Publish(TopicInvitationReceived, "late")
	event := receiveOne(t, sub)
	if event.Payload != "late" {
		t.Fatalf("expected only the late event, got %v", event.Payload)
	}
}

func TestPublish_TopicsAreIndependent(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicMessageReceived)

	bus.Publish(TopicNotificationCreated, "other topic")
	assertNoEvent(t, sub)
}

func TestSubscribe_EventsArriveInPublishOrder(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicNotificationCreated)

	for i := 0; i < 10; i++ {
		bus.Publish(TopicNotificationCreated, i)
	}

	for i := 0; i < 10; i++ {
		event := receiveOne(t, sub)
		if event.Payload != i {
			t.Fatalf("expected payload %d, got %v", i, event.Payload)
		}
	}
}

func TestUnsubscribe_StopsDeliveryAndClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicProjectUpdated)
	other := bus.Subscribe(TopicProjectUpdated)

	sub.Unsubscribe()
	sub.Unsubscribe() // safe to repeat

	bus.Publish(TopicProjectUpdated, "after")

	if _, ok := <-sub.C; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}

	// The remaining subscriber is unaffected.
	event := receiveOne(t, other)
	if event.Payload != "after" {
		t.Fatalf("unexpected payload: %v", event.Payload)
	}
}

func TestPublish_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus()
	slow := bus.Subscribe(TopicProjectUpdated)
	keeping := bus.Subscribe(TopicProjectUpdated)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(TopicProjectUpdated, i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// The slow subscriber got the first buffer's worth, then lost the rest.
	count := 0
	for {
		select {
		case <-slow.C:
			count++
			continue
		default:
		}
		break
	}
	if count != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, count)
	}

	// A subscriber that keeps up within its buffer sees publish order.
	for i := 0; i < subscriberBuffer; i++ {
		event := receiveOne(t, keeping)
		if event.Payload != i {
			t.Fatalf("expected payload %d, got %v", i, event.Payload)
		}
	}
}

func TestClose_ClosesSubscribersAndDropsPublishes(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicInvitationReceived)

	bus.Close()

	if _, ok := <-sub.C; ok {
		t.Fatal("expected closed channel after bus close")
	}

	bus.Publish(TopicInvitationReceived, "ignored")
	sub.Unsubscribe() // no panic after close

	late := bus.Subscribe(TopicInvitationReceived)
	if _, ok := <-late.C; ok {
		t.Fatal("expected immediately closed channel when subscribing after close")
	}
}
