package events

import "sync"

// Topics carried by the bus. Producers publish after a successful persist;
// nothing is buffered for late subscribers.
const (
	TopicInvitationReceived      = "invitation.received"
	TopicInvitationStatusChanged = "invitation.status_changed"
	TopicNotificationCreated     = "notification.created"
	TopicProjectUpdated          = "project.updated"
	TopicMessageReceived         = "message.received"
)

// subscriberBuffer bounds the per-subscriber queue. A subscriber that falls
// further behind than this loses events instead of stalling publishers.
const subscriberBuffer = 64

type Event struct {
	Topic   string
	Payload interface{}
}

// Bus is an in-process, topic-keyed broadcast registry. Every subscriber to
// a topic receives its own copy of every event published after it
// subscribed. Publish never blocks.
//
// Sends and channel closes both happen under mu, so an unsubscribe can never
// race a publish into a closed channel. The hand-off itself is a
// non-blocking buffered send, so holding the lock never waits on a consumer.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]chan Event
	nextID uint64
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[uint64]chan Event)}
}

// Publish hands the event to every current subscriber of the topic and
// returns immediately. A topic with no subscribers drops the event. A
// subscriber whose buffer is full is skipped.
func (b *Bus) Publish(topic string, payload interface{}) {
	event := Event{Topic: topic, Payload: payload}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers interest in a topic. The returned subscription yields
// events in publish order on C until Unsubscribe is called or the bus is
// closed, after which C is closed.
func (b *Bus) Subscribe(topic string) *Subscription {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return &Subscription{C: ch, cancel: func() {}}
	}
	b.nextID++
	id := b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]chan Event)
	}
	b.subs[topic][id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[topic][id]; !ok {
			return
		}
		delete(b.subs[topic], id)
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
		close(ch)
	}

	return &Subscription{C: ch, cancel: cancel}
}

// Close drops every subscriber and closes their channels. Publishing on a
// closed bus is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, byID := range b.subs {
		for _, ch := range byID {
			close(ch)
		}
	}
	b.subs = make(map[string]map[uint64]chan Event)
}

// Subscription is a live registration on the bus. Unsubscribe is safe to
// call more than once and releases the registration promptly; events still
// in the buffer remain readable until C is drained.
type Subscription struct {
	C      chan Event
	once   sync.Once
	cancel func()
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}
