package push

import (
	"fmt"
	"sync"
	"testing"
)

// fakeListener records delivered events and can be set to fail.
type fakeListener struct {
	mu     sync.Mutex
	events []Event
	fail   bool
	closed bool
}

func (f *fakeListener) Send(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("send failed")
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeListener) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeListener) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestHub_BroadcastDeliversToAll(t *testing.T) {
	h := NewHub()
	a, b := &fakeListener{}, &fakeListener{}
	h.Register(a)
	h.Register(b)

	h.Broadcast(Event{Type: EventClassificationComplete})
	h.Broadcast(Event{Type: EventSensorUpdate})

	if a.count() != 2 || b.count() != 2 {
		t.Errorf("deliveries = (%d, %d), want (2, 2)", a.count(), b.count())
	}
}

func TestHub_FailedListenerDroppedOthersSurvive(t *testing.T) {
	h := NewHub()
	good := &fakeListener{}
	bad := &fakeListener{fail: true}
	h.Register(good)
	h.Register(bad)

	h.Broadcast(Event{Type: EventClassificationComplete})

	if good.count() != 1 {
		t.Errorf("good listener deliveries = %d, want 1", good.count())
	}
	if h.Len() != 1 {
		t.Errorf("live listeners = %d, want 1 after drop", h.Len())
	}
	if !bad.closed {
		t.Error("dropped listener was not closed")
	}

	// Subsequent broadcasts keep flowing to the survivor.
	h.Broadcast(Event{Type: EventSensorUpdate})
	if good.count() != 2 {
		t.Errorf("good listener deliveries = %d, want 2", good.count())
	}
}

func TestHub_DeregisterIsIdempotent(t *testing.T) {
	h := NewHub()
	l := &fakeListener{}
	id := h.Register(l)

	h.Deregister(id)
	h.Deregister(id)

	if h.Len() != 0 {
		t.Errorf("live listeners = %d, want 0", h.Len())
	}
}

func TestHub_ConcurrentBroadcastAndDeregister(t *testing.T) {
	h := NewHub()

	var ids []int64
	for i := 0; i < 20; i++ {
		ids = append(ids, h.Register(&fakeListener{}))
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			h.Broadcast(Event{Type: EventSensorUpdate})
		}
	}()
	go func() {
		defer wg.Done()
		for _, id := range ids {
			h.Deregister(id)
		}
	}()
	wg.Wait()

	if h.Len() != 0 {
		t.Errorf("live listeners = %d, want 0", h.Len())
	}
}
