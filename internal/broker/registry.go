package broker

import "sync"

// Subscriber is a handle to one live outbound connection. The broker owns
// the set of subscribers exclusively; Send and Close are the only operations
// it needs from the transport.
type Subscriber interface {
	// Send delivers one payload as one message frame. A returned error marks
	// the subscriber dead.
	Send(payload []byte) error
	// Close tears down the underlying connection. Called exactly once, on
	// removal or broker shutdown.
	Close() error
}

// subState tracks the lifecycle of a registered subscriber. The transport's
// handshake phase precedes Register, so entries start out open.
type subState int8

const (
	subOpen subState = iota
	subClosed
)

type subscription struct {
	id     uint64
	sub    Subscriber
	filter Filter
	state  subState
}

// registry maps stable ids to live subscriptions. Removal detaches under the
// lock and leaves closing to the caller, so a slow transport Close can never
// stall registration or a broadcast snapshot.
type registry struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription
}

func newRegistry() *registry {
	return &registry{subs: make(map[uint64]*subscription)}
}

func (r *registry) add(sub Subscriber, filter Filter) *subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s := &subscription{id: r.nextID, sub: sub, filter: filter}
	r.subs[s.id] = s
	return s
}

// detach removes the subscription and returns it for closing, or nil if the
// id is unknown or already removed.
func (r *registry) detach(id uint64) *subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil
	}
	delete(r.subs, id)
	s.state = subClosed
	return s
}

// snapshot returns the current membership. Broadcasting iterates the copy so
// concurrent register/unregister calls never observe a half-removed state.
func (r *registry) snapshot() []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*subscription, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s)
	}
	return out
}

// drain empties the registry and returns everything that was live, for
// shutdown.
func (r *registry) drain() []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*subscription, 0, len(r.subs))
	for id, s := range r.subs {
		s.state = subClosed
		out = append(out, s)
		delete(r.subs, id)
	}
	return out
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
