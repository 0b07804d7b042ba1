// Package notify delivers worksheet state changes to observers.
//
// The worksheet publishes an Event whenever its text, gap set, settings,
// title or selection mode changes. The terminal front end subscribes to
// redraw and the command line subscribes to log changes.
package notify

import (
	"sort"
	"sync"

	"github.com/dshills/clozet/internal/gap"
)

// Kind identifies what changed.
type Kind int

const (
	// KindText indicates the source text was replaced and re-tokenized.
	KindText Kind = iota

	// KindGaps indicates gaps were added or removed.
	KindGaps

	// KindSettings indicates the artifact settings changed.
	KindSettings

	// KindTitle indicates the worksheet title changed.
	KindTitle

	// KindMode indicates range mode was toggled.
	KindMode
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindGaps:
		return "gaps"
	case KindSettings:
		return "settings"
	case KindTitle:
		return "title"
	case KindMode:
		return "mode"
	default:
		return "unknown"
	}
}

// Event represents a worksheet change.
type Event struct {
	// Kind is the type of change.
	Kind Kind

	// Delta lists gaps added and removed by the change.
	// Text changes report every previous gap as removed.
	Delta gap.Delta

	// Epoch identifies the tokenization the change applies to.
	Epoch string
}

// Observer is called when a change occurs.
type Observer func(Event)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	kinds    map[Kind]bool
	observer Observer
}

// Notifier manages change subscriptions.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]entry
	nextID    uint64

	async  bool
	buffer chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous delivery from a single goroutine.
// Events are still delivered in publication order.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Event, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]entry),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for every change, or only for the
// given kinds when any are listed.
func (n *Notifier) Subscribe(observer Observer, kinds ...Kind) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	var filter map[Kind]bool
	if len(kinds) > 0 {
		filter = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			filter[k] = true
		}
	}
	n.observers[id] = entry{kinds: filter, observer: observer}

	return &Subscription{id: id, notifier: n}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Notify sends an event to all matching observers.
func (n *Notifier) Notify(ev Event) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- ev:
		case <-n.done:
		}
		return
	}

	n.deliver(ev)
}

// Close shuts down the notifier. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// deliver calls matching observers in subscription order, outside the lock.
func (n *Notifier) deliver(ev Event) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.observers))
	for id, e := range n.observers {
		if e.kinds == nil || e.kinds[ev.Kind] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id].observer
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(ev)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case ev := <-n.buffer:
			n.deliver(ev)
		case <-n.done:
			// Drain remaining buffered events
			for {
				select {
				case ev := <-n.buffer:
					n.deliver(ev)
				default:
					return
				}
			}
		}
	}
}
