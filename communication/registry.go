package communication

import (
	"fmt"
	"sync"
)

const DefaultMailboxCapacity = 1024

// Mailbox is a single actor's inbound queue. Exactly one goroutine drains
// it; any goroutine may deliver to it through the registry.
type Mailbox struct {
	name string
	ch   chan Message
}

func (m *Mailbox) Name() string { return m.name }

// Chan exposes the receive side for use in select loops.
func (m *Mailbox) Chan() <-chan Message { return m.ch }

func (m *Mailbox) deliver(msg Message) bool {
	select {
	case m.ch <- msg:
		return true
	default:
		return false
	}
}

// Registry maps stable identity strings to live mailboxes. It is the single
// point of identity allocation: claiming a name that is already claimed
// fails, which is what guards against two negotiators being spawned for the
// same (buyer, auction) pair.
type Registry struct {
	lock      sync.RWMutex
	mailboxes map[string]*Mailbox
	capacity  int
}

func NewRegistry() *Registry {
	return &Registry{
		mailboxes: map[string]*Mailbox{},
		capacity:  DefaultMailboxCapacity,
	}
}

func (r *Registry) Claim(name string) (*Mailbox, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, taken := r.mailboxes[name]; taken {
		return nil, fmt.Errorf("name already claimed: %s", name)
	}

	mailbox := &Mailbox{name: name, ch: make(chan Message, r.capacity)}
	r.mailboxes[name] = mailbox
	return mailbox, nil
}

func (r *Registry) Release(name string) {
	r.lock.Lock()
	delete(r.mailboxes, name)
	r.lock.Unlock()
}

// Send delivers msg to the named actor. Unknown names and full mailboxes
// drop the message; within the simulated process space that is the entire
// failure model, nothing propagates.
func (r *Registry) Send(to string, msg Message) bool {
	r.lock.RLock()
	mailbox, found := r.mailboxes[to]
	r.lock.RUnlock()

	if !found {
		return false
	}
	return mailbox.deliver(msg)
}
