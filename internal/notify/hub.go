// Package notify fans out chain events (new blocks, superblocks, DR
// stage transitions) to whoever is watching, adapted from the teacher's
// websocket Hub but over plain channels rather than a network transport
// (spec.md's non-goals exclude a P2P/gossip surface).
package notify

import (
	"log"
	"sync"
)

// Event is one notifiable chain occurrence.
type Event struct {
	Kind string // "block", "superblock", "dr_stage"
	Data any
}

const (
	KindBlock      = "block"
	KindSuperblock = "superblock"
	KindDRStage    = "dr_stage"
)

// Hub maintains the set of active subscriber channels and fans out every
// published Event to each of them, dropping events for subscribers that
// fall behind rather than blocking the publisher.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan Event]bool
	publish     chan Event
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]bool),
		publish:     make(chan Event, 256),
	}
}

// Run drains the publish queue and fans each event out, exactly like the
// teacher's Hub.Run loop over its broadcast channel.
func (h *Hub) Run() {
	for event := range h.publish {
		h.mu.Lock()
		for sub := range h.subscribers {
			select {
			case sub <- event:
			default:
				log.Printf("[notify] subscriber channel full, dropping %s event", event.Kind)
			}
		}
		h.mu.Unlock()
	}
}

// Subscribe registers a new channel and returns it along with an
// unsubscribe func the caller must defer-call.
func (h *Hub) Subscribe(buffer int) (ch chan Event, unsubscribe func()) {
	ch = make(chan Event, buffer)
	h.mu.Lock()
	h.subscribers[ch] = true
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
}

// Publish enqueues an event for fan-out. Never blocks the caller for
// long: Run's select-default means a stalled subscriber can't back the
// whole hub up.
func (h *Hub) Publish(event Event) {
	h.publish <- event
}
