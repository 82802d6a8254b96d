// Package notify holds the transient status messages shown to the user.
// Messages expire on their own after a fixed delay whether or not anything
// is observing them.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stoyanh/receipt-scanner/dto"
)

// DefaultTTL matches the five seconds the UI keeps a toast on screen.
const DefaultTTL = 5 * time.Second

// Center manages ephemeral status messages. Safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	messages []dto.StatusMessage
	timers   map[string]*time.Timer
	ttl      time.Duration
}

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		timers: make(map[string]*time.Timer),
		ttl:    ttl,
	}
}

// Show adds a message and schedules its removal after the TTL. Returns the
// message id.
func (c *Center) Show(text string, kind dto.StatusKind) string {
	id := uuid.NewString()

	c.mu.Lock()
	c.messages = append(c.messages, dto.StatusMessage{
		ID:   id,
		Text: text,
		Kind: kind,
	})
	c.timers[id] = time.AfterFunc(c.ttl, func() {
		c.Remove(id)
	})
	c.mu.Unlock()

	return id
}

// Remove deletes a message by id. Removing an id that is already gone is a
// no-op, so the expiry timer and a manual dismissal cannot conflict.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}

	for i, msg := range c.messages {
		if msg.ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			break
		}
	}
}

// Messages returns the current messages in insertion order.
func (c *Center) Messages() []dto.StatusMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]dto.StatusMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Close stops all pending expiry timers.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.messages = nil
}
