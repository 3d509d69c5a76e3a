// File: internal/services/chat/locks.go
package chat

import "sync"

// ConversationLocks serializes turn persistence per conversation. Two
// concurrent SendMessage calls on the same conversation persist their
// user/assistant pairs one after the other; calls on different conversations
// proceed fully in parallel. There is deliberately no global lock.
type ConversationLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewConversationLocks() *ConversationLocks {
	return &ConversationLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock acquires the lock for one conversation and returns its unlock
// function. Lock entries are retained for the life of the process; the map
// grows with the number of distinct conversations seen, which is bounded by
// normal traffic.
func (c *ConversationLocks) Lock(conversationID uint) func() {
	c.mu.Lock()
	lock, ok := c.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[conversationID] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
