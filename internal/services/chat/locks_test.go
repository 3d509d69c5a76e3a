// File: internal/services/chat/locks_test.go
package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationLocks_SerializesSameConversation(t *testing.T) {
	locks := NewConversationLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(7)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestConversationLocks_IndependentConversationsDoNotBlock(t *testing.T) {
	locks := NewConversationLocks()

	// Holding one conversation's lock must not block another's; this would
	// deadlock if the two ids shared a mutex.
	unlockA := locks.Lock(1)
	unlockB := locks.Lock(2)
	unlockB()
	unlockA()
}
