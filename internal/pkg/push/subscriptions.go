package push

import (
	"sync"

	"github.com/storepulse/storepulse/app/models"
)

// SubscriptionStore holds the delivery endpoints client devices registered
// per store. Injected into the components that need it so lifetime and
// testability stay controlled.
type SubscriptionStore interface {
	// Subscribe adds a subscription unless a structurally identical one is
	// already registered. Returns true when the set grew.
	Subscribe(storeID string, sub models.PushSubscription) bool
	// Get returns a copy of the store's subscription set.
	Get(storeID string) []models.PushSubscription
	// Count returns the number of subscriptions for a store.
	Count(storeID string) int
}

// MemorySubscriptionStore keeps subscriptions in process memory; they are
// lost on restart and clients re-register on next app start. Never pruned
// automatically, even after a permanent delivery rejection.
type MemorySubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string][]models.PushSubscription
}

func NewMemorySubscriptionStore() *MemorySubscriptionStore {
	return &MemorySubscriptionStore{
		subs: make(map[string][]models.PushSubscription),
	}
}

func (s *MemorySubscriptionStore) Subscribe(storeID string, sub models.PushSubscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subs[storeID] {
		if existing.Equal(sub) {
			return false
		}
	}
	s.subs[storeID] = append(s.subs[storeID], sub)
	return true
}

func (s *MemorySubscriptionStore) Get(storeID string) []models.PushSubscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PushSubscription, len(s.subs[storeID]))
	copy(out, s.subs[storeID])
	return out
}

func (s *MemorySubscriptionStore) Count(storeID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[storeID])
}
