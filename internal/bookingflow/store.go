package bookingflow

import (
	"sync"
	"time"
)

// FlowStore holds in-progress booking sessions.
type FlowStore interface {
	Get(id string) (*Flow, bool)
	Put(flow *Flow)
	Delete(id string)
	Stop()
}

// InMemoryFlowStore keeps sessions in a mutex-guarded map with TTL expiry.
// Abandoned flows are reaped by a background sweep; a restart simply drops
// every in-progress session, which is acceptable for pre-submit state.
type InMemoryFlowStore struct {
	mu     sync.RWMutex
	flows  map[string]*Flow
	ttl    time.Duration
	stopCh chan struct{}
	once   sync.Once
}

func NewInMemoryFlowStore(ttl time.Duration, sweepInterval time.Duration) *InMemoryFlowStore {
	s := &InMemoryFlowStore{
		flows:  make(map[string]*Flow),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	go s.sweep(sweepInterval)
	return s
}

func (s *InMemoryFlowStore) Get(id string) (*Flow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow, ok := s.flows[id]
	if !ok || time.Now().After(flow.ExpiresAt) {
		return nil, false
	}

	copied := *flow
	return &copied, true
}

// Put stores the flow and renews its expiry; every user interaction keeps the
// session alive.
func (s *InMemoryFlowStore) Put(flow *Flow) {
	now := time.Now()
	flow.UpdatedAt = now
	flow.ExpiresAt = now.Add(s.ttl)

	copied := *flow

	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[flow.ID] = &copied
}

func (s *InMemoryFlowStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
}

func (s *InMemoryFlowStore) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
	})
}

func (s *InMemoryFlowStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, flow := range s.flows {
				if now.After(flow.ExpiresAt) {
					delete(s.flows, id)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}
