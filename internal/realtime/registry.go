package realtime

import "sync"

// Pusher is a live client connection able to receive a text message.
type Pusher interface {
	Push(message string) error
}

// Registry maps a user id to that user's live connection. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]Pusher
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[int64]Pusher),
	}
}

// Register makes p the live connection of userID and returns the connection it
// replaced, if any.
func (r *Registry) Register(userID int64, p Pusher) Pusher {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[userID]
	r.conns[userID] = p
	return prev
}

// Unregister removes p only if it is still the registered connection for
// userID, so a stale disconnect cannot evict a newer connection.
func (r *Registry) Unregister(userID int64, p Pusher) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.conns[userID]; ok && cur == p {
		delete(r.conns, userID)
		return true
	}
	return false
}

func (r *Registry) Get(userID int64) (Pusher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.conns[userID]
	return p, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
