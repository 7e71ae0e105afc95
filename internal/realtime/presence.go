package realtime

import (
	"sync"

	"github.com/skillbridge/platform/internal/api/metrics"
	"github.com/skillbridge/platform/internal/core/ports"
)

// Registry is the presence table: a mapping of live connection ids to user
// ids, plus a per-user session count so the online/offline transition can be
// detected without scanning. It is the only concurrently-mutated shared state
// in the identity core.
//
// Transition detection happens inside the same critical section as the table
// mutation: two racing connects for a brand-new user can never both observe
// "not yet present", and two racing disconnects of a user's last two sessions
// produce exactly one offline broadcast. The broadcast itself is published
// after the lock is released so a slow Broadcaster cannot stall connection
// handling; the delivery-order caveat that follows from this is documented
// on ports.Broadcaster.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]string // connection id → user id
	counts   map[string]int    // user id → live session count

	broadcaster ports.Broadcaster
}

func NewRegistry(b ports.Broadcaster) *Registry {
	return &Registry{
		sessions:    make(map[string]string),
		counts:      make(map[string]int),
		broadcaster: b,
	}
}

// Connect records a live connection for userID. Broadcasts user.online only
// on the 0→1 transition: a second browser tab does not re-announce the user.
func (r *Registry) Connect(connectionID, userID string) {
	r.mu.Lock()
	if _, dup := r.sessions[connectionID]; dup {
		r.mu.Unlock()
		return
	}
	r.sessions[connectionID] = userID
	r.counts[userID]++
	first := r.counts[userID] == 1
	online := len(r.counts)
	r.mu.Unlock()

	if first {
		metrics.OnlineUsers.Set(float64(online))
		metrics.PresenceBroadcasts.WithLabelValues(ports.TopicUserOnline).Inc()
		r.broadcaster.Publish(ports.TopicUserOnline, userID)
	}
}

// Disconnect removes a connection. Broadcasts user.offline only when the
// user's last session is gone. Unknown connection ids are ignored.
func (r *Registry) Disconnect(connectionID string) {
	r.mu.Lock()
	userID, ok := r.sessions[connectionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, connectionID)
	r.counts[userID]--
	last := r.counts[userID] == 0
	if last {
		delete(r.counts, userID)
	}
	online := len(r.counts)
	r.mu.Unlock()

	if last {
		metrics.OnlineUsers.Set(float64(online))
		metrics.PresenceBroadcasts.WithLabelValues(ports.TopicUserOffline).Inc()
		r.broadcaster.Publish(ports.TopicUserOffline, userID)
	}
}

// IsOnline reports whether userID has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[userID] > 0
}

// Count returns the number of live connections (not distinct users).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// OnlineUserIDs returns the distinct users currently online.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.counts))
	for userID := range r.counts {
		ids = append(ids, userID)
	}
	return ids
}
