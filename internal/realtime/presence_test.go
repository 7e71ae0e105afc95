package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/skillbridge/platform/internal/core/ports"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string // "topic:userID"
}

func (b *recordingBroadcaster) Publish(topic, userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, topic+":"+userID)
}

func (b *recordingBroadcaster) count(topic, userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == topic+":"+userID {
			n++
		}
	}
	return n
}

func TestRegistry_SingleOnlineTransition(t *testing.T) {
	b := &recordingBroadcaster{}
	r := NewRegistry(b)

	// Two tabs for the same user: exactly one online broadcast.
	r.Connect("s1", "u1")
	r.Connect("s2", "u1")

	if got := b.count(ports.TopicUserOnline, "u1"); got != 1 {
		t.Fatalf("online broadcasts = %d, want 1", got)
	}
	if !r.IsOnline("u1") {
		t.Fatalf("u1 should be online")
	}
	if r.Count() != 2 {
		t.Fatalf("live sessions = %d, want 2", r.Count())
	}

	// First tab closes: still online, no offline broadcast.
	r.Disconnect("s1")
	if got := b.count(ports.TopicUserOffline, "u1"); got != 0 {
		t.Fatalf("offline broadcasts after first disconnect = %d, want 0", got)
	}
	if !r.IsOnline("u1") {
		t.Fatalf("u1 should still be online with one session left")
	}

	// Last tab closes: exactly one offline broadcast.
	r.Disconnect("s2")
	if got := b.count(ports.TopicUserOffline, "u1"); got != 1 {
		t.Fatalf("offline broadcasts = %d, want 1", got)
	}
	if r.IsOnline("u1") {
		t.Fatalf("u1 should be offline")
	}
	if r.Count() != 0 {
		t.Fatalf("live sessions = %d, want 0", r.Count())
	}
}

func TestRegistry_IndependentUsers(t *testing.T) {
	b := &recordingBroadcaster{}
	r := NewRegistry(b)

	r.Connect("s1", "u1")
	r.Connect("s2", "u2")

	ids := r.OnlineUserIDs()
	if len(ids) != 2 {
		t.Fatalf("online users = %v, want 2 entries", ids)
	}

	r.Disconnect("s1")
	if r.IsOnline("u1") || !r.IsOnline("u2") {
		t.Fatalf("u1 online=%v u2 online=%v, want false/true", r.IsOnline("u1"), r.IsOnline("u2"))
	}
}

func TestRegistry_UnknownAndDuplicateConnections(t *testing.T) {
	b := &recordingBroadcaster{}
	r := NewRegistry(b)

	// Unknown disconnect is a no-op.
	r.Disconnect("never-seen")
	if len(b.events) != 0 {
		t.Fatalf("unexpected broadcasts: %v", b.events)
	}

	// A duplicate connection id must not double-count the user.
	r.Connect("s1", "u1")
	r.Connect("s1", "u1")
	if r.Count() != 1 {
		t.Fatalf("live sessions = %d, want 1", r.Count())
	}
	r.Disconnect("s1")
	if r.IsOnline("u1") {
		t.Fatalf("u1 should be offline")
	}
}

func TestRegistry_ConcurrentChurnSameUser(t *testing.T) {
	const n = 64

	b := &recordingBroadcaster{}
	r := NewRegistry(b)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			r.Connect(id, "u1")
			r.Disconnect(id)
		}(i)
	}
	wg.Wait()

	// No leaked entries.
	if r.Count() != 0 {
		t.Fatalf("live sessions = %d, want 0", r.Count())
	}
	if r.IsOnline("u1") {
		t.Fatalf("u1 should be offline after all pairs completed")
	}

	// Every 0→1 transition has a matching 1→0: equal broadcast counts per
	// topic, and at least one of each. Interleaving determines how many
	// transitions occurred, but never a storm beyond pair parity.
	online := b.count(ports.TopicUserOnline, "u1")
	offline := b.count(ports.TopicUserOffline, "u1")
	if online != offline {
		t.Fatalf("online = %d, offline = %d; transitions must pair up", online, offline)
	}
	if online < 1 || online > n {
		t.Fatalf("online transitions = %d, want between 1 and %d", online, n)
	}
}

func TestRegistry_ConcurrentDistinctUsers(t *testing.T) {
	const users = 32

	b := &recordingBroadcaster{}
	r := NewRegistry(b)

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i)
			r.Connect(fmt.Sprintf("a%d", i), user)
			r.Connect(fmt.Sprintf("b%d", i), user)
			r.Disconnect(fmt.Sprintf("a%d", i))
		}(i)
	}
	wg.Wait()

	if got := len(r.OnlineUserIDs()); got != users {
		t.Fatalf("online users = %d, want %d", got, users)
	}
	if r.Count() != users {
		t.Fatalf("live sessions = %d, want %d", r.Count(), users)
	}
	for i := 0; i < users; i++ {
		user := fmt.Sprintf("u%d", i)
		if b.count(ports.TopicUserOnline, user) != 1 {
			t.Fatalf("user %s: online broadcasts = %d, want 1", user, b.count(ports.TopicUserOnline, user))
		}
		if b.count(ports.TopicUserOffline, user) != 0 {
			t.Fatalf("user %s went offline with a session still live", user)
		}
	}
}
