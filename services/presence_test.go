package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

type transition struct {
	userID string
	status string
}

// recordingStore captures every transition the presence service emits.
type recordingStore struct {
	mu          sync.Mutex
	transitions []transition
	err         error
}

func (s *recordingStore) UpdateStatus(_ context.Context, userID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, transition{userID: userID, status: status})
	return s.err
}

func (s *recordingStore) all() []transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transition, len(s.transitions))
	copy(out, s.transitions)
	return out
}

func (s *recordingStore) count(userID, status string) int {
	n := 0
	for _, tr := range s.all() {
		if tr.userID == userID && tr.status == status {
			n++
		}
	}
	return n
}

func newTestService(store StatusStore) *PresenceService {
	return NewPresenceService(store, time.Minute, utils.NewLogger())
}

// drainFrames empties a client's outbound buffer and returns the decoded frames.
func drainFrames(t *testing.T, c *Client) []activeUsersFrame {
	t.Helper()
	var frames []activeUsersFrame
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return frames
			}
			var frame activeUsersFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				t.Fatalf("undecodable frame %q: %v", data, err)
			}
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func equalUsers(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSingleUserConnectionLifecycle(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	first := NewClient("alice", false, nil)
	second := NewClient("alice", false, nil)

	ps.Admit(first)
	if got := store.count("alice", models.StatusActive); got != 1 {
		t.Fatalf("after first connection: %d active transitions, want 1", got)
	}

	ps.Admit(second)
	if got := len(store.all()); got != 1 {
		t.Fatalf("second connection for same user fired a transition: %d total, want 1", got)
	}

	ps.Remove(first)
	if got := store.count("alice", models.StatusInactive); got != 0 {
		t.Fatalf("closing one of two connections fired inactive: %d, want 0", got)
	}

	ps.Remove(second)
	if got := store.count("alice", models.StatusInactive); got != 1 {
		t.Fatalf("after last connection closed: %d inactive transitions, want 1", got)
	}

	if got := len(store.all()); got != 2 {
		t.Fatalf("total transitions across lifecycle: %d, want 2", got)
	}
}

func TestConcurrentAdmissionsFireOneRisingEdge(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	const connections = 16
	clients := make([]*Client, connections)
	for i := range clients {
		clients[i] = NewClient("alice", false, nil)
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			ps.Admit(c)
		}(c)
	}
	wg.Wait()

	if got := store.count("alice", models.StatusActive); got != 1 {
		t.Fatalf("%d concurrent admissions fired %d rising edges, want 1", connections, got)
	}

	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			ps.Remove(c)
		}(c)
	}
	wg.Wait()

	if got := store.count("alice", models.StatusInactive); got != 1 {
		t.Fatalf("%d concurrent closures fired %d falling edges, want 1", connections, got)
	}
}

func TestAdminReceivesSnapshotOnAdmission(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	ps.Admit(NewClient("bob", false, nil))

	admin := NewClient("admin", true, nil)
	ps.Admit(admin)

	frames := drainFrames(t, admin)
	if len(frames) == 0 {
		t.Fatal("admin received no snapshot on admission")
	}

	first := frames[0]
	if first.Type != "activeUsers" {
		t.Fatalf("snapshot type = %q, want activeUsers", first.Type)
	}
	if !equalUsers(first.Users, []string{"admin", "bob"}) {
		t.Fatalf("snapshot users = %v, want [admin bob]", first.Users)
	}
}

func TestAdminSnapshotWhenRegistryOtherwiseEmpty(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	admin := NewClient("admin", true, nil)
	ps.Admit(admin)

	frames := drainFrames(t, admin)
	if len(frames) == 0 {
		t.Fatal("admin received no snapshot on admission")
	}
	if !equalUsers(frames[0].Users, []string{"admin"}) {
		t.Fatalf("snapshot users = %v, want [admin]", frames[0].Users)
	}
}

func TestBroadcastListsExactlyActiveUsers(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	alice := NewClient("alice", false, nil)
	bob := NewClient("bob", false, nil)

	ps.Admit(alice)
	ps.Admit(bob)

	frames := drainFrames(t, alice)
	if len(frames) == 0 {
		t.Fatal("no broadcast frames delivered to alice")
	}
	last := frames[len(frames)-1]
	if !equalUsers(last.Users, []string{"alice", "bob"}) {
		t.Fatalf("broadcast users = %v, want [alice bob]", last.Users)
	}

	ps.Remove(bob)

	frames = drainFrames(t, alice)
	if len(frames) == 0 {
		t.Fatal("no broadcast after falling edge")
	}
	last = frames[len(frames)-1]
	if !equalUsers(last.Users, []string{"alice"}) {
		t.Fatalf("broadcast users after bob left = %v, want [alice]", last.Users)
	}
}

func TestGetActiveUsersIsAdminOnly(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	user := NewClient("carol", false, nil)
	admin := NewClient("admin", true, nil)
	ps.Admit(user)
	ps.Admit(admin)

	drainFrames(t, user)
	drainFrames(t, admin)
	before := len(store.all())

	ps.HandleMessage(user, []byte(`{"type":"getActiveUsers"}`))
	if frames := drainFrames(t, user); len(frames) != 0 {
		t.Fatalf("non-admin request produced %d frames, want 0", len(frames))
	}
	if frames := drainFrames(t, admin); len(frames) != 0 {
		t.Fatalf("non-admin request leaked %d frames to others, want 0", len(frames))
	}

	ps.HandleMessage(admin, []byte(`{"type":"getActiveUsers"}`))
	frames := drainFrames(t, admin)
	if len(frames) != 1 {
		t.Fatalf("admin request produced %d frames, want 1", len(frames))
	}
	if !equalUsers(frames[0].Users, []string{"admin", "carol"}) {
		t.Fatalf("on-demand snapshot = %v, want [admin carol]", frames[0].Users)
	}

	if got := len(store.all()); got != before {
		t.Fatalf("snapshot request caused %d transitions", got-before)
	}
}

func TestMalformedAndUnknownFramesIgnored(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	admin := NewClient("admin", true, nil)
	ps.Admit(admin)
	drainFrames(t, admin)

	ps.HandleMessage(admin, []byte(`{not json`))
	ps.HandleMessage(admin, []byte(`{"type":"shrubbery"}`))

	if frames := drainFrames(t, admin); len(frames) != 0 {
		t.Fatalf("junk input produced %d frames, want 0", len(frames))
	}
}

func TestSweepEvictsSilentConnection(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	silent := NewClient("dave", false, nil)
	chatty := NewClient("erin", false, nil)
	ps.Admit(silent)
	ps.Admit(chatty)

	// First round: both were alive when admitted, nobody is evicted yet.
	ps.sweep()
	if got := store.count("dave", models.StatusInactive); got != 0 {
		t.Fatalf("connection evicted one round early: %d inactive, want 0", got)
	}

	// Only erin answers the probe.
	chatty.markAlive()

	ps.sweep()
	if got := store.count("dave", models.StatusInactive); got != 1 {
		t.Fatalf("silent connection not evicted: %d inactive transitions, want 1", got)
	}
	if got := store.count("erin", models.StatusInactive); got != 0 {
		t.Fatalf("responsive connection evicted: %d inactive transitions, want 0", got)
	}
}

func TestPersistenceFailureKeepsRegistryAuthoritative(t *testing.T) {
	store := &recordingStore{err: errors.New("database unavailable")}
	ps := newTestService(store)

	alice := NewClient("alice", false, nil)
	observer := NewClient("frank", false, nil)
	ps.Admit(observer)
	ps.Admit(alice)

	// The broadcast after the failed write still reflects in-memory state.
	frames := drainFrames(t, observer)
	if len(frames) == 0 {
		t.Fatal("no broadcast after failed persistence write")
	}
	last := frames[len(frames)-1]
	if !equalUsers(last.Users, []string{"alice", "frank"}) {
		t.Fatalf("broadcast users = %v, want [alice frank]", last.Users)
	}

	ps.Remove(alice)
	if got := store.count("alice", models.StatusInactive); got != 1 {
		t.Fatalf("falling edge not attempted after earlier failure: %d, want 1", got)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := &recordingStore{}
	ps := newTestService(store)

	alice := NewClient("alice", false, nil)
	ps.Admit(alice)

	ps.Remove(alice)
	ps.Remove(alice)

	if got := store.count("alice", models.StatusInactive); got != 1 {
		t.Fatalf("duplicate removal fired %d falling edges, want 1", got)
	}
}
