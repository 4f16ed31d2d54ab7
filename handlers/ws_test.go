package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"gardenia/backend/services"
	"gardenia/backend/utils"
)

const wsTestSecret = "ws-test-secret"

type fakeStatusStore struct {
	mu          sync.Mutex
	transitions map[string][]string
}

func (s *fakeStatusStore) UpdateStatus(_ context.Context, userID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitions == nil {
		s.transitions = make(map[string][]string)
	}
	s.transitions[userID] = append(s.transitions[userID], status)
	return nil
}

func (s *fakeStatusStore) history(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.transitions[userID]))
	copy(out, s.transitions[userID])
	return out
}

type wsFrame struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

func newWSTestServer(t *testing.T, store services.StatusStore) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := utils.NewLogger()

	presence := services.NewPresenceService(store, time.Minute, logger)
	handler := NewWSHandler(presence, wsTestSecret, logger)

	router := gin.New()
	router.GET("/ws", handler.Serve)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(presence.Stop)

	return srv
}

func wsTestToken(t *testing.T, userID string, isAdmin bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(wsTestSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForRoster reads frames until one lists exactly the wanted users.
func waitForRoster(t *testing.T, conn *websocket.Conn, want []string) {
	t.Helper()

	sorted := append([]string(nil), want...)
	sort.Strings(sorted)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for roster %v: %v", sorted, err)
		}

		var frame wsFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("undecodable frame %q: %v", data, err)
		}
		if frame.Type != "activeUsers" {
			continue
		}
		if len(frame.Users) == len(sorted) {
			match := true
			for i := range sorted {
				if frame.Users[i] != sorted[i] {
					match = false
					break
				}
			}
			if match {
				return
			}
		}
	}
	t.Fatalf("never observed roster %v", sorted)
}

func TestWebsocketRejectsInvalidToken(t *testing.T) {
	srv := newWSTestServer(t, &fakeStatusStore{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("read error = %v, want policy violation close", err)
	}
}

func TestWebsocketRejectsMissingToken(t *testing.T) {
	srv := newWSTestServer(t, &fakeStatusStore{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("read error = %v, want policy violation close", err)
	}
}

func TestWebsocketPresenceFlow(t *testing.T) {
	store := &fakeStatusStore{}
	srv := newWSTestServer(t, store)

	admin := dialWS(t, srv, wsTestToken(t, "admin-1", true))

	// Admission unicast, then the broadcast for the admin's own rising edge.
	waitForRoster(t, admin, []string{"admin-1"})

	user := dialWS(t, srv, wsTestToken(t, "user-1", false))
	waitForRoster(t, admin, []string{"admin-1", "user-1"})
	waitForRoster(t, user, []string{"admin-1", "user-1"})

	// Admin can request the roster on demand.
	if err := admin.WriteMessage(websocket.TextMessage, []byte(`{"type":"getActiveUsers"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	waitForRoster(t, admin, []string{"admin-1", "user-1"})

	// A non-admin request is silently ignored.
	if err := user.WriteMessage(websocket.TextMessage, []byte(`{"type":"getActiveUsers"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	user.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := user.ReadMessage(); err == nil {
		t.Fatal("non-admin snapshot request got a response")
	}

	// Closing the user's only connection fires the falling edge and a fresh
	// broadcast to the remaining sockets.
	user.Close()
	waitForRoster(t, admin, []string{"admin-1"})

	waitForHistory(t, store, "user-1", []string{"active", "inactive"})
	if got := store.history("admin-1"); len(got) != 1 || got[0] != "active" {
		t.Fatalf("admin transitions = %v, want [active]", got)
	}
}

func waitForHistory(t *testing.T, store *fakeStatusStore, userID string, want []string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := store.history(userID)
		if len(got) == len(want) {
			match := true
			for i := range want {
				if got[i] != want[i] {
					match = false
					break
				}
			}
			if match {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("transitions for %s = %v, want %v", userID, store.history(userID), want)
}
