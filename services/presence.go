package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

// StatusStore durably records a user's status transitions. The registry never
// waits on it while holding its lock, and a failed write never rolls back the
// in-memory state.
type StatusStore interface {
	UpdateStatus(ctx context.Context, userID, status string) error
}

const statusWriteTimeout = 5 * time.Second

type activeUsersFrame struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type inboundFrame struct {
	Type string `json:"type"`
}

// PresenceService tracks which users hold live websocket connections. A user
// is active exactly while their connection set is non-empty; the 0→1 and N→0
// edges of that set drive status writes and snapshot broadcasts.
type PresenceService struct {
	store    StatusStore
	logger   *utils.Logger
	interval time.Duration

	mu     sync.Mutex
	active map[string]map[*Client]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPresenceService(store StatusStore, interval time.Duration, logger *utils.Logger) *PresenceService {
	ctx, cancel := context.WithCancel(context.Background())

	return &PresenceService{
		store:    store,
		logger:   logger,
		interval: interval,
		active:   make(map[string]map[*Client]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the heartbeat sweep loop.
func (ps *PresenceService) Start() {
	ps.wg.Add(1)
	go func() {
		defer ps.wg.Done()

		ticker := time.NewTicker(ps.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ps.ctx.Done():
				return
			case <-ticker.C:
				ps.sweep()
			}
		}
	}()
}

// Stop ends the heartbeat loop and closes every registered connection.
func (ps *PresenceService) Stop() {
	ps.cancel()
	ps.wg.Wait()

	for _, client := range ps.clients() {
		ps.Remove(client)
	}
}

// Admit registers an authenticated connection. The edge decision and the
// admin unicast snapshot are computed under the registry lock so that two
// near-simultaneous admissions for one user fire exactly one rising edge;
// the durable write and broadcast happen after the lock is released.
func (ps *PresenceService) Admit(client *Client) {
	ps.mu.Lock()
	conns := ps.active[client.UserID]
	if conns == nil {
		conns = make(map[*Client]struct{})
		ps.active[client.UserID] = conns
	}
	conns[client] = struct{}{}
	rising := len(conns) == 1

	var snapshot []string
	if client.IsAdmin {
		snapshot = ps.userIDsLocked()
	}
	ps.mu.Unlock()

	ps.logger.Debug("connection admitted", "user_id", client.UserID, "is_admin", client.IsAdmin)

	// Newly connected admins get the current roster without waiting for the
	// next broadcast.
	if client.IsAdmin {
		client.enqueue(marshalActiveUsers(snapshot))
	}

	if rising {
		ps.applyTransition(client.UserID, models.StatusActive)
	}
}

// Remove unregisters a connection, whether the peer hung up or the sweep
// evicted it. Removing the last connection for a user deletes the registry
// entry and fires the falling edge. Safe to call more than once per client.
func (ps *PresenceService) Remove(client *Client) {
	ps.mu.Lock()
	conns, ok := ps.active[client.UserID]
	if !ok {
		ps.mu.Unlock()
		client.close()
		return
	}
	if _, ok := conns[client]; !ok {
		ps.mu.Unlock()
		client.close()
		return
	}

	delete(conns, client)
	falling := len(conns) == 0
	if falling {
		delete(ps.active, client.UserID)
	}
	ps.mu.Unlock()

	client.close()

	if falling {
		ps.applyTransition(client.UserID, models.StatusInactive)
	}
}

// HandleMessage processes one inbound frame. Unrecognized types, malformed
// JSON, and snapshot requests from non-admins are all dropped without reply.
func (ps *PresenceService) HandleMessage(client *Client, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return
	}

	if frame.Type == "getActiveUsers" && client.IsAdmin {
		ps.SendSnapshot(client)
	}
}

// SendSnapshot unicasts the current roster to one connection.
func (ps *PresenceService) SendSnapshot(client *Client) {
	ps.mu.Lock()
	users := ps.userIDsLocked()
	ps.mu.Unlock()

	client.enqueue(marshalActiveUsers(users))
}

// Broadcast fans the current roster out to every registered connection.
// Slow or dead targets are skipped; the next broadcast supersedes this one.
func (ps *PresenceService) Broadcast() {
	ps.mu.Lock()
	users := ps.userIDsLocked()
	clients := make([]*Client, 0)
	for _, conns := range ps.active {
		for client := range conns {
			clients = append(clients, client)
		}
	}
	ps.mu.Unlock()

	frame := marshalActiveUsers(users)
	for _, client := range clients {
		client.enqueue(frame)
	}
}

// applyTransition is the single entry point for rising and falling edges:
// write the status record, then broadcast regardless of the write's outcome.
func (ps *PresenceService) applyTransition(userID, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	if err := ps.store.UpdateStatus(ctx, userID, status); err != nil {
		// Presence stays authoritative in memory; the next edge for this
		// user retries the write naturally.
		ps.logger.Error("failed to persist status transition",
			"user_id", userID, "status", status, "error", err)
	}

	ps.Broadcast()
}

// sweep probes every connection and evicts the ones that never answered the
// previous round. Eviction follows the same closure path as a client
// disconnect. A failed probe counts as an eviction signal, not a retry.
func (ps *PresenceService) sweep() {
	for _, client := range ps.clients() {
		if client.staleForEviction() {
			ps.logger.Warn("evicting unresponsive connection",
				"user_id", client.UserID, "last_pong", client.lastPongTime())
			ps.Remove(client)
			continue
		}
		if err := client.ping(); err != nil {
			ps.logger.Warn("heartbeat probe failed", "user_id", client.UserID, "error", err)
			ps.Remove(client)
		}
	}
}

// clients snapshots every registered connection under the lock.
func (ps *PresenceService) clients() []*Client {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	all := make([]*Client, 0)
	for _, conns := range ps.active {
		for client := range conns {
			all = append(all, client)
		}
	}
	return all
}

// userIDsLocked lists the users with at least one live connection. Callers
// must hold ps.mu.
func (ps *PresenceService) userIDsLocked() []string {
	users := make([]string, 0, len(ps.active))
	for userID := range ps.active {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

func marshalActiveUsers(users []string) []byte {
	if users == nil {
		users = []string{}
	}
	frame, _ := json.Marshal(activeUsersFrame{Type: "activeUsers", Users: users})
	return frame
}
