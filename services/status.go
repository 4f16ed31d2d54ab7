package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

const (
	presenceKeyPrefix = "presence:"
	onlineSetKey      = "online_users"
)

// UserStatusStore persists presence transitions to the users table and keeps
// a TTL'd mirror in Redis for the admin dashboard's read endpoints.
type UserStatusStore struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *utils.Logger
	ttl    time.Duration
}

func NewUserStatusStore(db *gorm.DB, redisClient *redis.Client, ttl time.Duration, logger *utils.Logger) *UserStatusStore {
	return &UserStatusStore{
		db:     db,
		redis:  redisClient,
		logger: logger,
		ttl:    ttl,
	}
}

// UpdateStatus records one status transition. On the rising edge the user's
// lastActive and lastLogin move forward and the login counter increments; on
// the falling edge lastLogout moves forward. Called exactly once per edge.
func (s *UserStatusStore) UpdateStatus(ctx context.Context, userID, status string) error {
	now := time.Now()

	updates := map[string]interface{}{"status": status}
	if status == models.StatusActive {
		updates["last_active"] = now
		updates["last_login"] = now
		updates["login_count"] = gorm.Expr("login_count + 1")
	} else {
		updates["last_logout"] = now
	}

	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update status for user %s: %w", userID, err)
	}

	// Mirror failures only cost dashboard freshness, never the transition.
	s.refreshMirror(ctx, userID, status, now)

	return nil
}

// refreshMirror updates the Redis presence record and online set.
func (s *UserStatusStore) refreshMirror(ctx context.Context, userID, status string, now time.Time) {
	if s.redis == nil {
		return
	}

	key := presenceKeyPrefix + userID
	pipe := s.redis.Pipeline()

	if status == models.StatusActive {
		record := models.PresenceRecord{UserID: userID, Status: status, LastSeen: now}
		data, err := json.Marshal(record)
		if err != nil {
			s.logger.Error("failed to marshal presence record", "user_id", userID, "error", err)
			return
		}
		pipe.Set(ctx, key, data, s.ttl)
		pipe.SAdd(ctx, onlineSetKey, userID)
		pipe.Expire(ctx, onlineSetKey, s.ttl*2)
	} else {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, onlineSetKey, userID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("failed to refresh presence mirror", "user_id", userID, "error", err)
	}
}

// Presence returns the cached presence record for one user. A missing or
// expired record reads as inactive.
func (s *UserStatusStore) Presence(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	data, err := s.redis.Get(ctx, presenceKeyPrefix+userID).Result()
	if err != nil {
		if err == redis.Nil {
			return &models.PresenceRecord{UserID: userID, Status: models.StatusInactive}, nil
		}
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	var record models.PresenceRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence record: %w", err)
	}

	if time.Since(record.LastSeen) > s.ttl {
		record.Status = models.StatusInactive
	}

	return &record, nil
}

// OnlineUsers lists users whose mirror records are still fresh, pruning the
// online set of any that expired.
func (s *UserStatusStore) OnlineUsers(ctx context.Context) ([]models.PresenceRecord, error) {
	userIDs, err := s.redis.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read online set: %w", err)
	}

	if len(userIDs) == 0 {
		return []models.PresenceRecord{}, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(userIDs))
	for i, userID := range userIDs {
		cmds[i] = pipe.Get(ctx, presenceKeyPrefix+userID)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read presence records: %w", err)
	}

	online := make([]models.PresenceRecord, 0, len(userIDs))
	var expired []interface{}

	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if err != redis.Nil {
				s.logger.Error("failed to read presence record", "user_id", userIDs[i], "error", err)
			}
			expired = append(expired, userIDs[i])
			continue
		}

		var record models.PresenceRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			s.logger.Error("failed to unmarshal presence record", "user_id", userIDs[i], "error", err)
			expired = append(expired, userIDs[i])
			continue
		}

		if time.Since(record.LastSeen) > s.ttl {
			expired = append(expired, userIDs[i])
			continue
		}

		online = append(online, record)
	}

	if len(expired) > 0 {
		s.redis.SRem(ctx, onlineSetKey, expired...)
	}

	return online, nil
}
