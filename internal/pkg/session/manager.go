// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 720 * time.Hour
)

// Record is the redis-backed view of an authenticated session. Sessions are
// minted by the external identity provider; this service only observes them
// so the notification hub can enumerate a spa's live sessions.
type Record struct {
	JTI      string    `json:"jti"`
	SpaID    int64     `json:"spa_id"`
	Device   string    `json:"device,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

type Manager struct {
	rdb *redis.Client
}

func NewManager(rdb *redis.Client) *Manager {
	return &Manager{rdb: rdb}
}

// Touch records session activity. Called best-effort from the auth middleware.
func (m *Manager) Touch(ctx context.Context, jti string, spaID int64, device string) error {
	rec := Record{
		JTI:      jti,
		SpaID:    spaID,
		Device:   device,
		LastSeen: time.Now(),
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := m.rdb.Set(ctx, sessionKeyPrefix+jti, raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session record: %w", err)
	}
	return nil
}

// Get retrieves a session record by JTI.
func (m *Manager) Get(ctx context.Context, jti string) (*Record, error) {
	raw, err := m.rdb.Get(ctx, sessionKeyPrefix+jti).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("session %s not found", jti)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
	}
	return &rec, nil
}

// Revoke removes a session record.
func (m *Manager) Revoke(ctx context.Context, jti string) error {
	return m.rdb.Del(ctx, sessionKeyPrefix+jti).Err()
}
