// internal/repository/redisstore/draft_store.go
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lsa-service/internal/domain/offboarding"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// draftTTL bounds how long an unconfirmed wizard survives between requests.
const draftTTL = time.Hour

// DraftStore keeps in-progress offboarding wizards in Redis. Drafts are
// ephemeral: dismissing one deletes the key and leaves no database trace.
type DraftStore struct {
	rdb *redis.Client
}

func NewDraftStore(rdb *redis.Client) *DraftStore {
	return &DraftStore{rdb: rdb}
}

func draftKey(spaID, staffID int64) string {
	return fmt.Sprintf("offboarding:draft:%d:%d", spaID, staffID)
}

// Get loads the wizard for one staff member. Returns xerrors.ErrNotFound when
// no draft exists or the previous one expired.
func (s *DraftStore) Get(ctx context.Context, spaID, staffID int64) (*offboarding.Wizard, error) {
	data, err := s.rdb.Get(ctx, draftKey(spaID, staffID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load offboarding draft: %w", err)
	}

	var w offboarding.Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode offboarding draft: %w", err)
	}
	return &w, nil
}

// Save writes the wizard back, refreshing its TTL.
func (s *DraftStore) Save(ctx context.Context, w *offboarding.Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to encode offboarding draft: %w", err)
	}

	if err := s.rdb.Set(ctx, draftKey(w.SpaID, w.StaffID), data, draftTTL).Err(); err != nil {
		return fmt.Errorf("failed to save offboarding draft: %w", err)
	}
	return nil
}

// Delete discards the wizard. Deleting an absent draft is not an error.
func (s *DraftStore) Delete(ctx context.Context, spaID, staffID int64) error {
	if err := s.rdb.Del(ctx, draftKey(spaID, staffID)).Err(); err != nil {
		return fmt.Errorf("failed to delete offboarding draft: %w", err)
	}
	return nil
}
