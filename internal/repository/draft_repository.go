package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tkmproject/tkm-api/internal/form"
	"github.com/tkmproject/tkm-api/pkg/cache"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
)

// DraftRepository keeps form drafts in Redis with a sliding TTL.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftRepository constructs a draft repository.
func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &DraftRepository{client: client, ttl: ttl}
}

func draftKey(id string) string {
	return cache.Key("draft", id)
}

// Save stores the draft and refreshes its expiry.
func (r *DraftRepository) Save(ctx context.Context, draft *form.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}
	if err := r.client.Set(ctx, draftKey(draft.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft %s: %w", draft.ID, err)
	}
	return nil
}

// Get loads a draft. Unknown or expired drafts yield ErrNotFound. The caller
// must Bind the returned draft before use.
func (r *DraftRepository) Get(ctx context.Context, id string) (*form.Draft, error) {
	raw, err := r.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found or expired")
		}
		return nil, fmt.Errorf("redis get draft %s: %w", id, err)
	}

	var draft form.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", id, err)
	}
	return &draft, nil
}

// Delete removes a draft.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del draft %s: %w", id, err)
	}
	return nil
}
