package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EmptySubjects is the read-back value when nothing has been pushed.
const EmptySubjects = "[]"

// WidgetRepository is the preference store read by the native home-screen
// widget. It holds the serialized subject list under a single Redis key.
type WidgetRepository struct {
	client *redis.Client
	key    string
}

// NewWidgetRepository constructs a widget repository.
func NewWidgetRepository(client *redis.Client, key string) *WidgetRepository {
	if key == "" {
		key = "TimetablePrefs:subjects"
	}
	return &WidgetRepository{client: client, key: key}
}

// Name identifies the sink in logs and metrics.
func (r *WidgetRepository) Name() string {
	return "redis"
}

// SaveSubjects replaces the stored subject list with payload.
func (r *WidgetRepository) SaveSubjects(ctx context.Context, payload []byte) error {
	if r.client == nil {
		return fmt.Errorf("widget store not configured")
	}
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// GetSubjects returns the stored JSON list, or "[]" when nothing is stored.
func (r *WidgetRepository) GetSubjects(ctx context.Context) (string, error) {
	if r.client == nil {
		return EmptySubjects, nil
	}
	raw, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return EmptySubjects, nil
		}
		return "", fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return raw, nil
}

// Close releases the underlying Redis connection if present.
func (r *WidgetRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
