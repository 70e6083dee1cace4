package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

type snapshotRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// SnapshotStore is the durable key-value layer for whole-document state.
// Reads never fail: missing or unreadable values yield the caller's default.
// Writes never surface errors: failures are logged and counted, and the
// caller's in-memory value stays authoritative.
type SnapshotStore struct {
	repo    snapshotRepository
	logger  *zap.Logger
	metrics *MetricsService
}

// NewSnapshotStore constructs a snapshot store.
func NewSnapshotStore(repo snapshotRepository, metrics *MetricsService, logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{repo: repo, logger: logger, metrics: metrics}
}

// LoadSnapshot reads key and decodes it over def. When def is a structured
// record, stored top-level fields override a copy of def so fields added to
// the default later still appear. Lists and scalars are taken verbatim.
func LoadSnapshot[T any](ctx context.Context, s *SnapshotStore, key string, def T) T {
	start := time.Now()
	raw, found, err := s.repo.Get(ctx, key)
	s.metrics.ObserveDBQuery("snapshot_get", time.Since(start))
	if err != nil {
		s.logger.Warn("load snapshot failed, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	if !found {
		return def
	}
	value, err := decodeOverDefault([]byte(raw), def)
	if err != nil {
		s.logger.Warn("stored snapshot unreadable, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return value
}

// Save serializes value and replaces whatever is stored under key.
func (s *SnapshotStore) Save(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("encode snapshot failed", zap.String("key", key), zap.Error(err))
		s.metrics.RecordSnapshotFailure(key)
		return
	}
	start := time.Now()
	err = s.repo.Put(ctx, key, string(payload))
	s.metrics.ObserveDBQuery("snapshot_put", time.Since(start))
	if err != nil {
		s.logger.Error("save snapshot failed", zap.String("key", key), zap.Error(err))
		s.metrics.RecordSnapshotFailure(key)
	}
}

func decodeOverDefault[T any](raw []byte, def T) (T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return def, nil
	}
	if isRecord(def) {
		return mergeShallow(def, trimmed)
	}
	var out T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return def, err
	}
	return out, nil
}

// mergeShallow overlays the top-level fields of override onto base. Null
// fields in override are treated as absent.
func mergeShallow[T any](base T, override []byte) (T, error) {
	encoded, err := json.Marshal(base)
	if err != nil {
		return base, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return base, err
	}
	var over map[string]json.RawMessage
	if err := json.Unmarshal(override, &over); err != nil {
		return base, fmt.Errorf("expected object: %w", err)
	}
	for k, v := range over {
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return base, err
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return base, err
	}
	return out, nil
}

func isRecord(v interface{}) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && (t.Kind() == reflect.Struct || t.Kind() == reflect.Map)
}
