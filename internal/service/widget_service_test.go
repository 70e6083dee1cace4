package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/repository"
	"github.com/noah-isme/timetable-organizer/pkg/jobs"
)

type flakySink struct {
	mu       sync.Mutex
	failures int
	payloads []string
}

func (s *flakySink) Name() string { return "flaky" }

func (s *flakySink) SaveSubjects(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("bridge unavailable")
	}
	s.payloads = append(s.payloads, string(payload))
	return nil
}

func (s *flakySink) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.payloads...)
}

func newWidgetStore(t *testing.T) (*repository.WidgetRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewWidgetRepository(client, "TimetablePrefs:subjects"), mr
}

func TestWidgetBridgeDisabledIsNoop(t *testing.T) {
	store, mr := newWidgetStore(t)
	bridge := NewWidgetBridge(WidgetConfig{Enabled: false}, store, nil, zap.NewNop())

	bridge.SyncAll(context.Background(), []models.Subject{{ID: "1", Name: "Toán"}})
	assert.False(t, mr.Exists("TimetablePrefs:subjects"))
	assert.Empty(t, bridge.GetSubjects(context.Background()))
}

func TestWidgetBridgeInlinePush(t *testing.T) {
	store, mr := newWidgetStore(t)
	bridge := NewWidgetBridge(WidgetConfig{Enabled: true}, store, NewMetricsService(), zap.NewNop())

	bridge.SyncAll(context.Background(), []models.Subject{{ID: "1", Name: "Toán", StartTime: "07:00", EndTime: "07:45"}})
	raw, err := mr.Get("TimetablePrefs:subjects")
	require.NoError(t, err)
	assert.Contains(t, raw, `"name":"Toán"`)

	subjects := bridge.GetSubjects(context.Background())
	require.Len(t, subjects, 1)
	assert.Equal(t, "Toán", subjects[0].Name)

	bridge.SyncAll(context.Background(), nil)
	raw, err = mr.Get("TimetablePrefs:subjects")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
	assert.Equal(t, uint64(2), bridge.Delivered())
}

func TestWidgetBridgeRetriesThroughQueue(t *testing.T) {
	store, mr := newWidgetStore(t)
	sink := &flakySink{failures: 2}
	bridge := NewWidgetBridge(WidgetConfig{Enabled: true, QueueSize: 8, MaxRetries: 5, RetryDelay: 5 * time.Millisecond}, store, nil, zap.NewNop(), sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bridge.Start(ctx)
	defer bridge.Stop()

	bridge.SyncAll(context.Background(), []models.Subject{{ID: "1", Name: "Toán"}})

	require.Eventually(t, func() bool { return bridge.Delivered() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, sink.received(), 1)
	raw, err := mr.Get("TimetablePrefs:subjects")
	require.NoError(t, err)
	assert.Contains(t, raw, "Toán")
}

func TestWidgetBridgeDropsStalePushes(t *testing.T) {
	sink := &flakySink{}
	bridge := NewWidgetBridge(WidgetConfig{Enabled: true}, nil, nil, zap.NewNop(), sink)

	older := widgetPushJob(1, `[{"name":"old"}]`)
	newer := widgetPushJob(2, `[{"name":"new"}]`)
	require.NoError(t, bridge.handle(context.Background(), newer))
	require.NoError(t, bridge.handle(context.Background(), older))

	assert.Equal(t, []string{`[{"name":"new"}]`}, sink.received())
	assert.Equal(t, uint64(2), bridge.Delivered())
}

func TestWidgetBridgeWithoutStoreReadsEmpty(t *testing.T) {
	bridge := NewWidgetBridge(WidgetConfig{Enabled: true}, nil, nil, nil)
	bridge.SyncAll(context.Background(), []models.Subject{{ID: "1"}})
	assert.Empty(t, bridge.GetSubjects(context.Background()))
}

func TestBuildWidgetViewTomorrow(t *testing.T) {
	// Sunday 2024-09-01, so tomorrow is Monday (index 0).
	now := time.Date(2024, 9, 1, 20, 0, 0, 0, time.UTC)
	var subjects []models.Subject
	for i, start := range []string{"13:00", "07:00", "09:00", "08:00", "10:00", "11:00", "14:00"} {
		subjects = append(subjects, models.Subject{ID: string(rune('a' + i)), Name: "S" + start, Day: 0, StartTime: start, EndTime: "23:00"})
	}
	subjects = append(subjects, models.Subject{ID: "x", Name: "Tuesday", Day: 1, StartTime: "06:00", EndTime: "07:00"})

	view := BuildWidgetView(subjects, now)
	assert.Equal(t, "Thời khóa biểu ngày mai", view.Header)
	assert.Equal(t, 0, view.Day)
	assert.Equal(t, "Thứ Hai", view.DayName)
	assert.Equal(t, "02/09/2024", view.Date)
	require.Len(t, view.Items, models.WidgetMaxItems)
	assert.Equal(t, "07:00", view.Items[0].StartTime)
	assert.Equal(t, "11:00", view.Items[4].StartTime)
	assert.Equal(t, 2, view.More)
	assert.Equal(t, "... và 2 môn khác", view.MoreText)
	assert.Empty(t, view.Message)
}

func TestBuildWidgetViewEmptyDay(t *testing.T) {
	// Saturday, so tomorrow is Sunday (index 6).
	now := time.Date(2024, 9, 7, 9, 0, 0, 0, time.UTC)
	view := BuildWidgetView([]models.Subject{{Name: "Toán", Day: 0, StartTime: "07:00", EndTime: "08:00"}}, now)
	assert.Equal(t, 6, view.Day)
	assert.Equal(t, "Chủ Nhật", view.DayName)
	assert.Empty(t, view.Items)
	assert.Equal(t, "Không có lịch học ngày mai 🎉", view.Message)
}

func TestAppDay(t *testing.T) {
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, AppDay(monday.AddDate(0, 0, i)))
	}
}

func widgetPushJob(seq uint64, payload string) jobs.Job {
	return jobs.Job{Type: widgetJobType, Payload: widgetPush{seq: seq, payload: []byte(payload)}}
}
