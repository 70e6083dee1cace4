package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/pkg/jobs"
)

// Widget texts as rendered by the home-screen widget.
const (
	widgetHeader       = "Thời khóa biểu ngày mai"
	widgetEmptyMessage = "Không có lịch học ngày mai 🎉"
	widgetLanguage     = "vi"
	widgetJobType      = "widget_sync"
)

// WidgetSink receives the serialized subject list.
type WidgetSink interface {
	Name() string
	SaveSubjects(ctx context.Context, payload []byte) error
}

// WidgetStore is a sink the widget list can be read back from.
type WidgetStore interface {
	WidgetSink
	GetSubjects(ctx context.Context) (string, error)
}

// WidgetConfig configures the bridge.
type WidgetConfig struct {
	// Enabled is true only on platforms that host the widget.
	Enabled    bool
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
}

type widgetPush struct {
	seq     uint64
	payload []byte
}

// WidgetBridge mirrors the subject list to the home-screen widget. Pushes
// never block the caller: they go through a single-worker retry queue and
// carry a sequence number so an older list never replaces a newer one.
type WidgetBridge struct {
	enabled bool
	store   WidgetStore
	sinks   []WidgetSink
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger

	seqMu sync.Mutex
	seq   uint64

	deliverMu sync.Mutex
	delivered uint64
}

// NewWidgetBridge builds a bridge that writes to store and any extra sinks.
// store may be nil, in which case read-back yields an empty list.
func NewWidgetBridge(cfg WidgetConfig, store WidgetStore, metrics *MetricsService, logger *zap.Logger, sinks ...WidgetSink) *WidgetBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &WidgetBridge{
		enabled: cfg.Enabled,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
	if store != nil {
		b.sinks = append(b.sinks, store)
	}
	b.sinks = append(b.sinks, sinks...)
	b.queue = jobs.NewQueue("widget", b.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.QueueSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		MaxDelay:   cfg.MaxDelay,
		Logger:     logger,
		OnDrop: func(job jobs.Job, err error) {
			metrics.RecordWidgetPush("all", "abandoned")
		},
	})
	return b
}

// Enabled reports whether this platform hosts the widget.
func (b *WidgetBridge) Enabled() bool {
	return b.enabled
}

// Start runs the push worker until ctx is cancelled or Stop is called.
func (b *WidgetBridge) Start(ctx context.Context) {
	if !b.enabled {
		return
	}
	b.queue.Start(ctx)
}

// Stop halts the push worker. Buffered pushes are discarded.
func (b *WidgetBridge) Stop() {
	b.queue.Stop()
}

// SyncAll schedules a push of the whole subject list. It returns at once;
// failures are logged and counted. Without a running worker the push is done
// inline.
func (b *WidgetBridge) SyncAll(ctx context.Context, subjects []models.Subject) {
	if !b.enabled {
		return
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	payload, err := json.Marshal(subjects)
	if err != nil {
		b.logger.Error("encode widget payload failed", zap.Error(err))
		return
	}

	b.seqMu.Lock()
	b.seq++
	seq := b.seq
	b.seqMu.Unlock()

	job := jobs.Job{
		ID:      strconv.FormatUint(seq, 10),
		Type:    widgetJobType,
		Payload: widgetPush{seq: seq, payload: payload},
	}
	if !b.queue.Running() {
		if err := b.handle(ctx, job); err != nil {
			b.logger.Warn("widget sync failed", zap.Uint64("seq", seq), zap.Error(err))
		}
		return
	}
	if err := b.queue.TryEnqueue(job); err != nil {
		b.metrics.RecordWidgetPush("all", "dropped")
		if errors.Is(err, jobs.ErrQueueFull) {
			b.logger.Warn("widget queue full, push dropped", zap.Uint64("seq", seq))
			return
		}
		b.logger.Warn("widget push not queued", zap.Uint64("seq", seq), zap.Error(err))
	}
}

func (b *WidgetBridge) handle(ctx context.Context, job jobs.Job) error {
	push, ok := job.Payload.(widgetPush)
	if !ok {
		return fmt.Errorf("unexpected widget payload %T", job.Payload)
	}

	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()
	if push.seq <= b.delivered {
		b.metrics.RecordWidgetPush("all", "stale")
		b.logger.Debug("stale widget push skipped", zap.Uint64("seq", push.seq), zap.Uint64("delivered", b.delivered))
		return nil
	}

	var failed error
	for _, sink := range b.sinks {
		if err := sink.SaveSubjects(ctx, push.payload); err != nil {
			b.metrics.RecordWidgetPush(sink.Name(), "error")
			failed = errors.Join(failed, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		b.metrics.RecordWidgetPush(sink.Name(), "ok")
	}
	if failed != nil {
		return failed
	}
	b.delivered = push.seq
	return nil
}

// Delivered returns the sequence number of the newest list every sink accepted.
func (b *WidgetBridge) Delivered() uint64 {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()
	return b.delivered
}

// GetSubjects reads back the list the widget sees. Disabled platforms, a
// missing store and unreadable data all yield an empty list.
func (b *WidgetBridge) GetSubjects(ctx context.Context) []models.Subject {
	if !b.enabled || b.store == nil {
		return []models.Subject{}
	}
	raw, err := b.store.GetSubjects(ctx)
	if err != nil {
		b.logger.Warn("widget read-back failed", zap.Error(err))
		return []models.Subject{}
	}
	var subjects []models.Subject
	if err := json.Unmarshal([]byte(raw), &subjects); err != nil || subjects == nil {
		return []models.Subject{}
	}
	return subjects
}

// Preview renders the widget from the stored list.
func (b *WidgetBridge) Preview(ctx context.Context, now time.Time) models.WidgetView {
	return BuildWidgetView(b.GetSubjects(ctx), now)
}

// BuildWidgetView renders tomorrow's classes the way the widget shows them:
// at most WidgetMaxItems sessions ordered by start time plus an overflow line.
func BuildWidgetView(subjects []models.Subject, now time.Time) models.WidgetView {
	day := (AppDay(now) + 1) % models.DaysPerWeek
	view := models.WidgetView{
		Header:  widgetHeader,
		Day:     day,
		DayName: models.DayName(day, widgetLanguage),
		Date:    now.AddDate(0, 0, 1).Format("02/01/2006"),
		Items:   []models.WidgetItem{},
	}

	var matches []models.Subject
	for _, s := range subjects {
		if s.Day == day {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		view.Message = widgetEmptyMessage
		return view
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].StartTime < matches[j].StartTime })

	for i, s := range matches {
		if i == models.WidgetMaxItems {
			break
		}
		view.Items = append(view.Items, models.WidgetItem{
			Name:      s.Name,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Room:      s.Room,
			Teacher:   s.Teacher,
			Color:     s.Color,
		})
	}
	if extra := len(matches) - models.WidgetMaxItems; extra > 0 {
		view.More = extra
		view.MoreText = fmt.Sprintf("... và %d môn khác", extra)
	}
	return view
}

// AppDay converts t's weekday to the Monday-first day index.
func AppDay(t time.Time) int {
	return (int(t.Weekday()) + 6) % models.DaysPerWeek
}
