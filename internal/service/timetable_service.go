package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
)

type widgetSyncer interface {
	SyncAll(ctx context.Context, subjects []models.Subject)
}

// TimetableService owns the in-memory subject list and settings. Every
// subject mutation updates memory, saves the snapshot, pushes the list to the
// widget without waiting, then notifies subscribers.
type TimetableService struct {
	mu       sync.RWMutex
	subjects []models.Subject
	settings models.Settings
	lastID   int64

	subMu       sync.Mutex
	subscribers map[int]func(models.Snapshot)
	nextSub     int

	store     *SnapshotStore
	widget    widgetSyncer
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewTimetableService creates the state container. Call Load before use.
func NewTimetableService(store *SnapshotStore, widget widgetSyncer, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		subjects:    []models.Subject{},
		settings:    models.DefaultSettings(),
		subscribers: map[int]func(models.Snapshot){},
		store:       store,
		widget:      widget,
		validator:   ensureValidator(validate),
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Load reads subjects and settings from the snapshot store and pushes the
// subject list to the widget once.
func (s *TimetableService) Load(ctx context.Context) {
	subjects := LoadSnapshot(ctx, s.store, models.KeySubjects, []models.Subject{})
	settings := LoadSnapshot(ctx, s.store, models.KeySettings, models.DefaultSettings())
	if subjects == nil {
		subjects = []models.Subject{}
	}

	s.mu.Lock()
	s.subjects = subjects
	s.settings = settings
	s.syncWidget(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("timetable loaded", zap.Int("subjects", len(subjects)))
	s.notify(snap)
}

// Reload discards memory and re-reads both snapshots.
func (s *TimetableService) Reload(ctx context.Context) {
	s.Load(ctx)
}

// Subjects returns a copy of the subject list.
func (s *TimetableService) Subjects() []models.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSubjects(s.subjects)
}

// Subject returns one subject by id.
func (s *TimetableService) Subject(id string) (models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return cloneSubject(s.subjects[i]), nil
	}
	return models.Subject{}, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
}

// AddSubject creates a subject with a fresh timestamp-derived id.
func (s *TimetableService) AddSubject(ctx context.Context, in models.SubjectInput) (models.Subject, error) {
	if err := s.validator.Struct(in); err != nil {
		return models.Subject{}, validationError(err, "invalid subject payload")
	}
	subject := in.Apply(models.Subject{})
	if err := ValidateSubject(subject); err != nil {
		return models.Subject{}, validationError(err, err.Error())
	}

	s.mu.Lock()
	subject.ID = s.newIDLocked()
	s.subjects = append(s.subjects, subject)
	snap := s.commitSubjectsLocked(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return cloneSubject(subject), nil
}

// UpdateSubject replaces the editable fields of subject id.
func (s *TimetableService) UpdateSubject(ctx context.Context, id string, in models.SubjectInput) (models.Subject, error) {
	if err := s.validator.Struct(in); err != nil {
		return models.Subject{}, validationError(err, "invalid subject payload")
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Subject{}, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	updated := in.Apply(s.subjects[i])
	if err := ValidateSubject(updated); err != nil {
		s.mu.Unlock()
		return models.Subject{}, validationError(err, err.Error())
	}
	s.subjects[i] = updated
	snap := s.commitSubjectsLocked(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return cloneSubject(updated), nil
}

// DeleteSubject removes subject id. Deleting an unknown id is a no-op.
func (s *TimetableService) DeleteSubject(ctx context.Context, id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.subjects = append(s.subjects[:i:i], s.subjects[i+1:]...)
	snap := s.commitSubjectsLocked(ctx)
	s.mu.Unlock()

	s.notify(snap)
}

// ReplaceSubjects swaps in a whole new list, as done by import. Every
// element must pass ValidateSubject or nothing changes. Missing or repeated
// ids are replaced with fresh ones.
func (s *TimetableService) ReplaceSubjects(ctx context.Context, subjects []models.Subject) ([]models.Subject, error) {
	for i, subject := range subjects {
		if err := ValidateSubject(subject); err != nil {
			return nil, validationError(err, "subject "+strconv.Itoa(i+1)+": "+err.Error())
		}
	}

	s.mu.Lock()
	next := cloneSubjects(subjects)
	incoming := make(map[string]struct{}, len(next))
	for _, subject := range next {
		incoming[subject.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(next))
	for i := range next {
		if _, dup := seen[next[i].ID]; next[i].ID == "" || dup {
			id := s.newIDLocked()
			for _, taken := incoming[id]; taken; _, taken = incoming[id] {
				id = s.newIDLocked()
			}
			next[i].ID = id
		}
		seen[next[i].ID] = struct{}{}
	}
	s.subjects = next
	snap := s.commitSubjectsLocked(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return cloneSubjects(next), nil
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function unregisters it.
func (s *TimetableService) Subscribe(fn func(models.Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// Snapshot returns the current subjects and settings.
func (s *TimetableService) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *TimetableService) commitSubjectsLocked(ctx context.Context) models.Snapshot {
	s.store.Save(ctx, models.KeySubjects, s.subjects)
	s.syncWidget(ctx)
	return s.snapshotLocked()
}

func (s *TimetableService) syncWidget(ctx context.Context) {
	if s.widget == nil {
		return
	}
	s.widget.SyncAll(context.WithoutCancel(ctx), cloneSubjects(s.subjects))
}

func (s *TimetableService) notify(snap models.Snapshot) {
	s.subMu.Lock()
	fns := make([]func(models.Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *TimetableService) snapshotLocked() models.Snapshot {
	return models.Snapshot{Subjects: cloneSubjects(s.subjects), Settings: cloneSettings(s.settings)}
}

func (s *TimetableService) indexOf(id string) int {
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			return i
		}
	}
	return -1
}

// newIDLocked returns the current time in milliseconds as a decimal string,
// bumped forward when needed so ids are strictly increasing and unused.
func (s *TimetableService) newIDLocked() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for s.indexOf(strconv.FormatInt(id, 10)) >= 0 {
		id++
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// cloneSubject deep-copies s. An empty tag list becomes nil so stored and
// reloaded subjects compare equal.
func cloneSubject(s models.Subject) models.Subject {
	if len(s.Tags) == 0 {
		s.Tags = nil
	} else {
		s.Tags = append([]string(nil), s.Tags...)
	}
	return s
}

func cloneSubjects(in []models.Subject) []models.Subject {
	out := make([]models.Subject, len(in))
	for i := range in {
		out[i] = cloneSubject(in[i])
	}
	return out
}
