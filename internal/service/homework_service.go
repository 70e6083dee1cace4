package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/repository"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
)

type homeworkRepository interface {
	List(ctx context.Context) ([]models.Homework, error)
	FindByID(ctx context.Context, id string) (*models.Homework, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.Homework, error)
	ListDueBetween(ctx context.Context, from, to string) ([]models.Homework, error)
	Create(ctx context.Context, item *models.Homework) error
	Put(ctx context.Context, item *models.Homework) error
	Delete(ctx context.Context, id string) error
}

type subjectLookup interface {
	Subject(id string) (models.Subject, error)
}

// HomeworkService fronts the homework store with an in-memory cache. The
// cache changes only after the store confirms a write; failed writes are
// logged and returned while the cache stays as it was.
type HomeworkService struct {
	repo      homeworkRepository
	subjects  subjectLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.RWMutex
	cache  []models.Homework
	loaded bool
}

// NewHomeworkService creates a homework service. subjects is optional and
// fills in the subject name when a request omits it.
func NewHomeworkService(repo homeworkRepository, subjects subjectLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *HomeworkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{
		repo:      repo,
		subjects:  subjects,
		validator: ensureValidator(validate),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Reload replaces the cache with the full contents of the store.
func (s *HomeworkService) Reload(ctx context.Context) error {
	start := time.Now()
	items, err := s.repo.List(ctx)
	s.metrics.ObserveDBQuery("homework_list", time.Since(start))
	if err != nil {
		s.logger.Error("load homework failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}
	s.mu.Lock()
	s.cache = items
	s.loaded = true
	s.updateGaugeLocked()
	s.mu.Unlock()
	return nil
}

// List returns all homework, incomplete items first, then by due date.
func (s *HomeworkService) List(ctx context.Context) ([]models.Homework, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	items := append([]models.Homework(nil), s.cache...)
	s.mu.RUnlock()
	SortHomework(items)
	return items, nil
}

// BySubject lists homework for one subject straight from the store index.
func (s *HomeworkService) BySubject(ctx context.Context, subjectID string) ([]models.Homework, error) {
	items, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
	}
	SortHomework(items)
	return items, nil
}

// DueBetween lists homework due in [from, to] straight from the store index.
func (s *HomeworkService) DueBetween(ctx context.Context, from, to string) ([]models.Homework, error) {
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, validationError(err, "dates must be YYYY-MM-DD")
		}
	}
	items, err := s.repo.ListDueBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
	}
	SortHomework(items)
	return items, nil
}

// Add stores a new homework item. An existing id makes the add fail.
func (s *HomeworkService) Add(ctx context.Context, req models.CreateHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid homework payload")
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	name := req.SubjectName
	if name == "" && s.subjects != nil {
		subject, err := s.subjects.Subject(req.SubjectID)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subject")
		}
		name = subject.Name
	}

	item := models.Homework{
		ID:          req.ID,
		SubjectID:   req.SubjectID,
		SubjectName: name,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		CreatedAt:   s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Priority == "" {
		item.Priority = models.PriorityMedium
	}

	start := time.Now()
	err := s.repo.Create(ctx, &item)
	s.metrics.ObserveDBQuery("homework_create", time.Since(start))
	if err != nil {
		s.logger.Error("add homework failed", zap.String("id", item.ID), zap.Error(err))
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "homework already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add homework")
	}

	s.mu.Lock()
	s.cache = append(s.cache, item)
	s.updateGaugeLocked()
	s.mu.Unlock()
	return &item, nil
}

// Update merges patch over the stored record. When the id is not in the
// store nothing happens and (nil, nil) is returned.
func (s *HomeworkService) Update(ctx context.Context, id string, patch models.HomeworkPatch) (*models.Homework, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "invalid homework payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("load homework failed", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}

	merged := patch.Apply(*existing)
	start := time.Now()
	err = s.repo.Put(ctx, &merged)
	s.metrics.ObserveDBQuery("homework_put", time.Since(start))
	if err != nil {
		s.logger.Error("update homework failed", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update homework")
	}

	s.mu.Lock()
	replaced := false
	for i := range s.cache {
		if s.cache[i].ID == id {
			s.cache[i] = merged
			replaced = true
			break
		}
	}
	if !replaced && s.loaded {
		s.cache = append(s.cache, merged)
	}
	s.updateGaugeLocked()
	s.mu.Unlock()
	return &merged, nil
}

// ToggleComplete flips the completed flag of a cached item. Unknown ids are
// a no-op returning (nil, nil).
func (s *HomeworkService) ToggleComplete(ctx context.Context, id string) (*models.Homework, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var current *models.Homework
	for i := range s.cache {
		if s.cache[i].ID == id {
			item := s.cache[i]
			current = &item
			break
		}
	}
	s.mu.RUnlock()
	if current == nil {
		return nil, nil
	}
	completed := !current.Completed
	return s.Update(ctx, id, models.HomeworkPatch{Completed: &completed})
}

// Delete removes an item. Deleting an unknown id succeeds.
func (s *HomeworkService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveDBQuery("homework_delete", time.Since(start))
	if err != nil {
		s.logger.Error("delete homework failed", zap.String("id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete homework")
	}

	s.mu.Lock()
	for i := range s.cache {
		if s.cache[i].ID == id {
			s.cache = append(s.cache[:i:i], s.cache[i+1:]...)
			break
		}
	}
	s.updateGaugeLocked()
	s.mu.Unlock()
	return nil
}

func (s *HomeworkService) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Reload(ctx)
}

func (s *HomeworkService) updateGaugeLocked() {
	open := 0
	for _, item := range s.cache {
		if !item.Completed {
			open++
		}
	}
	s.metrics.SetOpenHomework(open)
}

// SortHomework orders items for display: incomplete before completed, then
// by ascending due date.
func SortHomework(items []models.Homework) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Completed != items[j].Completed {
			return !items[i].Completed
		}
		return items[i].DueDate < items[j].DueDate
	})
}
