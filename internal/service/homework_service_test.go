package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/repository"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
)

type homeworkRepoStub struct {
	items     map[string]models.Homework
	listErr   error
	createErr error
	putErr    error
	deleteErr error
	lists     int
}

func newHomeworkRepoStub(items ...models.Homework) *homeworkRepoStub {
	stub := &homeworkRepoStub{items: map[string]models.Homework{}}
	for _, item := range items {
		stub.items[item.ID] = item
	}
	return stub
}

func (s *homeworkRepoStub) List(ctx context.Context) ([]models.Homework, error) {
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Homework, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s *homeworkRepoStub) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (s *homeworkRepoStub) ListBySubject(ctx context.Context, subjectID string) ([]models.Homework, error) {
	var out []models.Homework
	for _, item := range s.items {
		if item.SubjectID == subjectID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *homeworkRepoStub) ListDueBetween(ctx context.Context, from, to string) ([]models.Homework, error) {
	var out []models.Homework
	for _, item := range s.items {
		if item.DueDate >= from && item.DueDate <= to {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *homeworkRepoStub) Create(ctx context.Context, item *models.Homework) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.items[item.ID]; ok {
		return fmt.Errorf("insert homework %s: %w", item.ID, repository.ErrDuplicate)
	}
	s.items[item.ID] = *item
	return nil
}

func (s *homeworkRepoStub) Put(ctx context.Context, item *models.Homework) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.items[item.ID] = *item
	return nil
}

func (s *homeworkRepoStub) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.items, id)
	return nil
}

type subjectLookupStub map[string]models.Subject

func (s subjectLookupStub) Subject(id string) (models.Subject, error) {
	if subject, ok := s[id]; ok {
		return subject, nil
	}
	return models.Subject{}, appErrors.ErrNotFound
}

func newHomeworkServiceForTest(repo *homeworkRepoStub) *HomeworkService {
	lookup := subjectLookupStub{"math": {ID: "math", Name: "Toán"}}
	svc := NewHomeworkService(repo, lookup, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestHomeworkAddDefaultsAndLookup(t *testing.T) {
	repo := newHomeworkRepoStub()
	svc := newHomeworkServiceForTest(repo)

	item, err := svc.Add(context.Background(), models.CreateHomeworkRequest{SubjectID: "math", Title: "Bài 1", DueDate: "2024-09-05"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Toán", item.SubjectName)
	assert.Equal(t, models.PriorityMedium, item.Priority)
	assert.False(t, item.Completed)
	assert.Equal(t, "2024-09-01T08:00:00.000Z", item.CreatedAt)
	assert.Contains(t, repo.items, item.ID)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestHomeworkAddValidation(t *testing.T) {
	svc := newHomeworkServiceForTest(newHomeworkRepoStub())

	_, err := svc.Add(context.Background(), models.CreateHomeworkRequest{SubjectID: "math", Title: "", DueDate: "2024-09-05"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Add(context.Background(), models.CreateHomeworkRequest{SubjectID: "math", Title: "x", DueDate: "05/09/2024"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Add(context.Background(), models.CreateHomeworkRequest{SubjectID: "unknown", Title: "x", DueDate: "2024-09-05"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestHomeworkAddDuplicateKeepsCache(t *testing.T) {
	repo := newHomeworkRepoStub(models.Homework{ID: "hw-1", SubjectID: "math", Title: "Cũ", DueDate: "2024-09-02", Priority: models.PriorityLow})
	svc := newHomeworkServiceForTest(repo)

	_, err := svc.Add(context.Background(), models.CreateHomeworkRequest{ID: "hw-1", SubjectID: "math", SubjectName: "Toán", Title: "Mới", DueDate: "2024-09-05"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cũ", list[0].Title)
}

func TestHomeworkStoreFailureLeavesCacheUnchanged(t *testing.T) {
	repo := newHomeworkRepoStub()
	svc := newHomeworkServiceForTest(repo)
	require.NoError(t, svc.Reload(context.Background()))

	repo.createErr = errors.New("disk I/O error")
	_, err := svc.Add(context.Background(), models.CreateHomeworkRequest{SubjectID: "math", Title: "Bài 2", DueDate: "2024-09-05"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHomeworkListOrder(t *testing.T) {
	repo := newHomeworkRepoStub(
		models.Homework{ID: "a", Title: "done early", DueDate: "2024-09-01", Completed: true},
		models.Homework{ID: "b", Title: "late", DueDate: "2024-09-10"},
		models.Homework{ID: "c", Title: "soon", DueDate: "2024-09-03"},
	)
	svc := newHomeworkServiceForTest(repo)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestHomeworkUpdateToggleDelete(t *testing.T) {
	repo := newHomeworkRepoStub(models.Homework{ID: "hw-1", SubjectID: "math", Title: "Bài 1", DueDate: "2024-09-02", Priority: models.PriorityHigh})
	svc := newHomeworkServiceForTest(repo)

	title := "Bài 1 (sửa)"
	updated, err := svc.Update(context.Background(), "hw-1", models.HomeworkPatch{Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, models.PriorityHigh, updated.Priority)

	missing, err := svc.Update(context.Background(), "nope", models.HomeworkPatch{Title: &title})
	assert.NoError(t, err)
	assert.Nil(t, missing)

	toggled, err := svc.ToggleComplete(context.Background(), "hw-1")
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.True(t, repo.items["hw-1"].Completed)

	noop, err := svc.ToggleComplete(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, noop)

	require.NoError(t, svc.Delete(context.Background(), "hw-1"))
	require.NoError(t, svc.Delete(context.Background(), "hw-1"))
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHomeworkReloadPicksUpExternalWrites(t *testing.T) {
	repo := newHomeworkRepoStub()
	svc := newHomeworkServiceForTest(repo)
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	repo.items["ext"] = models.Homework{ID: "ext", Title: "external", DueDate: "2024-09-09"}
	list, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.Reload(context.Background()))
	list, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, repo.lists)
}

func TestHomeworkQueries(t *testing.T) {
	repo := newHomeworkRepoStub(
		models.Homework{ID: "a", SubjectID: "math", DueDate: "2024-09-05"},
		models.Homework{ID: "b", SubjectID: "lit", DueDate: "2024-09-20"},
	)
	svc := newHomeworkServiceForTest(repo)

	bySubject, err := svc.BySubject(context.Background(), "math")
	require.NoError(t, err)
	require.Len(t, bySubject, 1)
	assert.Equal(t, "a", bySubject[0].ID)

	due, err := svc.DueBetween(context.Background(), "2024-09-01", "2024-09-10")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "a", due[0].ID)

	_, err = svc.DueBetween(context.Background(), "yesterday", "2024-09-10")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
