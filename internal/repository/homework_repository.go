package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

// ErrDuplicate is returned when inserting a record whose key already exists.
var ErrDuplicate = errors.New("duplicate key")

const homeworkColumns = `id, subject_id, subject_name, title, description, due_date, priority, completed, created_at`

// HomeworkRepository persists homework records keyed by id, with secondary
// indexes on due date and subject.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository creates a new repository instance.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// List returns every homework record.
func (r *HomeworkRepository) List(ctx context.Context) ([]models.Homework, error) {
	query := `SELECT ` + homeworkColumns + ` FROM homework ORDER BY due_date, created_at`
	items := make([]models.Homework, 0)
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list homework: %w", err)
	}
	return items, nil
}

// FindByID returns a homework record or sql.ErrNoRows.
func (r *HomeworkRepository) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	query := r.db.Rebind(`SELECT ` + homeworkColumns + ` FROM homework WHERE id = ?`)
	var item models.Homework
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListBySubject returns homework for one subject using the subject index.
func (r *HomeworkRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.Homework, error) {
	query := r.db.Rebind(`SELECT ` + homeworkColumns + ` FROM homework WHERE subject_id = ? ORDER BY due_date`)
	items := make([]models.Homework, 0)
	if err := r.db.SelectContext(ctx, &items, query, subjectID); err != nil {
		return nil, fmt.Errorf("list homework by subject: %w", err)
	}
	return items, nil
}

// ListDueBetween returns homework due within [from, to] (YYYY-MM-DD, inclusive)
// using the due date index.
func (r *HomeworkRepository) ListDueBetween(ctx context.Context, from, to string) ([]models.Homework, error) {
	query := r.db.Rebind(`SELECT ` + homeworkColumns + ` FROM homework WHERE due_date >= ? AND due_date <= ? ORDER BY due_date`)
	items := make([]models.Homework, 0)
	if err := r.db.SelectContext(ctx, &items, query, from, to); err != nil {
		return nil, fmt.Errorf("list homework due between: %w", err)
	}
	return items, nil
}

// Create inserts a new record. It fails with ErrDuplicate when the id exists.
func (r *HomeworkRepository) Create(ctx context.Context, item *models.Homework) error {
	const query = `INSERT INTO homework (` + homeworkColumns + `) VALUES (:id, :subject_id, :subject_name, :title, :description, :due_date, :priority, :completed, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create homework %s: %w", item.ID, ErrDuplicate)
		}
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// Put writes the full record, inserting or replacing by id.
func (r *HomeworkRepository) Put(ctx context.Context, item *models.Homework) error {
	const query = `INSERT INTO homework (` + homeworkColumns + `) VALUES (:id, :subject_id, :subject_name, :title, :description, :due_date, :priority, :completed, :created_at)
		ON CONFLICT (id) DO UPDATE SET subject_id = excluded.subject_id, subject_name = excluded.subject_name, title = excluded.title,
		description = excluded.description, due_date = excluded.due_date, priority = excluded.priority, completed = excluded.completed,
		created_at = excluded.created_at`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("put homework: %w", err)
	}
	return nil
}

// Delete removes a record. Deleting a missing id is not an error.
func (r *HomeworkRepository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM homework WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
