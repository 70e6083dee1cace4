package models

// HomeworkPriority ranks a homework item.
type HomeworkPriority string

const (
	PriorityHigh   HomeworkPriority = "high"
	PriorityMedium HomeworkPriority = "medium"
	PriorityLow    HomeworkPriority = "low"
)

// Homework is a task tied to a subject. SubjectName is captured when the
// item is created and is not updated when the subject is renamed.
type Homework struct {
	ID          string           `db:"id" json:"id"`
	SubjectID   string           `db:"subject_id" json:"subjectId"`
	SubjectName string           `db:"subject_name" json:"subjectName"`
	Title       string           `db:"title" json:"title"`
	Description *string          `db:"description" json:"description,omitempty"`
	DueDate     string           `db:"due_date" json:"dueDate"`
	Priority    HomeworkPriority `db:"priority" json:"priority"`
	Completed   bool             `db:"completed" json:"completed"`
	CreatedAt   string           `db:"created_at" json:"createdAt"`
}

// CreateHomeworkRequest is the payload for adding homework. ID is optional;
// a supplied ID that already exists makes the add fail.
type CreateHomeworkRequest struct {
	ID          string           `json:"id" validate:"omitempty,max=64"`
	SubjectID   string           `json:"subjectId" validate:"required"`
	SubjectName string           `json:"subjectName"`
	Title       string           `json:"title" validate:"required,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	DueDate     string           `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Priority    HomeworkPriority `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// HomeworkPatch is a partial update; nil fields are left unchanged.
type HomeworkPatch struct {
	SubjectID   *string           `json:"subjectId" validate:"omitempty,min=1"`
	SubjectName *string           `json:"subjectName"`
	Title       *string           `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	DueDate     *string           `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    *HomeworkPriority `json:"priority" validate:"omitempty,oneof=high medium low"`
	Completed   *bool             `json:"completed"`
}

// Apply merges the patch over h and returns the result.
func (p HomeworkPatch) Apply(h Homework) Homework {
	if p.SubjectID != nil {
		h.SubjectID = *p.SubjectID
	}
	if p.SubjectName != nil {
		h.SubjectName = *p.SubjectName
	}
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Description != nil {
		desc := *p.Description
		h.Description = &desc
	}
	if p.DueDate != nil {
		h.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		h.Priority = *p.Priority
	}
	if p.Completed != nil {
		h.Completed = *p.Completed
	}
	return h
}
