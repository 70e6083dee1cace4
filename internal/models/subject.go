package models

// Day indexes a weekday, Monday first. Sunday exists as an index but
// classes are normally scheduled Monday to Saturday.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of day indexes used by weekly aggregates.
const DaysPerWeek = 7

var dayNames = map[string][DaysPerWeek]string{
	"en": {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	"vi": {"Thứ Hai", "Thứ Ba", "Thứ Tư", "Thứ Năm", "Thứ Sáu", "Thứ Bảy", "Chủ Nhật"},
}

// DayName returns the localized name of day index d. Unknown languages fall
// back to English and out-of-range indexes yield "".
func DayName(d int, language string) string {
	if d < 0 || d >= DaysPerWeek {
		return ""
	}
	names, ok := dayNames[language]
	if !ok {
		names = dayNames["en"]
	}
	return names[d]
}

// Subject is one weekly recurring class session or extra-study session.
// JSON names match the portable export format.
type Subject struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Color        string   `json:"color"`
	Teacher      string   `json:"teacher,omitempty"`
	Room         string   `json:"room,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Day          int      `json:"day"`
	IsExtraClass bool     `json:"isExtraClass,omitempty"`
}

// SubjectInput carries the editable fields of a subject.
type SubjectInput struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Color        string   `json:"color" validate:"max=64"`
	Teacher      string   `json:"teacher" validate:"max=200"`
	Room         string   `json:"room" validate:"max=100"`
	Notes        string   `json:"notes" validate:"max=2000"`
	Tags         []string `json:"tags" validate:"max=20,dive,max=50"`
	StartTime    string   `json:"startTime" validate:"required,clock"`
	EndTime      string   `json:"endTime" validate:"required,clock"`
	Day          *int     `json:"day" validate:"required,min=0,max=6"`
	IsExtraClass bool     `json:"isExtraClass"`
}

// Apply copies the input onto s, keeping its identifier.
func (in SubjectInput) Apply(s Subject) Subject {
	s.Name = in.Name
	s.Color = in.Color
	s.Teacher = in.Teacher
	s.Room = in.Room
	s.Notes = in.Notes
	s.Tags = nil
	if len(in.Tags) > 0 {
		s.Tags = append([]string(nil), in.Tags...)
	}
	s.StartTime = in.StartTime
	s.EndTime = in.EndTime
	if in.Day != nil {
		s.Day = *in.Day
	}
	s.IsExtraClass = in.IsExtraClass
	return s
}
