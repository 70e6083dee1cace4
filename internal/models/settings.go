package models

// Period is one numbered class slot of the school day.
type Period struct {
	Period    int    `json:"period"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ClassPeriods groups the morning and afternoon slots.
type ClassPeriods struct {
	Morning   []Period `json:"morning"`
	Afternoon []Period `json:"afternoon"`
}

// Settings are the user preferences persisted under timetable_settings.
type Settings struct {
	Theme          string       `json:"theme"`
	Language       string       `json:"language"`
	Notifications  bool         `json:"notifications"`
	ClassPeriods   ClassPeriods `json:"classPeriods"`
	TimetableTitle string       `json:"timetableTitle"`
}

// SettingsPatch updates a subset of settings; nil fields are kept.
type SettingsPatch struct {
	Theme          *string       `json:"theme" validate:"omitempty,oneof=light dark"`
	Language       *string       `json:"language" validate:"omitempty,oneof=en vi"`
	Notifications  *bool         `json:"notifications"`
	ClassPeriods   *ClassPeriods `json:"classPeriods"`
	TimetableTitle *string       `json:"timetableTitle" validate:"omitempty,max=200"`
}

// Apply merges the patch over s. Class periods are replaced as a whole.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.ClassPeriods != nil {
		s.ClassPeriods = *p.ClassPeriods
	}
	if p.TimetableTitle != nil {
		s.TimetableTitle = *p.TimetableTitle
	}
	return s
}

// DefaultClassPeriods returns the standard five morning and five afternoon slots.
func DefaultClassPeriods() ClassPeriods {
	return ClassPeriods{
		Morning: []Period{
			{Period: 1, StartTime: "07:00", EndTime: "07:45"},
			{Period: 2, StartTime: "07:50", EndTime: "08:35"},
			{Period: 3, StartTime: "08:50", EndTime: "09:35"},
			{Period: 4, StartTime: "09:40", EndTime: "10:25"},
			{Period: 5, StartTime: "10:30", EndTime: "11:15"},
		},
		Afternoon: []Period{
			{Period: 1, StartTime: "13:00", EndTime: "13:45"},
			{Period: 2, StartTime: "13:50", EndTime: "14:35"},
			{Period: 3, StartTime: "14:50", EndTime: "15:35"},
			{Period: 4, StartTime: "15:40", EndTime: "16:25"},
			{Period: 5, StartTime: "16:30", EndTime: "17:15"},
		},
	}
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		Theme:          "light",
		Language:       "vi",
		Notifications:  true,
		ClassPeriods:   DefaultClassPeriods(),
		TimetableTitle: "Thời khóa biểu",
	}
}
