package models

// Stats aggregates scheduled hours over the weekly subject list.
type Stats struct {
	TotalHours          float64              `json:"totalHours"`
	SubjectDistribution map[string]float64   `json:"subjectDistribution"`
	WeeklyHours         [DaysPerWeek]float64 `json:"weeklyHours"`
	DaysWithClasses     int                  `json:"daysWithClasses"`
	SubjectCount        int                  `json:"subjectCount"`
	ExtraClassCount     int                  `json:"extraClassCount"`
	ExtraClassHours     float64              `json:"extraClassHours"`
	OfficialHours       float64              `json:"officialHours"`
}
