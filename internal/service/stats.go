package service

import (
	"strconv"
	"strings"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

// ComputeStats reduces the subject list into hour totals. Subjects sharing a
// name are merged in the distribution. A subject whose start or end cannot
// be parsed contributes zero minutes.
func ComputeStats(subjects []models.Subject) models.Stats {
	stats := models.Stats{
		SubjectDistribution: make(map[string]float64),
		SubjectCount:        len(subjects),
	}

	var totalMinutes, extraMinutes, officialMinutes int
	days := make(map[int]struct{})

	for _, s := range subjects {
		minutes := durationMinutes(s.StartTime, s.EndTime)
		hours := float64(minutes) / 60

		totalMinutes += minutes
		stats.SubjectDistribution[s.Name] += hours
		if s.Day >= 0 && s.Day < models.DaysPerWeek {
			stats.WeeklyHours[s.Day] += hours
		}
		days[s.Day] = struct{}{}

		if s.IsExtraClass {
			stats.ExtraClassCount++
			extraMinutes += minutes
		} else {
			officialMinutes += minutes
		}
	}

	stats.TotalHours = float64(totalMinutes) / 60
	stats.ExtraClassHours = float64(extraMinutes) / 60
	stats.OfficialHours = float64(officialMinutes) / 60
	stats.DaysWithClasses = len(days)
	return stats
}

func durationMinutes(start, end string) int {
	from, ok := clockMinutes(start)
	if !ok {
		return 0
	}
	to, ok := clockMinutes(end)
	if !ok {
		return 0
	}
	return to - from
}

// clockMinutes converts "HH:MM" to minutes after midnight.
func clockMinutes(value string) (int, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return hours*60 + mins, true
}
