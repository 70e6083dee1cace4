package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

func TestComputeStats(t *testing.T) {
	subjects := []models.Subject{
		{Name: "Toán", Day: 0, StartTime: "07:00", EndTime: "08:30"},
		{Name: "Toán", Day: 2, StartTime: "07:00", EndTime: "07:45"},
		{Name: "Văn", Day: 0, StartTime: "09:00", EndTime: "10:00"},
		{Name: "Luyện thi", Day: 5, StartTime: "18:00", EndTime: "20:00", IsExtraClass: true},
		{Name: "Hỏng", Day: 3, StartTime: "abc", EndTime: "10:00"},
	}

	stats := ComputeStats(subjects)
	assert.InDelta(t, 5.25, stats.TotalHours, 1e-9)
	assert.InDelta(t, 2.25, stats.SubjectDistribution["Toán"], 1e-9)
	assert.InDelta(t, 1, stats.SubjectDistribution["Văn"], 1e-9)
	assert.Zero(t, stats.SubjectDistribution["Hỏng"])
	assert.InDelta(t, 2.5, stats.WeeklyHours[0], 1e-9)
	assert.InDelta(t, 0.75, stats.WeeklyHours[2], 1e-9)
	assert.InDelta(t, 2, stats.WeeklyHours[5], 1e-9)
	assert.Equal(t, 4, stats.DaysWithClasses)
	assert.Equal(t, 5, stats.SubjectCount)
	assert.Equal(t, 1, stats.ExtraClassCount)
	assert.InDelta(t, 2, stats.ExtraClassHours, 1e-9)
	assert.InDelta(t, 3.25, stats.OfficialHours, 1e-9)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.TotalHours)
	assert.Zero(t, stats.DaysWithClasses)
	assert.NotNil(t, stats.SubjectDistribution)
}

func TestClockMinutes(t *testing.T) {
	m, ok := clockMinutes("13:05")
	assert.True(t, ok)
	assert.Equal(t, 785, m)

	_, ok = clockMinutes("1305")
	assert.False(t, ok)
	assert.Zero(t, durationMinutes("08:00", "x:00"))
}
