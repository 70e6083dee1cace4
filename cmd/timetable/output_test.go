package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

func TestPrintSubjects(t *testing.T) {
	var buf bytes.Buffer
	err := printSubjects(&buf, []models.Subject{
		{ID: "1", Name: "Toán", Day: 0, StartTime: "07:00", EndTime: "07:45", Teacher: "Cô Lan", Tags: []string{"core", "exam"}},
		{ID: "2", Name: "Lý", Day: 5, StartTime: "14:00", EndTime: "15:30", IsExtraClass: true},
	}, "en")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Monday")
	assert.Contains(t, lines[1], "core,exam")
	assert.Contains(t, lines[2], "Saturday")
	assert.Contains(t, lines[2], "Lý *")
}

func TestPrintHomework(t *testing.T) {
	var buf bytes.Buffer
	err := printHomework(&buf, []models.Homework{
		{ID: "hw-1", SubjectName: "Toán", Title: "Chương 2", DueDate: "2024-09-10", Priority: models.PriorityHigh},
		{ID: "hw-2", SubjectName: "Văn", Title: "Bài luận", DueDate: "2024-09-01", Priority: models.PriorityLow, Completed: true},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "high")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[2]), "x"))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "export", "import", "stats", "search", "homework"} {
		assert.True(t, names[want], want)
	}
}
