package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

func TestSettingsHandlerGetAndPatch(t *testing.T) {
	app := newTestApp(t, testOptions{})

	w := app.do(t, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	var settings models.Settings
	decodeData(t, w, &settings)
	assert.Equal(t, models.DefaultSettings(), settings)

	w = app.do(t, http.MethodPatch, "/api/v1/settings", `{"language":"en"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &settings)
	assert.Equal(t, "en", settings.Language)
	assert.Equal(t, models.DefaultSettings().ClassPeriods, settings.ClassPeriods)
	assert.Equal(t, "en", app.timetable.Settings().Language)

	w = app.do(t, http.MethodPatch, "/api/v1/settings", `{"language":"fr"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "en", app.timetable.Settings().Language)
}

func TestSettingsHandlerStats(t *testing.T) {
	app := newTestApp(t, testOptions{})
	app.createSubject(t, mathBody)
	app.createSubject(t, `{"name":"Toán","startTime":"13:00","endTime":"14:30","day":3,"isExtraClass":true}`)

	w := app.do(t, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.Stats
	decodeData(t, w, &stats)
	assert.InDelta(t, 2.25, stats.TotalHours, 0.001)
	assert.InDelta(t, 2.25, stats.SubjectDistribution["Toán"], 0.001)
	assert.Equal(t, 2, stats.DaysWithClasses)
	assert.Equal(t, 2, stats.SubjectCount)
	assert.Equal(t, 1, stats.ExtraClassCount)
	assert.InDelta(t, 1.5, stats.ExtraClassHours, 0.001)
	assert.InDelta(t, 0.75, stats.OfficialHours, 0.001)
	assert.InDelta(t, 0.75, stats.WeeklyHours[0], 0.001)
}
