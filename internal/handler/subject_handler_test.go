package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

const mathBody = `{"name":"Toán","startTime":"07:00","endTime":"07:45","day":0,"teacher":"Cô Lan","tags":["core"]}`

func TestSubjectHandlerCRUD(t *testing.T) {
	app := newTestApp(t, testOptions{})
	id := app.createSubject(t, mathBody)

	w := app.do(t, http.MethodGet, "/api/v1/subjects/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Subject
	decodeData(t, w, &got)
	assert.Equal(t, "Toán", got.Name)
	assert.Equal(t, []string{"core"}, got.Tags)

	w = app.do(t, http.MethodPut, "/api/v1/subjects/"+id,
		`{"name":"Toán","startTime":"07:00","endTime":"07:45","day":0,"room":"A1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "A1", got.Room)
	assert.Empty(t, got.Teacher)

	w = app.do(t, http.MethodDelete, "/api/v1/subjects/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/subjects/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "subject not found", decodeEnvelope(t, w).Error.Message)

	w = app.do(t, http.MethodDelete, "/api/v1/subjects/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSubjectHandlerRejectsInvalidPayloads(t *testing.T) {
	app := newTestApp(t, testOptions{})

	cases := map[string]string{
		"malformed":        `{"name":"Toán"`,
		"end before start": `{"name":"Toán","startTime":"09:00","endTime":"08:00","day":1}`,
		"bad clock":        `{"name":"Toán","startTime":"7:00","endTime":"08:00","day":1}`,
		"missing day":      `{"name":"Toán","startTime":"07:00","endTime":"08:00"}`,
		"day out of range": `{"name":"Toán","startTime":"07:00","endTime":"08:00","day":7}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/v1/subjects", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error.Code)
		})
	}
	assert.Empty(t, app.timetable.Subjects())
}

func TestSubjectHandlerUpdateUnknown(t *testing.T) {
	app := newTestApp(t, testOptions{})
	w := app.do(t, http.MethodPut, "/api/v1/subjects/missing", mathBody)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubjectHandlerSearch(t *testing.T) {
	app := newTestApp(t, testOptions{})
	app.createSubject(t, mathBody)
	app.createSubject(t, `{"name":"Vật lý","startTime":"08:00","endTime":"08:45","day":2,"room":"B2","isExtraClass":true}`)

	tests := []struct {
		name     string
		query    string
		count    int
		filtered bool
	}{
		{name: "all", query: "", count: 2, filtered: false},
		{name: "text", query: "?q=%20c%C3%B4%20lan%20", count: 1, filtered: true},
		{name: "day", query: "?day=2", count: 1, filtered: true},
		{name: "tags", query: "?tags=core,lab", count: 1, filtered: true},
		{name: "empty tags", query: "?tags=", count: 2, filtered: true},
		{name: "has room", query: "?has_room=false", count: 1, filtered: true},
		{name: "extra", query: "?extra=true&has_teacher=false", count: 1, filtered: true},
		{name: "no match", query: "?q=hóa", count: 0, filtered: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := app.do(t, http.MethodGet, "/api/v1/subjects"+tc.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			var result models.SearchResult
			decodeData(t, w, &result)
			assert.Equal(t, tc.count, result.Count)
			assert.Equal(t, tc.count > 0, result.HasResults)
			assert.False(t, result.IsEmpty)
			assert.Equal(t, tc.filtered, result.IsFiltered)
		})
	}
}

func TestSubjectHandlerSearchRejectsBadFilters(t *testing.T) {
	app := newTestApp(t, testOptions{})
	for _, query := range []string{"?day=7", "?day=mon", "?extra=maybe", "?has_room=2x"} {
		w := app.do(t, http.MethodGet, "/api/v1/subjects"+query, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestSubjectHandlerSearchEmptyTimetable(t *testing.T) {
	app := newTestApp(t, testOptions{})
	w := app.do(t, http.MethodGet, "/api/v1/subjects", "")
	require.Equal(t, http.StatusOK, w.Code)

	var result models.SearchResult
	decodeData(t, w, &result)
	assert.True(t, result.IsEmpty)
	assert.NotNil(t, result.Results)
	assert.Zero(t, result.Count)
}
