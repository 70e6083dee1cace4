package service

import (
	"strings"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

// Search filters subjects by a free-text query and structured filters. The
// query is trimmed and matched case-insensitively as a substring of name,
// teacher, room or notes. All supplied filters must hold.
func Search(subjects []models.Subject, query string, filters models.SearchFilters) models.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))

	results := make([]models.Subject, 0, len(subjects))
	for _, subject := range subjects {
		if q != "" && !matchesQuery(subject, q) {
			continue
		}
		if !matchesFilters(subject, filters) {
			continue
		}
		results = append(results, cloneSubject(subject))
	}

	return models.SearchResult{
		Results:    results,
		Count:      len(results),
		HasResults: len(results) > 0,
		IsEmpty:    len(subjects) == 0,
		IsFiltered: q != "" || filters.Supplied(),
	}
}

func matchesQuery(s models.Subject, q string) bool {
	for _, field := range []string{s.Name, s.Teacher, s.Room, s.Notes} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func matchesFilters(s models.Subject, f models.SearchFilters) bool {
	if f.Day != nil && s.Day != *f.Day {
		return false
	}
	if len(f.Tags) > 0 && !sharesTag(s.Tags, f.Tags) {
		return false
	}
	if f.HasTeacher != nil && (s.Teacher != "") != *f.HasTeacher {
		return false
	}
	if f.HasRoom != nil && (s.Room != "") != *f.HasRoom {
		return false
	}
	if f.IsExtraClass != nil && s.IsExtraClass != *f.IsExtraClass {
		return false
	}
	return true
}

func sharesTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
