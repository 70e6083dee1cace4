package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
	"github.com/noah-isme/timetable-organizer/pkg/export"
)

// Defaults applied to CSV rows that leave a column blank.
const (
	csvDefaultStart = "08:00"
	csvDefaultEnd   = "09:00"
	csvDefaultColor = "#3b82f6"
)

type timetableWriter interface {
	ReplaceSubjects(ctx context.Context, subjects []models.Subject) ([]models.Subject, error)
	MergeSettings(ctx context.Context, raw json.RawMessage) (models.Settings, bool)
}

// ImportService turns exported files back into timetable state.
type ImportService struct {
	timetable timetableWriter
	csv       *export.CSVExporter
	logger    *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(timetable timetableWriter, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{timetable: timetable, csv: export.NewCSVExporter(), logger: logger}
}

// Import parses contents in the given format and replaces the subject list.
// Settings carried by a JSON envelope are merged over the current settings.
// An empty subject list is rejected and leaves state untouched.
func (s *ImportService) Import(ctx context.Context, format models.ExportFormat, contents []byte) (*models.ImportSummary, error) {
	var (
		result models.ImportResult
		err    error
	)
	switch format {
	case models.FormatJSON, "":
		format = models.FormatJSON
		result, err = ParseJSON(contents)
	case models.FormatCSV:
		result, err = s.ParseCSV(contents)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported import format %q", format))
	}
	if err != nil {
		s.logger.Warn("import rejected", zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}
	if len(result.Subjects) == 0 {
		return nil, appErrors.ErrEmptyImport
	}

	stored, err := s.timetable.ReplaceSubjects(ctx, result.Subjects)
	if err != nil {
		return nil, err
	}

	summary := &models.ImportSummary{Format: format, Subjects: len(stored)}
	if len(result.Settings) > 0 {
		_, summary.SettingsApplied = s.timetable.MergeSettings(ctx, result.Settings)
	}
	s.logger.Info("timetable imported",
		zap.String("format", string(format)),
		zap.Int("subjects", summary.Subjects),
		zap.Bool("settings", summary.SettingsApplied))
	return summary, nil
}

// ParseJSON accepts either an export envelope with a subjects list or a
// bare list of subjects. Every element must carry a string name, numeric
// day and string startTime, endTime and color; one bad element rejects the
// whole file. Settings are returned raw.
func ParseJSON(contents []byte) (models.ImportResult, error) {
	var root interface{}
	if err := json.Unmarshal(contents, &root); err != nil {
		return models.ImportResult{}, appErrors.WrapAs(appErrors.ErrInvalidImport, err, "failed to parse JSON file")
	}

	var (
		list     []json.RawMessage
		settings json.RawMessage
	)
	switch root.(type) {
	case []interface{}:
		if err := json.Unmarshal(contents, &list); err != nil {
			return models.ImportResult{}, appErrors.WrapAs(appErrors.ErrInvalidImport, err, "")
		}
	case map[string]interface{}:
		var envelope struct {
			Subjects json.RawMessage `json:"subjects"`
			Settings json.RawMessage `json:"settings"`
		}
		if err := json.Unmarshal(contents, &envelope); err != nil {
			return models.ImportResult{}, appErrors.WrapAs(appErrors.ErrInvalidImport, err, "")
		}
		if err := json.Unmarshal(envelope.Subjects, &list); err != nil || list == nil {
			return models.ImportResult{}, appErrors.ErrInvalidImport
		}
		if trimmed := bytes.TrimSpace(envelope.Settings); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			settings = envelope.Settings
		}
	default:
		return models.ImportResult{}, appErrors.ErrInvalidImport
	}

	subjects := make([]models.Subject, 0, len(list))
	for i, raw := range list {
		subject, err := parseSubjectElement(raw)
		if err != nil {
			return models.ImportResult{}, appErrors.WrapAs(appErrors.ErrInvalidImport, fmt.Errorf("subject %d: %w", i+1, err), "")
		}
		subjects = append(subjects, subject)
	}
	return models.ImportResult{Subjects: subjects, Settings: settings}, nil
}

func parseSubjectElement(raw json.RawMessage) (models.Subject, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.Subject{}, fmt.Errorf("not an object")
	}
	for _, key := range []string{"name", "startTime", "endTime", "color"} {
		if _, ok := fields[key].(string); !ok {
			return models.Subject{}, fmt.Errorf("%s must be a string", key)
		}
	}
	day, ok := fields["day"].(float64)
	if !ok {
		return models.Subject{}, fmt.Errorf("day must be a number")
	}

	subject := models.Subject{
		Name:      fields["name"].(string),
		StartTime: fields["startTime"].(string),
		EndTime:   fields["endTime"].(string),
		Color:     fields["color"].(string),
		Day:       int(day),
		Teacher:   optionalString(fields["teacher"]),
		Room:      optionalString(fields["room"]),
		Notes:     optionalString(fields["notes"]),
	}
	switch id := fields["id"].(type) {
	case string:
		subject.ID = id
	case float64:
		subject.ID = strconv.FormatFloat(id, 'f', -1, 64)
	}
	if tags, ok := fields["tags"].([]interface{}); ok {
		for _, tag := range tags {
			if v, ok := tag.(string); ok {
				subject.Tags = append(subject.Tags, v)
			}
		}
	}
	if extra, ok := fields["isExtraClass"].(bool); ok {
		subject.IsExtraClass = extra
	}
	return subject, nil
}

// optionalString returns v when it is a string. Optional fields of other
// types are dropped rather than rejected.
func optionalString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// ParseCSV reads the CSV layout produced by the exporter. Rows without a
// name are skipped; blank day, times and color fall back to defaults.
func (s *ImportService) ParseCSV(contents []byte) (models.ImportResult, error) {
	if len(bytes.TrimSpace(contents)) == 0 {
		return models.ImportResult{}, appErrors.Clone(appErrors.ErrInvalidImport, "CSV file is empty")
	}
	data, err := s.csv.Parse(bytes.NewReader(contents))
	if err != nil {
		return models.ImportResult{}, appErrors.WrapAs(appErrors.ErrInvalidImport, err, "failed to parse CSV file")
	}
	if len(data.Rows) == 0 {
		return models.ImportResult{}, appErrors.Clone(appErrors.ErrInvalidImport, "CSV file is empty")
	}

	subjects := make([]models.Subject, 0, len(data.Rows))
	for _, row := range data.Rows {
		name := strings.TrimSpace(row["name"])
		if name == "" {
			continue
		}
		day, err := strconv.Atoi(strings.TrimSpace(row["day"]))
		if err != nil {
			day = 0
		}
		subject := models.Subject{
			Name:      name,
			Day:       day,
			StartTime: orDefault(row["startTime"], csvDefaultStart),
			EndTime:   orDefault(row["endTime"], csvDefaultEnd),
			Teacher:   strings.TrimSpace(row["teacher"]),
			Room:      strings.TrimSpace(row["room"]),
			Notes:     row["notes"],
			Color:     orDefault(row["color"], csvDefaultColor),
			Tags:      splitTags(row["tags"]),
		}
		if extra := strings.TrimSpace(row["isExtraClass"]); extra != "" {
			subject.IsExtraClass, _ = strconv.ParseBool(extra)
		}
		subjects = append(subjects, subject)
	}
	return models.ImportResult{Subjects: subjects}, nil
}

func orDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
