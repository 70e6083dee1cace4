package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
	"github.com/noah-isme/timetable-organizer/pkg/export"
	"github.com/noah-isme/timetable-organizer/pkg/storage"
)

// CSV column order shared by export and import.
var csvHeaders = []string{"name", "day", "startTime", "endTime", "teacher", "room", "notes", "tags", "color"}

type timetableReader interface {
	Subjects() []models.Subject
	Settings() models.Settings
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export delivery.
type ExportConfig struct {
	// Native selects share delivery through the cache directory instead of
	// a direct download.
	Native    bool
	APIPrefix string
	CacheTTL  time.Duration
}

// ExportService renders the timetable and hands it to the user.
type ExportService struct {
	timetable timetableReader
	storage   fileStorage
	signer    *storage.SignedURLSigner
	csv       csvRenderer
	pdf       pdfRenderer
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService. storage and signer may be nil
// when only download delivery is used.
func NewExportService(timetable timetableReader, fs fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &ExportService{
		timetable: timetable,
		storage:   fs,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       newTimetablePDF(),
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func newTimetablePDF() *export.PDFExporter {
	pdf := export.NewPDFExporter()
	pdf.Widths = map[string]float64{"Day": 1.2, "Time": 1.3, "Subject": 2, "Teacher": 1.6, "Room": 1, "Notes": 2.4}
	return pdf
}

// Export renders the current subjects and settings in format.
func (s *ExportService) Export(format models.ExportFormat) (*models.ExportFile, error) {
	subjects := s.timetable.Subjects()
	settings := s.timetable.Settings()
	date := s.now().Format("2006-01-02")

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case models.FormatJSON, "":
		format = models.FormatJSON
		contentType = "application/json"
		payload, err = json.MarshalIndent(models.ExportData{
			Version:    models.ExportVersion,
			ExportDate: date,
			Subjects:   subjects,
			Settings:   &settings,
		}, "", "  ")
	case models.FormatCSV:
		contentType = "text/csv"
		payload, err = s.csv.Render(subjectsDataset(subjects))
	case models.FormatPDF:
		contentType = "application/pdf"
		payload, err = s.pdf.Render(weekDataset(subjects, settings.Language), settings.TimetableTitle)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("render export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &models.ExportFile{
		Filename:    fmt.Sprintf("timetable-%s.%s", date, format),
		ContentType: contentType,
		Format:      format,
		Data:        payload,
	}, nil
}

// Deliver hands a rendered file to the user. Browser builds download it
// directly; native builds write it into the share cache and return a signed
// link. Any failure on the share path yields the generic share error.
func (s *ExportService) Deliver(ctx context.Context, file *models.ExportFile) (*models.Delivery, error) {
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to deliver")
	}
	if !s.cfg.Native {
		s.metrics.RecordExport(string(file.Format), string(models.DeliveryDownload))
		return &models.Delivery{Method: models.DeliveryDownload, Filename: file.Filename}, nil
	}

	delivery, err := s.share(file)
	if err != nil {
		s.logger.Error("share export failed", zap.String("file", file.Filename), zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrShareFailed, err, "")
	}
	s.metrics.RecordExport(string(file.Format), string(models.DeliveryShare))
	s.logger.Info("export shared", zap.String("file", file.Filename), zap.String("expires_at", delivery.ExpiresAt))
	return delivery, nil
}

func (s *ExportService) share(file *models.ExportFile) (*models.Delivery, error) {
	if s.storage == nil || s.signer == nil {
		return nil, fmt.Errorf("share cache not configured")
	}
	id := uuid.NewString()
	relPath, err := s.storage.Save(cacheName(file.Filename, id), file.Data)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &models.Delivery{
		Method:    models.DeliveryShare,
		Filename:  file.Filename,
		URL:       fmt.Sprintf("%s/share/%s", prefix, token),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// OpenShared resolves a share token to the cached file it grants access to
// and the filename the download should carry.
func (s *ExportService) OpenShared(token string) (*os.File, string, error) {
	if s.storage == nil || s.signer == nil {
		return nil, "", appErrors.ErrUnavailable
	}
	id, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.WrapAs(appErrors.ErrInvalidToken, err, "")
	}
	f, err := s.storage.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "shared file no longer available")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open shared file")
	}
	return f, displayName(relPath, id), nil
}

// cacheName suffixes filename with the start of the share id so repeated
// exports on the same day do not overwrite each other.
func cacheName(filename, id string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "-" + shareSuffix(id) + ext
}

// displayName undoes cacheName.
func displayName(relPath, id string) string {
	name := filepath.Base(relPath)
	ext := filepath.Ext(name)
	return strings.TrimSuffix(strings.TrimSuffix(name, ext), "-"+shareSuffix(id)) + ext
}

func shareSuffix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Cleanup removes cached share files older than ttl, or the configured cache
// TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	if ttl <= 0 {
		ttl = s.cfg.CacheTTL
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("share cache cleanup failed", zap.Error(err))
		return removed, err
	}
	if len(removed) > 0 {
		s.logger.Info("share cache cleaned", zap.Int("removed", len(removed)))
	}
	return removed, nil
}

// RunCleanup sweeps the share cache every interval until ctx is done.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.storage == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Cleanup(0)
		}
	}
}

func subjectsDataset(subjects []models.Subject) export.Dataset {
	rows := make([]map[string]string, 0, len(subjects))
	for _, subject := range subjects {
		rows = append(rows, map[string]string{
			"name":      subject.Name,
			"day":       strconv.Itoa(subject.Day),
			"startTime": subject.StartTime,
			"endTime":   subject.EndTime,
			"teacher":   subject.Teacher,
			"room":      subject.Room,
			"notes":     subject.Notes,
			"tags":      strings.Join(subject.Tags, ";"),
			"color":     subject.Color,
		})
	}
	return export.Dataset{Headers: csvHeaders, Rows: rows}
}

// weekDataset lays subjects out as a printable week, ordered by day then
// start time.
func weekDataset(subjects []models.Subject, language string) export.Dataset {
	ordered := cloneSubjects(subjects)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Day != ordered[j].Day {
			return ordered[i].Day < ordered[j].Day
		}
		return ordered[i].StartTime < ordered[j].StartTime
	})

	rows := make([]map[string]string, 0, len(ordered))
	for _, subject := range ordered {
		name := subject.Name
		if subject.IsExtraClass {
			name += " *"
		}
		rows = append(rows, map[string]string{
			"Day":     models.DayName(subject.Day, language),
			"Time":    subject.StartTime + " - " + subject.EndTime,
			"Subject": name,
			"Teacher": subject.Teacher,
			"Room":    subject.Room,
			"Notes":   subject.Notes,
		})
	}
	return export.Dataset{Headers: []string{"Day", "Time", "Subject", "Teacher", "Room", "Notes"}, Rows: rows}
}
