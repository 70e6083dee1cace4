package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
	"github.com/noah-isme/timetable-organizer/pkg/storage"
)

type failingStorage struct{}

func (failingStorage) Save(filename string, data []byte) (string, error) {
	return "", errors.New("read-only file system")
}

func (failingStorage) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (failingStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	return nil, nil
}

func newExportServiceForTest(t *testing.T, native bool) (*ExportService, *TimetableService) {
	t.Helper()
	timetable, _, _ := newTimetableForTest(t)
	in := subjectInput("Toán", 0, "07:00", "07:45")
	in.Teacher = "Cô Lan"
	_, err := timetable.AddSubject(context.Background(), in)
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(timetable, store, signer, ExportConfig{Native: native, APIPrefix: "/api/v1"}, NewMetricsService(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 9, 1, 10, 0, 0, 0, time.Local) }
	return svc, timetable
}

func TestExportJSONEnvelope(t *testing.T) {
	svc, timetable := newExportServiceForTest(t, false)

	file, err := svc.Export(models.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "timetable-2024-09-01.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "{\n  \"version\": \"1.0\""))

	var envelope models.ExportData
	require.NoError(t, json.Unmarshal(file.Data, &envelope))
	assert.Equal(t, "2024-09-01", envelope.ExportDate)
	assert.Equal(t, timetable.Subjects(), envelope.Subjects)
	require.NotNil(t, envelope.Settings)
	assert.Equal(t, timetable.Settings(), *envelope.Settings)

	result, err := ParseJSON(file.Data)
	require.NoError(t, err)
	assert.Equal(t, timetable.Subjects(), result.Subjects)
}

func TestExportCSVAndPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t, false)

	file, err := svc.Export(models.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "timetable-2024-09-01.csv", file.Filename)
	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,day,startTime,endTime,teacher,room,notes,tags,color", lines[0])
	assert.Equal(t, "Toán,0,07:00,07:45,Cô Lan,,,,#3b82f6", lines[1])

	file, err = svc.Export(models.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))

	_, err = svc.Export("docx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestDeliverDownloadOnWeb(t *testing.T) {
	svc, _ := newExportServiceForTest(t, false)
	file, err := svc.Export(models.FormatJSON)
	require.NoError(t, err)

	delivery, err := svc.Deliver(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDownload, delivery.Method)
	assert.Empty(t, delivery.URL)
}

func TestDeliverShareOnNative(t *testing.T) {
	svc, _ := newExportServiceForTest(t, true)
	file, err := svc.Export(models.FormatJSON)
	require.NoError(t, err)

	delivery, err := svc.Deliver(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryShare, delivery.Method)
	require.True(t, strings.HasPrefix(delivery.URL, "/api/v1/share/"))
	assert.NotEmpty(t, delivery.ExpiresAt)

	token := strings.TrimPrefix(delivery.URL, "/api/v1/share/")
	f, name, err := svc.OpenShared(token)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "timetable-2024-09-01.json", name)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, file.Data, data)

	_, _, err = svc.OpenShared(token + "x")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidToken))
}

func TestDeliverShareKeepsEarlierSameDayLinks(t *testing.T) {
	ctx := context.Background()
	svc, timetable := newExportServiceForTest(t, true)

	first, err := svc.Export(models.FormatJSON)
	require.NoError(t, err)
	firstDelivery, err := svc.Deliver(ctx, first)
	require.NoError(t, err)

	_, err = timetable.AddSubject(ctx, subjectInput("Lý", 2, "09:00", "09:45"))
	require.NoError(t, err)
	second, err := svc.Export(models.FormatJSON)
	require.NoError(t, err)
	secondDelivery, err := svc.Deliver(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, first.Filename, second.Filename)
	assert.Equal(t, first.Filename, firstDelivery.Filename)
	assert.NotEqual(t, firstDelivery.URL, secondDelivery.URL)

	for _, tc := range []struct {
		delivery *models.Delivery
		want     []byte
	}{{firstDelivery, first.Data}, {secondDelivery, second.Data}} {
		f, name, err := svc.OpenShared(strings.TrimPrefix(tc.delivery.URL, "/api/v1/share/"))
		require.NoError(t, err)
		data, err := io.ReadAll(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, tc.want, data)
		assert.Equal(t, first.Filename, name)
	}
}

func TestDeliverShareFailureIsGeneric(t *testing.T) {
	svc, _ := newExportServiceForTest(t, true)
	svc.storage = failingStorage{}
	file, err := svc.Export(models.FormatCSV)
	require.NoError(t, err)

	_, err = svc.Deliver(context.Background(), file)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrShareFailed))
	assert.Equal(t, "could not share file", appErrors.FromError(err).Message)
}

func TestExportCleanup(t *testing.T) {
	svc, _ := newExportServiceForTest(t, true)
	file, err := svc.Export(models.FormatCSV)
	require.NoError(t, err)
	_, err = svc.Deliver(context.Background(), file)
	require.NoError(t, err)

	removed, err := svc.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = svc.Cleanup(-1)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
