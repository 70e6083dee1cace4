package models

import "encoding/json"

// Snapshot storage keys.
const (
	KeySubjects = "timetable_subjects"
	KeySettings = "timetable_settings"
)

// ExportVersion is written into every JSON export envelope.
const ExportVersion = "1.0"

// ExportFormat selects the serializer used by an export.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatPDF  ExportFormat = "pdf"
)

// ExportData is the portable JSON export envelope.
type ExportData struct {
	Version    string    `json:"version"`
	ExportDate string    `json:"exportDate"`
	Subjects   []Subject `json:"subjects"`
	Settings   *Settings `json:"settings,omitempty"`
}

// ImportResult is the outcome of parsing an import file. Settings are kept
// raw and merged over current settings without field validation.
type ImportResult struct {
	Subjects []Subject       `json:"subjects"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// ExportFile is a rendered export ready for delivery.
type ExportFile struct {
	Filename    string       `json:"filename"`
	ContentType string       `json:"contentType"`
	Format      ExportFormat `json:"format"`
	Data        []byte       `json:"-"`
}

// DeliveryMethod tells how an export reached the user.
type DeliveryMethod string

const (
	DeliveryDownload DeliveryMethod = "download"
	DeliveryShare    DeliveryMethod = "share"
)

// Delivery describes a completed export hand-off. Share deliveries carry a
// signed, expiring URL to the cached file.
type Delivery struct {
	Method    DeliveryMethod `json:"method"`
	Filename  string         `json:"filename"`
	URL       string         `json:"url,omitempty"`
	ExpiresAt string         `json:"expiresAt,omitempty"`
}

// Snapshot is the full timetable state handed to subscribers.
type Snapshot struct {
	Subjects []Subject `json:"subjects"`
	Settings Settings  `json:"settings"`
}

// ImportSummary reports what an import changed.
type ImportSummary struct {
	Format          ExportFormat `json:"format"`
	Subjects        int          `json:"subjects"`
	SettingsApplied bool         `json:"settingsApplied"`
}
