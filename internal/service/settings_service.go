package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

// Settings returns the current settings.
func (s *TimetableService) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.settings)
}

// UpdateSettings applies a partial update and persists the result.
func (s *TimetableService) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	if err := s.validator.Struct(patch); err != nil {
		return models.Settings{}, validationError(err, "invalid settings payload")
	}
	if patch.ClassPeriods != nil {
		if err := validatePeriods(*patch.ClassPeriods); err != nil {
			return models.Settings{}, validationError(err, err.Error())
		}
	}

	s.mu.Lock()
	s.settings = patch.Apply(s.settings)
	snap := s.commitSettingsLocked(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return snap.Settings, nil
}

// ReplaceSettings swaps in a whole settings value.
func (s *TimetableService) ReplaceSettings(ctx context.Context, settings models.Settings) (models.Settings, error) {
	if err := validatePeriods(settings.ClassPeriods); err != nil {
		return models.Settings{}, validationError(err, err.Error())
	}

	s.mu.Lock()
	s.settings = cloneSettings(settings)
	snap := s.commitSettingsLocked(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return snap.Settings, nil
}

// MergeSettings overlays the top-level fields of raw onto the current
// settings without field validation, as imported files carry them. An
// unusable payload leaves settings unchanged and returns false.
func (s *TimetableService) MergeSettings(ctx context.Context, raw json.RawMessage) (models.Settings, bool) {
	s.mu.Lock()
	merged, err := mergeShallow(s.settings, raw)
	if err != nil {
		current := cloneSettings(s.settings)
		s.mu.Unlock()
		s.logger.Warn("imported settings ignored", zap.Error(err))
		return current, false
	}
	s.settings = merged
	snap := s.commitSettingsLocked(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return snap.Settings, true
}

func (s *TimetableService) commitSettingsLocked(ctx context.Context) models.Snapshot {
	s.store.Save(ctx, models.KeySettings, s.settings)
	return s.snapshotLocked()
}

func validatePeriods(p models.ClassPeriods) error {
	for _, group := range [][]models.Period{p.Morning, p.Afternoon} {
		for _, period := range group {
			candidate := models.Subject{Name: "period", StartTime: period.StartTime, EndTime: period.EndTime}
			if err := ValidateSubject(candidate); err != nil {
				return err
			}
		}
	}
	return nil
}

func cloneSettings(in models.Settings) models.Settings {
	out := in
	out.ClassPeriods.Morning = clonePeriods(in.ClassPeriods.Morning)
	out.ClassPeriods.Afternoon = clonePeriods(in.ClassPeriods.Afternoon)
	return out
}

func clonePeriods(in []models.Period) []models.Period {
	if in == nil {
		return nil
	}
	out := make([]models.Period, len(in))
	copy(out, in)
	return out
}
