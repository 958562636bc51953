package service

import (
	"awi/core"
	"awi/models"
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// FolderSettingsService resolves and persists per-folder stretch settings
type FolderSettingsService struct {
	db *gorm.DB
}

// NewFolderSettingsService constructs a folder settings service
func NewFolderSettingsService(db *gorm.DB) *FolderSettingsService {
	return &FolderSettingsService{db: db}
}

// Resolution is the outcome of resolving settings for a folder.
type Resolution struct {
	Settings        models.FolderStretchSettings
	EffectiveFolder string
	RequestedFolder string
	UsedDefault     bool
}

// Resolve returns the most specific settings that apply to requested:
// a row for the folder itself, or the deepest ancestor row marked
// apply_to_subfolders, or DefaultSettings when neither exists.
func (s *FolderSettingsService) Resolve(ctx context.Context, requested string) (*Resolution, error) {
	requested = models.NormalizeFolderPath(requested)
	candidates := models.AncestorPaths(requested)

	// Candidates form a single ancestor chain, so their lengths are distinct
	// and LENGTH() orders them by depth.
	var row models.FolderStretchSettings
	err := s.db.WithContext(ctx).
		Where("folder_path IN ?", candidates).
		Where("(apply_to_subfolders = ? OR folder_path = ?)", true, requested).
		Order("LENGTH(folder_path) DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Resolution{
			Settings:        models.DefaultSettings(),
			EffectiveFolder: models.RootFolder,
			RequestedFolder: requested,
			UsedDefault:     true,
		}, nil
	}
	if err != nil {
		return nil, core.NewStorageError("failed to query folder settings", err)
	}

	return &Resolution{
		Settings:        row,
		EffectiveFolder: row.FolderPath,
		RequestedFolder: requested,
	}, nil
}

// SaveResult is the persisted row and whether it was newly created.
type SaveResult struct {
	Settings models.FolderStretchSettings
	Created  bool
}

// Save validates and coerces in, then inserts or updates the row for its folder.
func (s *FolderSettingsService) Save(ctx context.Context, in models.FolderSettingsInput) (*SaveResult, error) {
	folder, ok := folderPathValue(in.FolderPath)
	if !ok {
		return nil, core.NewValidationError("Invalid request data. folder_path is required.")
	}

	row := CoerceSettings(in)
	row.FolderPath = models.NormalizeFolderPath(folder)

	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FolderStretchSettings
		err := tx.Where("folder_path = ?", row.FolderPath).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, core.NewStorageError("failed to save folder settings", err)
	}

	return &SaveResult{Settings: row, Created: created}, nil
}

// numericField is one entry of the coercion table for numeric settings.
type numericField struct {
	name  string
	def   float64
	value func(*models.FolderSettingsInput) any
	set   func(*models.FolderStretchSettings, float64)
}

var numericFields = []numericField{
	{"linear_low_percent", models.DefaultLinearLowPercent,
		func(in *models.FolderSettingsInput) any { return in.LinearLowPercent },
		func(s *models.FolderStretchSettings, v float64) { s.LinearLowPercent = v }},
	{"linear_high_percent", models.DefaultLinearHighPercent,
		func(in *models.FolderSettingsInput) any { return in.LinearHighPercent },
		func(s *models.FolderStretchSettings, v float64) { s.LinearHighPercent = v }},
	{"stf_shadow_clip", models.DefaultSTFShadowClip,
		func(in *models.FolderSettingsInput) any { return in.STFShadowClip },
		func(s *models.FolderStretchSettings, v float64) { s.STFShadowClip = v }},
	{"stf_highlight_clip", models.DefaultSTFHighlightClip,
		func(in *models.FolderSettingsInput) any { return in.STFHighlightClip },
		func(s *models.FolderStretchSettings, v float64) { s.STFHighlightClip = v }},
	{"stf_midtones_balance", models.DefaultSTFMidtonesBalance,
		func(in *models.FolderSettingsInput) any { return in.STFMidtonesBalance },
		func(s *models.FolderStretchSettings, v float64) { s.STFMidtonesBalance = v }},
	{"stf_strength", models.DefaultSTFStrength,
		func(in *models.FolderSettingsInput) any { return in.STFStrength },
		func(s *models.FolderStretchSettings, v float64) { s.STFStrength = v }},
}

// CoerceSettings applies the field defaults and coercions to in.
// FolderPath is left empty for the caller to fill.
func CoerceSettings(in models.FolderSettingsInput) models.FolderStretchSettings {
	out := models.DefaultSettings()
	out.FolderPath = ""

	if st, ok := in.StretchType.(string); ok && models.StretchType(st).Valid() {
		out.StretchType = models.StretchType(st)
	}

	for _, f := range numericFields {
		v, ok := numericValue(f.value(&in))
		if !ok {
			v = f.def
		}
		f.set(&out, v)
	}

	out.ApplyToSubfolders = Truthy(in.ApplyToSubfolders, true)
	return out
}

func folderPathValue(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// numericValue accepts finite numbers and decimal numeric strings.
func numericValue(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.ContainsAny(s, "xX_") {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Truthy reports the loose truthiness of a decoded JSON value; nil yields def.
func Truthy(v any, def bool) bool {
	switch t := v.(type) {
	case nil:
		return def
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
