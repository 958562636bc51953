package models

import (
	"strings"
	"time"
)

// StretchType selects the tone-mapping transform used for previews.
type StretchType string

const (
	StretchLinear        StretchType = "linear"
	StretchPixInsightSTF StretchType = "pixinsight_stf"
	StretchCustom        StretchType = "custom"
)

// Valid reports whether t is one of the accepted stretch types.
func (t StretchType) Valid() bool {
	switch t {
	case StretchLinear, StretchPixInsightSTF, StretchCustom:
		return true
	}
	return false
}

// RootFolder is the canonical path of the archive root.
const RootFolder = "/"

// Default values applied when a folder (and its ancestors) has no override,
// and substituted for unusable fields on save.
const (
	DefaultLinearLowPercent   = 0.5
	DefaultLinearHighPercent  = 99.5
	DefaultSTFShadowClip      = 0.0
	DefaultSTFHighlightClip   = 0.0
	DefaultSTFMidtonesBalance = 0.5
	DefaultSTFStrength        = 1.0
)

// FolderStretchSettings holds the display stretch overrides for one folder.
// Zero values are meaningful here, so no column carries a gorm default.
type FolderStretchSettings struct {
	ID                 uint        `gorm:"primaryKey" json:"id,omitempty"`
	FolderPath         string      `gorm:"uniqueIndex;not null;size:1024" json:"folder_path"`
	StretchType        StretchType `gorm:"size:32;not null" json:"stretch_type"`
	LinearLowPercent   float64     `gorm:"not null" json:"linear_low_percent"`
	LinearHighPercent  float64     `gorm:"not null" json:"linear_high_percent"`
	STFShadowClip      float64     `gorm:"column:stf_shadow_clip;not null" json:"stf_shadow_clip"`
	STFHighlightClip   float64     `gorm:"column:stf_highlight_clip;not null" json:"stf_highlight_clip"`
	STFMidtonesBalance float64     `gorm:"column:stf_midtones_balance;not null" json:"stf_midtones_balance"`
	STFStrength        float64     `gorm:"column:stf_strength;not null" json:"stf_strength"`
	ApplyToSubfolders  bool        `gorm:"not null" json:"apply_to_subfolders"`
	CreatedAt          time.Time   `json:"-"`
	UpdatedAt          time.Time   `json:"-"`
}

// TableName pins the table name used by the indexer.
func (FolderStretchSettings) TableName() string {
	return "folder_stretch_settings"
}

// DefaultSettings returns the settings used when no row applies.
func DefaultSettings() FolderStretchSettings {
	return FolderStretchSettings{
		FolderPath:         RootFolder,
		StretchType:        StretchLinear,
		LinearLowPercent:   DefaultLinearLowPercent,
		LinearHighPercent:  DefaultLinearHighPercent,
		STFShadowClip:      DefaultSTFShadowClip,
		STFHighlightClip:   DefaultSTFHighlightClip,
		STFMidtonesBalance: DefaultSTFMidtonesBalance,
		STFStrength:        DefaultSTFStrength,
		ApplyToSubfolders:  true,
	}
}

// FolderSettingsInput is the POST payload for folder settings.
// Fields other than FolderPath are loosely typed on the wire and coerced on save.
type FolderSettingsInput struct {
	FolderPath         any `json:"folder_path"`
	StretchType        any `json:"stretch_type"`
	LinearLowPercent   any `json:"linear_low_percent"`
	LinearHighPercent  any `json:"linear_high_percent"`
	STFShadowClip      any `json:"stf_shadow_clip"`
	STFHighlightClip   any `json:"stf_highlight_clip"`
	STFMidtonesBalance any `json:"stf_midtones_balance"`
	STFStrength        any `json:"stf_strength"`
	ApplyToSubfolders  any `json:"apply_to_subfolders"`
}

// NormalizeFolderPath returns the canonical form of a folder path:
// a leading slash, no empty segments and no trailing slash except for root.
func NormalizeFolderPath(p string) string {
	segments := SplitFolderPath(p)
	if len(segments) == 0 {
		return RootFolder
	}
	return "/" + strings.Join(segments, "/")
}

// SplitFolderPath returns the non-empty segments of p.
func SplitFolderPath(p string) []string {
	parts := strings.Split(strings.TrimSpace(p), "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// AncestorPaths returns p and all of its ancestors, root included,
// ordered from most to least specific.
func AncestorPaths(p string) []string {
	segments := SplitFolderPath(p)
	paths := make([]string, 0, len(segments)+1)
	for i := len(segments); i > 0; i-- {
		paths = append(paths, "/"+strings.Join(segments[:i], "/"))
	}
	return append(paths, RootFolder)
}
