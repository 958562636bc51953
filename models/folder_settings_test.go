package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFolderPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"  ", "/"},
		{"M31", "/M31"},
		{"/M31/", "/M31"},
		{" /M31/Ha ", "/M31/Ha"},
		{"//M31//Ha//", "/M31/Ha"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFolderPath(tt.in), "input %q", tt.in)
	}
}

func TestAncestorPaths(t *testing.T) {
	assert.Equal(t, []string{"/"}, AncestorPaths("/"))
	assert.Equal(t, []string{"/A", "/"}, AncestorPaths("/A"))
	assert.Equal(t,
		[]string{"/2024/M31/Ha", "/2024/M31", "/2024", "/"},
		AncestorPaths("2024/M31/Ha/"),
	)
}

func TestStretchTypeValid(t *testing.T) {
	assert.True(t, StretchLinear.Valid())
	assert.True(t, StretchPixInsightSTF.Valid())
	assert.True(t, StretchCustom.Valid())
	assert.False(t, StretchType("bogus").Valid())
	assert.False(t, StretchType("").Valid())
}

func TestDefaultSettings(t *testing.T) {
	d := DefaultSettings()
	assert.Equal(t, "/", d.FolderPath)
	assert.Equal(t, StretchLinear, d.StretchType)
	assert.Equal(t, 0.5, d.LinearLowPercent)
	assert.Equal(t, 99.5, d.LinearHighPercent)
	assert.Equal(t, 0.5, d.STFMidtonesBalance)
	assert.Equal(t, 1.0, d.STFStrength)
	assert.True(t, d.ApplyToSubfolders)
}
