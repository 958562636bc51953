package cli

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSetArgs(t *testing.T) {
	payload, err := parseSetArgs("/M31", []string{
		"stretch_type=pixinsight_stf",
		"STF_STRENGTH=0.4",
		"apply_to_subfolders=false",
		"linear_low_percent=abc",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"folder_path":         "/M31",
		"stretch_type":        "pixinsight_stf",
		"stf_strength":        0.4,
		"apply_to_subfolders": false,
		"linear_low_percent":  "abc",
	}, payload)
}

func TestParseSetArgsErrors(t *testing.T) {
	_, err := parseSetArgs("/", []string{"nokey"})
	assert.Error(t, err)
	_, err = parseSetArgs("/", []string{"color=red"})
	assert.Error(t, err)
	_, err = parseSetArgs("/", []string{"apply_to_subfolders=maybe"})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestBannerLines(t *testing.T) {
	lines := bannerLines("Settings for /M31 ✓", 30)
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, 30, utf8.RuneCountInString(l))
	}
	assert.Contains(t, lines[1], "Settings for /M31 ✓")

	wide := bannerLines("a title much longer than the requested width", 12)
	assert.Equal(t, utf8.RuneCountInString(wide[0]), utf8.RuneCountInString(wide[1]))
}
