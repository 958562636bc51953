package cli

import (
	"strings"
	"unicode/utf8"
)

const bannerDefaultWidth = 60

// PrintBanner renders a boxed, highlighted title using the default width.
func PrintBanner(title string) {
	PrintBannerWidth(title, bannerDefaultWidth)
}

// PrintBannerWidth renders a boxed title at least width columns wide.
func PrintBannerWidth(title string, width int) {
	for _, line := range bannerLines(title, width) {
		headingColor.Println(line)
	}
}

func bannerLines(title string, width int) []string {
	if width < 10 {
		width = bannerDefaultWidth
	}

	inner := max(width-2, utf8.RuneCountInString(title)+2)
	edge := strings.Repeat("═", inner)
	return []string{
		"╔" + edge + "╗",
		"║" + padCenter(title, inner) + "║",
		"╚" + edge + "╝",
	}
}

func padCenter(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return string([]rune(text)[:width])
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-n-left)
}
