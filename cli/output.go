package cli

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.FgHiBlack)
)

func printError(err error) {
	color.Red("Error: %v", err)
}

func printSuccess(format string, args ...any) {
	successColor.Printf("✓ "+format+"\n", args...)
}

func printWarn(format string, args ...any) {
	warnColor.Printf(format+"\n", args...)
}

func printDim(format string, args ...any) {
	dimColor.Printf(format+"\n", args...)
}

// usage prints a command usage hint
func usage(text string) {
	fmt.Println("Usage: " + text)
}
