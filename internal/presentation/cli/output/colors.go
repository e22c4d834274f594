// Package output provides terminal output formatting utilities for the CLI.
package output

import (
	"os"
)

// colorsEnabled caches the result of color support detection.
var colorsEnabled *bool

// IsColorSupported determines if color output should be enabled.
// It checks for NO_COLOR environment variable and terminal capability.
func IsColorSupported() bool {
	if colorsEnabled != nil {
		return *colorsEnabled
	}

	enabled := detectColorSupport()
	colorsEnabled = &enabled
	return enabled
}

// detectColorSupport checks environment variables and terminal capabilities.
func detectColorSupport() bool {
	// NO_COLOR takes precedence - if set to any value, disable colors
	// See https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	// FORCE_COLOR forces color output regardless of terminal detection
	if _, exists := os.LookupEnv("FORCE_COLOR"); exists {
		return true
	}

	// Check if stdout is a terminal
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	// Check if it's a character device (terminal)
	if stat.Mode()&os.ModeCharDevice == 0 {
		return false
	}

	// Check TERM environment variable
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}

	return true
}

// ResetColorDetection clears the cached color detection result.
// This is useful for testing or when environment variables change.
func ResetColorDetection() {
	colorsEnabled = nil
}

// SuccessText formats text as a success message (green with checkmark).
func SuccessText(text string) string {
	return string(ColorGreen) + "✓ " + text + string(ColorReset)
}

// ErrorText formats text as an error message (red with X).
func ErrorText(text string) string {
	return string(ColorRed) + "✗ " + text + string(ColorReset)
}
