package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds board and widget identifiers.
const maxIDLength = 128

// ValidateBoardID validates a board identifier for safety and correctness.
// Board IDs end up in store keys, file names and URL paths, so the rules are
// intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or traversal sequences
//   - No key separators (":") that would break scoped store keys
//   - Maximum length of 128 characters
func ValidateBoardID(id string) error {
	return validateID(ErrCodeInvalidBoard, "board id", id)
}

// ValidateWidgetID validates a widget identifier using the same rules as
// [ValidateBoardID].
func ValidateWidgetID(id string) error {
	return validateID(ErrCodeInvalidWidget, "widget id", id)
}

func validateID(code Code, what, id string) error {
	if id == "" {
		return New(code, "%s cannot be empty", what)
	}

	if len(id) > maxIDLength {
		return New(code, "%s too long (max %d characters)", what, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(code, "%s contains invalid control characters", what)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		":",    // Store key separator
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(code, "%s contains invalid characters: %q", what, pattern)
		}
	}

	return nil
}

// breakpointNameRegex matches breakpoint tier names ("wide", "medium", "xs-2").
var breakpointNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// ValidateBreakpointName validates a breakpoint tier name.
func ValidateBreakpointName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBreakpoint, "breakpoint name cannot be empty")
	}
	if !breakpointNameRegex.MatchString(name) {
		return New(ErrCodeInvalidBreakpoint, "invalid breakpoint name: %q", name)
	}
	return nil
}

// ValidateAddr validates a network listen address of the form host:port.
func ValidateAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "address cannot be empty")
	}
	i := strings.LastIndex(addr, ":")
	if i < 0 || i == len(addr)-1 {
		return New(ErrCodeInvalidConfig, "address must include a port: %q", addr)
	}
	for _, r := range addr[i+1:] {
		if r < '0' || r > '9' {
			return New(ErrCodeInvalidConfig, "address port must be numeric: %q", addr)
		}
	}
	return nil
}
