// Package shared provides common utility functions used across multiple
// packages in the tinyprotocol codebase.
package shared

import (
	"fmt"
	"strings"
)

// NormalizeClassName converts a dotted Java class name into the
// slash-separated internal form used by every mapping table.
func NormalizeClassName(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), ".", "/")
}

// SimpleClassName returns the last path segment of an internal class
// name, keeping nested class suffixes intact.
func SimpleClassName(value string) string {
	if idx := strings.LastIndex(value, "/"); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}
