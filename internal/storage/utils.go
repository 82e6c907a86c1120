package storage

import (
	"fmt"
	"regexp"
	"time"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// BuildFileName generates a stored filename from the original upload name.
// A millisecond timestamp prefix keeps concurrent uploads of the same name
// from colliding, and whitespace is replaced so the name is URL-safe.
func BuildFileName(originalName string) string {
	safeName := whitespacePattern.ReplaceAllString(originalName, "_")
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), safeName)
}
