// Package transfer renders the project collection to portable files and reads
// the JSON backup back in.
package transfer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
)

var (
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrInvalidPayload = errors.New("invalid import data")
)

// ParseFormat accepts a format name or file extension. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	default:
		return string(f)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatMarkdown:
		return "text/markdown"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Filename is the dated download name, e.g. projects-backup-2024-03-05.json.
func Filename(f Format, date time.Time) string {
	return fmt.Sprintf("projects-backup-%s.%s", date.Format(time.DateOnly), f.Extension())
}
