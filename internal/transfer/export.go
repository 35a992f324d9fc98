package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
)

// displayDate is how dates appear in the lossy formats.
const displayDate = "1/2/2006"

var tableHeaders = []string{"Title", "Type", "Status", "Description", "Created", "Last Activity"}

type Options struct {
	Format          Format
	IncludeArchived bool
	IncludeNotes    bool
	// UserRole overrides the role recorded in the JSON header.
	UserRole string
	Now      time.Time
}

// Document is the JSON backup shape.
type Document struct {
	ExportedAt    time.Time        `json:"exportedAt"`
	UserRole      string           `json:"userRole"`
	TotalProjects int              `json:"totalProjects"`
	Projects      []domain.Project `json:"projects"`
}

// Payload is a rendered export ready to be written or served.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders projects in opts.Format. It never changes its input.
func Export(projects []domain.Project, opts Options) (Payload, error) {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	selected := selectProjects(projects, opts)

	var (
		data []byte
		err  error
	)
	switch opts.Format {
	case FormatJSON:
		data, err = exportJSON(projects, selected, opts)
	case FormatCSV:
		data, err = exportCSV(selected)
	case FormatMarkdown:
		data = exportMarkdown(selected, opts)
	case FormatXLSX:
		data, err = exportXLSX(selected, opts)
	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		Filename:    Filename(opts.Format, opts.Now),
		ContentType: opts.Format.ContentType(),
		Data:        data,
	}, nil
}

func selectProjects(projects []domain.Project, opts Options) []domain.Project {
	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if !opts.IncludeArchived && p.Status == domain.StatusArchived {
			continue
		}
		p = p.Clone()
		p.OwnerID = ""
		if !opts.IncludeNotes {
			p.Notes = ""
		}
		out = append(out, p)
	}
	return out
}

func exportJSON(all, selected []domain.Project, opts Options) ([]byte, error) {
	role := opts.UserRole
	if role == "" && len(all) > 0 {
		role = all[0].Role
	}
	if role == "" {
		role = "unknown"
	}
	doc := Document{
		ExportedAt:    opts.Now,
		UserRole:      role,
		TotalProjects: len(selected),
		Projects:      selected,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return data, nil
}

func exportCSV(selected []domain.Project) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(tableHeaders); err != nil {
		return nil, err
	}
	for _, p := range selected {
		row := []string{
			p.Title, p.Type, string(p.Status), p.Description,
			p.CreatedAt.Format(displayDate), p.LastActivity.Format(displayDate),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv export: %w", err)
	}
	return buf.Bytes(), nil
}

func exportMarkdown(selected []domain.Project, opts Options) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Project Backup - %s\n\n", opts.Now.Format(displayDate))
	fmt.Fprintf(&b, "**Total Projects:** %d\n\n", len(selected))
	for _, p := range selected {
		fmt.Fprintf(&b, "## %s\n", p.Title)
		fmt.Fprintf(&b, "- **Type:** %s\n", p.Type)
		fmt.Fprintf(&b, "- **Status:** %s\n", p.Status)
		fmt.Fprintf(&b, "- **Created:** %s\n", p.CreatedAt.Format(displayDate))
		fmt.Fprintf(&b, "- **Last Activity:** %s\n", p.LastActivity.Format(displayDate))
		if p.Description != "" {
			fmt.Fprintf(&b, "- **Description:** %s\n", p.Description)
		}
		if opts.IncludeNotes && p.Notes != "" {
			fmt.Fprintf(&b, "- **Notes:** %s\n", p.Notes)
		}
		b.WriteString("\n---\n\n")
	}
	return []byte(b.String())
}

const xlsxSheet = "Projects"

func exportXLSX(selected []domain.Project, opts Options) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := append([]string{}, tableHeaders...)
	if opts.IncludeNotes {
		headers = append(headers, "Notes")
	}
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}

	for i, p := range selected {
		row := []any{
			p.Title, p.Type, string(p.Status), p.Description,
			p.CreatedAt.Format(time.DateOnly), p.LastActivity.Format(time.DateOnly),
		}
		if opts.IncludeNotes {
			row = append(row, p.Notes)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode xlsx export: %w", err)
	}
	return buf.Bytes(), nil
}
