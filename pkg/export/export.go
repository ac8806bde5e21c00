// Package export renders tabular catalog data into downloadable documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Format names a supported document format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// Table is an ordered set of rows keyed by column header.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a Table into document bytes.
type Renderer interface {
	Render(t Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// For returns the renderer registered for f.
func For(f Format) Renderer {
	if f == FormatPDF {
		return PDF{}
	}
	return CSV{}
}

// CSV renders tables as RFC 4180 text.
type CSV struct{}

func (CSV) ContentType() string { return "text/csv" }
func (CSV) Extension() string   { return "csv" }

func (CSV) Render(t Table) ([]byte, error) {
	if len(t.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(pad(row, len(t.Headers))); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders tables as a landscape A4 grid.
type PDF struct{}

func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Extension() string   { return "pdf" }

func (PDF) Render(t Table) ([]byte, error) {
	if len(t.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if t.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, t.Title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (width - left - right) / float64(len(t.Headers))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range t.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range t.Rows {
		for _, value := range pad(row, len(t.Headers)) {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row[:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
