// Package csv extracts tabular files as "header: value" lines.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles comma and tab separated files.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".csv", ".tsv"}
}

// Extract renders every row as one paragraph of "header: value" lines so
// each chunk keeps the column names next to the values.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	reader := csv.NewReader(bytes.NewReader(raw.Content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if raw.Extension() == ".tsv" {
		reader.Comma = '\t'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	rows := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, formatRow(headers, record))
	}

	if len(rows) == 0 {
		return strings.Join(headers, ", "), nil
	}
	return strings.Join(rows, "\n\n"), nil
}

func formatRow(headers, record []string) string {
	lines := make([]string, 0, len(record))
	for i, value := range record {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		header := fmt.Sprintf("column %d", i+1)
		if i < len(headers) && strings.TrimSpace(headers[i]) != "" {
			header = strings.TrimSpace(headers[i])
		}
		lines = append(lines, header+": "+value)
	}
	return strings.Join(lines, "\n")
}
