// Package roster loads employer names from a tabular roster file.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go-jobalert/internal/models"

	"github.com/xuri/excelize/v2"
)

const DefaultColumn = "EMPLOYER_NAME"

var ErrColumnNotFound = errors.New("employer column not found")

// Source produces the employers for one discovery run.
type Source interface {
	Employers(ctx context.Context) ([]models.Employer, error)
}

// FileSource reads a .csv or .xlsx roster with a header row.
type FileSource struct {
	Path   string
	Column string
}

func NewFileSource(path, column string) *FileSource {
	if column == "" {
		column = DefaultColumn
	}
	return &FileSource{Path: path, Column: column}
}

func (s *FileSource) Employers(_ context.Context) ([]models.Employer, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, s.Column)
	default:
		return ReadCSV(f, s.Column)
	}
}

func ReadCSV(r io.Reader, column string) ([]models.Employer, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster csv: %w", err)
	}
	return fromRows(rows, column)
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(r io.Reader, column string) ([]models.Employer, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("roster workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return fromRows(rows, column)
}

// fromRows treats rows[0] as the header. Rows with an empty name are skipped;
// duplicate names are kept.
func fromRows(rows [][]string, column string) ([]models.Employer, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s (roster is empty)", ErrColumnNotFound, column)
	}

	idx := -1
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if strings.EqualFold(h, column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}

	employers := make([]models.Employer, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[idx])
		if name == "" {
			continue
		}
		employers = append(employers, models.Employer{Name: name})
	}
	return employers, nil
}
