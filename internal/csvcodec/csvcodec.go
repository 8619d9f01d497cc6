// Package csvcodec converts between uploaded CSV text and raw rows, and
// serializes stored users back to CSV.
package csvcodec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/user-import-api/internal/models"
)

// ErrInvalidEncoding is returned when the upload is not valid UTF-8
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError reports a malformed CSV document
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid CSV at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("invalid CSV: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes CSV bytes into one RawRow per data line, in file order.
// The first non-blank record is the header and defines the keys. Lines whose cells are all
// blank are skipped, whitespace before a field (quoted or not) is ignored and every header and
// cell is trimmed. Any structural problem fails the whole call.
func Parse(data []byte) ([]models.RawRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // width is checked against the header below
	reader.TrimLeadingSpace = true

	header, _, err := readRecord(reader)
	if err == io.EOF {
		return []models.RawRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows := []models.RawRow{}
	for {
		record, line, err := readRecord(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(header) {
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, got %d", len(header), len(record)),
			}
		}

		row := make(models.RawRow, len(header))
		for i, key := range header {
			row[key] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// readRecord returns the next record with at least one non-blank cell, trimmed,
// together with the line it started on
func readRecord(reader *csv.Reader) ([]string, int, error) {
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil, 0, err
		}
		if err != nil {
			return nil, 0, wrapReadError(err)
		}

		blank := true
		for i, cell := range record {
			record[i] = strings.TrimSpace(cell)
			if record[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		line, _ := reader.FieldPos(0)
		return record, line, nil
	}
}

// Write serializes users as CSV: the export header followed by one line per user.
// Values containing a comma or a double quote are quoted, with quotes doubled.
func Write(w io.Writer, users []*models.User) error {
	writer := NewUserWriter(w)
	for _, user := range users {
		if err := writer.Write(user); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// Serialize returns the CSV export of users as a string
func Serialize(users []*models.User) (string, error) {
	var buf strings.Builder
	if err := Write(&buf, users); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// UserWriter streams users as CSV rows, writing the header before the first row
type UserWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewUserWriter creates a writer over w
func NewUserWriter(w io.Writer) *UserWriter {
	return &UserWriter{w: csv.NewWriter(w)}
}

// Write appends one user row
func (uw *UserWriter) Write(user *models.User) error {
	if err := uw.writeHeader(); err != nil {
		return err
	}
	return uw.w.Write(user.Values())
}

// Flush writes the header if nothing was written yet and flushes buffered output
func (uw *UserWriter) Flush() error {
	if err := uw.writeHeader(); err != nil {
		return err
	}
	uw.w.Flush()
	return uw.w.Error()
}

func (uw *UserWriter) writeHeader() error {
	if uw.wroteHeader {
		return nil
	}
	uw.wroteHeader = true
	return uw.w.Write(models.ExportFields)
}

func wrapReadError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.StartLine, Err: pe.Err}
	}
	return &ParseError{Err: err}
}
