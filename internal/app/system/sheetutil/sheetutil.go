// Package sheetutil parses member spreadsheets (CSV and XLSX) into
// normalized rows. It never touches the database; callers resolve and
// insert the rows afterward, one at a time.
package sheetutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Upload size and row limits for spreadsheet processing.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 5000
)

var (
	ErrTooManyRows       = fmt.Errorf("spreadsheet exceeds %d rows", MaxRows)
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format: use .csv or .xlsx")
)

// MemberRow is one normalized person row pulled from a spreadsheet. All
// fields are trimmed; empty means the column was absent or blank.
type MemberRow struct {
	Name        string
	FounderName string
	Email       string
	Phone       string
	Company     string
	Bio         string
	Website     string
	RoleTag     string
}

func (r MemberRow) empty() bool {
	return r == MemberRow{}
}

// headerAliases maps recognized column headings (lower-cased, trimmed) to
// MemberRow fields. Organizers export from several tools, so each field
// accepts the headings those tools actually produce.
var headerAliases = map[string]string{
	"name":          "name",
	"full name":     "name",
	"attendee":      "name",
	"attendee name": "name",
	"founder":       "founder",
	"founder name":  "founder",
	"email":         "email",
	"e-mail":        "email",
	"email address": "email",
	"phone":         "phone",
	"phone number":  "phone",
	"mobile":        "phone",
	"contact":       "phone",
	"company":       "company",
	"organization":  "company",
	"organisation":  "company",
	"startup":       "company",
	"bio":           "bio",
	"description":   "bio",
	"about":         "bio",
	"website":       "website",
	"url":           "website",
	"site":          "website",
	"role":          "role",
	"title":         "role",
	"role tag":      "role",
}

// ParseMembers dispatches on the uploaded filename's extension.
func ParseMembers(filename string, r io.Reader) ([]MemberRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseMembersCSV(r)
	case ".xlsx":
		return ParseMembersXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseMembersCSV reads all rows from r. A header row is detected by
// recognized column names and used to map columns; without one the
// positional layout name, email, phone, company is assumed. Fully empty
// rows are skipped.
func ParseMembersCSV(r io.Reader) ([]MemberRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var raw [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(raw) > MaxRows {
			return nil, ErrTooManyRows
		}
		raw = append(raw, rec)
	}
	return assemble(raw)
}

// ParseMembersXLSX reads the first sheet of an XLSX workbook.
func ParseMembersXLSX(r io.Reader) ([]MemberRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("xlsx has no sheets")
	}
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(raw) > MaxRows+1 {
		return nil, ErrTooManyRows
	}
	return assemble(raw)
}

// assemble maps raw cell rows to MemberRows using a detected header, or
// the positional fallback when the first row names no known columns.
func assemble(raw [][]string) ([]MemberRow, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	cols, hasHeader := detectHeader(raw[0])
	if hasHeader {
		raw = raw[1:]
	} else {
		cols = map[int]string{0: "name", 1: "email", 2: "phone", 3: "company"}
	}

	var rows []MemberRow
	for _, rec := range raw {
		row := buildRow(rec, cols)
		if row.empty() {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) > MaxRows {
		return nil, ErrTooManyRows
	}
	return rows, nil
}

// detectHeader reports the column→field mapping when the first row looks
// like a header (at least one recognized heading).
func detectHeader(first []string) (map[int]string, bool) {
	cols := make(map[int]string)
	for i, cell := range first {
		key := strings.ToLower(strings.TrimSpace(stripBOM(cell)))
		if field, ok := headerAliases[key]; ok {
			cols[i] = field
		}
	}
	if len(cols) == 0 {
		return nil, false
	}
	return cols, true
}

func buildRow(rec []string, cols map[int]string) MemberRow {
	var row MemberRow
	for i, cell := range rec {
		field, ok := cols[i]
		if !ok {
			continue
		}
		v := strings.TrimSpace(stripBOM(cell))
		if v == "" {
			continue
		}
		switch field {
		case "name":
			row.Name = v
		case "founder":
			row.FounderName = v
		case "email":
			row.Email = v
		case "phone":
			row.Phone = v
		case "company":
			row.Company = v
		case "bio":
			row.Bio = v
		case "website":
			row.Website = v
		case "role":
			row.RoleTag = v
		}
	}
	return row
}

// stripBOM drops a leading UTF-8 byte-order mark; Excel CSV exports start
// with one.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
