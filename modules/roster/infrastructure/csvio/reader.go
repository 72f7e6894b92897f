// Package csvio parses delimited roster files into normalized user records.
//
// Incoming csv structure: lastName;firstName;userId;email;organisation;role
// (an optional seventh column carries a target group code).
package csvio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
)

const (
	colLastName = iota
	colFirstName
	colUserID
	colEmail
	colOrganisation
	colRole
	colTargetGroupCode
)

// Reader streams UserRecords off a delimited input. It must be consumed in
// input order: the last-name carry-forward depends on it.
type Reader struct {
	csv        *csv.Reader
	headerRows int
	skipped    int
	line       int

	// most recent non-blank last name, carried into rows that leave the
	// first field blank (multi-row entries sharing one surname)
	lastSeenLastName string
}

func NewReader(r io.Reader, delimiter rune, headerRows int) *Reader {
	br := stripUTF8BOM(bufio.NewReader(r))
	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false
	return &Reader{
		csv:        cr,
		headerRows: headerRows,
	}
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

// Read returns the next normalized record, io.EOF at end of input, or a
// *roster.ParseError when the underlying stream is malformed.
func (r *Reader) Read() (roster.UserRecord, error) {
	for {
		fields, err := r.csv.Read()
		if err != nil {
			if err == io.EOF {
				return roster.UserRecord{}, io.EOF
			}
			return roster.UserRecord{}, &roster.ParseError{Line: r.line + 1, Err: err}
		}
		r.line++
		if r.skipped < r.headerRows {
			r.skipped++
			continue
		}
		return r.normalize(fields), nil
	}
}

func (r *Reader) normalize(fields []string) roster.UserRecord {
	if field(fields, colLastName) != "" {
		r.lastSeenLastName = field(fields, colLastName)
	}
	return roster.UserRecord{
		LastName:        r.lastSeenLastName,
		FirstName:       field(fields, colFirstName),
		UserID:          field(fields, colUserID),
		Email:           field(fields, colEmail),
		Organisation:    field(fields, colOrganisation),
		Role:            strings.ToLower(field(fields, colRole)),
		TargetGroupCode: field(fields, colTargetGroupCode),
	}
}

// ReadAll collects the whole stream in input order. Any parse error discards
// the partial batch.
func (r *Reader) ReadAll() ([]roster.UserRecord, error) {
	var batch []roster.UserRecord
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return batch, nil
		}
		if err != nil {
			return nil, err
		}
		batch = append(batch, rec)
	}
}

// field tolerates short rows: absent columns read as "".
func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
