package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	errs "github.com/matzehuels/chronoline/pkg/errors"
	"github.com/matzehuels/chronoline/pkg/timeline"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a header row followed by data rows.
//
// Line endings may be LF, CRLF or bare CR. Quoted fields may contain commas,
// newlines and "" escapes; stray quotes inside unquoted fields are kept
// literally. Rows may be shorter or longer than the header. Rows whose values
// are all blank are skipped. Header names and values are trimmed.
//
// Empty input yields no records and no error.
func ParseCSV(r io.Reader) ([]timeline.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	data = normalizeNewlines(data)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read csv header")
	}

	var records []timeline.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read csv")
		}
		if blank(row) {
			continue
		}
		line, _ := cr.FieldPos(0)
		records = append(records, timeline.NewRecord(line, header, row))
	}
	return records, nil
}

// normalizeNewlines rewrites CRLF and bare CR as LF.
func normalizeNewlines(data []byte) []byte {
	if !bytes.ContainsRune(data, '\r') {
		return data
	}
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
