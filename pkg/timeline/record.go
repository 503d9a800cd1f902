package timeline

import "strings"

// Record is one data row keyed by lowercased column name.
type Record struct {
	// Line is the 1-based source line of the row, or 0 when unknown.
	Line   int
	fields map[string]string
}

// NewRecord pairs header names with values. Missing trailing values read as
// empty and extra values are ignored. Names and values are trimmed.
func NewRecord(line int, header, values []string) Record {
	r := Record{Line: line, fields: make(map[string]string, len(header))}
	for i, name := range header {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.Set(name, v)
	}
	return r
}

// Set stores v under the column name.
func (r *Record) Set(name, v string) {
	if r.fields == nil {
		r.fields = make(map[string]string)
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return
	}
	r.fields[key] = strings.TrimSpace(v)
}

// Get returns the value of the first alias with a non-empty value.
func (r Record) Get(aliases ...string) string {
	for _, a := range aliases {
		if v := r.fields[strings.ToLower(a)]; v != "" {
			return v
		}
	}
	return ""
}

// Len returns the number of columns in the record.
func (r Record) Len() int { return len(r.fields) }
