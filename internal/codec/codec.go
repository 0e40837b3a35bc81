package codec

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Encode serializes records into one flat tabular file. The header row lists
// the field names; every data cell is written quoted, with embedded quotes
// doubled. Fields absent from a record serialize as the empty string.
func Encode(header []string, records []Record) []byte {
	var buf bytes.Buffer
	for i, h := range header {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(escapeHeader(h))
	}
	buf.WriteByte('\n')
	for _, rec := range records {
		for i, h := range header {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(rec[h].Cell(), `"`, `""`))
			buf.WriteByte('"')
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// escapeHeader quotes a header field only when it needs it.
func escapeHeader(h string) string {
	if strings.ContainsAny(h, ",\"\n\r") {
		return `"` + strings.ReplaceAll(h, `"`, `""`) + `"`
	}
	return h
}

// Cell returns the canonical textual form of the value for one file cell:
// strings verbatim, numbers in shortest decimal form, lists and maps as
// compact JSON.
func (v Value) Cell() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindList, KindMap:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return v.str
	}
}

// FormatNumber renders a number in the shortest decimal form that parses
// back to the same float64.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Decode parses a flat tabular file into its header and records. Each cell
// is classified by content: JSON-looking cells are parsed as structured
// values (falling back to the raw string on parse failure), numeric-looking
// cells become numbers, everything else stays a string. Empty input decodes
// to an empty header with no records.
//
// Classification is lossy: a string cell that happens to look numeric
// ("007") decodes as the number 7. Callers that must keep such values as
// strings have to carry them inside a list or map cell.
func Decode(data []byte) ([]string, []Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = ParseCell(row[i])
			} else {
				rec[h] = String("")
			}
		}
		records = append(records, rec)
	}
	return header, records, nil
}

// ParseCell classifies one cell's text into a Value.
func ParseCell(s string) Value {
	if s == "" {
		return String("")
	}
	switch s[0] {
	case '[':
		var list []interface{}
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return FromAny(list)
		}
		return String(s)
	case '{':
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			return FromAny(obj)
		}
		return String(s)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number(f)
	}
	return String(s)
}
