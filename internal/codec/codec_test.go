package codec

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	header := []string{"id", "itemName", "currentQuantity", "tags", "extra"}
	records := []Record{
		{
			"id":              String("1700000000000-abc12345"),
			"itemName":        String("Basmati Rice"),
			"currentQuantity": Number(12.5),
			"tags":            List(String("grocery"), Number(3)),
			"extra":           Map(map[string]Value{"note": String("keep dry"), "rank": Number(1)}),
		},
		{
			"id":              String("1700000000001-def67890"),
			"itemName":        String(`Old Monk "XXX" Rum`),
			"currentQuantity": Number(4),
			"tags":            String(""),
			"extra":           String(""),
		},
	}

	gotHeader, gotRecords, err := Decode(Encode(header, records))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(gotHeader) != len(header) {
		t.Fatalf("header length: got %d want %d", len(gotHeader), len(header))
	}
	for i, h := range header {
		if gotHeader[i] != h {
			t.Fatalf("header[%d]: got %q want %q", i, gotHeader[i], h)
		}
	}
	if len(gotRecords) != len(records) {
		t.Fatalf("records: got %d want %d", len(gotRecords), len(records))
	}
	for i, want := range records {
		for k, v := range want {
			if !gotRecords[i][k].Equal(v) {
				t.Fatalf("record %d field %q: got %#v want %#v", i, k, gotRecords[i][k], v)
			}
		}
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \n  "} {
		header, records, err := Decode([]byte(in))
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if header != nil || records != nil {
			t.Fatalf("decode %q: expected empty result, got %v / %v", in, header, records)
		}
	}
}

func TestDecodeMissingCellsAreEmptyStrings(t *testing.T) {
	data := []byte("id,name,qty\n\"1\",\"rice\"\n")
	_, records, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0]["qty"].IsEmpty() {
		t.Fatalf("missing cell should decode to empty string, got %#v", records[0]["qty"])
	}
}

func TestParseCellClassification(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"", String("")},
		{"plain text", String("plain text")},
		{"12.5", Number(12.5)},
		{" 42 ", Number(42)},
		// Zero-padded codes decode as numbers. Lossy, but it is the
		// documented behavior of content-based classification.
		{"007", Number(7)},
		{`["a",2]`, List(String("a"), Number(2))},
		{`{"a":1}`, Map(map[string]Value{"a": Number(1)})},
		// Malformed JSON falls back to the raw string.
		{`[not json`, String(`[not json`)},
		{`{broken`, String(`{broken`)},
		// Non-finite parses are kept as strings so they survive a trip
		// through JSON responses.
		{"NaN", String("NaN")},
		{"Inf", String("Inf")},
	}
	for _, tc := range tests {
		got := ParseCell(tc.in)
		if !got.Equal(tc.want) {
			t.Fatalf("ParseCell(%q): got %#v want %#v", tc.in, got, tc.want)
		}
	}
}

func TestEncodeQuotesEveryDataCell(t *testing.T) {
	out := string(Encode([]string{"name"}, []Record{{"name": String("a,b")}}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %q", out)
	}
	if lines[1] != `"a,b"` {
		t.Fatalf("data cell not quoted: %q", lines[1])
	}
}

func TestEncodeHeaderEscaping(t *testing.T) {
	out := Encode([]string{`odd"name`, "with,comma"}, nil)
	header, _, err := Decode(append(out, []byte("\"x\",\"y\"\n")...))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if header[0] != `odd"name` || header[1] != "with,comma" {
		t.Fatalf("header escaping broken: %#v", header)
	}
}

func TestNumberFormattingRoundTrips(t *testing.T) {
	for _, f := range []float64{0, 20, 12.5, 22.727272727272727, 1e7, 0.001, -3.25} {
		got := ParseCell(FormatNumber(f))
		n, ok := got.AsNumber()
		if !ok || n != f {
			t.Fatalf("FormatNumber(%v) -> %q -> %#v, want same number", f, FormatNumber(f), got)
		}
	}
}

func TestJSONCellSurvivesQuoteDoubling(t *testing.T) {
	rec := Record{"consumedItems": List(
		Map(map[string]Value{"itemName": String("Rice"), "quantity": Number(4)}),
	)}
	_, records, err := Decode(Encode([]string{"consumedItems"}, []Record{rec}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	list, ok := records[0]["consumedItems"].AsList()
	if !ok || len(list) != 1 {
		t.Fatalf("expected 1-element list, got %#v", records[0]["consumedItems"])
	}
	m, _ := list[0].AsMap()
	if m["itemName"].AsString() != "Rice" || m["quantity"].NumberOr(0) != 4 {
		t.Fatalf("nested object mangled: %#v", m)
	}
}
