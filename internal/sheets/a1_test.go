package sheets

import "testing"

func TestParseA1(t *testing.T) {
	cases := []struct {
		in   string
		want A1Range
	}{
		{"BUS!A1:D2", A1Range{Sheet: "BUS", StartCol: 1, StartRow: 1, EndCol: 4, EndRow: 2}},
		{"BUS!D2", A1Range{Sheet: "BUS", StartCol: 4, StartRow: 2, EndCol: 4, EndRow: 2}},
		{"BUS!B5:B116", A1Range{Sheet: "BUS", StartCol: 2, StartRow: 5, EndCol: 2, EndRow: 116}},
		{"'Bus Line''s'!A5:C", A1Range{Sheet: "Bus Line's", StartCol: 1, StartRow: 5, EndCol: 3}},
		{"B:B", A1Range{StartCol: 2, StartRow: 1, EndCol: 2}},
		{"Sheet1!AA10:AB11", A1Range{Sheet: "Sheet1", StartCol: 27, StartRow: 10, EndCol: 28, EndRow: 11}},
	}
	for _, tc := range cases {
		got, err := ParseA1(tc.in)
		if err != nil {
			t.Errorf("ParseA1(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseA1(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseA1Invalid(t *testing.T) {
	for _, in := range []string{"", "BUS!", "BUS!D", "BUS!D2:A1", "BUS!A0", "BUS!1A"} {
		if _, err := ParseA1(in); err == nil {
			t.Errorf("ParseA1(%q) expected error", in)
		}
	}
}

func TestRangeDimensions(t *testing.T) {
	r, _ := ParseA1("BUS!A1:D2")
	if r.Width() != 4 || r.Height() != 2 {
		t.Errorf("A1:D2 dims = %dx%d", r.Width(), r.Height())
	}
	open, _ := ParseA1("BUS!A5:C")
	if open.Height() != 0 {
		t.Errorf("open range height = %d", open.Height())
	}
}

func TestColumnName(t *testing.T) {
	for col, want := range map[int]string{1: "A", 4: "D", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"} {
		if got := ColumnName(col); got != want {
			t.Errorf("ColumnName(%d) = %q, want %q", col, got, want)
		}
	}
}
