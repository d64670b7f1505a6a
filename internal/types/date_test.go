package types

import "testing"

func TestDateRoundTrip(t *testing.T) {
	t.Parallel()

	s := "15.08.2024"
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	if got := d.String(); got != s {
		t.Errorf("String() = %q, want %q", got, s)
	}
}

func TestDateOrdering(t *testing.T) {
	t.Parallel()

	d1, _ := ParseDate("01.01.1970")
	d2, _ := ParseDate("01.01.1971")
	d3, _ := ParseDate("01.02.1971")
	if !d1.Less(d2) {
		t.Error("expected 1970 < 1971")
	}
	if !d2.Less(d3) {
		t.Error("expected Jan 1971 < Feb 1971")
	}
	if d3.Less(d1) {
		t.Error("ordering inverted")
	}
}

func TestDateParseMalformed(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "not-a-date", "32.01.2024", "01.13.2024"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q): want error, got nil", s)
		}
	}
}
