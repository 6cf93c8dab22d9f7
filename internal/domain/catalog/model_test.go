package catalog

import "testing"

func TestSeriesPrefix(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Penta 1", "Penta"},
		{"Penta 3", "Penta"},
		{"OPV0", "OPV"},
		{"BCG", "BCG"},
		{"Measles 2", "Measles"},
		{"Hep B 0", "Hep B"},
		{"  Penta 2", "Penta"},
	}
	for _, tc := range cases {
		if got := SeriesPrefix(tc.name); got != tc.want {
			t.Errorf("SeriesPrefix(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSeriesPrefix_AllDigits(t *testing.T) {
	if got := SeriesPrefix("123"); got != "123" {
		t.Errorf("expected all-digit name unchanged, got %q", got)
	}
}

func TestMatchesSeries(t *testing.T) {
	v := &VaccineDose{Name: "Penta 2"}
	if !v.MatchesSeries("penta") {
		t.Error("expected case-insensitive match on penta")
	}
	if !v.MatchesSeries("Penta") {
		t.Error("expected match on Penta")
	}
	if v.MatchesSeries("OPV") {
		t.Error("expected no match on OPV")
	}
}
