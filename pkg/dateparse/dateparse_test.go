package dateparse

import "testing"

func TestParseEnglish(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"11 Dec 2023", "2023-12-11"},
		{"11 December 2023", "2023-12-11"},
		{"1 Jan 2024", "2024-01-01"},
		{"22 January 2024", "2024-01-22"},
		{"January 22, 2024", "2024-01-22"},
	}
	for _, c := range cases {
		got, ok := Parse(c.raw)
		if !ok || got != c.want {
			t.Errorf("Parse(%q) = %q, %v; want %q, true", c.raw, got, ok, c.want)
		}
	}
}

func TestParseSpanish(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"09 de enero de 2024", "2024-01-09"},
		{"22 de enero de 2024", "2024-01-22"},
		{"11 dic 2023", "2023-12-11"},
		{"11 de diciembre de 2023", "2023-12-11"},
	}
	for _, c := range cases {
		got, ok := Parse(c.raw)
		if !ok || got != c.want {
			t.Errorf("Parse(%q) = %q, %v; want %q, true", c.raw, got, ok, c.want)
		}
	}
}

func TestParseFrench(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"11 déc. 2023", "2023-12-11"},
		{"11 décembre 2023", "2023-12-11"},
		{"22 janvier 2024", "2024-01-22"},
	}
	for _, c := range cases {
		got, ok := Parse(c.raw)
		if !ok || got != c.want {
			t.Errorf("Parse(%q) = %q, %v; want %q, true", c.raw, got, ok, c.want)
		}
	}
}

func TestParseGerman(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"11. Dez. 2023", "2023-12-11"},
		{"11. Dezember 2023", "2023-12-11"},
		{"22. Januar 2024", "2024-01-22"},
	}
	for _, c := range cases {
		got, ok := Parse(c.raw)
		if !ok || got != c.want {
			t.Errorf("Parse(%q) = %q, %v; want %q, true", c.raw, got, ok, c.want)
		}
	}
}

func TestParseOtherLatinLocales(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"22 gennaio 2024", "2024-01-22"},   // it-it
		{"22 de janeiro de 2024", "2024-01-22"}, // pt-br
		{"22 januari 2024", "2024-01-22"},   // nl-nl
		{"11 mrt. 2024", "2024-03-11"},      // nl-nl abbreviated
	}
	for _, c := range cases {
		got, ok := Parse(c.raw)
		if !ok || got != c.want {
			t.Errorf("Parse(%q) = %q, %v; want %q, true", c.raw, got, ok, c.want)
		}
	}
}

func TestParseCJK(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"2024年1月22日", "2024-01-22"},
		{"2023年12月11日", "2023-12-11"},
		{"2024년 1월 22일", "2024-01-22"},
	}
	for _, c := range cases {
		got, ok := Parse(c.raw)
		if !ok || got != c.want {
			t.Errorf("Parse(%q) = %q, %v; want %q, true", c.raw, got, ok, c.want)
		}
	}
}

func TestParseISOPassThrough(t *testing.T) {
	for _, raw := range []string{"2024-01-09", "2023-12-11"} {
		got, ok := Parse(raw)
		if !ok || got != raw {
			t.Errorf("Parse(%q) = %q, %v; want pass-through", raw, got, ok)
		}
	}
}

func TestParseNonBreakingSpace(t *testing.T) {
	got, ok := Parse("11 déc. 2023")
	if !ok || got != "2023-12-11" {
		t.Errorf("Parse with NBSP = %q, %v; want 2023-12-11, true", got, ok)
	}
}

func TestParseFailures(t *testing.T) {
	cases := []string{
		"",
		"Not a valid date",
		"32 January 2024",  // day out of range
		"2024-13-01",       // month out of range
		"January 2024",     // no day
		"11 12 2023",       // no month name
		"11 Foo 2023",      // unknown month
		"11 Dec Dec 2023",  // duplicate month
	}
	for _, raw := range cases {
		got, ok := Parse(raw)
		if ok {
			t.Errorf("Parse(%q) = %q, true; want failure", raw, got)
		}
		if got != Sentinel {
			t.Errorf("Parse(%q) failure returned %q, want sentinel %q", raw, got, Sentinel)
		}
	}
}
