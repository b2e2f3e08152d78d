// Package dateparse converts localized Apple release-date strings into
// ISO 8601 (YYYY-MM-DD).
//
// Apple renders the release date in each locale's own display format:
// "11 Dec 2023", "22 de enero de 2024", "11 déc. 2023", "11. Dezember 2023",
// "2024年1月22日". One merged month table covers every Latin-script locale;
// month names from different languages never collide onto different months.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel is stored as the date of a record whose raw date string could not
// be parsed. Later fetches may refresh it once the string becomes parseable.
const Sentinel = "0000-00-00"

var (
	isoRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	// Japanese and Chinese render dates as YYYY年M月D日.
	cjkRe = regexp.MustCompile(`^(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日$`)
	// Korean renders dates as YYYY년 M월 D일.
	koreanRe = regexp.MustCompile(`^(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일$`)
)

// filler tokens appear between day, month, and year in some locales
// ("22 de enero de 2024") and carry no date information.
var filler = map[string]bool{
	"de": true, "del": true, "di": true, "van": true,
}

// Parse converts raw into ISO 8601. The second return is false when no
// grammar matched; the first return is then Sentinel.
func Parse(raw string) (string, bool) {
	s := normalize(raw)
	if s == "" {
		return Sentinel, false
	}

	if m := isoRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if validMonthDay(month, day) {
			return s, true
		}
		return Sentinel, false
	}

	for _, re := range []*regexp.Regexp{cjkRe, koreanRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			return isoDate(year, month, day)
		}
	}

	return parseTokens(s)
}

// parseTokens handles the word-based grammars: one day number, one month
// name, one 4-digit year, in any order, with optional filler words.
func parseTokens(s string) (string, bool) {
	var (
		day, month, year int
	)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,")
		if tok == "" || filler[tok] {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			switch {
			case len(tok) == 4 && year == 0:
				year = n
			case len(tok) <= 2 && day == 0:
				day = n
			default:
				return Sentinel, false
			}
			continue
		}
		if m, ok := months[tok]; ok && month == 0 {
			month = m
			continue
		}
		return Sentinel, false
	}
	if day == 0 || month == 0 || year == 0 {
		return Sentinel, false
	}
	return isoDate(year, month, day)
}

func isoDate(year, month, day int) (string, bool) {
	if !validMonthDay(month, day) {
		return Sentinel, false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// normalize collapses whitespace, including the non-breaking variants Apple
// uses between date parts in some locales.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// months maps lowercase month tokens (full and abbreviated, periods already
// stripped) to month numbers. Covers English, Spanish, French, German,
// Italian, Portuguese, and Dutch, the Latin-script locales Apple publishes.
var months = map[string]int{
	// January
	"january": 1, "jan": 1, "enero": 1, "ene": 1, "janvier": 1, "janv": 1,
	"januar": 1, "jän": 1, "gennaio": 1, "gen": 1, "janeiro": 1, "januari": 1,
	// February
	"february": 2, "feb": 2, "febrero": 2, "février": 2, "fevrier": 2,
	"févr": 2, "fevr": 2, "februar": 2, "febbraio": 2, "fevereiro": 2,
	"fev": 2, "februari": 2,
	// March
	"march": 3, "mar": 3, "marzo": 3, "mars": 3, "märz": 3, "maerz": 3,
	"mrz": 3, "março": 3, "marco": 3, "maart": 3, "mrt": 3,
	// April
	"april": 4, "apr": 4, "abril": 4, "abr": 4, "avril": 4, "avr": 4,
	"aprile": 4,
	// May
	"may": 5, "mayo": 5, "mai": 5, "maggio": 5, "mag": 5, "maio": 5, "mei": 5,
	// June
	"june": 6, "jun": 6, "junio": 6, "juin": 6, "juni": 6, "giugno": 6,
	"giu": 6, "junho": 6,
	// July
	"july": 7, "jul": 7, "julio": 7, "juillet": 7, "juil": 7, "juli": 7,
	"luglio": 7, "lug": 7, "julho": 7,
	// August
	"august": 8, "aug": 8, "agosto": 8, "ago": 8, "août": 8, "aout": 8,
	"augustus": 8,
	// September
	"september": 9, "sep": 9, "sept": 9, "septiembre": 9, "setiembre": 9,
	"septembre": 9, "settembre": 9, "set": 9, "setembro": 9,
	// October
	"october": 10, "oct": 10, "octubre": 10, "octobre": 10, "oktober": 10,
	"okt": 10, "ottobre": 10, "ott": 10, "outubro": 10, "out": 10,
	// November
	"november": 11, "nov": 11, "noviembre": 11, "novembre": 11, "novembro": 11,
	// December
	"december": 12, "dec": 12, "diciembre": 12, "dic": 12, "décembre": 12,
	"decembre": 12, "déc": 12, "dezember": 12, "dez": 12, "dicembre": 12,
	"dezembro": 12,
}
