package scrape

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoTable reports a page without a recognizable releases table. Callers
// treat it as a parse failure: the locale stays unchanged and the
// fingerprint is not advanced, so the next tick retries.
var ErrNoTable = errors.New("no releases table found")

// localeRe matches Apple's locale tags: a 2-3 letter language subtag and a
// 2 letter region subtag.
var localeRe = regexp.MustCompile(`^[a-z]{2,3}-[a-z]{2}$`)

// ValidLocale reports whether code is a well-formed xx-yy locale tag.
func ValidLocale(code string) bool {
	return localeRe.MatchString(code)
}

// ParseLocaleIndex extracts alternate-locale links from the page head:
// every <link rel="alternate" hreflang="xx-yy" href=…> whose tag matches
// the locale pattern. Relative hrefs are resolved against base. When the
// page declares the same locale twice with different URLs the last
// occurrence wins; the overwritten locales are returned so the caller can
// record the tie-break in the operator log.
func ParseLocaleIndex(body []byte, base *url.URL) (map[string]string, []string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse index html: %w", err)
	}

	urls := make(map[string]string)
	var duplicates []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "link" {
			var rel, hreflang, href string
			for _, a := range n.Attr {
				switch a.Key {
				case "rel":
					rel = a.Val
				case "hreflang":
					hreflang = strings.ToLower(a.Val)
				case "href":
					href = a.Val
				}
			}
			if rel == "alternate" && href != "" && localeRe.MatchString(hreflang) {
				resolved := resolveHref(base, href)
				if prev, ok := urls[hreflang]; ok && prev != resolved {
					duplicates = append(duplicates, hreflang)
				}
				urls[hreflang] = resolved
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return urls, duplicates, nil
}

// Row is one data row of a locale's releases table. The date is kept as the
// raw locale-formatted string; conversion to ISO happens downstream so the
// failure can be logged with its locale.
type Row struct {
	Name    string
	URL     string
	Target  string
	RawDate string
}

// ParseReleases locates the security-updates table and extracts its rows in
// source order. The table is identified locale-independently: among all
// tables on the page, the one with the most three-cell data rows wins, with
// a link in the first cell as the tie-breaker. Header rows (th) are skipped.
func ParseReleases(body []byte, base *url.URL) ([]Row, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	table := findReleasesTable(doc)
	if table == nil {
		return nil, ErrNoTable
	}

	var rows []Row
	for _, tr := range collectRows(table) {
		if hasHeaderCell(tr) {
			continue
		}
		cells := collectCells(tr)
		if len(cells) < 3 {
			continue
		}

		name := innerText(cells[0])
		if name == "" {
			continue
		}

		row := Row{
			Name:    name,
			Target:  innerText(cells[1]),
			RawDate: innerText(cells[2]),
		}
		if href := firstAnchorHref(cells[0]); href != "" {
			row.URL = resolveHref(base, href)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// findReleasesTable scores every table by the number of rows with exactly
// three data cells, preferring tables whose rows link out of the first cell.
func findReleasesTable(doc *html.Node) *html.Node {
	var best *html.Node
	bestScore, bestLinked := 0, 0

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			score, linked := scoreTable(n)
			if score > bestScore || (score == bestScore && linked > bestLinked) {
				best, bestScore, bestLinked = n, score, linked
			}
			return // nested tables count toward the outer one
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if bestScore == 0 {
		return nil
	}
	return best
}

func scoreTable(table *html.Node) (score, linked int) {
	for _, tr := range collectRows(table) {
		if hasHeaderCell(tr) {
			continue
		}
		cells := collectCells(tr)
		if len(cells) != 3 {
			continue
		}
		score++
		if firstAnchorHref(cells[0]) != "" {
			linked++
		}
	}
	return score, linked
}

func collectRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func collectCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, c)
		}
	}
	return cells
}

func hasHeaderCell(tr *html.Node) bool {
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "th" {
			return true
		}
	}
	return false
}

// innerText returns the whitespace-collapsed text content of a node.
func innerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// firstAnchorHref returns the href of the first anchor under n, or "".
func firstAnchorHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, a := range n.Attr {
			if a.Key == "href" {
				return a.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href := firstAnchorHref(c); href != "" {
			return href
		}
	}
	return ""
}

// resolveHref makes href absolute against base; a nil base or unparseable
// href is returned as-is.
func resolveHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
