package store

import (
	"fmt"
	"os"
	"sort"

	"crazyones/pkg/dateparse"
	"crazyones/pkg/jsonfile"
)

// SecurityUpdate is one persisted row of a locale's releases table. IDs are
// assigned per locale, start at 1, and are never reused for different
// content.
type SecurityUpdate struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Target string `json:"target"`
	Date   string `json:"date"`
}

// Incoming is a parsed table row after date normalization, ready to merge
// into a locale store. Date is ISO 8601 or the unparsed-date sentinel.
type Incoming struct {
	Name   string
	URL    string
	Target string
	Date   string
}

// identity is the content key that decides whether a fetched row is the same
// update as a stored record. IDs stick to identities, not to table positions.
type identity struct {
	name   string
	target string
	date   string
}

// Updates manages the per-locale JSON stores. Reads go to disk every time so
// the bot always sees the monitor's latest atomic write.
type Updates struct {
	paths Paths
}

// NewUpdates returns a store rooted at the data directory's updates/ folder.
func NewUpdates(paths Paths) *Updates {
	return &Updates{paths: paths}
}

// Load returns the stored records for a locale in stored order. A locale
// with no store yet is an empty slice, not an error.
func (u *Updates) Load(locale string) ([]SecurityUpdate, error) {
	var records []SecurityUpdate
	if err := jsonfile.Read(u.paths.UpdatesFile(locale), &records); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s store: %w", locale, err)
	}
	return records, nil
}

// Recent returns the first n stored records, which the monitor keeps in
// source order (newest first on Apple's pages).
func (u *Updates) Recent(locale string, n int) ([]SecurityUpdate, error) {
	records, err := u.Load(locale)
	if err != nil {
		return nil, err
	}
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// Select returns the records matching ids in ascending id order. Ids absent
// from the store are skipped; the caller decides whether that is worth a log
// line.
func (u *Updates) Select(locale string, ids []int) ([]SecurityUpdate, error) {
	records, err := u.Load(locale)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]SecurityUpdate, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	picked := make([]SecurityUpdate, 0, len(sorted))
	for _, id := range sorted {
		if r, ok := byID[id]; ok {
			picked = append(picked, r)
		}
	}
	return picked, nil
}

// Apply merges freshly parsed rows into a locale store and returns the ids
// of records never seen before, sorted ascending.
//
// A row whose (name, target, date) identity matches a stored record keeps
// that record's id; its URL is refreshed when newly present, and a stored
// sentinel date is replaced when the row's date now parses. Unmatched rows
// get the next id above every id ever used. Stored records no longer on the
// page are retained after the current entries unless truncate is set.
func (u *Updates) Apply(locale string, rows []Incoming, truncate bool) ([]int, error) {
	existing, err := u.Load(locale)
	if err != nil {
		return nil, err
	}

	byIdentity := make(map[identity]SecurityUpdate, len(existing))
	nextID := 0
	for _, rec := range existing {
		byIdentity[identity{rec.Name, rec.Target, rec.Date}] = rec
		if rec.ID > nextID {
			nextID = rec.ID
		}
	}

	consumed := make(map[int]bool, len(rows))
	merged := make([]SecurityUpdate, 0, len(existing)+len(rows))
	var novelty []int

	for _, row := range rows {
		rec, matched := byIdentity[identity{row.Name, row.Target, row.Date}]
		if !matched && row.Date != dateparse.Sentinel {
			// A record stored before its date grammar was understood
			// matches on (name, target) alone and gets its date fixed.
			rec, matched = byIdentity[identity{row.Name, row.Target, dateparse.Sentinel}]
		}
		if matched && !consumed[rec.ID] {
			if row.URL != "" {
				rec.URL = row.URL
			}
			if rec.Date == dateparse.Sentinel && row.Date != dateparse.Sentinel {
				rec.Date = row.Date
			}
			consumed[rec.ID] = true
			merged = append(merged, rec)
			continue
		}
		nextID++
		fresh := SecurityUpdate{
			ID:     nextID,
			Name:   row.Name,
			URL:    row.URL,
			Target: row.Target,
			Date:   row.Date,
		}
		consumed[fresh.ID] = true
		novelty = append(novelty, fresh.ID)
		merged = append(merged, fresh)
	}

	if !truncate {
		for _, rec := range existing {
			if !consumed[rec.ID] {
				merged = append(merged, rec)
			}
		}
	}

	if err := jsonfile.Write(u.paths.UpdatesFile(locale), merged); err != nil {
		return nil, fmt.Errorf("write %s store: %w", locale, err)
	}
	sort.Ints(novelty)
	return novelty, nil
}
