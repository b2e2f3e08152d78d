// Package store persists every CrazyOnes entity under the shared data
// directory: locale catalogs, per-locale update stores, page fingerprints,
// the inter-process trigger document, subscribers, and the delivery ledger.
//
// The data directory is the only coupling surface between the monitor and
// the bot. The monitor exclusively writes the catalog, fingerprints, locale
// stores, and trigger; the bot exclusively writes subscribers and the
// delivery ledger. Everything is JSON, written atomically, so a reader in
// the other process never observes a partial document.
package store

import (
	"os"
	"path/filepath"

	"crazyones/pkg/jsonfile"
)

// Paths resolves the documented layout of the data directory. Both binaries
// build their stores from the same Paths so the on-disk contract cannot
// drift between them.
type Paths struct {
	DataDir string
}

// LanguageURLs is the locale→URL catalog maintained by the monitor.
func (p Paths) LanguageURLs() string {
	return filepath.Join(p.DataDir, "language_urls.json")
}

// LanguageNames is the locale→display-name file regenerated whenever the
// locale set changes.
func (p Paths) LanguageNames() string {
	return filepath.Join(p.DataDir, "language_names.json")
}

// Tracking is the URL→fingerprint ledger used to skip unchanged pages.
func (p Paths) Tracking() string {
	return filepath.Join(p.DataDir, "updates_tracking.json")
}

// Trigger is the transient document announcing newly observed update ids.
func (p Paths) Trigger() string {
	return filepath.Join(p.DataDir, "new_updates_trigger.json")
}

// UpdatesDir holds one JSON array per locale.
func (p Paths) UpdatesDir() string {
	return filepath.Join(p.DataDir, "updates")
}

// UpdatesFile is the store for a single locale.
func (p Paths) UpdatesFile(locale string) string {
	return filepath.Join(p.UpdatesDir(), locale+".json")
}

// SubscribersFile holds the bot's subscriber records.
func (p Paths) SubscribersFile() string {
	return filepath.Join(p.DataDir, "subscribers.json")
}

// LedgerFile holds the per-subscriber delivery ledger.
func (p Paths) LedgerFile() string {
	return filepath.Join(p.DataDir, "delivery_ledger.json")
}

// PIDFile is the monitor's single-instance lock.
func (p Paths) PIDFile() string {
	return filepath.Join(p.DataDir, "crazyones.pid")
}

// LoadCatalog reads the locale catalog. A missing file is an empty catalog;
// the monitor creates it on the first successful reconciliation.
func LoadCatalog(p Paths) (map[string]string, error) {
	var catalog map[string]string
	if err := jsonfile.Read(p.LanguageURLs(), &catalog); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return catalog, nil
}

// LoadNames reads the display-name file. A missing file yields an empty map.
func LoadNames(p Paths) (map[string]string, error) {
	var names map[string]string
	if err := jsonfile.Read(p.LanguageNames(), &names); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return names, nil
}
