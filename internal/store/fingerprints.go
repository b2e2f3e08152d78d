package store

import (
	"fmt"
	"os"

	"crazyones/pkg/jsonfile"
)

// Fingerprints is the URL→SHA-256 ledger that lets a tick skip parsing
// pages whose bytes did not change. The monitor loads it at tick start,
// updates entries only after a locale's rows were parsed and persisted, and
// saves it once at tick end. An aborted tick leaves the file untouched, so
// the next tick reprocesses everything it skipped.
type Fingerprints struct {
	paths   Paths
	digests map[string]string
}

// LoadFingerprints reads the tracking file. A missing file is an empty
// ledger, which makes the first tick treat every page as changed.
func LoadFingerprints(paths Paths) (*Fingerprints, error) {
	f := &Fingerprints{paths: paths, digests: map[string]string{}}
	if err := jsonfile.Read(paths.Tracking(), &f.digests); err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("load tracking: %w", err)
	}
	if f.digests == nil {
		f.digests = map[string]string{}
	}
	return f, nil
}

// Get returns the stored digest for a URL.
func (f *Fingerprints) Get(url string) (string, bool) {
	d, ok := f.digests[url]
	return d, ok
}

// Put records a digest in memory; Save persists the whole ledger.
func (f *Fingerprints) Put(url, digest string) {
	f.digests[url] = digest
}

// Save writes the ledger atomically.
func (f *Fingerprints) Save() error {
	if err := jsonfile.Write(f.paths.Tracking(), f.digests); err != nil {
		return fmt.Errorf("write tracking: %w", err)
	}
	return nil
}
