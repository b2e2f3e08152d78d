package store

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"crazyones/pkg/jsonfile"
)

// Ledger records which update ids were already delivered to which chat for
// which locale. Fan-out consults it before sending and appends after every
// successful send, which bounds duplicate delivery to the one message in
// flight when the process dies.
//
// On disk it is a nested object keyed by decimal chat id, then locale, with
// ascending id arrays.
type Ledger struct {
	mu      sync.Mutex
	paths   Paths
	entries map[string]map[string][]int
}

// LoadLedger reads the ledger. A missing file is an empty ledger.
func LoadLedger(paths Paths) (*Ledger, error) {
	l := &Ledger{paths: paths, entries: map[string]map[string][]int{}}
	if err := jsonfile.Read(paths.LedgerFile(), &l.entries); err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("load delivery ledger: %w", err)
	}
	if l.entries == nil {
		l.entries = map[string]map[string][]int{}
	}
	return l, nil
}

// Delivered returns the set of ids already sent to a chat for a locale.
func (l *Ledger) Delivered(chatID int64, locale string) map[int]bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := map[int]bool{}
	for _, id := range l.entries[key(chatID)][locale] {
		out[id] = true
	}
	return out
}

// Append marks one id delivered and flushes the ledger. Appending an id that
// is already recorded changes nothing.
func (l *Ledger) Append(chatID int64, locale string, id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key(chatID)
	if l.entries[k] == nil {
		l.entries[k] = map[string][]int{}
	}
	ids := l.entries[k][locale]
	for _, have := range ids {
		if have == id {
			return nil
		}
	}
	ids = append(ids, id)
	sort.Ints(ids)
	l.entries[k][locale] = ids
	if err := jsonfile.Write(l.paths.LedgerFile(), l.entries); err != nil {
		return fmt.Errorf("write delivery ledger: %w", err)
	}
	return nil
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
