package store

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"crazyones/pkg/jsonfile"
)

// ErrTriggerNotReady reports a trigger document that exists but cannot be
// decoded yet. The bot treats it as "retry next poll" rather than a fault,
// since the monitor's atomic rename makes a torn read vanishingly rare and
// always transient.
var ErrTriggerNotReady = errors.New("trigger document not ready")

// Trigger is the transient handoff from monitor to bot: a JSON object
// mapping locale to the ids that tick newly observed, ascending. The monitor
// writes it at most once per tick; the bot deletes it after fan-out.
type Trigger struct {
	paths Paths
}

// NewTrigger returns the trigger bound to the shared data directory.
func NewTrigger(paths Paths) *Trigger {
	return &Trigger{paths: paths}
}

// Write persists the novelty map atomically. Locales with no new ids are
// dropped; if nothing remains, no file is written and any previous trigger
// is left alone.
func (t *Trigger) Write(novelty map[string][]int) error {
	doc := make(map[string][]int, len(novelty))
	for locale, ids := range novelty {
		if len(ids) == 0 {
			continue
		}
		sorted := append([]int(nil), ids...)
		sort.Ints(sorted)
		doc[locale] = sorted
	}
	if len(doc) == 0 {
		return nil
	}
	if err := jsonfile.Write(t.paths.Trigger(), doc); err != nil {
		return fmt.Errorf("write trigger: %w", err)
	}
	return nil
}

// Read returns the trigger contents, or (nil, nil) when no trigger exists.
// A file that exists but fails to decode returns ErrTriggerNotReady.
func (t *Trigger) Read() (map[string][]int, error) {
	var doc map[string][]int
	if err := jsonfile.Read(t.paths.Trigger(), &doc); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrTriggerNotReady, err)
	}
	return doc, nil
}

// Delete removes the trigger. Deleting an already-absent trigger is fine.
func (t *Trigger) Delete() error {
	if err := jsonfile.Remove(t.paths.Trigger()); err != nil {
		return fmt.Errorf("delete trigger: %w", err)
	}
	return nil
}
