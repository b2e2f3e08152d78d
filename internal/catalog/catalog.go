// Package catalog reconciles the locale set discovered on Apple's index
// page against the stored catalog and resolves locale display names.
package catalog

import "sort"

// Diff classifies every locale of one reconciliation against the prior
// catalog. The slices are sorted so operator logs and tests are stable.
type Diff struct {
	Added     []string
	Removed   []string
	Updated   []string
	Unchanged []string

	// Catalog is the new locale→URL mapping. The monitor persists it only
	// after the reconciliation succeeded.
	Catalog map[string]string
}

// Changed reports whether the locale set or any URL differs from the prior
// catalog.
func (d Diff) Changed() bool {
	return len(d.Added)+len(d.Removed)+len(d.Updated) > 0
}

// Reconcile classifies fresh against prior. On first run (empty prior)
// every locale is added. The function is idempotent: identical input yields
// identical output.
func Reconcile(fresh, prior map[string]string) Diff {
	d := Diff{Catalog: make(map[string]string, len(fresh))}

	for code, url := range fresh {
		d.Catalog[code] = url
		prevURL, known := prior[code]
		switch {
		case !known:
			d.Added = append(d.Added, code)
		case prevURL != url:
			d.Updated = append(d.Updated, code)
		default:
			d.Unchanged = append(d.Unchanged, code)
		}
	}
	for code := range prior {
		if _, still := fresh[code]; !still {
			d.Removed = append(d.Removed, code)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Updated)
	sort.Strings(d.Unchanged)
	return d
}
