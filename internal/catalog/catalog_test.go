package catalog

import (
	"reflect"
	"testing"
)

func TestReconcileFirstRun(t *testing.T) {
	fresh := map[string]string{
		"en-us": "https://support.apple.com/en-us/100100",
		"es-es": "https://support.apple.com/es-es/100100",
	}

	d := Reconcile(fresh, nil)

	if !reflect.DeepEqual(d.Added, []string{"en-us", "es-es"}) {
		t.Errorf("added = %v", d.Added)
	}
	if len(d.Removed)+len(d.Updated)+len(d.Unchanged) != 0 {
		t.Errorf("first run must classify everything as added: %+v", d)
	}
	if !reflect.DeepEqual(d.Catalog, fresh) {
		t.Errorf("catalog = %v", d.Catalog)
	}
	if !d.Changed() {
		t.Error("first run must report a change")
	}
}

func TestReconcileClassifiesAllFour(t *testing.T) {
	prior := map[string]string{
		"en-us": "https://support.apple.com/en-us/100100",
		"es-es": "https://support.apple.com/es-es/100100",
		"fr-fr": "https://support.apple.com/fr-fr/100100",
	}
	fresh := map[string]string{
		"en-us": "https://support.apple.com/en-us/100100", // unchanged
		"es-es": "https://support.apple.com/es-es/100200", // updated
		"de-de": "https://support.apple.com/de-de/100100", // added
		// fr-fr removed
	}

	d := Reconcile(fresh, prior)

	if !reflect.DeepEqual(d.Added, []string{"de-de"}) {
		t.Errorf("added = %v", d.Added)
	}
	if !reflect.DeepEqual(d.Removed, []string{"fr-fr"}) {
		t.Errorf("removed = %v", d.Removed)
	}
	if !reflect.DeepEqual(d.Updated, []string{"es-es"}) {
		t.Errorf("updated = %v", d.Updated)
	}
	if !reflect.DeepEqual(d.Unchanged, []string{"en-us"}) {
		t.Errorf("unchanged = %v", d.Unchanged)
	}
	if _, ok := d.Catalog["fr-fr"]; ok {
		t.Error("removed locale must not stay in the new catalog")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	fresh := map[string]string{
		"en-us": "https://support.apple.com/en-us/100100",
		"ja-jp": "https://support.apple.com/ja-jp/100100",
	}
	prior := map[string]string{
		"en-us": "https://support.apple.com/en-us/100100",
	}

	first := Reconcile(fresh, prior)
	second := Reconcile(fresh, prior)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical input classified differently:\n%+v\n%+v", first, second)
	}
}

func TestReconcileNoChanges(t *testing.T) {
	m := map[string]string{"en-us": "https://support.apple.com/en-us/100100"}
	d := Reconcile(m, m)
	if d.Changed() {
		t.Errorf("no-op reconciliation reported a change: %+v", d)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"en-us", "English/USA"},
		{"es-es", "Spanish/Spain"},
		{"zh-tw", "Chinese/Taiwan"},
		{"nb-no", "Norwegian Bokmål/Norway"},
		{"xx-zz", "Xx/ZZ"},     // fallback from code parts
		{"weird", "WEIRD"},     // no region part
	}
	for _, c := range cases {
		if got := DisplayName(c.code); got != c.want {
			t.Errorf("DisplayName(%q) = %q, want %q", c.code, got, c.want)
		}
	}
}

func TestNamesMergeKeepsRetiredLocales(t *testing.T) {
	existing := map[string]string{
		"en-us": "English/USA",
		"xx-yy": "Handmade Name", // locale Apple no longer publishes
	}
	catalog := map[string]string{
		"en-us": "https://support.apple.com/en-us/100100",
		"es-es": "https://support.apple.com/es-es/100100",
	}

	names := Names(existing, catalog)

	if names["xx-yy"] != "Handmade Name" {
		t.Error("retired locale name lost on merge")
	}
	if names["es-es"] != "Spanish/Spain" {
		t.Errorf("new locale name = %q", names["es-es"])
	}
	if len(names) != 3 {
		t.Errorf("got %d names, want 3: %v", len(names), names)
	}
}
