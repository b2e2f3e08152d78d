// Package i18n renders the bot's user-facing text from per-language
// translation catalogs.
//
// Catalogs ship as flat JSON files named <lang>.json, one key per message,
// with positional {0}, {1}, ... placeholders. Lookup falls back from the
// requested language to another catalog sharing its base language, then to
// en-us, and finally to the raw key so a missing translation degrades into
// something greppable rather than an empty message.
package i18n

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"crazyones/pkg/jsonfile"
)

// DefaultLang is the catalog of last resort. It ships with the binary and
// must define every key.
const DefaultLang = "en-us"

// Catalog holds the loaded translation tables.
type Catalog struct {
	langs map[string]map[string]string
	log   *slog.Logger
}

// New builds a catalog from in-memory tables, keyed by language tag.
func New(langs map[string]map[string]string) *Catalog {
	return &Catalog{langs: langs, log: slog.Default()}
}

// Load reads every *.json file in dir as a language catalog named after the
// file. A directory without an en-us catalog is rejected since fallback
// depends on it.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}
	langs := map[string]map[string]string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(e.Name(), ".json")
		var table map[string]string
		if err := jsonfile.Read(filepath.Join(dir, e.Name()), &table); err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", lang, err)
		}
		langs[lang] = table
	}
	if _, ok := langs[DefaultLang]; !ok {
		return nil, fmt.Errorf("catalog dir %s has no %s.json", dir, DefaultLang)
	}
	return New(langs), nil
}

// Langs returns the loaded language tags, sorted.
func (c *Catalog) Langs() []string {
	out := make([]string, 0, len(c.langs))
	for lang := range c.langs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Has reports whether an exact catalog exists for lang.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.langs[lang]
	return ok
}

// T returns the message for key in the closest available language, with
// positional placeholders substituted in order.
func (c *Catalog) T(lang, key string, args ...any) string {
	if msg, ok := c.lookup(lang, key); ok {
		return expand(msg, args...)
	}
	c.log.Warn("missing translation", "lang", lang, "key", key)
	return key
}

// Resolve returns the language tag T would actually read for lang. The bot
// uses it to pick between rendering styles that differ per language family.
func (c *Catalog) Resolve(lang string) string {
	if _, ok := c.langs[lang]; ok {
		return lang
	}
	if match, ok := c.baseMatch(lang); ok {
		return match
	}
	return DefaultLang
}

func (c *Catalog) lookup(lang, key string) (string, bool) {
	if table, ok := c.langs[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg, true
		}
	}
	if match, ok := c.baseMatch(lang); ok {
		if msg, ok := c.langs[match][key]; ok {
			return msg, true
		}
	}
	if msg, ok := c.langs[DefaultLang][key]; ok {
		return msg, true
	}
	return "", false
}

// baseMatch finds a catalog sharing lang's base language, so es-cl reads the
// es-es catalog. Candidates are scanned in sorted order for determinism.
func (c *Catalog) baseMatch(lang string) (string, bool) {
	base, _, found := strings.Cut(lang, "-")
	if !found || base == "" {
		return "", false
	}
	var match string
	for candidate := range c.langs {
		if candidate == lang || !strings.HasPrefix(candidate, base+"-") {
			continue
		}
		if match == "" || candidate < match {
			match = candidate
		}
	}
	return match, match != ""
}

// expand substitutes {0}, {1}, ... with the stringified args. Unknown
// placeholders are left in place.
func expand(msg string, args ...any) string {
	for i, arg := range args {
		msg = strings.ReplaceAll(msg, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return msg
}
