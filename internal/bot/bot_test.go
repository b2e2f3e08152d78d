package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crazyones/internal/i18n"
	"crazyones/internal/store"
	"crazyones/internal/telegram"
	"crazyones/pkg/jsonfile"
)

// fakeTransport records outgoing traffic and feeds scripted errors, one per
// Send call, keyed by chat.
type fakeTransport struct {
	mu        sync.Mutex
	sent      []telegram.Outgoing
	edits     []telegram.MessageRef
	editTexts []string
	errs      map[int64][]error
	calls     map[int64]int
	updates   chan telegram.Update
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		errs:    map[int64][]error{},
		calls:   map[int64]int{},
		updates: make(chan telegram.Update, 16),
	}
}

func (f *fakeTransport) Updates(ctx context.Context) <-chan telegram.Update {
	return f.updates
}

func (f *fakeTransport) Send(ctx context.Context, msg telegram.Outgoing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[msg.ChatID]++
	if queue := f.errs[msg.ChatID]; len(queue) > 0 {
		err := queue[0]
		f.errs[msg.ChatID] = queue[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) Edit(ctx context.Context, ref telegram.MessageRef, msg telegram.Outgoing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, ref)
	f.editTexts = append(f.editTexts, msg.Text)
	return nil
}

// scriptError queues one error for the chat's next Send.
func (f *fakeTransport) scriptError(chatID int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[chatID] = append(f.errs[chatID], err)
}

func (f *fakeTransport) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeTransport) callsFor(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[chatID]
}

func (f *fakeTransport) textsFor(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, msg := range f.sent {
		if msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeTransport) lastTo(chatID int64) telegram.Outgoing {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].ChatID == chatID {
			return f.sent[i]
		}
	}
	return telegram.Outgoing{}
}

func testTranslations() *i18n.Catalog {
	return i18n.New(map[string]map[string]string{
		"en-us": {
			"welcome":                    "Welcome to Apple Updates Bot! Select the language of Apple Updates you want to monitor:",
			"choose_language":            "Select the language of Apple Updates you want to monitor:",
			"language_selected":          "Language selected: {0}",
			"no_languages":               "No languages are available at the moment.",
			"no_updates":                 "No updates available yet for this language.",
			"recent_updates_header":      "Here are the {0} most recent Apple Updates:",
			"new_updates_header":         "New Apple Updates",
			"stop_confirmation":          "Subscription stopped.",
			"not_subscribed":             "You are not currently subscribed.",
			"unknown_command":            "Unknown command. Send /help.",
			"did_you_mean":               "Did you mean {0}?",
			"tag_no_match":               "No updates match *{0}*. Try one of: {1}.",
			"about":                      "CrazyOnes keeps you updated on Apple releases.",
			"help":                       "Commands: /start /stop /updates /language /about /help",
			"update_item_detailed":       "*{0}. {1}*\nTarget: {2}\nDate: {3}",
			"update_item_inline":         "{0} - {1} - {2}",
			"more_info":                  "More info",
			"available_languages_header": "Available Languages:",
			"available_languages_footer": "Total: {0} languages",
			"language_unknown":           "Unknown language code {0}.",
			"language_showing":           "Most recent updates for {0} ({1}):",
		},
		"es-es": {
			"new_updates_header": "Nuevas actualizaciones de Apple",
			"no_updates":         "Aún no hay actualizaciones.",
		},
	})
}

func newTestService(t *testing.T) (*Service, *fakeTransport, store.Paths) {
	t.Helper()
	paths := store.Paths{DataDir: t.TempDir()}
	ft := newFakeTransport()
	svc, err := New(Config{
		Transport: ft,
		Paths:     paths,
		Catalog:   testTranslations(),
		PollEvery: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	svc.sender.initial = time.Millisecond
	return svc, ft, paths
}

func seedCatalog(t *testing.T, paths store.Paths, codes ...string) {
	t.Helper()
	m := map[string]string{}
	for _, c := range codes {
		m[c] = "https://support.apple.com/" + c + "/100100"
	}
	require.NoError(t, jsonfile.Write(paths.LanguageURLs(), m))
}

// seedLocale stores one record per name, first name newest, ids ascending
// from 1 in the given order.
func seedLocale(t *testing.T, paths store.Paths, locale string, names ...string) {
	t.Helper()
	rows := make([]store.Incoming, 0, len(names))
	for _, n := range names {
		rows = append(rows, store.Incoming{
			Name:   n,
			URL:    "https://support.apple.com/x",
			Target: "iPhone",
			Date:   "2024-01-22",
		})
	}
	_, err := store.NewUpdates(paths).Apply(locale, rows, false)
	require.NoError(t, err)
}

func subscribe(t *testing.T, svc *Service, chatID int64, locale string) {
	t.Helper()
	_, err := svc.subs.Upsert(chatID)
	require.NoError(t, err)
	require.NoError(t, svc.subs.SetLocale(chatID, locale))
}

func message(chatID int64, text string) telegram.Update {
	return telegram.Update{Kind: telegram.KindMessage, ChatID: chatID, Text: text, Private: true}
}
