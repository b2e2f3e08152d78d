package bot

import (
	"context"
	"os"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crazyones/internal/store"
	"crazyones/pkg/jsonfile"
)

func TestTriggerFanOut(t *testing.T) {
	svc, ft, paths := newTestService(t)
	seedLocale(t, paths, "en-us", "iOS 17.3", "macOS Sonoma 14.3", "Safari 17.3")
	seedLocale(t, paths, "es-es", "iOS 17.3 y iPadOS 17.3")
	subscribe(t, svc, 1, "en-us")
	subscribe(t, svc, 2, "en-us")
	subscribe(t, svc, 3, "es-es")
	subscribe(t, svc, 4, "en-us")
	_, err := svc.subs.Deactivate(4, "user request")
	require.NoError(t, err)

	require.NoError(t, store.NewTrigger(paths).Write(map[string][]int{"en-us": {3, 2}}))
	svc.consumeTrigger(context.Background())

	// Header plus the two records, ascending by id, per active subscriber.
	for _, chatID := range []int64{1, 2} {
		texts := ft.textsFor(chatID)
		require.Len(t, texts, 3, "chat %d", chatID)
		assert.Contains(t, texts[0], "New Apple Updates")
		assert.Contains(t, texts[0], "_English/USA_")
		assert.Contains(t, texts[1], "macOS Sonoma 14.3")
		assert.Contains(t, texts[2], "Safari 17.3")
		assert.Equal(t, map[int]bool{2: true, 3: true}, svc.ledger.Delivered(chatID, "en-us"))
	}

	// The other locale's subscriber and the inactive one hear nothing.
	assert.Empty(t, ft.textsFor(3))
	assert.Empty(t, ft.textsFor(4))

	assert.False(t, jsonfile.Exists(paths.Trigger()))
}

func TestTriggerReplayDeliversNothing(t *testing.T) {
	svc, ft, paths := newTestService(t)
	seedLocale(t, paths, "en-us", "iOS 17.3")
	subscribe(t, svc, 1, "en-us")
	trigger := store.NewTrigger(paths)

	require.NoError(t, trigger.Write(map[string][]int{"en-us": {1}}))
	svc.consumeTrigger(context.Background())
	require.Equal(t, 2, ft.sendCount())

	// The monitor crashing after store write but before trigger cleanup can
	// reissue the same ids; the ledger keeps subscribers quiet.
	require.NoError(t, trigger.Write(map[string][]int{"en-us": {1}}))
	svc.consumeTrigger(context.Background())

	assert.Equal(t, 2, ft.sendCount())
	assert.False(t, jsonfile.Exists(paths.Trigger()))
}

func TestFanOutSkipsAlreadyDelivered(t *testing.T) {
	svc, ft, paths := newTestService(t)
	seedLocale(t, paths, "en-us", "iOS 17.3", "macOS Sonoma 14.3")
	subscribe(t, svc, 1, "en-us")
	require.NoError(t, svc.ledger.Append(1, "en-us", 1))

	require.NoError(t, store.NewTrigger(paths).Write(map[string][]int{"en-us": {1, 2}}))
	svc.consumeTrigger(context.Background())

	texts := ft.textsFor(1)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "macOS Sonoma 14.3")
	assert.Equal(t, map[int]bool{1: true, 2: true}, svc.ledger.Delivered(1, "en-us"))
}

func TestFanOutBlockedSubscriberDeactivated(t *testing.T) {
	svc, ft, paths := newTestService(t)
	seedLocale(t, paths, "en-us", "iOS 17.3")
	subscribe(t, svc, 9, "en-us")
	subscribe(t, svc, 10, "en-us")
	ft.scriptError(9, &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"})

	require.NoError(t, store.NewTrigger(paths).Write(map[string][]int{"en-us": {1}}))
	svc.consumeTrigger(context.Background())

	// Blocked means deactivated, nothing recorded as delivered, no retries.
	sub, ok := svc.subs.Get(9)
	require.True(t, ok)
	assert.False(t, sub.Active)
	assert.Empty(t, svc.ledger.Delivered(9, "en-us"))
	assert.Equal(t, 1, ft.callsFor(9))

	// The other subscriber still gets the full delivery.
	assert.Len(t, ft.textsFor(10), 2)
	assert.Equal(t, map[int]bool{1: true}, svc.ledger.Delivered(10, "en-us"))

	assert.False(t, jsonfile.Exists(paths.Trigger()))
}

func TestFanOutSpanishInlineStyle(t *testing.T) {
	svc, ft, paths := newTestService(t)
	seedLocale(t, paths, "es-es", "iOS 17.3 y iPadOS 17.3")
	subscribe(t, svc, 3, "es-es")

	require.NoError(t, store.NewTrigger(paths).Write(map[string][]int{"es-es": {1}}))
	svc.consumeTrigger(context.Background())

	texts := ft.textsFor(3)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Nuevas actualizaciones de Apple")
	assert.Contains(t, texts[0], "_Spanish/Spain_")
	assert.Equal(t, "2024-01-22 - [iOS 17.3 y iPadOS 17.3](https://support.apple.com/x) - iPhone", texts[1])
}

func TestFanOutIgnoresIDsMissingFromStore(t *testing.T) {
	svc, ft, paths := newTestService(t)
	seedLocale(t, paths, "en-us", "iOS 17.3")
	subscribe(t, svc, 1, "en-us")

	require.NoError(t, store.NewTrigger(paths).Write(map[string][]int{"en-us": {1, 5}}))
	svc.consumeTrigger(context.Background())

	texts := ft.textsFor(1)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "iOS 17.3")
	assert.Equal(t, map[int]bool{1: true}, svc.ledger.Delivered(1, "en-us"))
	assert.False(t, jsonfile.Exists(paths.Trigger()))
}

func TestCorruptTriggerLeftForRetry(t *testing.T) {
	svc, ft, paths := newTestService(t)
	subscribe(t, svc, 1, "en-us")
	require.NoError(t, os.WriteFile(paths.Trigger(), []byte("{not json"), 0o644))

	svc.consumeTrigger(context.Background())

	// A half-written trigger is not consumed and not destroyed; the monitor
	// finishing its write makes the next poll succeed.
	assert.Zero(t, ft.sendCount())
	assert.True(t, jsonfile.Exists(paths.Trigger()))
}

func TestMissingTriggerIsQuiet(t *testing.T) {
	svc, ft, _ := newTestService(t)
	subscribe(t, svc, 1, "en-us")

	svc.consumeTrigger(context.Background())

	assert.Zero(t, ft.sendCount())
}
