package bot

import (
	"context"
	"errors"
	"sort"
	"time"

	"crazyones/internal/catalog"
	"crazyones/internal/i18n"
	"crazyones/internal/store"
	"crazyones/internal/telegram"
)

// triggerPollEvery is the trigger scan period. The monitor ticks at most
// every few hours; thirty seconds keeps notification latency negligible
// without busy-polling the filesystem.
const triggerPollEvery = 30 * time.Second

// watch polls for the monitor's trigger document and fans new updates out.
// A single goroutine consumes triggers in sequence, so one trigger's
// messages are fully sent before the next trigger is even read.
func (s *Service) watch(ctx context.Context) error {
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.consumeTrigger(ctx)
		}
	}
}

// consumeTrigger handles one poll: read, fan out, delete. The trigger is
// deleted even when fan-out failed partway; the delivery ledger already
// prevents duplicates on the next one, and a poisoned trigger must not
// wedge the loop forever.
func (s *Service) consumeTrigger(ctx context.Context) {
	novelty, err := s.trigger.Read()
	if err != nil {
		if errors.Is(err, store.ErrTriggerNotReady) {
			s.log.Debug("trigger not ready, retrying next poll")
		} else {
			s.log.Error("read trigger", "error", err)
		}
		return
	}
	if len(novelty) == 0 {
		return
	}
	s.log.Info("trigger detected", "locales", len(novelty))

	if err := s.fanOut(ctx, novelty); err != nil {
		s.log.Error("fan-out incomplete", "error", err)
	}
	if err := s.trigger.Delete(); err != nil {
		s.log.Error("delete trigger", "error", err)
	}
}

// fanOut walks the trigger's locales in sorted order and notifies each
// locale's active subscribers. Per-subscriber failures are remembered but
// do not stop the rest of the fan-out; context cancellation does.
func (s *Service) fanOut(ctx context.Context, novelty map[string][]int) error {
	locales := make([]string, 0, len(novelty))
	for code := range novelty {
		locales = append(locales, code)
	}
	sort.Strings(locales)

	var firstErr error
	for _, locale := range locales {
		if err := ctx.Err(); err != nil {
			return err
		}
		records, err := s.updates.Select(locale, novelty[locale])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(records) < len(novelty[locale]) {
			s.log.Warn("trigger names ids missing from store",
				"locale", locale,
				"announced", len(novelty[locale]),
				"found", len(records))
		}
		subscribers := s.subs.ActiveByLocale(locale)
		if len(records) == 0 || len(subscribers) == 0 {
			continue
		}

		sent := 0
		for _, sub := range subscribers {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := s.notifySubscriber(ctx, sub, locale, records)
			sent += n
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		s.log.Info("fan-out complete", "locale", locale,
			"subscribers", len(subscribers), "messages", sent)
	}
	return firstErr
}

// notifySubscriber sends the records this subscriber has not received yet,
// one message each in ascending id order, appending to the ledger after
// every delivery. At most the message in flight when the process dies can
// ever be duplicated.
func (s *Service) notifySubscriber(ctx context.Context, sub store.Subscriber, locale string, records []store.SecurityUpdate) (int, error) {
	delivered := s.ledger.Delivered(sub.ChatID, locale)
	fresh := records[:0:0]
	for _, rec := range records {
		if !delivered[rec.ID] {
			fresh = append(fresh, rec)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	lang := sub.UILang
	if lang == "" {
		lang = i18n.DefaultLang
	}
	header := s.tr.T(lang, "new_updates_header") + "\n_" + catalog.DisplayName(locale) + "_"
	if err := s.sendTo(ctx, sub, telegram.Outgoing{ChatID: sub.ChatID, Text: header}); err != nil {
		return 0, err
	}

	sent := 0
	for i, rec := range fresh {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		msg := telegram.Outgoing{ChatID: sub.ChatID, Text: s.formatUpdate(lang, i+1, rec)}
		if err := s.sendTo(ctx, sub, msg); err != nil {
			return sent, err
		}
		if err := s.ledger.Append(sub.ChatID, locale, rec.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// sendTo pushes one message through the pacing sender, deactivating the
// subscriber when the API says the chat is gone for good.
func (s *Service) sendTo(ctx context.Context, sub store.Subscriber, msg telegram.Outgoing) error {
	err := s.sender.Send(ctx, msg)
	if err == nil {
		return nil
	}
	if cls := telegram.Classify(err); cls.Class == telegram.PermanentBlocked {
		if _, derr := s.subs.Deactivate(sub.ChatID, "blocked"); derr != nil {
			s.log.Error("deactivate blocked subscriber", "chat_id", sub.ChatID, "error", derr)
		}
	}
	return err
}
