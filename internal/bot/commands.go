package bot

import (
	"context"
	"strings"

	"crazyones/internal/catalog"
	"crazyones/internal/store"
	"crazyones/internal/telegram"
)

// callbackPrefix namespaces locale-choice buttons in callback data.
const callbackPrefix = "lang:"

// maxTagLen bounds the /updates argument before matching.
const maxTagLen = 32

// cmdStart subscribes (or resubscribes) the chat and offers the locale
// menu. A first contact gets the full introduction; a returning chat just
// the short prompt. The previously chosen locale survives reactivation.
func (s *Service) cmdStart(ctx context.Context, chatID int64, _ string) error {
	_, returning := s.subs.Get(chatID)
	if _, err := s.subs.Upsert(chatID); err != nil {
		return err
	}
	locales, err := store.LoadCatalog(s.paths)
	if err != nil {
		return err
	}
	if len(locales) == 0 {
		return s.reply(ctx, chatID, s.text(chatID, "no_languages"))
	}
	key := "welcome"
	if returning {
		key = "choose_language"
	}
	return s.sender.Send(ctx, telegram.Outgoing{
		ChatID:   chatID,
		Text:     s.text(chatID, key),
		Keyboard: localeKeyboard(locales),
	})
}

// handleLocaleChoice stores the locale picked from the menu, rewrites the
// menu message into a confirmation, and shows the latest updates so the new
// subscriber sees something immediately.
func (s *Service) handleLocaleChoice(ctx context.Context, u telegram.Update) {
	code, ok := strings.CutPrefix(u.Callback.Data, callbackPrefix)
	if !ok {
		s.log.Warn("unexpected callback data", "chat_id", u.ChatID, "data", u.Callback.Data)
		return
	}
	locales, err := store.LoadCatalog(s.paths)
	if err != nil {
		s.log.Error("load catalog", "error", err)
		return
	}
	if _, known := locales[code]; !known {
		s.log.Warn("callback for unknown locale", "chat_id", u.ChatID, "locale", code)
		return
	}

	// The button may outlive the subscription record; recreate it if needed.
	if _, err := s.subs.Upsert(u.ChatID); err != nil {
		s.log.Error("upsert subscriber", "chat_id", u.ChatID, "error", err)
		return
	}
	if err := s.subs.SetLocale(u.ChatID, code); err != nil {
		s.log.Error("set locale", "chat_id", u.ChatID, "error", err)
		return
	}
	s.log.Info("locale selected", "chat_id", u.ChatID, "locale", code)

	confirmation := telegram.Outgoing{
		ChatID: u.ChatID,
		Text:   s.tr.T(code, "language_selected", catalog.DisplayName(code)),
	}
	ref := telegram.MessageRef{ChatID: u.ChatID, MessageID: u.Callback.MessageID}
	if err := s.transport.Edit(ctx, ref, confirmation); err != nil {
		s.log.Warn("edit menu message", "chat_id", u.ChatID, "error", err)
	}

	if err := s.showLocale(ctx, u.ChatID, code); err != nil {
		s.log.Error("send welcome updates", "chat_id", u.ChatID, "error", err)
	}
}

// cmdStop deactivates the subscription; the record stays so /start brings
// the same locale back.
func (s *Service) cmdStop(ctx context.Context, chatID int64, _ string) error {
	changed, err := s.subs.Deactivate(chatID, "user request")
	if err != nil {
		return err
	}
	if !changed {
		return s.reply(ctx, chatID, s.text(chatID, "not_subscribed"))
	}
	return s.reply(ctx, chatID, s.text(chatID, "stop_confirmation"))
}

// cmdUpdates shows the most recent entries of the subscriber's locale,
// optionally filtered by an OS tag with a fuzzy fallback for typos.
func (s *Service) cmdUpdates(ctx context.Context, chatID int64, arg string) error {
	sub, ok := s.subs.Get(chatID)
	if !ok || !sub.Active || sub.Locale == "" {
		return s.reply(ctx, chatID, s.text(chatID, "not_subscribed"))
	}

	records, err := s.updates.Recent(sub.Locale, recentCount)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return s.reply(ctx, chatID, s.text(chatID, "no_updates"))
	}

	tag := normalizeTag(arg)
	if tag == "" {
		header := s.text(chatID, "recent_updates_header", len(records))
		return s.sendUpdateList(ctx, chatID, header, records)
	}

	if matched := filterByTag(records, tag); len(matched) > 0 {
		header := s.text(chatID, "recent_updates_header", len(matched))
		return s.sendUpdateList(ctx, chatID, header, matched)
	}

	// No direct hit: candidates are the canonical OS tokens that actually
	// occur in this locale's store, so suggestions are always actionable.
	all, err := s.updates.Load(sub.Locale)
	if err != nil {
		return err
	}
	candidates := tagCandidates(all)
	if suggestion := closest(tag, candidates, tagCutoff); suggestion != "" {
		if matched := filterByTag(records, suggestion); len(matched) > 0 {
			s.log.Info("fuzzy tag match", "chat_id", chatID, "tag", tag, "suggestion", suggestion)
			header := s.text(chatID, "did_you_mean", "*"+suggestion+"*") + "\n\n" +
				s.text(chatID, "recent_updates_header", len(matched))
			return s.sendUpdateList(ctx, chatID, header, matched)
		}
	}
	if len(candidates) == 0 {
		candidates = canonicalTags
	}
	return s.reply(ctx, chatID, s.text(chatID, "tag_no_match", tag, "`"+strings.Join(candidates, "`, `")+"`"))
}

// cmdLanguage lists the known locales, or previews one without touching the
// subscription.
func (s *Service) cmdLanguage(ctx context.Context, chatID int64, arg string) error {
	locales, err := store.LoadCatalog(s.paths)
	if err != nil {
		return err
	}
	if len(locales) == 0 {
		return s.reply(ctx, chatID, s.text(chatID, "no_languages"))
	}

	code := strings.ToLower(strings.TrimSpace(arg))
	if code == "" {
		return s.sendLanguageList(ctx, chatID, locales)
	}

	if _, known := locales[code]; !known {
		codes := make([]string, 0, len(locales))
		for c := range locales {
			codes = append(codes, c)
		}
		suggestion := closest(code, codes, verbCutoff)
		if suggestion == "" {
			return s.reply(ctx, chatID, s.text(chatID, "language_unknown", "`"+code+"`"))
		}
		s.log.Info("fuzzy locale match", "chat_id", chatID, "code", code, "suggestion", suggestion)
		if err := s.reply(ctx, chatID, s.text(chatID, "did_you_mean", "`"+suggestion+"`")); err != nil {
			return err
		}
		code = suggestion
	}
	return s.showLocale(ctx, chatID, code)
}

// showLocale sends a locale's recent updates, headed by its display name.
func (s *Service) showLocale(ctx context.Context, chatID int64, code string) error {
	records, err := s.updates.Recent(code, recentCount)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return s.reply(ctx, chatID, s.text(chatID, "no_updates"))
	}
	header := s.text(chatID, "language_showing", catalog.DisplayName(code), "`"+code+"`")
	return s.sendUpdateList(ctx, chatID, header, records)
}

func (s *Service) cmdAbout(ctx context.Context, chatID int64, _ string) error {
	return s.reply(ctx, chatID, s.text(chatID, "about"))
}

func (s *Service) cmdHelp(ctx context.Context, chatID int64, _ string) error {
	return s.reply(ctx, chatID, s.text(chatID, "help"))
}

// normalizeTag lowercases and bounds a user-supplied tag.
func normalizeTag(arg string) string {
	tag := strings.ToLower(strings.TrimSpace(arg))
	if r := []rune(tag); len(r) > maxTagLen {
		tag = string(r[:maxTagLen])
	}
	return tag
}
