package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"crazyones/internal/catalog"
	"crazyones/internal/store"
	"crazyones/internal/telegram"
)

// maxMessageLen stays safely under Telegram's 4096-character message cap;
// the slack absorbs Markdown overhead.
const maxMessageLen = 3900

// formatUpdate renders one record for a UI language. Spanish-family
// catalogs use the compact inline line; every other language the detailed
// block with target, date, and link.
func (s *Service) formatUpdate(lang string, n int, rec store.SecurityUpdate) string {
	if strings.HasPrefix(s.tr.Resolve(lang), "es-") {
		name := rec.Name
		if rec.URL != "" {
			name = fmt.Sprintf("[%s](%s)", rec.Name, rec.URL)
		}
		return s.tr.T(lang, "update_item_inline", rec.Date, name, rec.Target)
	}
	block := s.tr.T(lang, "update_item_detailed", n, rec.Name, rec.Target, rec.Date)
	if rec.URL != "" {
		block += fmt.Sprintf("\n🔗 [%s](%s)", s.tr.T(lang, "more_info"), rec.URL)
	}
	return block
}

// sendUpdateList sends a header plus numbered records, split into as few
// messages as the length cap allows.
func (s *Service) sendUpdateList(ctx context.Context, chatID int64, header string, records []store.SecurityUpdate) error {
	lang := s.uiLang(chatID)
	blocks := make([]string, 0, len(records)+1)
	blocks = append(blocks, header)
	for i, rec := range records {
		blocks = append(blocks, s.formatUpdate(lang, i+1, rec))
	}
	for _, msg := range joinChunks(blocks, "\n\n", maxMessageLen) {
		if err := s.reply(ctx, chatID, msg); err != nil {
			return err
		}
	}
	return nil
}

// sendLanguageList sends every known locale with its display name, chunked
// so a hundred-plus locales never overrun a single message.
func (s *Service) sendLanguageList(ctx context.Context, chatID int64, locales map[string]string) error {
	codes := sortedByDisplayName(locales)
	blocks := make([]string, 0, len(codes)+2)
	blocks = append(blocks, s.text(chatID, "available_languages_header")+"\n")
	for _, code := range codes {
		blocks = append(blocks, fmt.Sprintf("• `%s` - %s", code, catalog.DisplayName(code)))
	}
	blocks = append(blocks, "\n"+s.text(chatID, "available_languages_footer", len(codes)))
	for _, msg := range joinChunks(blocks, "\n", maxMessageLen) {
		if err := s.reply(ctx, chatID, msg); err != nil {
			return err
		}
	}
	return nil
}

// localeKeyboard lays the locale menu out two buttons per row, ordered by
// display name.
func localeKeyboard(locales map[string]string) [][]telegram.Button {
	codes := sortedByDisplayName(locales)
	var rows [][]telegram.Button
	for i := 0; i < len(codes); i += 2 {
		row := []telegram.Button{{
			Text: catalog.DisplayName(codes[i]),
			Data: callbackPrefix + codes[i],
		}}
		if i+1 < len(codes) {
			row = append(row, telegram.Button{
				Text: catalog.DisplayName(codes[i+1]),
				Data: callbackPrefix + codes[i+1],
			})
		}
		rows = append(rows, row)
	}
	return rows
}

func sortedByDisplayName(locales map[string]string) []string {
	codes := make([]string, 0, len(locales))
	for code := range locales {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		ni, nj := catalog.DisplayName(codes[i]), catalog.DisplayName(codes[j])
		if ni == nj {
			return codes[i] < codes[j]
		}
		return ni < nj
	})
	return codes
}

// joinChunks joins blocks with sep into messages no longer than max. A
// single block longer than max is emitted alone rather than split.
func joinChunks(blocks []string, sep string, max int) []string {
	var msgs []string
	var cur strings.Builder
	for _, b := range blocks {
		if cur.Len() > 0 && cur.Len()+len(sep)+len(b) > max {
			msgs = append(msgs, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString(sep)
		}
		cur.WriteString(b)
	}
	if cur.Len() > 0 {
		msgs = append(msgs, cur.String())
	}
	return msgs
}
