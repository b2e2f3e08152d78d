package bot

import (
	"context"
	"strings"

	"crazyones/internal/telegram"
)

// knownVerbs lists the dispatchable commands, in /help order. Fuzzy
// matching suggests from this set.
var knownVerbs = []string{"start", "stop", "updates", "language", "about", "help"}

// dispatch consumes transport updates until ctx ends. Handlers run inline:
// ordering per chat matters more than parallelism at this bot's scale.
func (s *Service) dispatch(ctx context.Context) error {
	updates := s.transport.Updates(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			s.handleUpdate(ctx, u)
		}
	}
}

func (s *Service) handleUpdate(ctx context.Context, u telegram.Update) {
	switch u.Kind {
	case telegram.KindMembershipLoss:
		if _, err := s.subs.Deactivate(u.ChatID, "removed from chat"); err != nil {
			s.log.Error("deactivate after membership loss", "chat_id", u.ChatID, "error", err)
		}
	case telegram.KindCallback:
		s.handleLocaleChoice(ctx, u)
	case telegram.KindMessage:
		s.handleMessage(ctx, u)
	}
}

func (s *Service) handleMessage(ctx context.Context, u telegram.Update) {
	verb, arg, isCommand := parseCommand(u.Text)
	if !isCommand {
		// Plain text in a private chat gets the about blurb; group chatter
		// is none of our business.
		if u.Private {
			if err := s.reply(ctx, u.ChatID, s.text(u.ChatID, "about")); err != nil {
				s.log.Error("reply failed", "chat_id", u.ChatID, "error", err)
			}
		}
		return
	}

	s.log.Info("command", "chat_id", u.ChatID, "verb", verb)
	if h, ok := s.verbs[verb]; ok {
		if err := h(ctx, u.ChatID, arg); err != nil {
			s.log.Error("command failed", "verb", verb, "chat_id", u.ChatID, "error", err)
		}
		return
	}
	s.handleUnknownVerb(ctx, u.ChatID, verb, arg)
}

// handleUnknownVerb suggests and runs the nearest known command, or admits
// defeat with a pointer to /help.
func (s *Service) handleUnknownVerb(ctx context.Context, chatID int64, verb, arg string) {
	suggestion := closest(verb, knownVerbs, verbCutoff)
	if suggestion == "" {
		if err := s.reply(ctx, chatID, s.text(chatID, "unknown_command")); err != nil {
			s.log.Error("reply failed", "chat_id", chatID, "error", err)
		}
		return
	}
	s.log.Info("fuzzy verb match", "chat_id", chatID, "verb", verb, "suggestion", suggestion)
	if err := s.reply(ctx, chatID, s.text(chatID, "did_you_mean", "/"+suggestion)); err != nil {
		s.log.Error("reply failed", "chat_id", chatID, "error", err)
		return
	}
	if h, ok := s.verbs[suggestion]; ok {
		if err := h(ctx, chatID, arg); err != nil {
			s.log.Error("command failed", "verb", suggestion, "chat_id", chatID, "error", err)
		}
	}
}

// parseCommand splits "/updates ios" into ("updates", "ios", true). Group
// chats address commands as "/updates@BotName"; the mention is stripped.
// Anything not starting with a slash is not a command.
func parseCommand(text string) (verb, arg string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", "", false
	}
	verb = strings.ToLower(fields[0])
	if at := strings.IndexByte(verb, '@'); at >= 0 {
		verb = verb[:at]
	}
	if verb == "" {
		return "", "", false
	}
	return verb, strings.Join(fields[1:], " "), true
}
