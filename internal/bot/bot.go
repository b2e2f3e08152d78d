// Package bot implements the Telegram side of CrazyOnes: a command
// dispatcher over long polling and a trigger watcher that fans newly
// monitored updates out to subscribers. It shares the data directory with
// the monitor but only ever writes the subscriber registry and the delivery
// ledger.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"crazyones/internal/i18n"
	"crazyones/internal/store"
	"crazyones/internal/telegram"
)

// recentCount is how many entries /updates and the post-subscription
// overview show.
const recentCount = 10

// Config wires a Service.
type Config struct {
	Transport telegram.Transport
	Paths     store.Paths
	Catalog   *i18n.Catalog
	// PollEvery is the trigger scan period; zero means the default 30s.
	PollEvery time.Duration
}

type handlerFunc func(ctx context.Context, chatID int64, arg string) error

// Service is the running bot: one dispatcher goroutine for incoming
// updates, one watcher goroutine for the monitor's trigger.
type Service struct {
	transport telegram.Transport
	sender    *Sender
	subs      *store.Subscribers
	ledger    *store.Ledger
	updates   *store.Updates
	trigger   *store.Trigger
	paths     store.Paths
	tr        *i18n.Catalog
	pollEvery time.Duration
	verbs     map[string]handlerFunc
	log       *slog.Logger
}

// New loads the bot's stores and wires the service.
func New(cfg Config) (*Service, error) {
	if cfg.Transport == nil || cfg.Catalog == nil {
		return nil, errors.New("bot: transport and translation catalog are required")
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = triggerPollEvery
	}

	subs, err := store.LoadSubscribers(cfg.Paths)
	if err != nil {
		return nil, err
	}
	ledger, err := store.LoadLedger(cfg.Paths)
	if err != nil {
		return nil, err
	}

	s := &Service{
		transport: cfg.Transport,
		sender:    NewSender(cfg.Transport),
		subs:      subs,
		ledger:    ledger,
		updates:   store.NewUpdates(cfg.Paths),
		trigger:   store.NewTrigger(cfg.Paths),
		paths:     cfg.Paths,
		tr:        cfg.Catalog,
		pollEvery: cfg.PollEvery,
		log:       slog.Default(),
	}
	s.verbs = map[string]handlerFunc{
		"start":    s.cmdStart,
		"stop":     s.cmdStop,
		"updates":  s.cmdUpdates,
		"language": s.cmdLanguage,
		"about":    s.cmdAbout,
		"help":     s.cmdHelp,
	}
	return s, nil
}

// Run blocks until ctx is canceled, serving commands and trigger fan-out.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.dispatch(gctx) })
	g.Go(func() error { return s.watch(gctx) })
	return g.Wait()
}

// uiLang is the language the bot speaks to a chat: the subscriber's choice
// when one is stored, the default otherwise.
func (s *Service) uiLang(chatID int64) string {
	if sub, ok := s.subs.Get(chatID); ok && sub.UILang != "" {
		return sub.UILang
	}
	return i18n.DefaultLang
}

// text renders a translation key in the chat's UI language.
func (s *Service) text(chatID int64, key string, args ...any) string {
	return s.tr.T(s.uiLang(chatID), key, args...)
}

// reply sends one paced, retried text message.
func (s *Service) reply(ctx context.Context, chatID int64, text string) error {
	return s.sender.Send(ctx, telegram.Outgoing{ChatID: chatID, Text: text})
}
