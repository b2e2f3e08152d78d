package store

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"crazyones/pkg/jsonfile"
)

// Subscriber is one chat the bot notifies. Locale is the Apple locale whose
// updates the chat receives; UILang is the language the bot speaks to it,
// which tracks the chosen locale. Deactivated subscribers keep their record
// so /start restores their previous choice.
type Subscriber struct {
	ChatID int64     `json:"chat_id"`
	Locale string    `json:"locale"`
	UILang string    `json:"ui_lang"`
	Active bool      `json:"active"`
	Since  time.Time `json:"since"`
}

// Subscribers is the bot's subscriber registry. The dispatcher and the
// trigger watcher mutate it concurrently, so every access goes through one
// lock and every mutation is flushed to disk before returning.
type Subscribers struct {
	mu    sync.Mutex
	paths Paths
	subs  []Subscriber
	log   *slog.Logger
}

// LoadSubscribers reads the registry. A missing file is an empty registry.
func LoadSubscribers(paths Paths) (*Subscribers, error) {
	s := &Subscribers{paths: paths, log: slog.Default()}
	if err := jsonfile.Read(paths.SubscribersFile(), &s.subs); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	sort.Slice(s.subs, func(i, j int) bool { return s.subs[i].ChatID < s.subs[j].ChatID })
	return s, nil
}

// Get returns the record for a chat, active or not.
func (s *Subscribers) Get(chatID int64) (Subscriber, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(chatID); i >= 0 {
		return s.subs[i], true
	}
	return Subscriber{}, false
}

// Upsert creates a subscriber or reactivates an existing one, keeping any
// previously chosen locale. The returned record reflects the stored state.
func (s *Subscribers) Upsert(chatID int64) (Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(chatID); i >= 0 {
		s.subs[i].Active = true
		if err := s.flush(); err != nil {
			return Subscriber{}, err
		}
		return s.subs[i], nil
	}
	sub := Subscriber{ChatID: chatID, Active: true, Since: time.Now().UTC()}
	s.subs = append(s.subs, sub)
	sort.Slice(s.subs, func(i, j int) bool { return s.subs[i].ChatID < s.subs[j].ChatID })
	if err := s.flush(); err != nil {
		return Subscriber{}, err
	}
	return sub, nil
}

// SetLocale stores the chosen locale and switches the UI language with it.
func (s *Subscribers) SetLocale(chatID int64, locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(chatID)
	if i < 0 {
		return fmt.Errorf("subscriber %d not found", chatID)
	}
	s.subs[i].Locale = locale
	s.subs[i].UILang = locale
	s.subs[i].Active = true
	return s.flush()
}

// Deactivate marks a subscriber inactive and records why. It reports whether
// anything changed, so repeated deactivations stay cheap and quiet.
func (s *Subscribers) Deactivate(chatID int64, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(chatID)
	if i < 0 || !s.subs[i].Active {
		return false, nil
	}
	s.subs[i].Active = false
	if err := s.flush(); err != nil {
		return false, err
	}
	s.log.Info("subscriber deactivated", "chat_id", chatID, "reason", reason)
	return true, nil
}

// ActiveByLocale returns the active subscribers for a locale, ordered by
// chat id so fan-out is deterministic.
func (s *Subscribers) ActiveByLocale(locale string) []Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Subscriber
	for _, sub := range s.subs {
		if sub.Active && sub.Locale == locale {
			out = append(out, sub)
		}
	}
	return out
}

// index returns the position of chatID, or -1. Callers hold the lock.
func (s *Subscribers) index(chatID int64) int {
	for i := range s.subs {
		if s.subs[i].ChatID == chatID {
			return i
		}
	}
	return -1
}

// flush persists the registry. Callers hold the lock.
func (s *Subscribers) flush() error {
	if err := jsonfile.Write(s.paths.SubscribersFile(), s.subs); err != nil {
		return fmt.Errorf("write subscribers: %w", err)
	}
	return nil
}
