package telegram

import (
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Class sorts send failures by what the sender should do about them.
type Class int

const (
	// Transient failures are worth retrying: network errors, 5xx, and
	// rate limiting.
	Transient Class = iota
	// PermanentBlocked means the chat is gone for good: the user blocked
	// the bot, deleted their account, or kicked it from a group. The
	// subscriber should be deactivated.
	PermanentBlocked
	// PermanentOther is any other non-retryable API rejection, typically
	// a malformed request.
	PermanentOther
)

// Classification is the verdict on one send error. RetryAfter is non-zero
// when the API named the exact wait, which the sender must honor as given.
type Classification struct {
	Class      Class
	RetryAfter time.Duration
}

// blockedHints are Bot API description fragments that all mean the chat is
// permanently unreachable. The API spreads them across 400 and 403 codes.
var blockedHints = []string{
	"bot was blocked",
	"user is deactivated",
	"bot was kicked",
	"chat not found",
	"not enough rights",
}

// Classify maps a Send or Edit error to a retry decision.
func Classify(err error) Classification {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		// No structured API response: transport-level trouble, retry.
		return Classification{Class: Transient}
	}

	switch {
	case apiErr.Code == 429:
		return Classification{
			Class:      Transient,
			RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
		}
	case apiErr.Code >= 500:
		return Classification{Class: Transient}
	}

	desc := strings.ToLower(apiErr.Message)
	for _, hint := range blockedHints {
		if strings.Contains(desc, hint) {
			return Classification{Class: PermanentBlocked}
		}
	}
	if apiErr.Code == 403 {
		return Classification{Class: PermanentBlocked}
	}
	return Classification{Class: PermanentOther}
}
