// Package telegram wraps the Bot API behind a small transport interface so
// the bot's dispatch and fan-out logic can be driven by a fake in tests.
package telegram

import "context"

// UpdateKind classifies the incoming events the bot reacts to.
type UpdateKind int

const (
	// KindMessage is a text message, command or not.
	KindMessage UpdateKind = iota
	// KindCallback is an inline-keyboard button press.
	KindCallback
	// KindMembershipLoss means the bot lost access to the chat: the user
	// blocked it or it was removed from a group.
	KindMembershipLoss
)

// Update is one normalized incoming event.
type Update struct {
	Kind    UpdateKind
	ChatID  int64
	Text    string
	Private bool
	// Callback is set for KindCallback.
	Callback *Callback
}

// Callback carries the data of a pressed inline button and a reference to
// the message holding the keyboard, so handlers can edit it in place.
type Callback struct {
	Data      string
	MessageID int
}

// Button is one inline-keyboard button; Data comes back as Callback.Data.
type Button struct {
	Text string
	Data string
}

// Outgoing is a message to send. Text is Markdown; link previews are always
// suppressed since update lists would otherwise unfurl Apple's pages.
type Outgoing struct {
	ChatID   int64
	Text     string
	Keyboard [][]Button
}

// MessageRef identifies an already-sent message for editing.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Transport is the wire the bot speaks over. Updates delivers normalized
// events until ctx ends; Send and Edit return the raw API error so callers
// can run it through Classify.
type Transport interface {
	Updates(ctx context.Context) <-chan Update
	Send(ctx context.Context, msg Outgoing) error
	Edit(ctx context.Context, ref MessageRef, msg Outgoing) error
}
