package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"crazyones/internal/telegram"
)

const (
	// sendRate and sendBurst keep the whole process under Telegram's ~30
	// messages/second bot-wide ceiling with headroom for retries.
	sendRate  = 25
	sendBurst = 5

	// maxSendTries caps delivery attempts per message, first try included.
	maxSendTries = 5

	// retryInitialInterval seeds the exponential backoff between attempts.
	retryInitialInterval = 500 * time.Millisecond
)

// Sender paces and retries outgoing messages. All sends in the process
// share one limiter; each message gets its own backoff. A rate-limit
// response that names a wait is honored exactly.
type Sender struct {
	transport telegram.Transport
	limiter   *rate.Limiter
	maxTries  uint64
	initial   time.Duration
	log       *slog.Logger
}

// NewSender wraps a transport with pacing and retry.
func NewSender(transport telegram.Transport) *Sender {
	return &Sender{
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		maxTries:  maxSendTries,
		initial:   retryInitialInterval,
		log:       slog.Default(),
	}
}

// Send delivers msg, retrying transient failures up to the attempt cap.
// Permanent failures and exhausted retries surface the last transport error
// untouched so callers can classify it again.
func (s *Sender) Send(ctx context.Context, msg telegram.Outgoing) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.initial
	exp.MaxElapsedTime = 0 // the retry cap bounds us, not wall time
	exp.Reset()
	policy := &serverPacedBackOff{next: exp}

	attempt := 0
	op := func() error {
		attempt++
		err := s.transport.Send(ctx, msg)
		if err == nil {
			return nil
		}
		cls := telegram.Classify(err)
		if cls.Class != telegram.Transient {
			return backoff.Permanent(err)
		}
		policy.serverDelay = cls.RetryAfter
		s.log.Warn("send will retry",
			"chat_id", msg.ChatID,
			"attempt", attempt,
			"retry_after", cls.RetryAfter,
			"error", err)
		return err
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, s.maxTries-1), ctx))
}

// serverPacedBackOff is exponential backoff that yields to the wait the API
// named in its last rate-limit response, exactly, whenever one is pending.
type serverPacedBackOff struct {
	next        *backoff.ExponentialBackOff
	serverDelay time.Duration
}

func (b *serverPacedBackOff) NextBackOff() time.Duration {
	if d := b.serverDelay; d > 0 {
		b.serverDelay = 0
		return d
	}
	return b.next.NextBackOff()
}

func (b *serverPacedBackOff) Reset() {
	b.serverDelay = 0
	b.next.Reset()
}
