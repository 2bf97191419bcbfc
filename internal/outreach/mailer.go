package outreach

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/resilience"
)

// Options configures a Mailer.
type Options struct {
	// Delay is the minimum spacing between sends. Zero disables pacing.
	Delay time.Duration
	// Retry is the per-recipient delivery policy.
	Retry resilience.RetryConfig
}

// Summary reports the outcome of a mailing.
type Summary struct {
	Sent             int      `json:"sent"`
	Failed           int      `json:"failed"`
	FailedRecipients []string `json:"failed_recipients,omitempty"`
}

// Mailer sends a list of recipients one at a time.
type Mailer struct {
	sender  Sender
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewMailer creates a Mailer that delivers through sender.
func NewMailer(sender Sender, opts Options) *Mailer {
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	return &Mailer{
		sender:  sender,
		limiter: rate.NewLimiter(limit, 1),
		retry:   opts.Retry,
	}
}

// SendAll delivers every recipient in order. A recipient that still fails
// after all attempts is logged and counted; the mailing continues. The only
// error returned is context cancellation.
func (m *Mailer) SendAll(ctx context.Context, recipients []model.Recipient) (Summary, error) {
	var sum Summary

	for _, r := range recipients {
		if err := m.limiter.Wait(ctx); err != nil {
			return sum, err
		}

		retry := m.retry
		retry.OnRetry = resilience.RetryLogger("smtp_send", r.Email)

		err := resilience.Do(ctx, retry, func(ctx context.Context) error {
			return m.sender.Send(ctx, r)
		})
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			zap.L().Error("outreach: giving up on recipient",
				zap.String("email", r.Email),
				zap.Error(err),
			)
			sum.Failed++
			sum.FailedRecipients = append(sum.FailedRecipients, r.Email)
			continue
		}

		zap.L().Info("outreach: sent", zap.String("email", r.Email))
		sum.Sent++
	}

	return sum, nil
}
