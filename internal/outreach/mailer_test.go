package outreach

import (
	"context"
	"errors"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/resilience"
)

// fakeSender fails each address a scripted number of times.
type fakeSender struct {
	mu       sync.Mutex
	failures map[string][]error
	attempts map[string]int
	sentAt   []time.Time
	sent     []string
}

func newFakeSender() *fakeSender {
	return &fakeSender{failures: map[string][]error{}, attempts: map[string]int{}}
}

func (f *fakeSender) Send(_ context.Context, r model.Recipient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[r.Email]++
	if errs := f.failures[r.Email]; len(errs) > 0 {
		f.failures[r.Email] = errs[1:]
		return errs[0]
	}
	f.sent = append(f.sent, r.Email)
	f.sentAt = append(f.sentAt, time.Now())
	return nil
}

func (f *fakeSender) Close() error { return nil }

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func recipients(emails ...string) []model.Recipient {
	out := make([]model.Recipient, len(emails))
	for i, e := range emails {
		out[i] = model.Recipient{Email: e, Subject: "s", Body: "b"}
	}
	return out
}

func TestSendAll_AllSucceed(t *testing.T) {
	s := newFakeSender()
	m := NewMailer(s, Options{Retry: fastRetry()})

	sum, err := m.SendAll(context.Background(), recipients("a@a.com", "b@b.com"))
	require.NoError(t, err)
	assert.Equal(t, Summary{Sent: 2}, sum)
	assert.Equal(t, []string{"a@a.com", "b@b.com"}, s.sent)
}

func TestSendAll_RetriesTransientFailure(t *testing.T) {
	s := newFakeSender()
	s.failures["a@a.com"] = []error{
		&textproto.Error{Code: 421, Msg: "try later"},
		errors.New("write: broken pipe"),
	}
	m := NewMailer(s, Options{Retry: fastRetry()})

	sum, err := m.SendAll(context.Background(), recipients("a@a.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sent)
	assert.Equal(t, 3, s.attempts["a@a.com"])
}

func TestSendAll_GivesUpAfterThreeAttempts(t *testing.T) {
	s := newFakeSender()
	fail := errors.New("connection reset by peer")
	s.failures["a@a.com"] = []error{fail, fail, fail, fail}
	m := NewMailer(s, Options{Retry: fastRetry()})

	sum, err := m.SendAll(context.Background(), recipients("a@a.com", "b@b.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sent)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, []string{"a@a.com"}, sum.FailedRecipients)
	assert.Equal(t, 3, s.attempts["a@a.com"])
	assert.Equal(t, []string{"b@b.com"}, s.sent, "later recipients still sent")
}

func TestSendAll_PermanentRejectionNotRetried(t *testing.T) {
	s := newFakeSender()
	s.failures["gone@a.com"] = []error{&textproto.Error{Code: 550, Msg: "no such user"}}
	m := NewMailer(s, Options{Retry: fastRetry()})

	sum, err := m.SendAll(context.Background(), recipients("gone@a.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, s.attempts["gone@a.com"])
}

func TestSendAll_PacesSends(t *testing.T) {
	s := newFakeSender()
	m := NewMailer(s, Options{Delay: 30 * time.Millisecond, Retry: fastRetry()})

	_, err := m.SendAll(context.Background(), recipients("a@a.com", "b@b.com", "c@c.com"))
	require.NoError(t, err)
	require.Len(t, s.sentAt, 3)

	for i := 1; i < len(s.sentAt); i++ {
		gap := s.sentAt[i].Sub(s.sentAt[i-1])
		assert.GreaterOrEqual(t, gap, 25*time.Millisecond, "gap %d", i)
	}
}

func TestSendAll_ContextCancelled(t *testing.T) {
	s := newFakeSender()
	m := NewMailer(s, Options{Delay: time.Hour, Retry: fastRetry()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	sum, err := m.SendAll(ctx, recipients("a@a.com", "b@b.com"))
	require.Error(t, err)
	assert.Equal(t, 1, sum.Sent, "first send is immediate, second waits on the limiter")
}

func TestSendAll_Empty(t *testing.T) {
	m := NewMailer(newFakeSender(), Options{})
	sum, err := m.SendAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}
