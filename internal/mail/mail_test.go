package mail

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/dermaai/internal/config"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

func TestVerificationLinkEscapes(t *testing.T) {
	link := VerificationLink("http://localhost:5173", "a+b@example.com", "x.y.z")
	require.Equal(t, "http://localhost:5173/verify-email?email=a%2Bb%40example.com&token=x.y.z", link)
}

func TestVerificationMessage(t *testing.T) {
	link := VerificationLink("https://derma.example", "ada@example.com", "tok")
	msg, err := VerificationMessage("ada@example.com", link, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", msg.To)
	require.Equal(t, "Verify your email for DermaAI", msg.Subject)
	require.Contains(t, msg.HTML, "<h2>Confirm Your Email Address</h2>")
	require.Contains(t, msg.HTML, `href="https://derma.example/verify-email?email=ada%40example.com&amp;token=tok"`)
	require.Contains(t, msg.HTML, "&copy; 2024 DermaAI")
}

func TestBuildMessageHeaders(t *testing.T) {
	raw := string(buildMessage("DermaAI <noreply@example.com>", Message{To: "a@b.c", Subject: "Hi", HTML: "<p>x</p>"}))
	require.True(t, strings.HasPrefix(raw, "From: DermaAI <noreply@example.com>\r\n"))
	require.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n")
	require.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>x</p>"))
}

type recordSender struct {
	mu    sync.Mutex
	sent  []Message
	block chan struct{}
	err   error
}

func (r *recordSender) Send(ctx context.Context, msg Message) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	rec := &recordSender{}
	d := NewDispatcher(rec, 2, 10)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Send(context.Background(), Message{To: fmt.Sprintf("u%d@example.com", i)}))
	}
	require.NoError(t, d.Close(context.Background()))
	require.Len(t, rec.sent, 5)

	err := d.Send(context.Background(), Message{To: "late@example.com"})
	require.True(t, appErr.IsTransient(err))
}

func TestDispatcherQueueFull(t *testing.T) {
	rec := &recordSender{block: make(chan struct{})}
	d := NewDispatcher(rec, 1, 1)
	// One message is held by the worker, one fills the queue.
	require.NoError(t, d.Send(context.Background(), Message{To: "a@example.com"}))
	require.Eventually(t, func() bool {
		return d.Send(context.Background(), Message{To: "b@example.com"}) == nil
	}, time.Second, 5*time.Millisecond)
	err := d.Send(context.Background(), Message{To: "c@example.com"})
	require.True(t, appErr.IsTransient(err))
	close(rec.block)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherLogsFailures(t *testing.T) {
	rec := &recordSender{err: fmt.Errorf("smtp down")}
	d := NewDispatcher(rec, 1, 2)
	require.NoError(t, d.Send(context.Background(), Message{To: "a@example.com"}))
	require.NoError(t, d.Close(context.Background()))
	require.Len(t, rec.sent, 1)
}

func TestSenderMissingConfigIsServerFault(t *testing.T) {
	sender := NewSMTPSender(config.MailConfig{Port: 587, From: "noreply@example.com"})
	err := sender.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.ErrorIs(t, err, appErr.ErrInternal)
	require.Equal(t, appErr.KindInternal, appErr.KindOf(err))
	require.False(t, appErr.IsTransient(err))
}
