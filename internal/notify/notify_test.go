package notify

import (
	"context"
	"errors"
	"net/smtp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingNotifier) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, 10)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Start(ctx)

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, d.Send(ctx, Message{To: []string{"a@example.com"}, Subject: s}))
	}

	assert.Eventually(t, func() bool { return len(rec.messages()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-d.Done()

	msgs := rec.messages()
	assert.Equal(t, "one", msgs[0].Subject)
	assert.Equal(t, "three", msgs[2].Subject)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, 1)

	// worker not started, so the second message does not fit
	require.NoError(t, d.Send(context.Background(), Message{Subject: "kept"}))
	require.NoError(t, d.Send(context.Background(), Message{Subject: "dropped"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)

	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "kept", msgs[0].Subject)
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("relay down")}
	d := NewDispatcher(rec, 4)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Start(ctx)

	_ = d.Send(ctx, Message{Subject: "first"})
	_ = d.Send(ctx, Message{Subject: "second"})

	assert.Eventually(t, func() bool { return len(rec.messages()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-d.Done()
}

func TestSMTPNotifier_Send(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "mail.local", Port: "2525", Username: "u", Password: "p", From: "noreply@example.com"})

	var (
		gotAddr string
		gotTo   []string
		gotBody string
	)
	n.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		return nil
	}

	err := n.Send(context.Background(), Message{To: []string{"dev@example.com"}, Subject: "Hello", Body: "world"})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, []string{"dev@example.com"}, gotTo)
	assert.Contains(t, gotBody, "Subject: Hello\r\n")
	assert.Contains(t, gotBody, "\r\n\r\nworld")

	assert.Error(t, n.Send(context.Background(), Message{Subject: "nobody"}))
}
