package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/segmentio/kafka-go"

	"github.com/preston-bernstein/squares-service/internal/testutil"
)

func TestWebhookNotifierPostsJSON(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, nil)
	if err := n.Notify(context.Background(), Message{RecipientID: "u1", Title: "Goal!", Body: "1-0"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got.RecipientID != "u1" || got.Title != "Goal!" || got.Body != "1-0" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestWebhookNotifierFailsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if err := NewWebhookNotifier(srv.URL, srv.Client()).Notify(context.Background(), Message{RecipientID: "u1"}); err == nil {
		t.Fatalf("expected error on 503")
	}
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaNotifierKeysByRecipient(t *testing.T) {
	w := &fakeWriter{}
	n := NewKafkaNotifier(w)

	if err := n.Notify(context.Background(), Message{RecipientID: "u9", Title: "Kick-off", Body: "x"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "u9" {
		t.Fatalf("unexpected messages %+v", w.msgs)
	}
	var payload Message
	if err := json.Unmarshal(w.msgs[0].Value, &payload); err != nil || payload.Title != "Kick-off" {
		t.Fatalf("unexpected value %s err=%v", w.msgs[0].Value, err)
	}
	if err := n.Close(); err != nil || !w.closed {
		t.Fatalf("expected writer closed")
	}
}

func TestKafkaNotifierSurfacesWriteErrors(t *testing.T) {
	n := NewKafkaNotifier(&fakeWriter{err: errors.New("broker down")})
	if err := n.Notify(context.Background(), Message{RecipientID: "u1"}); err == nil {
		t.Fatalf("expected write error")
	}
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifierSendsToChatID(t *testing.T) {
	bot := &fakeBot{}
	n := NewTelegramNotifier(bot)

	if err := n.Notify(context.Background(), Message{RecipientID: "12345", Title: "Goal!", Body: "1-0"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0].ChatID != 12345 || bot.sent[0].Text != "Goal!\n1-0" {
		t.Fatalf("unexpected sends %+v", bot.sent)
	}
	if err := n.Notify(context.Background(), Message{RecipientID: "not-a-chat"}); err == nil {
		t.Fatalf("expected error for non-numeric recipient")
	}
}

func TestLogNotifierWritesRecipient(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	if err := NewLogNotifier(logger).Notify(context.Background(), Message{RecipientID: "u1", Title: "t"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !containsAll(buf.String(), "notification", "u1") {
		t.Fatalf("expected log line, got %s", buf.String())
	}
}

func TestNotifierFuncAdapts(t *testing.T) {
	called := false
	f := NotifierFunc(func(context.Context, Message) error { called = true; return nil })
	_ = f.Notify(context.Background(), Message{})
	if !called {
		t.Fatalf("expected func to be invoked")
	}
}
