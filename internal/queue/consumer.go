package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ActivityConsumer drains ChangesQueue into an append-only activity log,
// one line per event.
type ActivityConsumer struct {
	url string
	log *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewActivityConsumer writes to out.
func NewActivityConsumer(url string, out io.Writer, log *zap.Logger) *ActivityConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityConsumer{url: url, out: out, log: log.Named("activity")}
}

// OpenActivityLog opens path for appending, creating its directory.
func OpenActivityLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff capped at 30s.
func (a *ActivityConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(a.url)
		if err != nil {
			a.log.Warn("dial broker failed", zap.Duration("retry_in", backoff), zap.Error(err))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = a.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (a *ActivityConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		a.log.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(ChangesQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ChangesQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := a.Handle(d.Body); err != nil {
				a.log.Warn("handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // no requeue: a bad payload would loop forever
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and appends its activity line.
func (a *ActivityConsumer) Handle(body []byte) error {
	var ev ChangeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := io.WriteString(a.out, FormatActivity(ev)); err != nil {
		return fmt.Errorf("write activity: %w", err)
	}
	return nil
}

// FormatActivity renders ev as a single log line. Fields are sorted by key.
func FormatActivity(ev ChangeEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type)
	if ev.EntityID != "" {
		fmt.Fprintf(&b, " | id=%s", ev.EntityID)
	}
	if ev.Actor != "" {
		fmt.Fprintf(&b, " | by=%s", ev.Actor)
	}
	keys := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " | %s=%q", k, ev.Fields[k])
	}
	b.WriteByte('\n')
	return b.String()
}
