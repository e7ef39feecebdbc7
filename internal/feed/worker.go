// Package feed exchange price feeds
package feed

import (
	"context"
	"time"

	"Paper-Trading-Service/internal/model"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second

	// reconnect backoff bounds
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// Adapter exchange-specific feed logic. OnMessage parses one raw message
// into a tick, malformed or irrelevant messages return false and are
// dropped so the feed stays alive through isolated bad messages.
type Adapter interface {
	ID() string
	URL() string
	Subscribe(conn *websocket.Conn) error
	OnMessage(raw []byte) (model.PriceTick, bool)
}

// Worker owns one feed connection and reconnects it with exponential
// backoff. Ticks of one worker are sent in arrival order.
type Worker struct {
	adapter Adapter
	ticks   chan<- model.PriceTick
}

// NewWorker constructor
func NewWorker(adapter Adapter, ticks chan<- model.PriceTick) *Worker {
	return &Worker{adapter: adapter, ticks: ticks}
}

// Run connect/read loop until the context ends. A dropped connection is
// redialed, a permanently unreachable feed just keeps this worker retrying
// without affecting the consumer or the other feeds.
func (w *Worker) Run(ctx context.Context) {
	retry := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := w.connect(ctx)
		if err != nil {
			delay := backoff(retry)
			retry++
			logrus.WithFields(logrus.Fields{
				"Feed":  w.adapter.ID(),
				"Retry": retry,
				"Delay": delay,
			}).Warnf("feed - Run - connect: %v", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		w.read(ctx, conn)
	}
}

func (w *Worker) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, w.adapter.URL(), nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	if err = w.adapter.Subscribe(conn); err != nil {
		conn.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"Feed": w.adapter.ID()}).Info("feed connected")
	return conn, nil
}

func (w *Worker) read(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// unblock ReadMessage when the context ends
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logrus.WithFields(logrus.Fields{"Feed": w.adapter.ID()}).
					Warnf("feed - read - ReadMessage: %v", err)
			}
			return
		}

		tick, ok := w.adapter.OnMessage(raw)
		if !ok {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case w.ticks <- tick:
		}
	}
}

// backoff baseDelay * 2^retry capped at maxDelay
func backoff(retry int) time.Duration {
	if retry < 0 {
		return baseDelay
	}
	if retry > 30 {
		return maxDelay
	}
	delay := baseDelay * time.Duration(1<<retry)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
