// Package pushfeed pumps frames from an established websocket push channel
// into the session ingest API. Opening, authenticating, and retrying the
// connection belongs to the caller; the feed only reads, decodes, and
// forwards until the connection or context dies.
package pushfeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"driftmap/client"
)

const (
	defaultPongWait       = 60 * time.Second
	defaultPingInterval   = 25 * time.Second
	defaultMaxMessageSize = 1 << 20
	writeWait             = 10 * time.Second
)

// Ingestor is the slice of the session the feed drives.
type Ingestor interface {
	IngestRaw(ctx context.Context, data []byte) (client.IngestReport, error)
	ConsumeRefreshHint() (client.RefreshHint, bool)
}

// Config tunes the feed's connection hygiene.
type Config struct {
	PongWait       time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64

	// OnRefreshNeeded receives the session's pending fresh-snapshot hint.
	// The transport layer decides whether to act on it.
	OnRefreshNeeded func(client.RefreshHint)
}

// Feed drives one websocket connection into one session.
type Feed struct {
	conn    *websocket.Conn
	session Ingestor
	cfg     Config
}

// New wraps an established connection. The feed takes over read management;
// the caller must not read from conn afterwards.
func New(conn *websocket.Conn, session Ingestor, cfg Config) *Feed {
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}
	return &Feed{conn: conn, session: session, cfg: cfg}
}

// Run reads frames until the context is canceled or the connection fails.
// Undecodable frames are skipped; the session's refresh policy accumulates
// the evidence and Run surfaces the resulting hint through OnRefreshNeeded.
func (f *Feed) Run(ctx context.Context) error {
	f.conn.SetReadLimit(f.cfg.MaxMessageSize)
	if err := f.conn.SetReadDeadline(time.Now().Add(f.cfg.PongWait)); err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}
	f.conn.SetPongHandler(func(string) error {
		return f.conn.SetReadDeadline(time.Now().Add(f.cfg.PongWait))
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go f.keepAlive(pingDone)

	go func() {
		select {
		case <-ctx.Done():
			f.conn.Close()
		case <-pingDone:
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read push frame: %w", err)
		}

		if _, err := f.session.IngestRaw(ctx, data); err != nil {
			if !errors.Is(err, client.ErrMalformedPayload) {
				return fmt.Errorf("ingest push frame: %w", err)
			}
			// Malformed frames are the stream's problem, not a reason to
			// drop the connection. The refresh policy has already counted it.
		}

		if f.cfg.OnRefreshNeeded != nil {
			if hint, ok := f.session.ConsumeRefreshHint(); ok {
				f.cfg.OnRefreshNeeded(hint)
			}
		}
	}
}

func (f *Feed) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(f.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := f.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
