// Package app wires the sync core, logging router, and push feed into a
// runnable client daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"

	client "driftmap/client"
	"driftmap/client/logging"
	loggingSinks "driftmap/client/logging/sinks"
	"driftmap/client/pushfeed"
)

const reconnectBackoff = 3 * time.Second

func Run(ctx context.Context) error {
	cfg, err := client.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.PushURL == "" {
		return errors.New("DRIFTMAP_PUSH_URL is required")
	}

	logCfg := logging.DefaultConfig()
	logCfg.EnabledSinks = cfg.LogSinks
	logCfg.BufferSize = cfg.LogBufferSize

	named := make([]logging.NamedSink, 0, len(cfg.LogSinks))
	var jsonFile *os.File
	for _, name := range cfg.LogSinks {
		switch name {
		case "console":
			named = append(named, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewConsoleSink(os.Stdout, logCfg.Console),
			})
		case "json":
			w := os.Stdout
			if cfg.LogJSONPath != "" {
				jsonFile, err = os.OpenFile(cfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open json log: %w", err)
				}
				w = jsonFile
			}
			named = append(named, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewJSON(w, logCfg.JSON.FlushInterval),
			})
		default:
			return fmt.Errorf("unknown log sink %q", name)
		}
	}

	router, err := logging.NewRouter(nil, logCfg, named)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		router.Close(closeCtx)
		if jsonFile != nil {
			jsonFile.Close()
		}
	}()

	session := client.NewSession(cfg, router)

	feedCfg := pushfeed.Config{
		OnRefreshNeeded: func(hint client.RefreshHint) {
			router.Publish(ctx, logging.Event{
				Type:     "transport.refresh_needed",
				Severity: logging.SeverityWarn,
				Category: logging.CategoryTransport,
				Payload:  hint.Summary(),
			})
		},
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.PushURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			router.Publish(ctx, logging.Event{
				Type:     "transport.dial_failed",
				Severity: logging.SeverityWarn,
				Category: logging.CategoryTransport,
				Payload:  err.Error(),
			})
			if !sleepCtx(ctx, reconnectBackoff) {
				return nil
			}
			continue
		}

		err = pushfeed.New(conn, session, feedCfg).Run(ctx)
		conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			router.Publish(ctx, logging.Event{
				Type:     "transport.feed_closed",
				Severity: logging.SeverityWarn,
				Category: logging.CategoryTransport,
				Payload:  err.Error(),
			})
		}
		// The stream restarts from an unknown position; drop local state and
		// let the next snapshot rebuild it.
		session.Reset(ctx)
		if !sleepCtx(ctx, reconnectBackoff) {
			return nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
