// Package worker serves plugin requests received over NATS.
//
// A request is a JSON object naming the plugin and its inputs:
//
//	{"plugin": "hex", "inputs": {"text": "48 65 6C 6C 6F"}}
//
// The reply is the plugin's response envelope. Workers join a queue group so
// several processes can share one subject.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"geopuzzle/internal/registry"
	"geopuzzle/internal/storage"
)

// Config selects the server, subject and queue group.
type Config struct {
	URL     string
	Subject string
	Queue   string
}

// Request is the message body a worker accepts.
type Request struct {
	Plugin string          `json:"plugin"`
	Inputs registry.Inputs `json:"inputs"`
}

// Worker dispatches queued requests to the registry.
type Worker struct {
	registry *registry.Registry
	archive  storage.Archive // may be nil
	logger   *zap.Logger
	cfg      Config
}

// New creates a worker. archive may be nil.
func New(reg *registry.Registry, archive storage.Archive, logger *zap.Logger, cfg Config) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{registry: reg, archive: archive, logger: logger, cfg: cfg}
}

// Run connects, subscribes and serves until ctx is cancelled, then drains
// in-flight messages.
func (w *Worker) Run(ctx context.Context) error {
	if w.cfg.Subject == "" {
		return errors.New("worker: subject is required")
	}

	nc, err := nats.Connect(w.cfg.URL,
		nats.Name("geopuzzle-worker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			w.logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			w.logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", w.cfg.URL, err)
	}
	defer nc.Close()

	sub, err := nc.QueueSubscribe(w.cfg.Subject, w.cfg.Queue, func(msg *nats.Msg) {
		w.serve(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", w.cfg.Subject, err)
	}

	w.logger.Info("worker listening",
		zap.String("url", nc.ConnectedUrl()),
		zap.String("subject", sub.Subject),
		zap.String("queue", sub.Queue))

	<-ctx.Done()
	w.logger.Info("worker draining")
	if err := nc.Drain(); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}

func (w *Worker) serve(ctx context.Context, msg *nats.Msg) {
	body, resp := w.Handle(ctx, msg.Data)

	if msg.Reply == "" {
		w.logger.Debug("request without reply subject",
			zap.String("plugin", resp.PluginInfo.Name),
			zap.String("status", string(resp.Status)))
		return
	}
	if err := msg.Respond(body); err != nil {
		w.logger.Warn("respond failed", zap.String("reply", msg.Reply), zap.Error(err))
	}
}

// Handle runs one encoded request and returns the encoded response along
// with the envelope itself. Malformed requests produce an error envelope.
func (w *Worker) Handle(ctx context.Context, data []byte) ([]byte, *registry.Response) {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		resp := registry.NewResponse("", nil).Fail("invalid request: %v", err)
		return w.encode(resp), resp
	}
	if req.Plugin == "" {
		resp := registry.NewResponse("", req.Inputs).Fail("plugin is required")
		return w.encode(resp), resp
	}

	resp, err := w.registry.Execute(req.Plugin, req.Inputs)
	if err != nil {
		w.logger.Debug("request rejected", zap.String("plugin", req.Plugin), zap.Error(err))
		return w.encode(resp), resp
	}

	if w.archive != nil {
		if _, err := storage.Save(ctx, w.archive, resp); err != nil {
			w.logger.Warn("archive run failed", zap.String("plugin", req.Plugin), zap.Error(err))
		}
	}
	return w.encode(resp), resp
}

func (w *Worker) encode(resp *registry.Response) []byte {
	body, err := json.Marshal(resp)
	if err != nil {
		w.logger.Error("encode response", zap.String("plugin", resp.PluginInfo.Name), zap.Error(err))
		body, _ = json.Marshal(registry.NewResponse(resp.PluginInfo.Name, nil).Fail("encode response: %v", err))
	}
	return body
}
