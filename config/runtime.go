package config

import (
	"context"
	"fmt"
	"io"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/heritage"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/observe"
)

// Runtime is a heritage service wired to the Kulturpool API and telemetry.
type Runtime struct {
	Service  *heritage.Service
	Client   *kulturpool.Client
	Observer observe.Observer
}

// Build wires a Runtime from c. Log lines and stdout exporter output go to
// out, or os.Stderr when out is nil.
func (c Config) Build(ctx context.Context, out io.Writer) (*Runtime, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	client, err := kulturpool.NewClient(c.Client())
	if err != nil {
		return nil, fmt.Errorf("config: client: %w", err)
	}

	obsCfg := c.Observe()
	obsCfg.Output = out
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("config: observer: %w", err)
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("config: middleware: %w", err)
	}

	svc, err := heritage.New(c.Service(), client, heritage.WithMiddleware(mw))
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("config: service: %w", err)
	}
	return &Runtime{Service: svc, Client: client, Observer: obs}, nil
}

// Shutdown flushes telemetry.
func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.Observer.Shutdown(ctx)
}
